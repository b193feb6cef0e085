package api

import (
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// NewCachingHTTPClient creates an HTTP client with disk-based caching.
// Used by GET-heavy commands calling cacheable endpoints (product
// listings with Cache-Control headers).
func NewCachingHTTPClient(cacheDir string, timeout time.Duration) *http.Client {
	if cacheDir == "" {
		// Use in-memory cache if no cache directory specified
		return &http.Client{
			Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
			Timeout:   timeout,
		}
	}

	cache := diskcache.New(cacheDir)

	return &http.Client{
		Transport: httpcache.NewTransport(cache),
		Timeout:   timeout,
	}
}

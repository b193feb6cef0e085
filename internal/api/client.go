package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Config holds common client configuration.
type Config struct {
	// ServerURL is the backend base URL including the API prefix,
	// e.g. https://api.clarkmarket.example/api/v1
	ServerURL string

	// Timeout applies to every request unless HTTPClient is supplied.
	Timeout time.Duration

	// HTTPClient overrides the default client, e.g. to add a caching
	// transport for GET-heavy commands.
	HTTPClient *http.Client
}

// Client is a typed HTTP client for the marketplace admin API. All
// responses are parsed into explicit structs at the boundary.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given configuration.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		httpClient: httpClient,
	}
}

// Login exchanges credentials for a token pair and a minimal user
// object. No Authorization header is sent.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.Data.User,
	}, nil
}

// Register creates a new account and returns the backend's data payload.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	var resp registerResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// RefreshToken exchanges a refresh token for a new access token. The
// returned pair's RefreshToken is empty when the backend did not rotate
// it.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refreshToken": refreshToken}

	var resp refreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh-token", "", body, &resp); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var resp userResponse
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

// UpdateMe sends a partial profile update and returns the updated
// profile.
func (c *Client) UpdateMe(ctx context.Context, token string, patch map[string]any) (*User, error) {
	var resp userResponse
	if err := c.doJSON(ctx, http.MethodPatch, "/users/me", token, patch, &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

// doJSON executes a JSON request against path and decodes the response
// into out. A non-2xx response is returned as *Error carrying the
// backend message; transport failures are returned unwrapped so callers
// can treat them as transient.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	return c.do(ctx, method, path, token, reader, "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).
			Str("method", method).
			Str("path", path).
			Str("requestID", requestID).
			Msg("request failed")
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
		}
		var env envelope
		if jsonErr := json.Unmarshal(data, &env); jsonErr == nil {
			apiErr.Message = env.Message
		}

		log.Debug().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Str("requestID", requestID).
			Str("message", apiErr.Message).
			Msg("request rejected")

		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

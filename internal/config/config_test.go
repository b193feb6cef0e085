package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("reads values from the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"server_url: https://staging.example/api/v1\n"+
				"timeout: 10s\n"+
				"cache_dir: /tmp/marketctl-cache\n"), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://staging.example/api/v1", cfg.ServerURL)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, "/tmp/marketctl-cache", cfg.CacheDir)
	})

	t.Run("keeps defaults for unset fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cache_dir: /tmp/c\n"), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Default().ServerURL, cfg.ServerURL)
		assert.Equal(t, Default().Timeout, cfg.Timeout)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server_url: [\n"), 0600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults loaded from the config file. Flags and
// environment variables override these values.
type Config struct {
	ServerURL  string
	Timeout    time.Duration
	CacheDir   string
	SessionDir string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL: "https://api.clarkmarket.example/api/v1",
		Timeout:   30 * time.Second,
	}
}

// DefaultPath returns the default config file location,
// ~/.marketctl/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".marketctl", "config.yaml")
}

// Load reads the YAML config at path, falling back to defaults when the
// file does not exist. An empty path uses DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// Durations arrive as strings ("10s"), parse them by hand.
	var raw struct {
		ServerURL  string `yaml:"server_url"`
		Timeout    string `yaml:"timeout"`
		CacheDir   string `yaml:"cache_dir"`
		SessionDir string `yaml:"session_dir"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if raw.ServerURL != "" {
		cfg.ServerURL = raw.ServerURL
	}
	if raw.CacheDir != "" {
		cfg.CacheDir = raw.CacheDir
	}
	if raw.SessionDir != "" {
		cfg.SessionDir = raw.SessionDir
	}
	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse timeout: %w", err)
		}
		cfg.Timeout = timeout
	}

	log.Debug().Str("path", path).Str("serverURL", cfg.ServerURL).Msg("config loaded")

	return cfg, nil
}

// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete client configuration.
type Config struct {
	// APIURL is the base URL of the triage service REST API.
	// Default: http://localhost:8000
	APIURL string `yaml:"api_url"`

	// WSURL is the base URL of the notification WebSocket endpoint.
	// When empty it is derived from APIURL by swapping the scheme
	// (http -> ws, https -> wss).
	WSURL string `yaml:"ws_url"`

	// User is the username to run as. When empty the client lists
	// the service directory and asks interactively.
	User string `yaml:"user"`

	// LogFile receives structured logs that arrive before the UI is
	// ready to display them. Empty means discard.
	LogFile string `yaml:"log_file"`
}

// Default returns the base configuration before any file or
// environment values are applied.
func Default() *Config {
	return &Config{
		APIURL: "http://localhost:8000",
	}
}

// Load resolves the file path, reads it if present, and applies
// environment overrides.
func Load() (*Config, error) {
	path := os.Getenv("TRIAGE_CONFIG")
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".config", "triage", "triage.yaml")
		}
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			// A missing default-location file is fine; a missing
			// explicitly named one is not.
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvironment()
	return cfg, nil
}

// LoadFile reads a specific config file and applies environment
// overrides on top.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	cfg.applyEnvironment()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvironment() {
	if value := os.Getenv("TRIAGE_API_URL"); value != "" {
		c.APIURL = value
	}
	if value := os.Getenv("TRIAGE_WS_URL"); value != "" {
		c.WSURL = value
	}
	if value := os.Getenv("TRIAGE_USER"); value != "" {
		c.User = value
	}
	if value := os.Getenv("TRIAGE_LOG_FILE"); value != "" {
		c.LogFile = value
	}
}

// WebSocketURL returns the notification endpoint base, deriving it
// from APIURL when no explicit ws_url was configured.
func (c *Config) WebSocketURL() string {
	if c.WSURL != "" {
		return strings.TrimRight(c.WSURL, "/")
	}
	base := strings.TrimRight(c.APIURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.APIURL == "" {
		errs = append(errs, fmt.Errorf("api_url is required"))
	} else if _, err := url.Parse(c.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("api_url: %w", err))
	}

	ws := c.WebSocketURL()
	if !strings.HasPrefix(ws, "ws://") && !strings.HasPrefix(ws, "wss://") {
		errs = append(errs, fmt.Errorf("ws_url must use a ws:// or wss:// scheme, got %q", ws))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

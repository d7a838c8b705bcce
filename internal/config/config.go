package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Submit modes for the query input.
const (
	SubmitNavigate = "navigate"
	SubmitReplace  = "replace"
)

// EnvBaseURL overrides Remote.BaseURL.
const EnvBaseURL = "SCREENER_BASE_URL"

// Config is the persistent application configuration
type Config struct {
	Remote RemoteConfig `json:"remote"`
	UI     UIConfig     `json:"ui"`
	Server ServerConfig `json:"server"`
}

// RemoteConfig locates the stock service the TUI talks to.
type RemoteConfig struct {
	BaseURL           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"` // 0 = unlimited
}

// Timeout returns the per-request timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// UIConfig holds UI preferences
type UIConfig struct {
	SubmitMode string `json:"submit_mode"` // "navigate" or "replace"
	Debug      bool   `json:"debug"`       // start with the debug overlay open
}

// ServerConfig configures screenerd.
type ServerConfig struct {
	Addr           string   `json:"addr"`
	DataFile       string   `json:"data_file"` // CSV snapshot imported at startup
	DBPath         string   `json:"db_path"`   // "" or ":memory:" keeps the store in memory
	AllowedOrigins []string `json:"allowed_origins"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			BaseURL:        "http://localhost:8080",
			TimeoutSeconds: 30,
		},
		UI: UIConfig{
			SubmitMode: SubmitNavigate,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			DataFile: "StockDataset.csv",
			DBPath:   ":memory:",
			AllowedOrigins: []string{
				"http://localhost:3000",
			},
		},
	}
}

// Dir returns ~/.screener, where config, logs and the event trail live.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".screener")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from path ("" means ConfigPath). A missing file yields
// defaults. Fields absent from the file keep their default values.
// The environment is applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes config to path ("" means ConfigPath).
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides file values from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.Remote.BaseURL = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("remote.base_url %q: must be an absolute http(s) URL", c.Remote.BaseURL)
	}
	if c.Remote.TimeoutSeconds < 0 {
		return fmt.Errorf("remote.timeout_seconds must not be negative")
	}
	if c.Remote.RequestsPerSecond < 0 {
		return fmt.Errorf("remote.requests_per_second must not be negative")
	}
	switch c.UI.SubmitMode {
	case SubmitNavigate, SubmitReplace:
	default:
		return fmt.Errorf("ui.submit_mode %q: want %q or %q", c.UI.SubmitMode, SubmitNavigate, SubmitReplace)
	}
	return nil
}

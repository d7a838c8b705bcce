package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvBaseURL, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := DefaultConfig()
	if cfg.Remote.BaseURL != def.Remote.BaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.Remote.BaseURL, def.Remote.BaseURL)
	}
	if cfg.UI.SubmitMode != SubmitNavigate {
		t.Errorf("SubmitMode = %q", cfg.UI.SubmitMode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Setenv(EnvBaseURL, "")

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"remote":{"base_url":"http://stocks.internal:9000"},"ui":{"submit_mode":"replace"}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote.BaseURL != "http://stocks.internal:9000" {
		t.Errorf("BaseURL = %q", cfg.Remote.BaseURL)
	}
	if cfg.UI.SubmitMode != SubmitReplace {
		t.Errorf("SubmitMode = %q", cfg.UI.SubmitMode)
	}
	if cfg.Remote.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want default 30s", cfg.Remote.Timeout())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"remote":`), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"remote":{"base_url":"http://from-file:1"}}`), 0644)
	t.Setenv(EnvBaseURL, " http://from-env:2 ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote.BaseURL != "http://from-env:2" {
		t.Errorf("BaseURL = %q, want env value", cfg.Remote.BaseURL)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := DefaultConfig()
	cfg.Remote.RequestsPerSecond = 2.5
	cfg.Server.AllowedOrigins = []string{"http://a", "http://b"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Remote.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v", got.Remote.RequestsPerSecond)
	}
	if strings.Join(got.Server.AllowedOrigins, ",") != "http://a,http://b" {
		t.Errorf("AllowedOrigins = %v", got.Server.AllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"https", func(c *Config) { c.Remote.BaseURL = "https://example.com/api" }, ""},
		{"relative url", func(c *Config) { c.Remote.BaseURL = "localhost:8080" }, "base_url"},
		{"empty url", func(c *Config) { c.Remote.BaseURL = "" }, "base_url"},
		{"negative timeout", func(c *Config) { c.Remote.TimeoutSeconds = -1 }, "timeout"},
		{"negative rate", func(c *Config) { c.Remote.RequestsPerSecond = -1 }, "requests_per_second"},
		{"bad mode", func(c *Config) { c.UI.SubmitMode = "push" }, "submit_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

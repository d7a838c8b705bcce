package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/abelbrown/screener/internal/client"
	"github.com/abelbrown/screener/internal/config"
	"github.com/abelbrown/screener/internal/store"
)

// dataDir returns ~/.screener/, creating it if needed.
func dataDir() string {
	dir := config.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// defaultDBPath returns the path to screener.db.
func defaultDBPath() string {
	return filepath.Join(dataDir(), "screener.db")
}

// eventLogPath returns the event trail of the TUI, or of screenerd when
// server is set.
func eventLogPath(server bool) string {
	if server {
		return filepath.Join(dataDir(), "screenerd.events.jsonl")
	}
	return filepath.Join(dataDir(), "screener.events.jsonl")
}

// openDB opens the store at path or fatals.
func openDB(path string) *store.Store {
	st, err := store.Open(path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// clientConfig resolves the client settings from the config file, the
// environment and an optional override, and validates them.
func clientConfig(baseURL string) (client.Config, error) {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return client.Config{}, fmt.Errorf("load config: %w", err)
	}
	if baseURL != "" {
		cfg.Remote.BaseURL = baseURL
	}
	if err := cfg.Validate(); err != nil {
		return client.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return client.Config{
		BaseURL:           cfg.Remote.BaseURL,
		Timeout:           cfg.Remote.Timeout(),
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
	}, nil
}

// newClient builds a client from clientConfig or fatals.
func newClient(baseURL string) *client.Client {
	cc, err := clientConfig(baseURL)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return client.New(cc)
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

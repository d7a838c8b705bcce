// Command screener is the terminal stock screener. It talks to a screener
// service (see cmd/screenerd) and renders the listing for one Location.
//
// Usage:
//
//	screener                                  all stocks
//	screener -query "ROE > 10"                filtered listing
//	screener -location "?query=ROE%20%3E%2010"
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/screener/internal/client"
	"github.com/abelbrown/screener/internal/config"
	"github.com/abelbrown/screener/internal/logging"
	"github.com/abelbrown/screener/internal/otel"
	"github.com/abelbrown/screener/internal/ui"
)

func main() {
	configPath := flag.String("config", config.ConfigPath(), "Path to config.json")
	baseURL := flag.String("base-url", "", "Stock service address (overrides config and "+config.EnvBaseURL+")")
	location := flag.String("location", "", `Start location, e.g. "?query=ROE%20%3E%2010"`)
	query := flag.String("query", "", "Start filter query (ignored when -location is set)")
	mode := flag.String("mode", "", `Submit mode: "navigate" or "replace"`)
	debug := flag.Bool("debug", false, "Start with the debug overlay open")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *baseURL != "" {
		cfg.Remote.BaseURL = *baseURL
	}
	if *mode != "" {
		cfg.UI.SubmitMode = *mode
	}
	if *debug {
		cfg.UI.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		fatal("Invalid config: %v", err)
	}

	loc := ui.Location{}.WithQuery(*query)
	if *location != "" {
		loc, err = ui.ParseLocation(*location)
		if err != nil {
			fatal("Invalid location %q: %v", *location, err)
		}
	}

	dataDir := config.Dir()
	if err := logging.Init(filepath.Join(dataDir, "logs")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Event trail: JSONL on disk plus the in-memory ring behind the overlay.
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events, err := otel.Open(filepath.Join(dataDir, "screener.events.jsonl"))
	if err != nil {
		logging.Warn("Event log unavailable", "error", err)
		events = otel.NewNullLogger()
	}
	events.SetRingBuffer(ring)
	defer events.Close()

	c := client.New(client.Config{
		BaseURL:           cfg.Remote.BaseURL,
		Timeout:           cfg.Remote.Timeout(),
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
	})

	submit := ui.SubmitNavigate
	if cfg.UI.SubmitMode == config.SubmitReplace {
		submit = ui.SubmitReplace
	}

	logging.Info("Starting UI", "base_url", c.BaseURL(), "location", loc.String(), "mode", cfg.UI.SubmitMode)
	events.Info(otel.KindStartup, "main", c.BaseURL())

	app := ui.NewApp(c, ui.Options{
		Location: loc,
		Mode:     submit,
		Events:   events,
		Ring:     ring,
		Debug:    cfg.UI.Debug,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Error("Application error", "error", err)
		events.Error(otel.KindError, "main", err)
		events.Close()
		fatal("Error: %v", err)
	}

	events.Info(otel.KindShutdown, "main", "exit")
	logging.Info("Screener exiting normally")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

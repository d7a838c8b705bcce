// Command screenerd serves the stock snapshot over HTTP: GET /stocks,
// POST /filter and GET /health. The snapshot is imported from a CSV file
// at startup into SQLite.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/screener/internal/config"
	"github.com/abelbrown/screener/internal/logging"
	"github.com/abelbrown/screener/internal/otel"
	"github.com/abelbrown/screener/internal/server"
	"github.com/abelbrown/screener/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", config.ConfigPath(), "Path to config.json")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	data := flag.String("data", "", "CSV snapshot to import (overrides config)")
	dbPath := flag.String("db", "", `SQLite path, ":memory:" for in-memory (overrides config)`)
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logging.InitWriter(os.Stderr, level)
	defer logging.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *data != "" {
		cfg.Server.DataFile = *data
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}

	events, err := otel.Open(filepath.Join(config.Dir(), "screenerd.events.jsonl"))
	if err != nil {
		logging.Warn("Event log unavailable", "error", err)
		events = otel.NewNullLogger()
	}
	if !*verbose {
		events.SetMinLevel(otel.LevelInfo)
	}
	defer events.Close()

	if err := run(cfg.Server, events); err != nil {
		logging.Error("Server error", "error", err)
		events.Error(otel.KindError, "main", err)
		events.Close()
		logging.Close()
		os.Exit(1)
	}
}

func run(cfg config.ServerConfig, events *otel.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if cfg.DataFile != "" {
		start := time.Now()
		n, err := st.ImportFile(ctx, cfg.DataFile)
		if err != nil {
			return fmt.Errorf("import %s: %w", cfg.DataFile, err)
		}
		logging.Info("Snapshot imported", "file", cfg.DataFile, "stocks", n, "took", time.Since(start))
		events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindImport, Comp: "main",
			Count: n, Dur: time.Since(start), Msg: cfg.DataFile})
	}

	srv, err := server.New(server.Config{
		Source:         st,
		AllowedOrigins: cfg.AllowedOrigins,
		Events:         events,
	})
	if err != nil {
		return err
	}

	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Listening", "addr", cfg.Addr)
		events.Info(otel.KindStartup, "main", cfg.Addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	})

	err = g.Wait()
	events.Info(otel.KindShutdown, "main", "stopped")
	return err
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

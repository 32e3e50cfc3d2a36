// Command tracer analyses what a web page is made of: its color palette,
// its typography and its technology stack.
//
// Usage:
//
//	tracer -url https://example.com          # one-shot scan, JSON to stdout
//	tracer -url https://example.com -deep    # with the broadened channels
//	tracer -serve                            # HTTP API + scan history
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/tracer/browser"
	"github.com/hazyhaar/tracer/internal/config"
	"github.com/hazyhaar/tracer/scan"
	"github.com/hazyhaar/tracer/store"
	"github.com/hazyhaar/tracer/techdetect"
	"github.com/hazyhaar/tracer/webapi"
)

func main() {
	configPath := flag.String("config", "", "path to tracer.yaml config file")
	scanURL := flag.String("url", "", "scan a single URL and print the result")
	deep := flag.Bool("deep", false, "enable deep-scan evidence channels")
	preview := flag.String("preview", "", "font preview text source: pangram, og-description, page-content")
	dbPath := flag.String("db", "", "scan history database path")
	serve := flag.Bool("serve", false, "run the HTTP API")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *scanURL, *deep, *preview, *dbPath, *serve); err != nil {
		logger.Error("tracer: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, scanURL string, deep bool, preview, dbPath string, serve bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if deep {
		cfg.Scan.DeepScan = true
	}
	if preview != "" {
		cfg.Scan.FontPreviewSource = preview
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}

	if scanURL == "" && !serve {
		fmt.Fprintln(os.Stderr, "usage: tracer -url <url> [-deep] | -serve [-config <file>]")
		os.Exit(1)
	}

	db, err := techdetect.DefaultDatabase()
	if err != nil {
		return err
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL: cfg.Browser.Remote,
		Headful:   cfg.Browser.Headful,
		Logger:    logger,
	})
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer mgr.Close()

	scanner := scan.NewScanner(scan.Config{
		DeepScan:          cfg.Scan.DeepScan,
		FontPreviewSource: cfg.Scan.FontPreviewSource,
		NavigateTimeout:   cfg.Scan.NavigateTimeout,
		Logger:            logger,
	}, mgr, db)

	if scanURL != "" {
		return runSingle(ctx, scanner, scanURL)
	}
	return runServe(ctx, logger, cfg, scanner)
}

func runSingle(ctx context.Context, scanner *scan.Scanner, url string) error {
	res, err := scanner.Scan(ctx, url, scan.Options{})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runServe(ctx context.Context, logger *slog.Logger, cfg *config.Config, scanner *scan.Scanner) error {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	api := webapi.NewServer(scanner, st, logger)
	srv := &http.Server{
		Addr:              cfg.Serve.Listen,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tracer: serving", "listen", cfg.Serve.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

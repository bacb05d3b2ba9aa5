// Package main implements the ircbot entry point: an IRC client that keeps a
// connection alive, dispatches typed events to listeners, and optionally
// republishes them to NATS and serves metrics and health over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/ircbot/bot"
	"github.com/c360/ircbot/bridge"
	"github.com/c360/ircbot/config"
	"github.com/c360/ircbot/errors"
	"github.com/c360/ircbot/event"
	"github.com/c360/ircbot/health"
	"github.com/c360/ircbot/ident"
	"github.com/c360/ircbot/metric"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "ircbot"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if cliCfg.ShowVersion {
		printVersion()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cliCfg.Validate {
		logger.Info("Configuration is valid", "path", cliCfg.ConfigPath)
		return nil
	}

	registry := metric.NewRegistry()

	var identServer *ident.Server
	if cfg.Ident.Enabled {
		identServer = ident.NewServer(logger)
		if err := identServer.Start(cfg.Ident.Listen); err != nil {
			return err
		}
		defer identServer.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var eventBridge *bridge.Bridge
	if cfg.Bridge != nil {
		eventBridge, err = bridge.New(*cfg.Bridge, logger)
		if err != nil {
			return err
		}
		if err := eventBridge.Connect(ctx); err != nil {
			return err
		}
		defer eventBridge.Close()
	}

	botCfg := cfg.Bot
	botCfg.Dialer = cfg.BuildDialer()
	botCfg.Manager = event.NewSequentialManager(
		event.WithLogger(logger),
		event.WithMetrics(registry.Core(), botCfg.Name),
	)
	botCfg.Ident = identServer
	botCfg.Bridge = eventBridge
	botCfg.Metrics = registry.Core()

	b, err := bot.New(botCfg, bot.WithLogger(logger))
	if err != nil {
		return err
	}
	bot.RegisterExitHook(b)

	if cfg.HTTP.Enabled {
		startDiagnostics(ctx, cfg.HTTP.Listen, registry, b, logger)
	}

	// Signals trigger the best-effort farewell and forced shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", "signal", sig.String())
		cancel()
		bot.RunExitHooks()
	}()

	logger.Info("Starting bot", "server", cfg.Bot.Server, "nick", cfg.Bot.Name)
	if err := b.Connect(ctx); err != nil && !errors.IsMisuse(err) {
		return err
	}
	logger.Info("Bot stopped")
	return nil
}

// startDiagnostics serves /metrics and /healthz, with a poller keeping the
// health monitor in step with the bot's connection state
func startDiagnostics(ctx context.Context, listen string, registry *metric.Registry, b *bot.Bot, logger *slog.Logger) {
	monitor := health.NewMonitor()
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				monitor.Update("connection", b.Health())
			}
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	mux.HandleFunc("/healthz", monitor.Handler(appName))

	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("Diagnostics listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Diagnostics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

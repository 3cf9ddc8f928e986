package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kazuph/slack-bridge/internal/api"
	"github.com/kazuph/slack-bridge/internal/bridge"
	"github.com/kazuph/slack-bridge/internal/config"
	"github.com/kazuph/slack-bridge/internal/history"
	"github.com/kazuph/slack-bridge/internal/pending"
	"github.com/kazuph/slack-bridge/internal/slack"
	"github.com/kazuph/slack-bridge/internal/terminal"
)

func main() {
	// Logger
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Answer audit log
	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		logger.Error("failed to open history database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Slack
	client := slack.NewClient(cfg.SlackAPIBaseURL, cfg.SlackBotToken)
	verifier := slack.NewVerifier(cfg.SlackSigningSecret, logger)
	if cfg.SlackSigningSecret == "" {
		logger.Warn("SLACK_SIGNING_SECRET is not set; callback signatures will NOT be verified")
	}

	// Bridge service
	table := pending.NewTable()
	activator := terminal.NewActivator(cfg.TerminalApp, logger)
	svc := bridge.New(client, table, store, activator, cfg.SlackChannelID, cfg.AskTimeout, logger)

	// Router
	router := api.NewRouter(svc, store, verifier, logger)

	// Server. WriteTimeout must cover the full ask-and-wait block.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AskTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("slack bridge starting",
			"addr", addr,
			"channel", cfg.SlackChannelID,
			"askTimeout", cfg.AskTimeout,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

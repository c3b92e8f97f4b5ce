package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/api"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/config"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/planindex"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/reviewstore"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/watcher"
	"github.com/joho/godotenv"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Storage.PlansDir, 0o755); err != nil {
		log.Error("create plans dir", "error", err)
		os.Exit(1)
	}

	reviews, err := reviewstore.New(cfg.Storage.ReviewsDir, cfg.Storage.PlansDir)
	if err != nil {
		log.Error("init review store", "error", err)
		os.Exit(1)
	}

	index := planindex.New(cfg.Storage.PlansDir, reviews)

	w, err := watcher.New(cfg.Storage.PlansDir, cfg.Storage.ReviewsDir, cfg.WatchDebounce, cfg.WatchPollInterval, log)
	if err != nil {
		log.Error("init watcher", "error", err)
		os.Exit(1)
	}
	w.Start()

	srv := api.NewServer(index, reviews, w, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket connections stay open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		w.Close()
		httpServer.Close()
	}()

	log.Info("starting plan reviewer", "port", cfg.Port, "plans", cfg.Storage.PlansDir, "reviews", cfg.Storage.ReviewsDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

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

	"github.com/lysyi3m/content-comb/app/api"
	"github.com/lysyi3m/content-comb/app/cache"
	"github.com/lysyi3m/content-comb/app/cfg"
	"github.com/lysyi3m/content-comb/app/content"
	"github.com/lysyi3m/content-comb/app/database"
	"github.com/lysyi3m/content-comb/app/tasks"
	"github.com/lysyi3m/content-comb/app/webhook"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown
		return
	}

	setupLogger(config.Debug)

	slog.Info("Starting Content Comb server", "version", config.Version)

	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", config.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", config.DBPath, "schema_version", version, "dirty", dirty)

	configCache := webhook.NewConfigCache(config.WorkflowsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load workflow configurations", "dir", config.WorkflowsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Workflow configurations loaded", "dir", config.WorkflowsDir, "count", configCache.GetConfigCount())

	repos := tasks.Repositories{
		Workflows:  database.NewWorkflowRepository(db),
		Executions: database.NewExecutionRepository(db),
		Rows:       database.NewRowRepository(db),
	}

	client := webhook.NewClient(config.UserAgent, config.WebhookRate)
	parsers := tasks.NewParsers(config.OutlineLookahead)

	scheduler := tasks.NewScheduler(configCache, repos, client, parsers)
	scheduler.Start()
	slog.Info("Background scheduler started", "workers", config.WorkerCount, "interval", config.SchedulerInterval)

	var calendarCache api.CalendarCacheInterface
	if config.RedisAddr != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisCache, err := cache.NewCache(connectCtx, config.RedisAddr, time.Duration(config.CalendarCacheTTL)*time.Second)
		cancel()
		if err != nil {
			slog.Warn("Calendar cache disabled", "addr", config.RedisAddr, "error", err)
		} else {
			defer redisCache.Close()
			calendarCache = redisCache
		}
	}

	renderer := content.NewRenderer(config.RenderCacheSize)
	handler := api.NewHandler(configCache, repos, parsers, renderer, calendarCache, scheduler)
	server := api.NewServer(handler, config.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	scheduler.Stop()

	slog.Info("Content Comb server shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

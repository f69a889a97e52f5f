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

	"github.com/Volkan-eles/yatirimx3-sub001/app/api"
	"github.com/Volkan-eles/yatirimx3-sub001/app/archive"
	"github.com/Volkan-eles/yatirimx3-sub001/app/cfg"
	"github.com/Volkan-eles/yatirimx3-sub001/app/database"
	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/fetch"
	"github.com/Volkan-eles/yatirimx3-sub001/app/tasks"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting pipeline", "version", c.Version, "serve", c.Serve)

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", c.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", migrationVersion, "dirty", dirty)

	runLedger := database.NewRunLedger(db)
	pageCache := database.NewPageCache(db)

	store := dataset.NewStore(c.DataDir)
	client := fetch.NewClient(nil, c.UserAgent, c.Referer, time.Duration(c.Timeout)*time.Second)
	archiver := archive.NewArchiver(store, c.RetentionDays, c.ArchiveOverwrite)

	runner := tasks.NewRunner(runLedger)
	pipeline := func() []tasks.TaskInterface {
		return []tasks.TaskInterface{
			tasks.NewSyncDatasetsTask(client, store),
			tasks.NewScrapeIPOsTask(client, store, pageCache),
			tasks.NewArchiveDividendsTask(archiver),
			tasks.NewBuildSitemapTask(store),
		}
	}

	if !c.Serve {
		runBatch(runner, pipeline)
		return
	}

	scheduler := tasks.NewScheduler(runner, pipeline)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(store, runLedger, pageCache, scheduler, func() tasks.TaskInterface {
		return tasks.NewRunPipelineTask(runner, pipeline)
	})

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler, c.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
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

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// runBatch executes one full pipeline pass and exits non-zero when any
// stage failed after retries.
func runBatch(runner *tasks.Runner, pipeline func() []tasks.TaskInterface) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx, pipeline()); err != nil {
		slog.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Pipeline run completed")
}

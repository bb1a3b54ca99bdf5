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

	"github.com/saty-git24/TALENTFLOW-sub000/internal/api"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/ats"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/cleanup"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/config"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/drafts"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/events"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/seeds"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting talentflow",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Initialize draft autosave store; the service runs without it
	draftStore, err := drafts.NewStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Drafts.TTL)
	if err != nil {
		slog.Warn("draft store unavailable, autosave disabled", "error", err)
		draftStore = nil
	}

	// Live pipeline board events
	hub := events.NewHub()

	// Initialize tracker manager
	manager := ats.NewManager(repo, draftStore, hub)

	// Seed jobs and assessments from fixtures
	if cfg.Seeds.Enabled {
		seedJobs(initCtx, manager, cfg.Seeds.Dir)
	}

	// Initialize attempt expiry worker
	cleaner := cleanup.NewCleaner(manager, cfg.Cleanup.Interval)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start expiry worker
	cleaner.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, manager, hub, repo)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if draftStore != nil {
		if err := draftStore.Close(); err != nil {
			slog.Error("draft store close error", "error", err)
		}
	}

	repo.Close()

	slog.Info("talentflow stopped")
}

// seedJobs creates any fixture jobs (and their assessments) that are not in
// the database yet. Existing jobs are left alone, so fixture edits never
// clobber live data.
func seedJobs(ctx context.Context, manager ats.Manager, dir string) {
	loader := seeds.NewLoader()
	if err := loader.LoadFromDir(dir); err != nil {
		slog.Warn("failed to load seed fixtures", "dir", dir, "error", err)
		return
	}

	existing, err := manager.ListJobs(ctx, models.JobFilters{})
	if err != nil {
		slog.Error("failed to list jobs for seeding", "error", err)
		return
	}

	bySlug := make(map[string]*models.Job, len(existing))
	for _, job := range existing {
		bySlug[job.Slug] = job
	}

	for _, seed := range loader.List() {
		if _, ok := bySlug[seed.Slug]; ok {
			continue
		}

		job, err := manager.CreateJob(ctx, models.CreateJobRequest{
			Title:       seed.Title,
			Slug:        seed.Slug,
			Description: seed.Description,
			Tags:        seed.Tags,
		})
		if err != nil {
			slog.Error("failed to seed job", "slug", seed.Slug, "error", err)
			continue
		}

		if seed.Status == models.JobArchived {
			status := string(models.JobArchived)
			if _, err := manager.UpdateJob(ctx, job.ID, models.UpdateJobRequest{Status: &status}); err != nil {
				slog.Error("failed to archive seeded job", "slug", seed.Slug, "error", err)
			}
		}

		if seed.Assessment != nil {
			res, err := manager.SaveAssessment(ctx, job.ID, seed.Assessment)
			if err != nil {
				slog.Error("failed to seed assessment", "slug", seed.Slug, "error", err)
			} else if !res.IsValid {
				slog.Warn("seed assessment failed validation", "slug", seed.Slug, "errors", res.Errors)
			}
		}

		slog.Info("seeded job", "slug", seed.Slug, "id", job.ID)
	}
}

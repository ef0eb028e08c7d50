// cmd/service/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"effort-analyzer/internal/config"
	"effort-analyzer/internal/database"
	"effort-analyzer/internal/effort"
	"effort-analyzer/internal/enrich"
	"effort-analyzer/internal/github"
	"effort-analyzer/internal/job"
	"effort-analyzer/internal/syncer"
)

const githubReadmeChars = github.DefaultReadmeChars

// app holds the long-lived components shared by every command.
type app struct {
	pool     *pgxpool.Pool
	store    *database.SQLStore
	gh       *github.Client
	tracker  *job.Tracker
	pipeline *syncer.Pipeline
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	// Initialize database connection
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := database.NewStore(dbpool)
	if err := store.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	logger.Info("Database connection established")

	ghClient, err := newGithubClient(cfg, logger)
	if err != nil {
		dbpool.Close()
		return nil, err
	}

	var gen enrich.Generator
	if cfg.EnrichmentEnabled() {
		gemini, err := enrich.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			dbpool.Close()
			return nil, err
		}
		gen = gemini
		logger.Info("AI enrichment enabled", "model", cfg.GeminiModel, "timeout", cfg.EnrichmentTimeout.String())
	} else {
		logger.Info("GEMINI_API_KEY not set, AI enrichment disabled")
	}
	guard := enrich.NewGuard(gen, cfg.EnrichmentTimeout, logger)

	return &app{
		pool:     dbpool,
		store:    store,
		gh:       ghClient,
		tracker:  job.NewTracker(store),
		pipeline: syncer.NewPipeline(store, ghClient, effort.Default(), guard, logger),
	}, nil
}

func newGithubClient(cfg *config.Config, logger *slog.Logger) (*github.Client, error) {
	opts := []github.Option{
		github.WithRetryPolicy(github.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
		}),
	}
	if cfg.GithubAPIURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GithubAPIURL))
	}
	client, err := github.NewClient(cfg.GithubToken, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}

// Close releases the database pool.
func (a *app) Close() {
	a.pool.Close()
}

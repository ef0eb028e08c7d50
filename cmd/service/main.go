// cmd/service/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"effort-analyzer/internal/api"
	"effort-analyzer/internal/config"
	"effort-analyzer/internal/repocontext"
	"effort-analyzer/internal/syncer"
	"effort-analyzer/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	var cfg *config.Config

	root := &cobra.Command{
		Use:           "effort-analyzer",
		Short:         "Ingests GitHub commit history and scores developer effort",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			setLogLevel(cfg.LogLevel, logLevel)
			logger.Info("Configuration loaded successfully")
			return nil
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API, the ingestion workers and the scheduler",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), cfg, logger)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cfg, logger)
			},
		},
		newIngestCmd(&cfg, logger),
	)
	return root
}

func newIngestCmd(cfg **config.Config, logger *slog.Logger) *cobra.Command {
	var repo string
	var maxCommits int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion job synchronously and print its final state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ingest(cmd.Context(), *cfg, logger, repo, maxCommits)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "repository in owner/name form")
	cmd.Flags().IntVar(&maxCommits, "max-commits", 0, "number of recent commits to fetch (default DEFAULT_MAX_COMMITS)")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := migrate(cfg, logger); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	dispatcher := syncer.NewDispatcher(a.pipeline, a.tracker, cfg.WorkerCount, cfg.QueueSize, logger)
	trigger := syncer.NewTrigger(a.tracker, dispatcher, cfg.DefaultMaxCommits, logger)
	scheduler, err := syncer.NewScheduler(trigger, logger, cfg.ReposToSync, cfg.SyncSchedule, cfg.DefaultMaxCommits)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	contexts := repocontext.NewService(a.store, a.gh, githubReadmeChars, logger)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(a.store, api.Services{
			Ingester: trigger,
			Jobs:     a.tracker,
			Contexts: contexts,
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		scheduler.Start(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received. Draining.")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func migrate(cfg *config.Config, logger *slog.Logger) error {
	if err := migrations.Up(cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	version, dirty, err := migrations.Version(cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Database migrations applied successfully", "version", version, "dirty", dirty)
	return nil
}

func ingest(parent context.Context, cfg *config.Config, logger *slog.Logger, repo string, maxCommits int) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := migrate(cfg, logger); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var req syncer.Request
	trigger := syncer.NewTrigger(a.tracker, inlineSubmitter{req: &req}, cfg.DefaultMaxCommits, logger)
	queued, err := trigger.StartIngestion(ctx, repo, maxCommits)
	if err != nil {
		return err
	}

	runErr := a.pipeline.Run(ctx, req)

	view, err := a.tracker.Get(context.WithoutCancel(ctx), queued.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return runErr
}

// inlineSubmitter captures the request so the caller can run it in the foreground.
type inlineSubmitter struct {
	req *syncer.Request
}

func (s inlineSubmitter) Submit(req syncer.Request) error {
	*s.req = req
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}

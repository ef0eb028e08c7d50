// internal/syncer/scheduler.go
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"effort-analyzer/internal/job"
)

// cronParser accepts 5-field expressions and descriptors such as "@every 1h".
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Ingester starts an ingestion job.
type Ingester interface {
	StartIngestion(ctx context.Context, repoName string, maxCommits int) (job.View, error)
}

// Scheduler periodically re-syncs a fixed list of repositories.
type Scheduler struct {
	ingester    Ingester
	logger      *slog.Logger
	reposToSync []RepoIdentifier
	schedule    cron.Schedule
	expr        string
	maxCommits  int
}

// NewScheduler creates a Scheduler. maxCommits of zero means the trigger default.
func NewScheduler(ingester Ingester, logger *slog.Logger, repos []string, expr string, maxCommits int) (*Scheduler, error) {
	parsedRepos, err := parseRepoIdentifiers(repos)
	if err != nil {
		return nil, err
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", expr, err)
	}

	return &Scheduler{
		ingester:    ingester,
		logger:      logger,
		reposToSync: parsedRepos,
		schedule:    schedule,
		expr:        expr,
		maxCommits:  maxCommits,
	}, nil
}

// Start runs an initial sync cycle and then one per schedule tick until ctx is done.
// It returns immediately when no repositories are configured.
func (s *Scheduler) Start(ctx context.Context) {
	if len(s.reposToSync) == 0 {
		return
	}
	s.logger.Info("Starting scheduler", "schedule", s.expr, "repos", len(s.reposToSync))

	s.runSyncCycle(ctx) // Initial sync

	timer := time.NewTimer(time.Until(s.schedule.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			s.runSyncCycle(ctx)
			timer.Reset(time.Until(s.schedule.Next(time.Now())))
		case <-ctx.Done():
			s.logger.Info("Scheduler shutting down", "reason", ctx.Err())
			return
		}
	}
}

// runSyncCycle queues one ingestion job per configured repository.
func (s *Scheduler) runSyncCycle(ctx context.Context) {
	s.logger.Info("Starting new sync cycle")
	for _, repo := range s.reposToSync {
		if ctx.Err() != nil {
			return
		}
		view, err := s.ingester.StartIngestion(ctx, repo.String(), s.maxCommits)
		if err != nil {
			s.logger.Error("Failed to queue repository sync", "owner", repo.Owner, "repo", repo.Name, "error", err)
			continue
		}
		s.logger.Debug("Queued repository sync", "owner", repo.Owner, "repo", repo.Name, "job_id", view.ID)
	}
}

// internal/syncer/syncer.go
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"effort-analyzer/internal/database"
	"effort-analyzer/internal/effort"
	"effort-analyzer/internal/job"
	"effort-analyzer/internal/model"
	"effort-analyzer/internal/resolver"
)

// Progress stages reported while a job runs.
const (
	StageResolving  = "resolving_repository"
	StageFetching   = "fetching_commits"
	StageProcessing = "processing_commits"
)

// GitHub is the subset of the API client the pipeline needs.
type GitHub interface {
	resolver.RepositoryGetter
	ListCommits(ctx context.Context, fullName, branch string, limit int, since *time.Time) ([]model.CommitSummary, error)
	GetCommitStats(ctx context.Context, fullName, sha string) (model.CommitStats, error)
}

// Enricher produces a free-text summary of a commit message. It never fails.
type Enricher interface {
	Summarize(ctx context.Context, message string) string
}

// Request asks for one ingestion run of an already created job.
type Request struct {
	JobID      int64
	RepoName   string
	MaxCommits int
}

// Progress is the job progress snapshot.
type Progress struct {
	Stage            string `json:"stage"`
	ProcessedCommits int    `json:"processed_commits,omitempty"`
	TotalCommits     int    `json:"total_commits,omitempty"`
}

// Result is stored on the job when a run succeeds.
type Result struct {
	TotalCommitsProcessed int `json:"total_commits_processed"`
	InsertedCommits       int `json:"inserted_commits"`
	SkippedCommits        int `json:"skipped_commits"`
}

// Pipeline ingests the recent commits of one repository per job.
type Pipeline struct {
	store    database.Store
	tracker  *job.Tracker
	resolver *resolver.Resolver
	gh       GitHub
	scorer   effort.Scorer
	enricher Enricher
	logger   *slog.Logger
	now      func() time.Time
}

// NewPipeline creates a Pipeline. Every statement goes through store, so each
// job write is committed as soon as it is issued.
func NewPipeline(store database.Store, gh GitHub, scorer effort.Scorer, enricher Enricher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:    store,
		tracker:  job.NewTracker(store),
		resolver: resolver.New(store, gh, logger),
		gh:       gh,
		scorer:   scorer,
		enricher: enricher,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one ingestion job from queued to a terminal state.
// A returned error has already been recorded on the job, except when the job
// could not be started at all.
func (p *Pipeline) Run(ctx context.Context, req Request) error {
	logger := p.logger.With("job_id", req.JobID, "repo", req.RepoName, "run_id", uuid.NewString())
	startedAt := p.now().UTC()

	if err := p.tracker.Start(ctx, req.JobID, Progress{Stage: StageResolving}); err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	logger.Info("Starting ingestion", "max_commits", req.MaxCommits)

	res, err := p.ingest(ctx, logger, req, startedAt)
	if err != nil {
		// Record the failure even if ctx was cancelled by shutdown.
		if failErr := p.tracker.Fail(context.WithoutCancel(ctx), req.JobID, err); failErr != nil {
			logger.Error("Failed to record job failure", "error", failErr)
		}
		return err
	}

	logger.Info("Ingestion finished",
		"processed", res.TotalCommitsProcessed,
		"inserted", res.InsertedCommits,
		"skipped", res.SkippedCommits,
	)
	return nil
}

func (p *Pipeline) ingest(ctx context.Context, logger *slog.Logger, req Request, startedAt time.Time) (Result, error) {
	repo, err := p.resolver.Resolve(ctx, req.RepoName)
	if err != nil {
		return Result{}, fmt.Errorf("resolving repository: %w", err)
	}
	logger = logger.With("repo_id", repo.ID, "full_name", repo.FullName)

	if err := p.tracker.Progress(ctx, req.JobID, Progress{Stage: StageFetching}); err != nil {
		return Result{}, err
	}

	var since *time.Time
	if repo.LastSyncedAt.Valid {
		t := repo.LastSyncedAt.Time
		since = &t
		logger.Info("Fetching commits since", "timestamp", t.Format(time.RFC3339))
	} else {
		logger.Info("No previous sync found, fetching latest commits")
	}

	commits, err := p.gh.ListCommits(ctx, repo.FullName, repo.DefaultBranch, req.MaxCommits, since)
	if err != nil {
		return Result{}, fmt.Errorf("fetching commits: %w", err)
	}
	logger.Info("Found commits", "count", len(commits))

	var res Result
	for _, c := range commits {
		inserted, err := p.processCommit(ctx, logger.With("sha", c.SHA), repo, c)
		if err != nil {
			return Result{}, fmt.Errorf("processing commit %s: %w", c.SHA, err)
		}
		res.TotalCommitsProcessed++
		if inserted {
			res.InsertedCommits++
		} else {
			res.SkippedCommits++
		}

		if err := p.tracker.Progress(ctx, req.JobID, Progress{
			Stage:            StageProcessing,
			ProcessedCommits: res.TotalCommitsProcessed,
			TotalCommits:     len(commits),
		}); err != nil {
			return Result{}, err
		}
	}

	err = p.store.ExecTx(ctx, func(q database.Querier) error {
		if _, err := q.UpdateRepositoryLastSyncedAt(ctx, database.UpdateRepositoryLastSyncedAtParams{
			ID:           repo.ID,
			LastSyncedAt: pgtype.Timestamptz{Time: startedAt, Valid: true},
		}); err != nil {
			return fmt.Errorf("updating sync cursor: %w", err)
		}
		return job.NewTracker(q).Succeed(ctx, req.JobID, res)
	})
	if err != nil {
		return Result{}, fmt.Errorf("finishing job: %w", err)
	}
	return res, nil
}

// processCommit stores one commit. It reports false when the commit was already stored.
func (p *Pipeline) processCommit(ctx context.Context, logger *slog.Logger, repo database.Repository, c model.CommitSummary) (bool, error) {
	dev, err := p.findOrCreateDeveloper(ctx, c.AuthorLogin)
	if err != nil {
		return false, err
	}

	exists, err := p.store.CommitExists(ctx, database.CommitExistsParams{RepositoryID: repo.ID, Sha: c.SHA})
	if err != nil {
		return false, fmt.Errorf("checking for existing commit: %w", err)
	}
	if exists {
		logger.Debug("Commit already stored, skipping")
		return false, nil
	}

	stats, err := p.gh.GetCommitStats(ctx, repo.FullName, c.SHA)
	if err != nil {
		return false, fmt.Errorf("fetching commit stats: %w", err)
	}
	score := p.scorer.Score(stats.Additions, stats.Deletions)
	summary := p.enricher.Summarize(ctx, c.Message)

	_, err = p.store.CreateCommit(ctx, database.CreateCommitParams{
		RepositoryID:  repo.ID,
		DeveloperID:   dev.ID,
		Sha:           c.SHA,
		Message:       c.Message,
		CommittedAt:   pgtype.Timestamptz{Time: p.parseCommittedAt(logger, c.CommittedAt), Valid: true},
		LinesAdded:    clampInt32(stats.Additions),
		LinesDeleted:  clampInt32(stats.Deletions),
		EffortScore:   score,
		EffortVersion: p.scorer.Version(),
		AiSummary:     pgtype.Text{String: summary, Valid: true},
	})
	if database.IsNotFound(err) || database.IsUniqueViolation(err) {
		logger.Debug("Commit inserted concurrently by another run, skipping")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inserting commit: %w", err)
	}

	logger.Debug("Stored commit", "additions", stats.Additions, "deletions", stats.Deletions, "effort", score)
	return true, nil
}

// findOrCreateDeveloper returns the developer row for login, creating it on first sight.
func (p *Pipeline) findOrCreateDeveloper(ctx context.Context, login string) (database.Developer, error) {
	dev, err := p.store.GetDeveloperByLogin(ctx, login)
	if err == nil {
		return dev, nil
	}
	if !database.IsNotFound(err) {
		return database.Developer{}, fmt.Errorf("looking up developer %s: %w", login, err)
	}

	dev, err = p.store.CreateDeveloper(ctx, login)
	if err == nil {
		return dev, nil
	}
	if !database.IsNotFound(err) && !database.IsUniqueViolation(err) {
		return database.Developer{}, fmt.Errorf("creating developer %s: %w", login, err)
	}

	dev, err = p.store.GetDeveloperByLogin(ctx, login)
	if err != nil {
		return database.Developer{}, fmt.Errorf("re-reading developer %s: %w", login, err)
	}
	return dev, nil
}

// committedAtLayouts are tried in order. Timestamps without an offset are read as UTC.
var committedAtLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// parseCommittedAt parses an ISO-8601 timestamp, falling back to the current time.
func (p *Pipeline) parseCommittedAt(logger *slog.Logger, raw string) time.Time {
	var err error
	for _, layout := range committedAtLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t
		}
	}
	logger.Warn("Unparseable commit timestamp, using current time", "value", raw, "error", err)
	return p.now().UTC()
}

// clampInt32 saturates n to the range of the INTEGER line-count columns.
func clampInt32(n int) int32 {
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	}
	return int32(n)
}

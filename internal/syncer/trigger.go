// internal/syncer/trigger.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	custom_errors "effort-analyzer/internal/errors"
	"effort-analyzer/internal/job"
)

const (
	// DefaultMaxCommits is used when a request does not say how many commits to fetch.
	DefaultMaxCommits = 100
	// MaxCommitsLimit is the largest accepted max_commits.
	MaxCommitsLimit = 1000
)

// ErrInvalidMaxCommits is returned for a max_commits outside [1, MaxCommitsLimit].
var ErrInvalidMaxCommits = errors.New("max_commits must be between 1 and 1000")

// Input is the job input stored for every ingestion request.
type Input struct {
	RepoFullName string `json:"repo_full_name"`
	MaxCommits   int    `json:"max_commits"`
}

// Submitter accepts requests for asynchronous execution.
type Submitter interface {
	Submit(req Request) error
}

// Trigger creates ingestion jobs and hands them to the dispatcher.
type Trigger struct {
	tracker    *job.Tracker
	submitter  Submitter
	defaultMax int
	logger     *slog.Logger
}

// NewTrigger creates a Trigger. defaultMax replaces a zero max_commits.
func NewTrigger(tracker *job.Tracker, submitter Submitter, defaultMax int, logger *slog.Logger) *Trigger {
	if defaultMax < 1 || defaultMax > MaxCommitsLimit {
		defaultMax = DefaultMaxCommits
	}
	return &Trigger{tracker: tracker, submitter: submitter, defaultMax: defaultMax, logger: logger}
}

// StartIngestion validates the request, records a queued job and enqueues it.
// It returns as soon as the job is queued. A zero maxCommits means the default.
func (t *Trigger) StartIngestion(ctx context.Context, repoName string, maxCommits int) (job.View, error) {
	id, err := parseRepoIdentifier(repoName)
	if err != nil {
		return job.View{}, err
	}
	if maxCommits == 0 {
		maxCommits = t.defaultMax
	}
	if maxCommits < 1 || maxCommits > MaxCommitsLimit {
		return job.View{}, fmt.Errorf("%w: got %d", ErrInvalidMaxCommits, maxCommits)
	}

	view, err := t.tracker.Create(ctx, job.TypeAnalyzeRepo, Input{RepoFullName: id.String(), MaxCommits: maxCommits})
	if err != nil {
		return job.View{}, err
	}
	logger := t.logger.With("job_id", view.ID, "repo", id.String())

	err = t.submitter.Submit(Request{JobID: view.ID, RepoName: id.String(), MaxCommits: maxCommits})
	if err == nil {
		logger.Info("Ingestion job queued", "max_commits", maxCommits)
		return view, nil
	}

	logger.Warn("Ingestion job rejected", "error", err)
	failUnstarted(ctx, t.tracker, logger, view.ID, err)
	return view, fmt.Errorf("job %d not queued: %w", view.ID, err)
}

// failUnstarted drives a queued job that will never run through running to failed.
func failUnstarted(ctx context.Context, tracker *job.Tracker, logger *slog.Logger, id int64, cause error) {
	if err := tracker.Start(ctx, id, Progress{Stage: StageResolving}); err != nil {
		logger.Error("Failed to mark rejected job as running", "job_id", id, "error", err)
		return
	}
	if err := tracker.Fail(ctx, id, cause); err != nil {
		logger.Error("Failed to mark rejected job as failed", "job_id", id, "error", err)
	}
}

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

func (r RepoIdentifier) String() string {
	return r.Owner + "/" + r.Name
}

func parseRepoIdentifier(repo string) (RepoIdentifier, error) {
	parts := strings.Split(strings.TrimSpace(repo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoIdentifier{}, &custom_errors.ErrInvalidRepoFormat{Repo: repo}
	}
	return RepoIdentifier{Owner: parts[0], Name: parts[1]}, nil
}

func parseRepoIdentifiers(repos []string) ([]RepoIdentifier, error) {
	var identifiers []RepoIdentifier
	for _, r := range repos {
		id, err := parseRepoIdentifier(r)
		if err != nil {
			return nil, err
		}
		identifiers = append(identifiers, id)
	}
	return identifiers, nil
}

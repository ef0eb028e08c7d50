// internal/resolver/resolver.go
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"effort-analyzer/internal/database"
	"effort-analyzer/internal/model"
)

// RepositoryGetter returns the canonical descriptor of a repository.
type RepositoryGetter interface {
	GetRepository(ctx context.Context, name string) (*model.RepositoryDescriptor, error)
}

// Resolver maps a user-supplied repository name onto its single database row.
type Resolver struct {
	q      database.Querier
	gh     RepositoryGetter
	logger *slog.Logger
}

// New creates a Resolver.
func New(q database.Querier, gh RepositoryGetter, logger *slog.Logger) *Resolver {
	return &Resolver{q: q, gh: gh, logger: logger}
}

// Resolve returns the repository row for name, creating it on first sight.
// The returned row is always keyed by the canonical full name, so aliases
// and case variants converge onto one row.
func (r *Resolver) Resolve(ctx context.Context, name string) (database.Repository, error) {
	repo, err := r.q.GetRepositoryByFullName(ctx, name)
	if err == nil {
		return repo, nil
	}
	if !database.IsNotFound(err) {
		return database.Repository{}, fmt.Errorf("failed to look up repository %s: %w", name, err)
	}

	desc, err := r.gh.GetRepository(ctx, name)
	if err != nil {
		return database.Repository{}, fmt.Errorf("failed to fetch repository %s: %w", name, err)
	}
	logger := r.logger.With("repo", desc.FullName)

	if desc.FullName != name {
		repo, err = r.q.GetRepositoryByFullName(ctx, desc.FullName)
		if err == nil {
			logger.Debug("Resolved alias to existing repository", "requested", name)
			return repo, nil
		}
		if !database.IsNotFound(err) {
			return database.Repository{}, fmt.Errorf("failed to look up repository %s: %w", desc.FullName, err)
		}
	}

	repo, err = r.q.CreateRepository(ctx, database.CreateRepositoryParams{
		FullName:      desc.FullName,
		DefaultBranch: desc.DefaultBranch,
	})
	if err == nil {
		logger.Info("Repository not found in DB, created new entry", "repo_id", repo.ID)
		return repo, nil
	}
	if !database.IsNotFound(err) && !database.IsUniqueViolation(err) {
		return database.Repository{}, fmt.Errorf("failed to create repository %s: %w", desc.FullName, err)
	}

	// Another writer created it between our lookup and insert.
	repo, err = r.q.GetRepositoryByFullName(ctx, desc.FullName)
	if err != nil {
		return database.Repository{}, fmt.Errorf("failed to re-read repository %s: %w", desc.FullName, err)
	}
	return repo, nil
}

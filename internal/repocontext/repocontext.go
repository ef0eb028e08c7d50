// internal/repocontext/repocontext.go
package repocontext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"effort-analyzer/internal/database"
	"effort-analyzer/internal/model"
	"effort-analyzer/internal/resolver"
)

// ErrNotFound is returned by Get when no context has been stored for a repository.
var ErrNotFound = errors.New("repository context not found")

// Source is the subset of the API client used to describe a repository.
type Source interface {
	GetRepository(ctx context.Context, name string) (*model.RepositoryDescriptor, error)
	GetReadme(ctx context.Context, fullName string, maxChars int) (string, bool)
	ListLanguages(ctx context.Context, fullName string) (map[string]int, error)
}

// Context is the stored descriptive snapshot of a repository.
type Context struct {
	FullName    string         `json:"full_name"`
	Description *string        `json:"description"`
	Topics      []string       `json:"topics"`
	Languages   map[string]int `json:"languages"`
	Readme      *string        `json:"readme"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Service fetches and stores repository context.
type Service struct {
	q           database.Querier
	resolver    *resolver.Resolver
	src         Source
	readmeChars int
	logger      *slog.Logger
}

// NewService creates a Service. README text is truncated to readmeChars runes.
func NewService(q database.Querier, src Source, readmeChars int, logger *slog.Logger) *Service {
	return &Service{
		q:           q,
		resolver:    resolver.New(q, src, logger),
		src:         src,
		readmeChars: readmeChars,
		logger:      logger,
	}
}

// FetchAndStore refreshes the context of a repository from the API and stores it.
func (s *Service) FetchAndStore(ctx context.Context, name string) (Context, error) {
	repo, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return Context{}, err
	}
	logger := s.logger.With("repo", repo.FullName, "repo_id", repo.ID)

	desc, err := s.src.GetRepository(ctx, repo.FullName)
	if err != nil {
		return Context{}, fmt.Errorf("failed to fetch repository %s: %w", repo.FullName, err)
	}
	langs, err := s.src.ListLanguages(ctx, repo.FullName)
	if err != nil {
		return Context{}, fmt.Errorf("failed to fetch languages of %s: %w", repo.FullName, err)
	}
	readme, hasReadme := s.src.GetReadme(ctx, repo.FullName, s.readmeChars)

	topics := desc.Topics
	if topics == nil {
		topics = []string{}
	}
	if langs == nil {
		langs = map[string]int{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return Context{}, fmt.Errorf("failed to encode topics: %w", err)
	}
	langsJSON, err := json.Marshal(langs)
	if err != nil {
		return Context{}, fmt.Errorf("failed to encode languages: %w", err)
	}

	params := database.UpsertRepoContextParams{
		RepositoryID: repo.ID,
		Topics:       topicsJSON,
		Languages:    langsJSON,
		ReadmeText:   pgtype.Text{String: readme, Valid: hasReadme},
	}
	if desc.Description != nil {
		params.Description = pgtype.Text{String: *desc.Description, Valid: true}
	}

	row, err := s.q.UpsertRepoContext(ctx, params)
	if err != nil {
		return Context{}, fmt.Errorf("failed to store repository context: %w", err)
	}
	logger.Info("Stored repository context", "languages", len(langs), "has_readme", hasReadme)
	return toContext(repo.FullName, row)
}

// Get returns the stored context of a repository, or ErrNotFound.
func (s *Service) Get(ctx context.Context, name string) (Context, error) {
	repo, err := s.q.GetRepositoryByFullName(ctx, name)
	if database.IsNotFound(err) {
		return Context{}, ErrNotFound
	}
	if err != nil {
		return Context{}, fmt.Errorf("failed to look up repository %s: %w", name, err)
	}

	row, err := s.q.GetRepoContextByRepositoryID(ctx, repo.ID)
	if database.IsNotFound(err) {
		return Context{}, ErrNotFound
	}
	if err != nil {
		return Context{}, fmt.Errorf("failed to get repository context: %w", err)
	}
	return toContext(repo.FullName, row)
}

func toContext(fullName string, row database.RepoContext) (Context, error) {
	c := Context{
		FullName:  fullName,
		Topics:    []string{},
		Languages: map[string]int{},
		UpdatedAt: row.UpdatedAt.Time,
	}
	if row.Description.Valid {
		c.Description = &row.Description.String
	}
	if row.ReadmeText.Valid {
		c.Readme = &row.ReadmeText.String
	}
	if len(row.Topics) > 0 {
		if err := json.Unmarshal(row.Topics, &c.Topics); err != nil {
			return Context{}, fmt.Errorf("failed to decode topics: %w", err)
		}
	}
	if len(row.Languages) > 0 {
		if err := json.Unmarshal(row.Languages, &c.Languages); err != nil {
			return Context{}, fmt.Errorf("failed to decode languages: %w", err)
		}
	}
	return c, nil
}

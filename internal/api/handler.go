// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"effort-analyzer/internal/database"
	"effort-analyzer/internal/job"
	"effort-analyzer/internal/repocontext"
	"effort-analyzer/internal/syncer"
)

// Ingester starts asynchronous ingestion jobs.
type Ingester interface {
	StartIngestion(ctx context.Context, repoName string, maxCommits int) (job.View, error)
}

// JobReader returns the current state of a job.
type JobReader interface {
	Get(ctx context.Context, id int64) (job.View, error)
}

// ContextService stores and returns repository context.
type ContextService interface {
	FetchAndStore(ctx context.Context, name string) (repocontext.Context, error)
	Get(ctx context.Context, name string) (repocontext.Context, error)
}

// Services groups the application components served over HTTP.
type Services struct {
	Ingester Ingester
	Jobs     JobReader
	Contexts ContextService
}

// Handler is the container for API dependencies.
type Handler struct {
	db       database.Querier
	ingester Ingester
	jobs     JobReader
	contexts ContextService
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, svc Services, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:       db,
		ingester: svc.Ingester,
		jobs:     svc.Jobs,
		contexts: svc.Contexts,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze-repo", h.analyzeRepo)
		r.Get("/jobs/{id}", h.getJob)
		r.Route("/repos/{owner}/{name}", func(r chi.Router) {
			r.Get("/commits", h.getCommits)
			r.Get("/stats/top-contributors", h.getTopContributors)
			r.Post("/context", h.refreshContext)
			r.Get("/context", h.getContext)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	RepoFullName string `json:"repo_full_name"`
	MaxCommits   int    `json:"max_commits"`
}

type analyzeResponse struct {
	JobID  int64      `json:"job_id"`
	Status job.Status `json:"status"`
}

// analyzeRepo queues an ingestion job and returns without waiting for it.
// POST /v1/analyze-repo
func (h *Handler) analyzeRepo(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	view, err := h.ingester.StartIngestion(r.Context(), req.RepoFullName, req.MaxCommits)
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusAccepted, analyzeResponse{JobID: view.ID, Status: view.Status})
	case errors.Is(err, syncer.ErrInvalidMaxCommits):
		respondWithError(w, http.StatusBadRequest, syncer.ErrInvalidMaxCommits.Error())
	case errors.Is(err, syncer.ErrQueueFull), errors.Is(err, syncer.ErrShuttingDown):
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":  "Ingestion is unavailable, try again later",
			"job_id": view.ID,
		})
	default:
		if code, msg, ok := upstreamStatus(err); ok {
			respondWithError(w, code, msg)
			return
		}
		h.logger.Error("Failed to start ingestion", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// getJob returns the status, progress and outcome of a job.
// GET /v1/jobs/{id}
func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid job id")
		return
	}

	view, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			respondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("Failed to get job", "job_id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// getCommits handles the request to retrieve commits for a repository.
// GET /v1/repos/{owner}/{name}/commits?limit=N&offset=M
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", 50, 1, 100)
	if !ok {
		return
	}
	offset, ok := intParam(w, r, "offset", 0, 0, 1<<30)
	if !ok {
		return
	}

	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	commits, err := h.db.ListCommitsByRepository(r.Context(), database.ListCommitsByRepositoryParams{
		RepositoryID: repo.ID,
		Limit:        int32(limit),
		Offset:       int32(offset),
	})
	if err != nil {
		h.logger.Error("Failed to get commits", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if commits == nil {
		commits = []database.ListCommitsByRepositoryRow{}
	}

	respondWithJSON(w, http.StatusOK, commits)
}

// getTopContributors ranks developers of a repository by total effort.
// GET /v1/repos/{owner}/{name}/stats/top-contributors?limit=N
func (h *Handler) getTopContributors(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", 10, 1, 100)
	if !ok {
		return
	}

	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	contributors, err := h.db.GetTopContributorsByEffort(r.Context(), database.GetTopContributorsByEffortParams{
		RepositoryID: repo.ID,
		Limit:        int32(limit),
	})
	if err != nil {
		h.logger.Error("Failed to get top contributors", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if contributors == nil {
		contributors = []database.GetTopContributorsByEffortRow{}
	}

	respondWithJSON(w, http.StatusOK, contributors)
}

// refreshContext fetches repository context from GitHub and stores it.
// POST /v1/repos/{owner}/{name}/context
func (h *Handler) refreshContext(w http.ResponseWriter, r *http.Request) {
	c, err := h.contexts.FetchAndStore(r.Context(), repoName(r))
	if err != nil {
		if code, msg, ok := upstreamStatus(err); ok {
			respondWithError(w, code, msg)
			return
		}
		h.logger.Error("Failed to refresh repository context", "repo", repoName(r), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

// getContext returns the stored repository context.
// GET /v1/repos/{owner}/{name}/context
func (h *Handler) getContext(w http.ResponseWriter, r *http.Request) {
	c, err := h.contexts.Get(r.Context(), repoName(r))
	if err != nil {
		if errors.Is(err, repocontext.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Repository context not found")
			return
		}
		h.logger.Error("Failed to get repository context", "repo", repoName(r), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) lookupRepository(w http.ResponseWriter, r *http.Request) (database.Repository, bool) {
	repo, err := h.db.GetRepositoryByFullName(r.Context(), repoName(r))
	if err != nil {
		if database.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, "Repository not found")
			return database.Repository{}, false
		}
		h.logger.Error("Failed to get repository", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return database.Repository{}, false
	}
	return repo, true
}

func repoName(r *http.Request) string {
	return chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")
}

// intParam reads an optional integer query parameter bounded by [lo, hi].
// On invalid input it writes a 400 response and returns false.
func intParam(w http.ResponseWriter, r *http.Request, name string, def, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		respondWithError(w, http.StatusBadRequest,
			"Invalid '"+name+"' parameter. Must be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi)+".")
		return 0, false
	}
	return v, true
}

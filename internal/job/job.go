// internal/job/job.go
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"effort-analyzer/internal/database"
)

// TypeAnalyzeRepo is the job type of a repository ingestion run.
const TypeAnalyzeRepo = "analyze_repo"

// ErrJobNotFound is returned when no job has the requested id.
var ErrJobNotFound = errors.New("job not found")

// TransitionError is returned when a job is not in a state that allows the requested move.
type TransitionError struct {
	JobID int64
	From  Status
	To    Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("job %d cannot move from %s to %s", e.JobID, e.From, e.To)
}

// View is the externally visible state of a job.
type View struct {
	ID       int64           `json:"job_id"`
	Type     string          `json:"job_type"`
	Status   Status          `json:"status"`
	Progress json.RawMessage `json:"progress"`
	Result   json.RawMessage `json:"result"`
	Error    *string         `json:"error"`
}

// Tracker persists job state. Each call is a separate statement, so with a
// pool-backed Querier every write is committed, and visible to pollers, on its own.
type Tracker struct {
	q database.Querier
}

// NewTracker returns a Tracker writing through q.
func NewTracker(q database.Querier) *Tracker {
	return &Tracker{q: q}
}

// Create inserts a new queued job. input is stored as JSON and never interpreted.
func (t *Tracker) Create(ctx context.Context, jobType string, input any) (View, error) {
	raw, err := marshal(input)
	if err != nil {
		return View{}, fmt.Errorf("failed to encode job input: %w", err)
	}
	if raw == nil {
		raw = []byte("{}")
	}
	j, err := t.q.CreateJob(ctx, database.CreateJobParams{
		JobType: jobType,
		Status:  string(StatusQueued),
		Input:   raw,
	})
	if err != nil {
		return View{}, fmt.Errorf("failed to create job: %w", err)
	}
	return toView(j), nil
}

// Start moves a queued job to running with an initial progress snapshot.
func (t *Tracker) Start(ctx context.Context, id int64, progress any) error {
	return t.transition(ctx, id, StatusQueued, StatusRunning, progress, nil, nil)
}

// Progress overwrites the progress snapshot of a running job.
func (t *Tracker) Progress(ctx context.Context, id int64, progress any) error {
	return t.transition(ctx, id, StatusRunning, StatusRunning, progress, nil, nil)
}

// Succeed moves a running job to succeeded with its result payload.
func (t *Tracker) Succeed(ctx context.Context, id int64, result any) error {
	return t.transition(ctx, id, StatusRunning, StatusSucceeded, nil, result, nil)
}

// Fail moves a running job to failed, recording cause as the diagnostic.
func (t *Tracker) Fail(ctx context.Context, id int64, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return t.transition(ctx, id, StatusRunning, StatusFailed, nil, nil, &msg)
}

// Get returns the current state of a job, or ErrJobNotFound.
func (t *Tracker) Get(ctx context.Context, id int64) (View, error) {
	j, err := t.q.GetJob(ctx, id)
	if database.IsNotFound(err) {
		return View{}, ErrJobNotFound
	}
	if err != nil {
		return View{}, fmt.Errorf("failed to get job: %w", err)
	}
	return toView(j), nil
}

func (t *Tracker) transition(ctx context.Context, id int64, from, to Status, progress, result any, errMsg *string) error {
	if !CanTransition(from, to) {
		return &TransitionError{JobID: id, From: from, To: to}
	}

	params := database.TransitionJobParams{
		ID:           id,
		Status:       string(to),
		FromStatuses: []string{string(from)},
	}
	var err error
	if params.Progress, err = marshal(progress); err != nil {
		return fmt.Errorf("failed to encode job progress: %w", err)
	}
	if params.Result, err = marshal(result); err != nil {
		return fmt.Errorf("failed to encode job result: %w", err)
	}
	if errMsg != nil {
		params.Error = pgtype.Text{String: *errMsg, Valid: true}
	}

	_, err = t.q.TransitionJob(ctx, params)
	if err == nil {
		return nil
	}
	if !database.IsNotFound(err) {
		return fmt.Errorf("failed to move job %d to %s: %w", id, to, err)
	}

	// The guarded update matched nothing: either the job is gone or it is in another state.
	current, getErr := t.Get(ctx, id)
	if getErr != nil {
		return getErr
	}
	return &TransitionError{JobID: id, From: current.Status, To: to}
}

func marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

func toView(j database.Job) View {
	v := View{
		ID:       j.ID,
		Type:     j.JobType,
		Status:   Status(j.Status),
		Progress: j.Progress,
		Result:   j.Result,
	}
	if len(v.Progress) == 0 {
		v.Progress = json.RawMessage("{}")
	}
	if j.Error.Valid {
		msg := j.Error.String
		v.Error = &msg
	}
	return v
}

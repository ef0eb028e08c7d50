// internal/syncer/syncer_test.go
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"effort-analyzer/internal/database"
	"effort-analyzer/internal/database/dbtest"
	"effort-analyzer/internal/effort"
	"effort-analyzer/internal/enrich"
	"effort-analyzer/internal/model"
)

// MockGitHub is a mock of the GitHub interface.
type MockGitHub struct {
	mock.Mock
}

func (m *MockGitHub) GetRepository(ctx context.Context, name string) (*model.RepositoryDescriptor, error) {
	args := m.Called(ctx, name)
	desc, _ := args.Get(0).(*model.RepositoryDescriptor)
	return desc, args.Error(1)
}

func (m *MockGitHub) ListCommits(ctx context.Context, fullName, branch string, limit int, since *time.Time) ([]model.CommitSummary, error) {
	args := m.Called(ctx, fullName, branch, limit, since)
	commits, _ := args.Get(0).([]model.CommitSummary)
	return commits, args.Error(1)
}

func (m *MockGitHub) GetCommitStats(ctx context.Context, fullName, sha string) (model.CommitStats, error) {
	args := m.Called(ctx, fullName, sha)
	return args.Get(0).(model.CommitStats), args.Error(1)
}

type staticEnricher string

func (s staticEnricher) Summarize(context.Context, string) string { return string(s) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// recordTransitions accepts every job transition and records its parameters in order.
func recordTransitions(store *dbtest.MockStore) *[]database.TransitionJobParams {
	var got []database.TransitionJobParams
	store.On("TransitionJob", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = append(got, args.Get(1).(database.TransitionJobParams))
	}).Return(database.Job{}, nil)
	return &got
}

// recordCommits accepts every commit insert and records its parameters in order.
func recordCommits(store *dbtest.MockStore) *[]database.CreateCommitParams {
	var got []database.CreateCommitParams
	store.On("CreateCommit", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = append(got, args.Get(1).(database.CreateCommitParams))
	}).Return(database.Commit{}, nil)
	return &got
}

var (
	testRepo = database.Repository{ID: 1, FullName: "o/r", DefaultBranch: "main"}
	fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

func newTestPipeline(store *dbtest.MockStore, gh *MockGitHub, enricher Enricher) *Pipeline {
	p := NewPipeline(store, gh, effort.Default(), enricher, testLogger())
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestPipeline_Run_FirstSync(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)
	transitions := recordTransitions(store)
	inserted := recordCommits(store)

	store.On("GetRepositoryByFullName", mock.Anything, "o/r").Return(testRepo, nil).Once()
	gh.On("ListCommits", mock.Anything, "o/r", "main", 2, (*time.Time)(nil)).Return([]model.CommitSummary{
		{SHA: "a1", AuthorLogin: "alice", Message: "add feature", CommittedAt: "2024-05-01T10:00:00Z"},
		{SHA: "b2", AuthorLogin: "bob", Message: "empty", CommittedAt: "2024-04-30T09:00:00+02:00"},
	}, nil).Once()

	store.On("GetDeveloperByLogin", mock.Anything, "alice").Return(database.Developer{ID: 10, Login: "alice"}, nil).Once()
	store.On("GetDeveloperByLogin", mock.Anything, "bob").Return(database.Developer{}, pgx.ErrNoRows).Once()
	store.On("CreateDeveloper", mock.Anything, "bob").Return(database.Developer{ID: 11, Login: "bob"}, nil).Once()

	store.On("CommitExists", mock.Anything, mock.Anything).Return(false, nil).Twice()
	gh.On("GetCommitStats", mock.Anything, "o/r", "a1").Return(model.CommitStats{Additions: 10, Deletions: 4}, nil).Once()
	gh.On("GetCommitStats", mock.Anything, "o/r", "b2").Return(model.CommitStats{}, nil).Once()

	store.On("ExecTx", mock.Anything).Return(nil).Once()
	store.On("UpdateRepositoryLastSyncedAt", mock.Anything, database.UpdateRepositoryLastSyncedAtParams{
		ID:           1,
		LastSyncedAt: pgtype.Timestamptz{Time: fixedNow, Valid: true},
	}).Return(testRepo, nil).Once()

	err := newTestPipeline(store, gh, staticEnricher("feature")).Run(ctx, Request{JobID: 5, RepoName: "o/r", MaxCommits: 2})

	require.NoError(t, err)
	store.AssertExpectations(t)
	gh.AssertExpectations(t)

	require.Len(t, *inserted, 2)
	a1, b2 := (*inserted)[0], (*inserted)[1]
	assert.Equal(t, "a1", a1.Sha)
	assert.Equal(t, int64(10), a1.DeveloperID)
	assert.Equal(t, 12.0, a1.EffortScore)
	assert.Equal(t, effort.VersionV1, a1.EffortVersion)
	assert.Equal(t, int32(10), a1.LinesAdded)
	assert.Equal(t, int32(4), a1.LinesDeleted)
	assert.Equal(t, "feature", a1.AiSummary.String)
	assert.True(t, a1.CommittedAt.Time.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, "b2", b2.Sha)
	assert.Equal(t, int64(11), b2.DeveloperID)
	assert.Equal(t, 0.0, b2.EffortScore)
	assert.True(t, b2.CommittedAt.Time.Equal(time.Date(2024, 4, 30, 7, 0, 0, 0, time.UTC)))

	require.Len(t, *transitions, 5)
	stages := make([]string, 0, 5)
	for _, tr := range *transitions {
		stages = append(stages, tr.Status)
	}
	assert.Equal(t, []string{"running", "running", "running", "running", "succeeded"}, stages)
	assert.Equal(t, []string{"queued"}, (*transitions)[0].FromStatuses)
	assert.JSONEq(t, `{"stage":"resolving_repository"}`, string((*transitions)[0].Progress))
	assert.JSONEq(t, `{"stage":"fetching_commits"}`, string((*transitions)[1].Progress))
	assert.JSONEq(t, `{"stage":"processing_commits","processed_commits":1,"total_commits":2}`, string((*transitions)[2].Progress))
	assert.JSONEq(t, `{"stage":"processing_commits","processed_commits":2,"total_commits":2}`, string((*transitions)[3].Progress))
	assert.JSONEq(t, `{"total_commits_processed":2,"inserted_commits":2,"skipped_commits":0}`, string((*transitions)[4].Result))
}

func TestPipeline_Run_SkipsStoredCommits(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)
	transitions := recordTransitions(store)

	lastSync := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := testRepo
	repo.LastSyncedAt = pgtype.Timestamptz{Time: lastSync, Valid: true}

	store.On("GetRepositoryByFullName", mock.Anything, "o/r").Return(repo, nil).Once()
	gh.On("ListCommits", mock.Anything, "o/r", "main", 100, mock.MatchedBy(func(since *time.Time) bool {
		return since != nil && since.Equal(lastSync)
	})).Return([]model.CommitSummary{{SHA: "a1", AuthorLogin: "alice", CommittedAt: "2024-05-01T10:00:00Z"}}, nil).Once()
	store.On("GetDeveloperByLogin", mock.Anything, "alice").Return(database.Developer{ID: 10}, nil).Once()
	store.On("CommitExists", mock.Anything, database.CommitExistsParams{RepositoryID: 1, Sha: "a1"}).Return(true, nil).Once()
	store.On("ExecTx", mock.Anything).Return(nil).Once()
	store.On("UpdateRepositoryLastSyncedAt", mock.Anything, mock.Anything).Return(repo, nil).Once()

	err := newTestPipeline(store, gh, staticEnricher("x")).Run(ctx, Request{JobID: 6, RepoName: "o/r", MaxCommits: 100})

	require.NoError(t, err)
	gh.AssertNotCalled(t, "GetCommitStats", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CreateCommit", mock.Anything, mock.Anything)
	last := (*transitions)[len(*transitions)-1]
	assert.Equal(t, "succeeded", last.Status)
	assert.JSONEq(t, `{"total_commits_processed":1,"inserted_commits":0,"skipped_commits":1}`, string(last.Result))
}

func TestPipeline_Run_ConcurrentInsertCountsAsSkipped(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)
	transitions := recordTransitions(store)

	store.On("GetRepositoryByFullName", mock.Anything, "o/r").Return(testRepo, nil).Once()
	gh.On("ListCommits", mock.Anything, "o/r", "main", 1, mock.Anything).
		Return([]model.CommitSummary{{SHA: "a1", AuthorLogin: "alice", CommittedAt: "2024-05-01T10:00:00Z"}}, nil).Once()
	store.On("GetDeveloperByLogin", mock.Anything, "alice").Return(database.Developer{ID: 10}, nil).Once()
	store.On("CommitExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	gh.On("GetCommitStats", mock.Anything, "o/r", "a1").Return(model.CommitStats{Additions: 1}, nil).Once()
	store.On("CreateCommit", mock.Anything, mock.Anything).Return(database.Commit{}, pgx.ErrNoRows).Once()
	store.On("ExecTx", mock.Anything).Return(nil).Once()
	store.On("UpdateRepositoryLastSyncedAt", mock.Anything, mock.Anything).Return(testRepo, nil).Once()

	err := newTestPipeline(store, gh, staticEnricher("x")).Run(ctx, Request{JobID: 6, RepoName: "o/r", MaxCommits: 1})

	require.NoError(t, err)
	last := (*transitions)[len(*transitions)-1]
	assert.JSONEq(t, `{"total_commits_processed":1,"inserted_commits":0,"skipped_commits":1}`, string(last.Result))
}

func TestPipeline_Run_ListFailureFailsJob(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)
	transitions := recordTransitions(store)

	store.On("GetRepositoryByFullName", mock.Anything, "o/r").Return(testRepo, nil).Once()
	gh.On("ListCommits", mock.Anything, "o/r", "main", 2, mock.Anything).Return(nil, errors.New("503 service unavailable")).Once()

	err := newTestPipeline(store, gh, staticEnricher("x")).Run(ctx, Request{JobID: 7, RepoName: "o/r", MaxCommits: 2})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching commits")
	store.AssertNotCalled(t, "UpdateRepositoryLastSyncedAt", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CreateCommit", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ExecTx", mock.Anything)

	last := (*transitions)[len(*transitions)-1]
	assert.Equal(t, "failed", last.Status)
	assert.Equal(t, []string{"running"}, last.FromStatuses)
	assert.True(t, last.Error.Valid)
	assert.Contains(t, last.Error.String, "503 service unavailable")
}

func TestPipeline_Run_RecordsFailureAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)

	var failCtxErr error
	store.On("TransitionJob", mock.Anything, mock.MatchedBy(func(p database.TransitionJobParams) bool {
		return p.Status == "running"
	})).Return(database.Job{}, nil)
	store.On("TransitionJob", mock.Anything, mock.MatchedBy(func(p database.TransitionJobParams) bool {
		return p.Status == "failed"
	})).Run(func(args mock.Arguments) {
		failCtxErr = args.Get(0).(context.Context).Err()
	}).Return(database.Job{}, nil).Once()

	store.On("GetRepositoryByFullName", mock.Anything, "o/r").Return(testRepo, nil).Once()
	gh.On("ListCommits", mock.Anything, "o/r", "main", 2, mock.Anything).Run(func(mock.Arguments) {
		cancel()
	}).Return(nil, context.Canceled).Once()

	err := newTestPipeline(store, gh, staticEnricher("x")).Run(ctx, Request{JobID: 8, RepoName: "o/r", MaxCommits: 2})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, failCtxErr)
	store.AssertExpectations(t)
}

func TestPipeline_Run_EnrichmentFailureStoresSentinel(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)
	transitions := recordTransitions(store)
	inserted := recordCommits(store)

	store.On("GetRepositoryByFullName", mock.Anything, "o/r").Return(testRepo, nil).Once()
	gh.On("ListCommits", mock.Anything, "o/r", "main", 1, mock.Anything).
		Return([]model.CommitSummary{{SHA: "a1", AuthorLogin: "alice", Message: "m", CommittedAt: "not a date"}}, nil).Once()
	store.On("GetDeveloperByLogin", mock.Anything, "alice").Return(database.Developer{ID: 10}, nil).Once()
	store.On("CommitExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	gh.On("GetCommitStats", mock.Anything, "o/r", "a1").Return(model.CommitStats{Additions: 3}, nil).Once()
	store.On("ExecTx", mock.Anything).Return(nil).Once()
	store.On("UpdateRepositoryLastSyncedAt", mock.Anything, mock.Anything).Return(testRepo, nil).Once()

	guard := enrich.NewGuard(failingGenerator{}, time.Second, testLogger())
	err := newTestPipeline(store, gh, guard).Run(ctx, Request{JobID: 9, RepoName: "o/r", MaxCommits: 1})

	require.NoError(t, err)
	require.Len(t, *inserted, 1)
	assert.Equal(t, enrich.Unavailable, (*inserted)[0].AiSummary.String)
	assert.True(t, (*inserted)[0].CommittedAt.Time.Equal(fixedNow), "unparseable timestamps fall back to now")
	assert.Equal(t, "succeeded", (*transitions)[len(*transitions)-1].Status)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("model overloaded")
}

func TestPipeline_Run_JobNotStartable(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)

	store.On("TransitionJob", mock.Anything, mock.Anything).Return(database.Job{}, pgx.ErrNoRows).Once()
	store.On("GetJob", mock.Anything, int64(3)).Return(database.Job{ID: 3, Status: "succeeded"}, nil).Once()

	err := newTestPipeline(store, gh, staticEnricher("x")).Run(ctx, Request{JobID: 3, RepoName: "o/r", MaxCommits: 1})

	require.Error(t, err)
	store.AssertNotCalled(t, "GetRepositoryByFullName", mock.Anything, mock.Anything)
	gh.AssertNotCalled(t, "ListCommits", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_FindOrCreateDeveloper_Race(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)

	store.On("GetDeveloperByLogin", ctx, "carol").Return(database.Developer{}, pgx.ErrNoRows).Once()
	store.On("CreateDeveloper", ctx, "carol").Return(database.Developer{}, pgx.ErrNoRows).Once()
	store.On("GetDeveloperByLogin", ctx, "carol").Return(database.Developer{ID: 12, Login: "carol"}, nil).Once()

	dev, err := newTestPipeline(store, new(MockGitHub), staticEnricher("x")).findOrCreateDeveloper(ctx, "carol")

	require.NoError(t, err)
	assert.Equal(t, int64(12), dev.ID)
	store.AssertExpectations(t)
}

func TestProgress_JSON(t *testing.T) {
	body, err := json.Marshal(Progress{Stage: StageFetching})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"fetching_commits"}`, string(body))
}

func TestPipeline_Run_StatsFailureFailsJob(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)
	transitions := recordTransitions(store)
	inserted := recordCommits(store)

	store.On("GetRepositoryByFullName", mock.Anything, "o/r").Return(testRepo, nil).Once()
	gh.On("ListCommits", mock.Anything, "o/r", "main", 2, mock.Anything).Return([]model.CommitSummary{
		{SHA: "a1", AuthorLogin: "alice", CommittedAt: "2024-05-01T10:00:00Z"},
		{SHA: "b2", AuthorLogin: "alice", CommittedAt: "2024-04-30T10:00:00Z"},
	}, nil).Once()
	store.On("GetDeveloperByLogin", mock.Anything, "alice").Return(database.Developer{ID: 10}, nil).Twice()
	store.On("CommitExists", mock.Anything, mock.Anything).Return(false, nil).Twice()
	gh.On("GetCommitStats", mock.Anything, "o/r", "a1").Return(model.CommitStats{Additions: 2}, nil).Once()
	gh.On("GetCommitStats", mock.Anything, "o/r", "b2").Return(model.CommitStats{}, errors.New("boom")).Once()

	err := newTestPipeline(store, gh, staticEnricher("x")).Run(ctx, Request{JobID: 10, RepoName: "o/r", MaxCommits: 2})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing commit b2")
	require.Len(t, *inserted, 1, "commits stored before the failure are kept")
	assert.Equal(t, "a1", (*inserted)[0].Sha)
	store.AssertNotCalled(t, "ExecTx", mock.Anything)
	store.AssertNotCalled(t, "UpdateRepositoryLastSyncedAt", mock.Anything, mock.Anything)

	last := (*transitions)[len(*transitions)-1]
	assert.Equal(t, "failed", last.Status)
	assert.Equal(t, []string{"running"}, last.FromStatuses)
	assert.Contains(t, last.Error.String, "fetching commit stats")
}

func TestPipeline_Run_ResolveFailureFailsJob(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)
	transitions := recordTransitions(store)

	store.On("GetRepositoryByFullName", mock.Anything, "o/missing").Return(database.Repository{}, pgx.ErrNoRows).Once()
	gh.On("GetRepository", mock.Anything, "o/missing").Return(nil, errors.New("404 Not Found")).Once()

	err := newTestPipeline(store, gh, staticEnricher("x")).Run(ctx, Request{JobID: 11, RepoName: "o/missing", MaxCommits: 5})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving repository")
	store.AssertNotCalled(t, "CreateRepository", mock.Anything, mock.Anything)
	gh.AssertNotCalled(t, "ListCommits", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	require.Len(t, *transitions, 2)
	assert.Equal(t, "running", (*transitions)[0].Status)
	assert.Equal(t, []string{"queued"}, (*transitions)[0].FromStatuses)
	assert.Equal(t, "failed", (*transitions)[1].Status)
	assert.Equal(t, []string{"running"}, (*transitions)[1].FromStatuses)
	assert.Contains(t, (*transitions)[1].Error.String, "404 Not Found")
}

func TestPipeline_ParseCommittedAt(t *testing.T) {
	p := newTestPipeline(new(dbtest.MockStore), new(MockGitHub), staticEnricher("x"))

	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T12:00:00+02:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"yesterday", fixedNow},
		{"", fixedNow},
	}
	for _, tt := range tests {
		got := p.parseCommittedAt(testLogger(), tt.raw)
		assert.True(t, got.Equal(tt.want), "%q parsed as %s", tt.raw, got)
	}
}

func TestClampInt32(t *testing.T) {
	assert.Equal(t, int32(42), clampInt32(42))
	assert.Equal(t, int32(math.MaxInt32), clampInt32(math.MaxInt32))
	assert.Equal(t, int32(math.MaxInt32), clampInt32(math.MaxInt32+1))
	assert.Equal(t, int32(math.MinInt32), clampInt32(math.MinInt32-1))
}

func TestPipeline_Run_ClampsHugeLineCounts(t *testing.T) {
	ctx := context.Background()
	store := new(dbtest.MockStore)
	gh := new(MockGitHub)
	recordTransitions(store)
	inserted := recordCommits(store)

	store.On("GetRepositoryByFullName", mock.Anything, "o/r").Return(testRepo, nil).Once()
	gh.On("ListCommits", mock.Anything, "o/r", "main", 1, mock.Anything).
		Return([]model.CommitSummary{{SHA: "v1", AuthorLogin: "bot", CommittedAt: "2024-05-01T10:00:00Z"}}, nil).Once()
	store.On("GetDeveloperByLogin", mock.Anything, "bot").Return(database.Developer{ID: 3}, nil).Once()
	store.On("CommitExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	gh.On("GetCommitStats", mock.Anything, "o/r", "v1").Return(model.CommitStats{Additions: 1 << 31, Deletions: 7}, nil).Once()
	store.On("ExecTx", mock.Anything).Return(nil).Once()
	store.On("UpdateRepositoryLastSyncedAt", mock.Anything, mock.Anything).Return(testRepo, nil).Once()

	err := newTestPipeline(store, gh, staticEnricher("x")).Run(ctx, Request{JobID: 12, RepoName: "o/r", MaxCommits: 1})

	require.NoError(t, err)
	require.Len(t, *inserted, 1)
	assert.Equal(t, int32(math.MaxInt32), (*inserted)[0].LinesAdded)
	assert.Equal(t, int32(7), (*inserted)[0].LinesDeleted)
}

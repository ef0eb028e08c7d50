// internal/database/dbtest/mock.go
package dbtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"effort-analyzer/internal/database"
)

// MockStore is a mock of the database.Store interface.
// ExecTx runs the callback against the mock itself, so expectations set on
// the mock also cover statements issued inside a transaction.
type MockStore struct {
	mock.Mock
}

var _ database.Store = (*MockStore)(nil)

func (m *MockStore) ExecTx(ctx context.Context, fn func(database.Querier) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockStore) CommitExists(ctx context.Context, arg database.CommitExistsParams) (bool, error) {
	args := m.Called(ctx, arg)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateCommit(ctx context.Context, arg database.CreateCommitParams) (database.Commit, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Commit), args.Error(1)
}

func (m *MockStore) CreateDeveloper(ctx context.Context, login string) (database.Developer, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(database.Developer), args.Error(1)
}

func (m *MockStore) CreateJob(ctx context.Context, arg database.CreateJobParams) (database.Job, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Job), args.Error(1)
}

func (m *MockStore) CreateRepository(ctx context.Context, arg database.CreateRepositoryParams) (database.Repository, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repository), args.Error(1)
}

func (m *MockStore) GetDeveloperByLogin(ctx context.Context, login string) (database.Developer, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(database.Developer), args.Error(1)
}

func (m *MockStore) GetJob(ctx context.Context, id int64) (database.Job, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.Job), args.Error(1)
}

func (m *MockStore) GetRepoContextByRepositoryID(ctx context.Context, repositoryID int64) (database.RepoContext, error) {
	args := m.Called(ctx, repositoryID)
	return args.Get(0).(database.RepoContext), args.Error(1)
}

func (m *MockStore) GetRepositoryByFullName(ctx context.Context, fullName string) (database.Repository, error) {
	args := m.Called(ctx, fullName)
	return args.Get(0).(database.Repository), args.Error(1)
}

func (m *MockStore) GetTopContributorsByEffort(ctx context.Context, arg database.GetTopContributorsByEffortParams) ([]database.GetTopContributorsByEffortRow, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]database.GetTopContributorsByEffortRow), args.Error(1)
}

func (m *MockStore) ListCommitsByRepository(ctx context.Context, arg database.ListCommitsByRepositoryParams) ([]database.ListCommitsByRepositoryRow, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]database.ListCommitsByRepositoryRow), args.Error(1)
}

func (m *MockStore) TransitionJob(ctx context.Context, arg database.TransitionJobParams) (database.Job, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Job), args.Error(1)
}

func (m *MockStore) UpdateRepositoryLastSyncedAt(ctx context.Context, arg database.UpdateRepositoryLastSyncedAtParams) (database.Repository, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repository), args.Error(1)
}

func (m *MockStore) UpsertRepoContext(ctx context.Context, arg database.UpsertRepoContextParams) (database.RepoContext, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.RepoContext), args.Error(1)
}

// internal/model/models.go
package model

// UnknownAuthor is recorded when the hosting API does not associate a commit with a user account.
const UnknownAuthor = "unknown"

// RepositoryDescriptor is the canonical description of a GitHub repository.
type RepositoryDescriptor struct {
	GithubRepoID  int64
	FullName      string
	DefaultBranch string
	Description   *string
	Topics        []string
	Language      *string
	StarsCount    int
	ForksCount    int
}

// CommitSummary is one entry of a commit listing.
// CommittedAt is kept as the raw ISO-8601 string returned by the API.
type CommitSummary struct {
	SHA         string
	AuthorLogin string
	Message     string
	CommittedAt string
}

// CommitStats holds the diff size of a single commit.
type CommitStats struct {
	Additions int
	Deletions int
}

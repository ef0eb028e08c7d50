// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "effort-analyzer/internal/errors"
	"effort-analyzer/internal/model"
)

const (
	// GitHub never returns more than this many commits per page.
	maxPerPage = 100
	// DefaultReadmeChars bounds how much README text is kept.
	DefaultReadmeChars = 15000
	defaultBranch      = "main"
)

// Client is a wrapper around the go-github client.
// Every call goes through the retry policy and returns errors from the
// effort-analyzer/internal/errors taxonomy.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
	retry  RetryPolicy
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at a different API host (GitHub Enterprise or a test server).
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid github base url %q: %w", raw, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.gh.BaseURL = u
		return nil
	}
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) error {
		c.retry = p
		return nil
	}
}

// NewClient creates and configures a new Client instance.
// A non-empty token is sent as a bearer token on every request.
func NewClient(token string, logger *slog.Logger, opts ...Option) (*Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	c := &Client{
		gh:     github.NewClient(httpClient),
		logger: logger,
		retry:  DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// GetRepository resolves a (possibly aliased) repository name to its canonical descriptor.
func (c *Client) GetRepository(ctx context.Context, name string) (*model.RepositoryDescriptor, error) {
	owner, repo, err := splitFullName(name)
	if err != nil {
		return nil, err
	}

	var ghRepo *github.Repository
	err = c.call(ctx, "get repository", func() (*github.Response, error) {
		r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
		ghRepo = r
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return toRepositoryDescriptor(ghRepo), nil
}

// commitListItem is the subset of the list-commits payload we read.
// The date is decoded as a plain string so that a malformed timestamp does not
// fail the whole page.
type commitListItem struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  *struct {
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

// ListCommits fetches up to limit commits of branch, newest first.
// A nil since fetches the history from the beginning.
// It handles API pagination transparently; each page has its own retry budget.
func (c *Client) ListCommits(ctx context.Context, fullName, branch string, limit int, since *time.Time) ([]model.CommitSummary, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	perPage := min(limit, maxPerPage)
	commits := make([]model.CommitSummary, 0, perPage)
	page := 1

	for len(commits) < limit {
		c.logger.Debug("Fetching commits page", "repo", fullName, "page", page, "per_page", perPage)

		q := url.Values{}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		if branch != "" {
			q.Set("sha", branch)
		}
		if since != nil {
			q.Set("since", since.UTC().Format(time.RFC3339))
		}
		u := fmt.Sprintf("repos/%s/%s/commits?%s", owner, repo, q.Encode())

		var items []commitListItem
		var nextPage int
		err := c.call(ctx, "list commits", func() (*github.Response, error) {
			req, err := c.gh.NewRequest(http.MethodGet, u, nil)
			if err != nil {
				return nil, err
			}
			items = nil
			resp, err := c.gh.Do(ctx, req, &items)
			if resp != nil {
				nextPage = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			if len(commits) == limit {
				break
			}
			commits = append(commits, toCommitSummary(item))
		}

		if nextPage == 0 || len(items) == 0 {
			break
		}
		page = nextPage
	}

	return commits, nil
}

// GetCommitStats fetches the number of added and deleted lines of a single commit.
func (c *Client) GetCommitStats(ctx context.Context, fullName, sha string) (model.CommitStats, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return model.CommitStats{}, err
	}

	var rc *github.RepositoryCommit
	err = c.call(ctx, "get commit stats", func() (*github.Response, error) {
		commit, resp, err := c.gh.Repositories.GetCommit(ctx, owner, repo, sha, nil)
		rc = commit
		return resp, err
	})
	if err != nil {
		return model.CommitStats{}, err
	}

	return model.CommitStats{
		Additions: rc.GetStats().GetAdditions(),
		Deletions: rc.GetStats().GetDeletions(),
	}, nil
}

// GetReadme returns the decoded README truncated to maxChars runes.
// The boolean is false when the repository has no readable README; errors are not reported.
func (c *Client) GetReadme(ctx context.Context, fullName string, maxChars int) (string, bool) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return "", false
	}

	var rc *github.RepositoryContent
	err = c.call(ctx, "get readme", func() (*github.Response, error) {
		content, resp, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
		rc = content
		return resp, err
	})
	if err != nil {
		c.logger.Debug("README unavailable", "repo", fullName, "error", err)
		return "", false
	}

	text, err := rc.GetContent()
	if err != nil || text == "" {
		return "", false
	}
	// READMEs are not always UTF-8; drop bytes PostgreSQL TEXT would reject.
	text = strings.ToValidUTF8(text, "")
	if text == "" {
		return "", false
	}
	if runes := []rune(text); maxChars > 0 && len(runes) > maxChars {
		text = string(runes[:maxChars])
	}
	return text, true
}

// ListLanguages returns the byte count per language of a repository.
func (c *Client) ListLanguages(ctx context.Context, fullName string) (map[string]int, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}

	var langs map[string]int
	err = c.call(ctx, "list languages", func() (*github.Response, error) {
		l, resp, err := c.gh.Repositories.ListLanguages(ctx, owner, repo)
		langs = l
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return langs, nil
}

// splitFullName splits "owner/name" into its two parts.
func splitFullName(fullName string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &custom_errors.ErrInvalidRepoFormat{Repo: fullName}
	}
	return parts[0], parts[1], nil
}

// toRepositoryDescriptor translates a github.Repository object to our internal model.
func toRepositoryDescriptor(r *github.Repository) *model.RepositoryDescriptor {
	branch := r.GetDefaultBranch()
	if branch == "" {
		branch = defaultBranch
	}
	return &model.RepositoryDescriptor{
		GithubRepoID:  r.GetID(),
		FullName:      r.GetFullName(),
		DefaultBranch: branch,
		Description:   r.Description,
		Topics:        r.Topics,
		Language:      r.Language,
		StarsCount:    r.GetStargazersCount(),
		ForksCount:    r.GetForksCount(),
	}
}

// toCommitSummary translates one list-commits entry to our internal model.
func toCommitSummary(item commitListItem) model.CommitSummary {
	login := model.UnknownAuthor
	if item.Author != nil && item.Author.Login != "" {
		login = item.Author.Login
	}
	var date string
	if item.Commit.Author != nil {
		date = item.Commit.Author.Date
	}
	return model.CommitSummary{
		SHA:         item.SHA,
		AuthorLogin: login,
		Message:     item.Commit.Message,
		CommittedAt: date,
	}
}

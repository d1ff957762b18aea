// Package github provides a rate-limited wrapper around the GitHub API
// for pull request context: comparing branches, listing changed files,
// and locating an open PR for the current branch.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client wraps the GitHub API client with rate limiting.
type Client struct {
	client      *github.Client
	rateLimiter *rate.Limiter
	maxWorkers  int
	logger      *slog.Logger
}

// NewClient creates a GitHub client. Token may be empty for public
// repositories, at the cost of a much lower rate limit. rateLimit is in
// requests per second.
func NewClient(token string, rateLimit int) *Client {
	if rateLimit <= 0 {
		rateLimit = 10
	}
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{
		client:      gh,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		maxWorkers:  4,
		logger:      slog.Default().With("component", "github"),
	}
}

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// ParseRemote extracts owner/name from a git remote URL. Supports
// https://github.com/owner/repo(.git) and git@github.com:owner/repo(.git).
func ParseRemote(remote string) (Repo, error) {
	s := strings.TrimSuffix(strings.TrimSpace(remote), ".git")

	if strings.HasPrefix(s, "git@") {
		// git@github.com:owner/repo
		idx := strings.Index(s, ":")
		if idx < 0 {
			return Repo{}, fmt.Errorf("unrecognized remote %q", remote)
		}
		s = s[idx+1:]
	} else {
		u, err := url.Parse(s)
		if err != nil {
			return Repo{}, fmt.Errorf("parse remote %q: %w", remote, err)
		}
		s = strings.TrimPrefix(u.Path, "/")
	}

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Repo{}, fmt.Errorf("unrecognized remote %q", remote)
	}
	return Repo{Owner: parts[0], Name: parts[1]}, nil
}

// CommitInfo is a single commit in a branch comparison.
type CommitInfo struct {
	SHA     string
	Message string
	Author  string
}

// Comparison summarizes base...head for a pull request description.
type Comparison struct {
	Commits      []CommitInfo
	ChangedFiles []string
	Additions    int
	Deletions    int
}

// Compare returns the commits and changed files between base and head.
func (c *Client) Compare(ctx context.Context, repo Repo, base, head string) (*Comparison, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	cmp, _, err := c.client.Repositories.CompareCommits(ctx, repo.Owner, repo.Name, base, head, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("compare %s...%s: %w", base, head, err)
	}

	result := &Comparison{}
	for _, commit := range cmp.Commits {
		info := CommitInfo{SHA: commit.GetSHA()}
		if cm := commit.GetCommit(); cm != nil {
			info.Message = cm.GetMessage()
			if a := cm.GetAuthor(); a != nil {
				info.Author = a.GetName()
			}
		}
		result.Commits = append(result.Commits, info)
	}
	for _, f := range cmp.Files {
		result.ChangedFiles = append(result.ChangedFiles, f.GetFilename())
		result.Additions += f.GetAdditions()
		result.Deletions += f.GetDeletions()
	}

	c.logger.Debug("compared branches",
		"base", base, "head", head,
		"commits", len(result.Commits), "files", len(result.ChangedFiles))
	return result, nil
}

// PullRequest is the subset of PR metadata the review command needs.
type PullRequest struct {
	Number int
	Title  string
	Body   string
	State  string
	URL    string
	Head   string
	Base   string
}

// FindOpenPR returns the open pull request whose head is branch, or nil
// when none exists.
func (c *Client) FindOpenPR(ctx context.Context, repo Repo, branch string) (*PullRequest, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	prs, _, err := c.client.PullRequests.List(ctx, repo.Owner, repo.Name, &github.PullRequestListOptions{
		State:       "open",
		Head:        fmt.Sprintf("%s:%s", repo.Owner, branch),
		ListOptions: github.ListOptions{PerPage: 10},
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}

	pr := prs[0]
	return &PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		State:  pr.GetState(),
		URL:    pr.GetHTMLURL(),
		Head:   pr.GetHead().GetRef(),
		Base:   pr.GetBase().GetRef(),
	}, nil
}

// FileContents fetches the contents of paths at ref, in parallel.
// Missing files are skipped rather than failing the whole batch.
func (c *Client) FileContents(ctx context.Context, repo Repo, ref string, paths []string) (map[string]string, error) {
	contents := make([]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)

	for i, path := range paths {
		g.Go(func() error {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
			fc, _, _, err := c.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, path,
				&github.RepositoryContentGetOptions{Ref: ref})
			if err != nil {
				c.logger.Debug("skipping unreadable file", "path", path, "error", err)
				return nil
			}
			if fc == nil {
				return nil
			}
			body, err := fc.GetContent()
			if err != nil {
				return nil
			}
			contents[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for i, path := range paths {
		if contents[i] != "" {
			result[path] = contents[i]
		}
	}
	return result, nil
}

// CompareURL builds the web URL for creating a pull request from head
// into base.
func CompareURL(repo Repo, base, head string) string {
	return fmt.Sprintf("https://github.com/%s/%s/compare/%s...%s?expand=1",
		repo.Owner, repo.Name, url.PathEscape(base), url.PathEscape(head))
}

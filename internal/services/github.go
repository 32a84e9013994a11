package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/monocle-dev/bugtracker/internal/apperr"
	"github.com/monocle-dev/bugtracker/internal/types"
	"github.com/rs/zerolog"
)

const (
	githubUserAgent   = "bug-tracker-app"
	maxGitHubResponse = 1 << 20
)

var repoURLPattern = regexp.MustCompile(`(?i)github\.com/([^/]+)/([^/?#]+)(?:[/?#]|$)`)

type githubRepo struct {
	StargazersCount int `json:"stargazers_count"`
	ForksCount      int `json:"forks_count"`
	OpenIssuesCount int `json:"open_issues_count"`
}

type githubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// GitHubClient reads public repository statistics. Responses are never
// cached and failed calls are not retried.
type GitHubClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewGitHubClient(baseURL, token string, timeout time.Duration) *GitHubClient {
	return &GitHubClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// ParseRepoURL extracts owner and repository from a GitHub URL, tolerating a
// trailing slash, query, fragment or .git suffix.
func ParseRepoURL(raw string) (owner, repo string, err error) {
	match := repoURLPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", "", apperr.Validation("Invalid GitHub repository URL")
	}

	owner = match[1]
	repo = match[2]
	if strings.HasSuffix(strings.ToLower(repo), ".git") {
		repo = repo[:len(repo)-len(".git")]
	}

	if repo == "" {
		return "", "", apperr.Validation("Invalid GitHub repository URL")
	}

	return owner, repo, nil
}

func (c *GitHubClient) RepoInfo(ctx context.Context, rawURL string) (*types.RepoInfo, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, apperr.Validation("Missing url query param")
	}

	owner, repo, err := ParseRepoURL(rawURL)
	if err != nil {
		return nil, err
	}

	repoPath := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)

	var meta githubRepo
	if err := c.get(ctx, repoPath, &meta, "GitHub repo fetch failed"); err != nil {
		return nil, err
	}

	info := &types.RepoInfo{
		Owner:      owner,
		Repo:       repo,
		Stars:      meta.StargazersCount,
		Forks:      meta.ForksCount,
		OpenIssues: meta.OpenIssuesCount,
	}

	var commits []githubCommit
	err = c.get(ctx, repoPath+"/commits?per_page=1", &commits, "GitHub commits fetch failed")

	// GitHub answers 409 for an empty repository
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind == apperr.KindUpstream && appErr.Status == http.StatusConflict {
		return info, nil
	}
	if err != nil {
		return nil, err
	}

	if len(commits) > 0 {
		last := commits[0]
		info.LastCommit = &types.CommitInfo{
			SHA:     last.SHA,
			Message: last.Commit.Message,
			Author:  last.Commit.Author.Name,
			Date:    last.Commit.Author.Date,
		}
	}

	return info, nil
}

func (c *GitHubClient) get(ctx context.Context, path string, out interface{}, failMsg string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperr.Internal("failed to build GitHub request", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", githubUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("GitHub request failed")
		return apperr.Upstream(http.StatusBadGateway, "GitHub is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zerolog.Ctx(ctx).Warn().Int("status", resp.StatusCode).Str("path", path).Msg("GitHub returned an error")
		return apperr.Upstream(resp.StatusCode, failMsg)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxGitHubResponse)).Decode(out); err != nil {
		return apperr.Upstream(http.StatusBadGateway, "GitHub returned an invalid response")
	}

	return nil
}

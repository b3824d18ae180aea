// Package githubapi wraps the GitHub REST API for the release pipeline:
// listing merged pull requests with their labels, opening the version-bump
// pull request, creating releases, and ensuring category labels exist.
package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/sync/errgroup"

	"relkit/internal/config"
	"relkit/internal/logging"
	"relkit/internal/notes"
)

// perPage is the page size for list calls.
const perPage = 100

// maxPages bounds pagination so a huge repository cannot stall the pipeline.
const maxPages = 20

// Client talks to one repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
	log   *logging.Logger
}

// New builds a Client for owner/repo. The token is required for mutations;
// read-only calls work unauthenticated against public repositories.
func New(cfg config.GitHubConfig, owner, repo string) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("github: repo.owner and repo.name must be configured")
	}

	gh := github.NewClient(nil)
	if cfg.Token != "" {
		gh = gh.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github: invalid base URL: %w", err)
		}
	}

	return &Client{
		gh:    gh,
		owner: owner,
		repo:  repo,
		log:   logging.Get(logging.CategoryGitHub),
	}, nil
}

// MergedPullsSince returns pull requests merged into base after since,
// oldest first, with their label names. Pagination stops once a full page
// predates since.
func (c *Client) MergedPullsSince(ctx context.Context, base string, since time.Time) ([]notes.Change, error) {
	opts := &github.PullRequestListOptions{
		State:       "closed",
		Base:        base,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var merged []notes.Change
	pastWindow := false
	for page := 1; page <= maxPages && !pastWindow; page++ {
		opts.Page = page
		prs, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("github: failed to list pull requests: %w", err)
		}

		for _, pr := range prs {
			// Updated-desc ordering: merging updates a PR, so once
			// updated_at predates the window nothing later in the
			// listing can have been merged inside it.
			if pr.GetUpdatedAt().Time.Before(since) {
				pastWindow = true
				break
			}
			if pr.MergedAt == nil || !pr.GetMergedAt().Time.After(since) {
				continue
			}

			labels := make([]string, 0, len(pr.Labels))
			for _, l := range pr.Labels {
				labels = append(labels, l.GetName())
			}
			merged = append(merged, notes.Change{
				Number: pr.GetNumber(),
				Title:  pr.GetTitle(),
				Author: pr.GetUser().GetLogin(),
				Labels: labels,
			})
		}

		if resp.NextPage == 0 {
			break
		}
	}

	c.log.Info("found %d merged PRs since %s", len(merged), since.Format(time.RFC3339))

	// Oldest first, so the notes read in merge order.
	for i, j := 0, len(merged)-1; i < j; i, j = i+1, j-1 {
		merged[i], merged[j] = merged[j], merged[i]
	}
	return merged, nil
}

// CreateBumpPR opens the version-bump pull request from head into base and
// returns its URL. If an open PR from the same head already exists it is
// updated in place instead.
func (c *Client) CreateBumpPR(ctx context.Context, head, base, title, body string) (string, error) {
	existing, _, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		State: "open",
		Head:  c.owner + ":" + head,
		Base:  base,
	})
	if err != nil {
		return "", fmt.Errorf("github: failed to check existing PRs: %w", err)
	}

	if len(existing) > 0 {
		pr := existing[0]
		pr.Title = github.Ptr(title)
		pr.Body = github.Ptr(body)
		updated, _, err := c.gh.PullRequests.Edit(ctx, c.owner, c.repo, pr.GetNumber(), pr)
		if err != nil {
			return "", fmt.Errorf("github: failed to update PR #%d: %w", pr.GetNumber(), err)
		}
		c.log.Info("updated bump PR #%d", updated.GetNumber())
		return updated.GetHTMLURL(), nil
	}

	pr, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, &github.NewPullRequest{
		Title: github.Ptr(title),
		Head:  github.Ptr(head),
		Base:  github.Ptr(base),
		Body:  github.Ptr(body),
	})
	if err != nil {
		return "", fmt.Errorf("github: failed to create PR: %w", err)
	}
	c.log.Info("created bump PR #%d", pr.GetNumber())
	return pr.GetHTMLURL(), nil
}

// CreateRelease publishes a GitHub release for tag.
func (c *Client) CreateRelease(ctx context.Context, tag, name, body string, prerelease bool) (string, error) {
	rel, _, err := c.gh.Repositories.CreateRelease(ctx, c.owner, c.repo, &github.RepositoryRelease{
		TagName:    github.Ptr(tag),
		Name:       github.Ptr(name),
		Body:       github.Ptr(body),
		Prerelease: github.Ptr(prerelease),
	})
	if err != nil {
		return "", fmt.Errorf("github: failed to create release %s: %w", tag, err)
	}
	c.log.Info("created release %s", rel.GetTagName())
	return rel.GetHTMLURL(), nil
}

// EnsureLabels creates any missing labels from the notes categories so PR
// authors can always apply them. Existing labels are left untouched.
func (c *Client) EnsureLabels(ctx context.Context, cfg config.NotesConfig) error {
	var wanted []string
	for _, cat := range cfg.Categories {
		wanted = append(wanted, cat.Labels...)
	}
	wanted = append(wanted, cfg.ExcludeLabels...)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for _, name := range wanted {
		eg.Go(func() error {
			_, resp, err := c.gh.Issues.GetLabel(ctx, c.owner, c.repo, name)
			if err == nil {
				return nil
			}
			if resp == nil || resp.StatusCode != http.StatusNotFound {
				return fmt.Errorf("github: failed to check label %q: %w", name, err)
			}
			_, _, err = c.gh.Issues.CreateLabel(ctx, c.owner, c.repo, &github.Label{
				Name:  github.Ptr(name),
				Color: github.Ptr("ededed"),
			})
			if err != nil {
				return fmt.Errorf("github: failed to create label %q: %w", name, err)
			}
			c.log.Info("created label %q", name)
			return nil
		})
	}
	return eg.Wait()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"relkit/internal/config"
	"relkit/internal/gitrepo"
	"relkit/internal/githubapi"
	"relkit/internal/notes"
	"relkit/internal/store"
	"relkit/internal/summarize"
	"relkit/internal/version"
)

// versionFilePath resolves the configured marker file against the repo root.
func versionFilePath() string {
	if filepath.IsAbs(cfg.VersionFile) {
		return cfg.VersionFile
	}
	return filepath.Join(repoRoot, cfg.VersionFile)
}

// openStore opens the release history database under .relkit/.
func openStore() (*store.Store, error) {
	return store.Open(filepath.Join(repoRoot, config.Dir, "history.db"))
}

// githubConfigured reports whether the config identifies a GitHub repo.
func githubConfigured() bool {
	return cfg.Repo.Owner != "" && cfg.Repo.Name != ""
}

// gatherChanges collects the changes since the latest v* tag, preferring the
// GitHub API (labels enable categorization) and falling back to local git
// history when no repository is configured.
func gatherChanges(ctx context.Context) (changes []notes.Change, previousTag string, err error) {
	repo := gitrepo.Open(repoRoot)

	previousTag, err = repo.LatestTag(ctx)
	if err != nil {
		if !errors.Is(err, gitrepo.ErrNoTag) {
			return nil, "", err
		}
		previousTag = ""
	}

	if githubConfigured() {
		gh, err := githubapi.New(cfg.GitHub, cfg.Repo.Owner, cfg.Repo.Name)
		if err != nil {
			return nil, "", err
		}

		var since time.Time
		if previousTag != "" {
			since, err = repo.TagDate(ctx, previousTag)
			if err != nil {
				return nil, "", err
			}
		}

		changes, err = gh.MergedPullsSince(ctx, cfg.Repo.BaseBranch, since)
		if err != nil {
			return nil, "", err
		}
		return changes, previousTag, nil
	}

	logger.Debug("no github repo configured, using local git history")
	commits, err := repo.CommitsSince(ctx, previousTag)
	if err != nil {
		return nil, "", err
	}
	return commitsToChanges(commits), previousTag, nil
}

// commitsToChanges converts git commits (newest first) to changes in merge
// order. Without PR labels everything lands in the fallback category.
func commitsToChanges(commits []gitrepo.Commit) []notes.Change {
	changes := make([]notes.Change, 0, len(commits))
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		title := c.Subject
		if c.PRNumber > 0 {
			title = strings.TrimSpace(strings.TrimSuffix(title, fmt.Sprintf("(#%d)", c.PRNumber)))
		}
		changes = append(changes, notes.Change{
			Number: c.PRNumber,
			Title:  title,
			Author: c.Author,
		})
	}
	return changes
}

// buildDocument categorizes changes and optionally adds the AI summary.
func buildDocument(ctx context.Context, ver version.Version, previousTag string, changes []notes.Change, withSummary bool) (notes.Document, error) {
	doc := notes.Document{
		Version:  ver.String(),
		Previous: previousTag,
		Date:     time.Now().UTC(),
		Sections: notes.Categorize(changes, cfg.Notes),
	}

	if withSummary && cfg.AI.Enabled {
		s, err := summarize.New(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return notes.Document{}, err
		}
		summary, err := s.Summarize(ctx, doc)
		if err != nil {
			logger.Warn("summary generation failed, continuing without", zap.Error(err))
		} else {
			doc.Summary = summary
		}
	}
	return doc, nil
}

// categoryCounts tallies PRs per section for the history store.
func categoryCounts(doc notes.Document) (map[string]int, int) {
	counts := make(map[string]int, len(doc.Sections))
	total := 0
	for _, sec := range doc.Sections {
		counts[sec.Title] = len(sec.Changes)
		total += len(sec.Changes)
	}
	return counts, total
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"relkit/internal/gitrepo"
	"relkit/internal/githubapi"
	"relkit/internal/notes"
	"relkit/internal/store"
	"relkit/internal/version"
)

var (
	releaseLevel  string
	releaseSet    string
	releaseDryRun bool
)

// releaseCmd runs the full pipeline: bump, notes, branch, PR, history.
var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Run the release pipeline",
	Long: `Bumps the version marker, generates release notes, commits the change on
a new branch, pushes it, and opens the version-bump pull request. The run
is recorded in the local release history.

Requires a clean working tree and a configured GitHub repository.
Use --dry-run to print the plan without touching anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelease(cmd.Context())
	},
}

func runRelease(ctx context.Context) error {
	current, err := version.ReadFile(versionFilePath())
	if err != nil {
		return err
	}

	var next version.Version
	if releaseSet != "" {
		next, err = version.Parse(releaseSet)
	} else {
		var level version.Level
		level, err = version.ParseLevel(releaseLevel)
		if err == nil {
			next = current.Bump(level)
		}
	}
	if err != nil {
		return err
	}

	return executeRelease(ctx, current, next)
}

// executeRelease runs the pipeline from an already-decided next version.
// The wizard calls this directly after confirmation.
func executeRelease(ctx context.Context, current, next version.Version) error {
	path := versionFilePath()
	repo := gitrepo.Open(repoRoot)

	if version.Compare(next, current) <= 0 {
		return fmt.Errorf("next version %s does not advance %s", next, current)
	}

	changes, previousTag, err := gatherChanges(ctx)
	if err != nil {
		return err
	}
	doc, err := buildDocument(ctx, next, previousTag, changes, true)
	if err != nil {
		return err
	}
	markdown := notes.Render(doc, cfg.Notes)

	branch := cfg.Repo.BumpBranchPrefix + next.String()
	title := fmt.Sprintf("chore: bump version to %s", next)

	if releaseDryRun {
		fmt.Printf("would bump %s: %s -> %s\n", cfg.VersionFile, current, next)
		fmt.Printf("would push branch %s and open a PR against %s\n\n", branch, cfg.Repo.BaseBranch)
		fmt.Print(markdown)
		return nil
	}

	if !githubConfigured() {
		return fmt.Errorf("release requires repo.owner and repo.name in the config")
	}
	clean, err := repo.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return fmt.Errorf("working tree is dirty, commit or stash first")
	}

	gh, err := githubapi.New(cfg.GitHub, cfg.Repo.Owner, cfg.Repo.Name)
	if err != nil {
		return err
	}

	if err := version.WriteFile(path, next); err != nil {
		return err
	}
	logger.Info("bumped version", zap.String("from", current.String()), zap.String("to", next.String()))

	if err := repo.CheckoutNew(ctx, branch); err != nil {
		return err
	}
	if err := repo.Add(ctx, cfg.VersionFile); err != nil {
		return err
	}
	if err := repo.Commit(ctx, title); err != nil {
		return err
	}
	if err := repo.Push(ctx, branch); err != nil {
		return err
	}

	prURL, err := gh.CreateBumpPR(ctx, branch, cfg.Repo.BaseBranch, title, markdown)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	counts, total := categoryCounts(doc)
	if _, err := st.Record(store.Release{
		Version:        next.String(),
		PreviousTag:    previousTag,
		PRCount:        total,
		CategoryCounts: counts,
		Notes:          markdown,
		Source:         "release",
		PRURL:          prURL,
	}); err != nil {
		return err
	}

	fmt.Printf("%s -> %s\n%s\n", current, next, prURL)
	return nil
}

// releasePublishCmd creates the GitHub release for the current marker
// version, once the bump PR has merged and the tag exists.
var releasePublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the GitHub release for the current version",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		current, err := version.ReadFile(versionFilePath())
		if err != nil {
			return err
		}
		if !githubConfigured() {
			return fmt.Errorf("publish requires repo.owner and repo.name in the config")
		}

		changes, previousTag, err := gatherChanges(ctx)
		if err != nil {
			return err
		}
		doc, err := buildDocument(ctx, current, previousTag, changes, true)
		if err != nil {
			return err
		}

		gh, err := githubapi.New(cfg.GitHub, cfg.Repo.Owner, cfg.Repo.Name)
		if err != nil {
			return err
		}
		url, err := gh.CreateRelease(ctx, current.String(), current.String(),
			notes.Render(doc, cfg.Notes), current.Suffix != "")
		if err != nil {
			return err
		}

		fmt.Println(url)
		return nil
	},
}

func init() {
	releaseCmd.Flags().StringVar(&releaseLevel, "level", "patch", "bump level: major, minor, or patch")
	releaseCmd.Flags().StringVar(&releaseSet, "set", "", "release an explicit version instead of bumping")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "print the plan without mutating anything")
	releaseCmd.AddCommand(releasePublishCmd)
	rootCmd.AddCommand(releaseCmd)
}

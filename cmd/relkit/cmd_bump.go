package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relkit/internal/gitrepo"
	"relkit/internal/store"
	"relkit/internal/version"
)

var (
	bumpSet string
	bumpDev bool
)

// bumpCmd rewrites the version marker.
var bumpCmd = &cobra.Command{
	Use:   "bump [major|minor|patch]",
	Short: "Bump the version marker file",
	Long: `Increments the version in the marker file and records the bump.

With --dev, appends the short hash of HEAD as a suffix instead of
incrementing (v1.2.3 -> v1.2.3-a1b2c3d). The dev mark is only applied when
the marker file was not itself changed by the HEAD commit; this keeps the
auto-bump from stacking marks on top of a just-released version.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := versionFilePath()

		current, err := version.ReadFile(path)
		if err != nil {
			return err
		}

		var next version.Version
		switch {
		case bumpSet != "":
			next, err = version.Parse(bumpSet)
			if err != nil {
				return err
			}
		case bumpDev:
			repo := gitrepo.Open(repoRoot)
			changed, err := repo.FileChangedInHead(ctx, cfg.VersionFile)
			if err != nil {
				return err
			}
			if changed {
				fmt.Printf("%s changed in HEAD, keeping %s\n", cfg.VersionFile, current)
				return nil
			}
			_, short, err := repo.Head(ctx)
			if err != nil {
				return err
			}
			next = current.WithSuffix(short)
		case len(args) == 1:
			level, err := version.ParseLevel(args[0])
			if err != nil {
				return err
			}
			next = current.Bump(level)
		default:
			return fmt.Errorf("specify a bump level, --set, or --dev")
		}

		if next == current {
			fmt.Printf("version already %s\n", current)
			return nil
		}

		if err := version.WriteFile(path, next); err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		if _, err := st.Record(store.Release{
			Version:     next.String(),
			PreviousTag: current.String(),
			Source:      "bump",
		}); err != nil {
			return err
		}

		fmt.Printf("%s -> %s\n", current, next)
		return nil
	},
}

func init() {
	bumpCmd.Flags().StringVar(&bumpSet, "set", "", "set an explicit version (e.g. v1.2.3)")
	bumpCmd.Flags().BoolVar(&bumpDev, "dev", false, "suffix the version with the HEAD short hash")
	rootCmd.AddCommand(bumpCmd)
}

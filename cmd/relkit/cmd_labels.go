package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relkit/internal/githubapi"
)

// labelsCmd manages the changelog labels on GitHub.
var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage changelog labels",
}

// labelsSyncCmd creates any configured category labels missing on GitHub.
var labelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create missing category labels on GitHub",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !githubConfigured() {
			return fmt.Errorf("labels sync requires repo.owner and repo.name in the config")
		}

		gh, err := githubapi.New(cfg.GitHub, cfg.Repo.Owner, cfg.Repo.Name)
		if err != nil {
			return err
		}
		if err := gh.EnsureLabels(cmd.Context(), cfg.Notes); err != nil {
			return err
		}

		fmt.Println("labels are in sync")
		return nil
	},
}

func init() {
	labelsCmd.AddCommand(labelsSyncCmd)
	rootCmd.AddCommand(labelsCmd)
}

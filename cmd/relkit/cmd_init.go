package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"relkit/internal/config"
)

var initForce bool

// initCmd scaffolds .relkit/config.yaml.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the default .relkit/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(repoRoot, config.Dir, config.FileName)

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", path)
		fmt.Println("set version_file, repo.owner, and repo.name to get started")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}

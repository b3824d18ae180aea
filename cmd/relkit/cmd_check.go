package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relkit/internal/version"
)

// checkCmd validates the version marker file.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the version marker file",
	Long: `Reads the configured version file and verifies its __version__ line
parses as v<major>.<minor>.<patch>[-<suffix>]. Exits non-zero on a
missing or malformed marker, so CI can gate on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := versionFilePath()
		v, err := version.ReadFile(path)
		if err != nil {
			return err
		}

		kind := "release"
		if v.IsDevMark() {
			kind = "dev build (commit " + v.Suffix + ")"
		} else if v.Suffix != "" {
			kind = "pre-release"
		}

		fmt.Printf("%s: %s (%s)\n", path, v, kind)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

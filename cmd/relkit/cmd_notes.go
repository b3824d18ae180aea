package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relkit/internal/notes"
	"relkit/internal/version"
)

var (
	notesFormat    string
	notesPreview   bool
	notesSummarize bool
	notesOut       string
)

// notesCmd generates release notes for the changes since the latest tag.
var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Generate release notes since the latest tag",
	Long: `Collects pull requests merged since the latest v* tag, groups them into
the configured changelog categories by label, and renders the notes.

When repo.owner/repo.name are configured the GitHub API supplies PR labels;
otherwise local git history is used and everything lands in the fallback
category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		current, err := version.ReadFile(versionFilePath())
		if err != nil {
			return err
		}

		changes, previousTag, err := gatherChanges(ctx)
		if err != nil {
			return err
		}

		doc, err := buildDocument(ctx, current, previousTag, changes, notesSummarize)
		if err != nil {
			return err
		}

		var out string
		switch notesFormat {
		case "markdown", "md":
			out = notes.Render(doc, cfg.Notes)
		case "json":
			out, err = notes.RenderJSON(doc)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q: want markdown or json", notesFormat)
		}

		if notesOut != "" {
			if err := os.WriteFile(notesOut, []byte(out), 0o644); err != nil {
				return fmt.Errorf("failed to write notes: %w", err)
			}
			fmt.Printf("wrote %s\n", notesOut)
			return nil
		}

		if notesPreview && notesFormat != "json" {
			rendered, err := notes.Preview(out)
			if err != nil {
				return err
			}
			fmt.Print(rendered)
			return nil
		}

		fmt.Print(out)
		return nil
	},
}

func init() {
	notesCmd.Flags().StringVar(&notesFormat, "format", "markdown", "output format: markdown or json")
	notesCmd.Flags().BoolVar(&notesPreview, "preview", false, "render the markdown for the terminal")
	notesCmd.Flags().BoolVar(&notesSummarize, "summarize", false, "prepend an AI-generated summary (requires ai.enabled)")
	notesCmd.Flags().StringVarP(&notesOut, "out", "o", "", "write output to a file")
	rootCmd.AddCommand(notesCmd)
}

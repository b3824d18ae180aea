package main

import (
	"context"
	"fmt"

	"relkit/cmd/relkit/wizard"
	"relkit/internal/notes"
	"relkit/internal/version"
)

// runWizard is the default action: pick a bump level interactively, review
// the notes, and run the release pipeline on confirmation.
func runWizard(ctx context.Context) error {
	current, err := version.ReadFile(versionFilePath())
	if err != nil {
		return err
	}

	changes, previousTag, err := gatherChanges(ctx)
	if err != nil {
		return err
	}
	doc, err := buildDocument(ctx, current, previousTag, changes, false)
	if err != nil {
		return err
	}

	preview, err := notes.Preview(notes.Render(doc, cfg.Notes))
	if err != nil {
		// A dumb terminal still gets the raw markdown.
		preview = notes.Render(doc, cfg.Notes)
	}

	res, err := wizard.Run(current, preview)
	if err != nil {
		return err
	}
	if !res.Confirmed {
		fmt.Println("aborted")
		return nil
	}

	return executeRelease(ctx, current, res.Next)
}

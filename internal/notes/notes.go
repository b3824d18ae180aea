// Package notes turns merged pull requests into categorized release notes.
// Categories, label routing, and line templates come from the release-notes
// configuration; rendering produces markdown or JSON.
package notes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"relkit/internal/config"
	"relkit/internal/logging"
)

// Change is one merged pull request considered for the notes.
type Change struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Labels []string `json:"labels"`
}

// Section is one rendered category with its changes in merge order.
type Section struct {
	Title   string   `json:"title"`
	Changes []Change `json:"changes"`
}

// Document is the complete release-notes document.
type Document struct {
	Version  string    `json:"version"`
	Previous string    `json:"previous,omitempty"`
	Date     time.Time `json:"date"`
	Summary  string    `json:"summary,omitempty"`
	Sections []Section `json:"sections"`
}

// Categorize assigns every change to the first configured category whose
// label set intersects the change's labels. Changes carrying an exclude
// label are dropped; changes matching nothing land in the fallback section.
// Input order (merge order) is preserved within each section.
func Categorize(changes []Change, cfg config.NotesConfig) []Section {
	log := logging.Get(logging.CategoryNotes)

	exclude := make(map[string]bool, len(cfg.ExcludeLabels))
	for _, l := range cfg.ExcludeLabels {
		exclude[strings.ToLower(l)] = true
	}

	// Label -> category index, first category wins on overlap.
	routing := make(map[string]int)
	for i, cat := range cfg.Categories {
		for _, l := range cat.Labels {
			key := strings.ToLower(l)
			if _, taken := routing[key]; !taken {
				routing[key] = i
			}
		}
	}

	buckets := make([][]Change, len(cfg.Categories))
	var fallback []Change

	for _, ch := range changes {
		if isExcluded(ch, exclude) {
			log.Debug("excluded #%d %q", ch.Number, ch.Title)
			continue
		}

		idx := -1
		for _, l := range ch.Labels {
			if i, ok := routing[strings.ToLower(l)]; ok && (idx == -1 || i < idx) {
				idx = i
			}
		}
		if idx >= 0 {
			buckets[idx] = append(buckets[idx], ch)
		} else {
			fallback = append(fallback, ch)
		}
	}

	var sections []Section
	for i, cat := range cfg.Categories {
		if len(buckets[i]) == 0 {
			continue
		}
		sections = append(sections, Section{Title: cat.Title, Changes: buckets[i]})
	}
	if len(fallback) > 0 {
		title := cfg.FallbackTitle
		if title == "" {
			title = "Other Changes"
		}
		sections = append(sections, Section{Title: title, Changes: fallback})
	}
	return sections
}

func isExcluded(ch Change, exclude map[string]bool) bool {
	for _, l := range ch.Labels {
		if exclude[strings.ToLower(l)] {
			return true
		}
	}
	return false
}

// Render expands the configured templates into a markdown document.
func Render(doc Document, cfg config.NotesConfig) string {
	changeTmpl := cfg.ChangeTemplate
	if changeTmpl == "" {
		changeTmpl = "- $TITLE (#$NUMBER) @$AUTHOR"
	}
	docTmpl := cfg.DocTemplate
	if docTmpl == "" {
		docTmpl = "## $VERSION ($DATE)\n\n$SUMMARY$CHANGES"
	}

	var body strings.Builder
	for i, sec := range doc.Sections {
		if i > 0 {
			body.WriteString("\n")
		}
		fmt.Fprintf(&body, "### %s\n\n", sec.Title)
		for _, ch := range sec.Changes {
			line := strings.NewReplacer(
				"$TITLE", ch.Title,
				"$NUMBER", strconv.Itoa(ch.Number),
				"$AUTHOR", ch.Author,
			).Replace(changeTmpl)
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	if body.Len() == 0 {
		body.WriteString("No user-facing changes.\n")
	}

	summary := doc.Summary
	if summary != "" && !strings.HasSuffix(summary, "\n") {
		summary += "\n\n"
	}

	out := strings.NewReplacer(
		"$VERSION", doc.Version,
		"$PREVIOUS", doc.Previous,
		"$DATE", doc.Date.Format("2006-01-02"),
		"$SUMMARY", summary,
		"$CHANGES", body.String(),
	).Replace(docTmpl)

	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// RenderJSON emits the document for machine consumers.
func RenderJSON(doc Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal notes: %w", err)
	}
	return string(data) + "\n", nil
}

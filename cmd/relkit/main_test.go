package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"relkit/internal/config"
	"relkit/internal/gitrepo"
	"relkit/internal/notes"
	"relkit/internal/store"
)

// setupGlobals points the command globals at a temp repo root.
func setupGlobals(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	repoRoot = root
	cfg = config.DefaultConfig()
	cfg.VersionFile = "version.txt"
	logger = zap.NewNop()

	t.Cleanup(func() {
		repoRoot = ""
		cfg = nil
	})
	return root
}

func TestCommitsToChanges(t *testing.T) {
	commits := []gitrepo.Commit{
		{Subject: "fix: second (#12)", Author: "bob", PRNumber: 12},
		{Subject: "feat: first", Author: "ann"},
	}

	changes := commitsToChanges(commits)

	if len(changes) != 2 {
		t.Fatalf("got %d changes", len(changes))
	}
	// Oldest first.
	if changes[0].Title != "feat: first" || changes[0].Author != "ann" {
		t.Errorf("changes[0] = %+v", changes[0])
	}
	if changes[1].Title != "fix: second" || changes[1].Number != 12 {
		t.Errorf("PR suffix should be stripped: %+v", changes[1])
	}
}

func TestCategoryCounts(t *testing.T) {
	doc := notes.Document{
		Sections: []notes.Section{
			{Title: "Bug Fixes", Changes: make([]notes.Change, 3)},
			{Title: "New Features", Changes: make([]notes.Change, 1)},
		},
	}

	counts, total := categoryCounts(doc)

	if total != 4 {
		t.Errorf("total = %d", total)
	}
	if counts["Bug Fixes"] != 3 || counts["New Features"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestVersionFilePath(t *testing.T) {
	root := setupGlobals(t)

	if got := versionFilePath(); got != filepath.Join(root, "version.txt") {
		t.Errorf("versionFilePath = %q", got)
	}

	cfg.VersionFile = "/abs/version.txt"
	if got := versionFilePath(); got != "/abs/version.txt" {
		t.Errorf("absolute path should pass through, got %q", got)
	}
}

func TestCheckCmd(t *testing.T) {
	root := setupGlobals(t)

	path := filepath.Join(root, "version.txt")
	if err := os.WriteFile(path, []byte("__version__: v1.2.3-a1b2c3d\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := checkCmd.RunE(checkCmd, nil); err != nil {
		t.Errorf("check failed on valid marker: %v", err)
	}

	if err := os.WriteFile(path, []byte("__version__: bogus\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := checkCmd.RunE(checkCmd, nil); err == nil {
		t.Error("check should fail on malformed marker")
	}
}

func TestBuildDocument_NoSummaryWhenDisabled(t *testing.T) {
	setupGlobals(t)
	cfg.AI.Enabled = false

	doc, err := buildDocument(t.Context(), mustParse(t, "v0.2.0"), "v0.1.0",
		[]notes.Change{{Number: 1, Title: "fix", Labels: []string{"bug"}}}, true)
	if err != nil {
		t.Fatalf("buildDocument failed: %v", err)
	}

	if doc.Summary != "" {
		t.Errorf("summary should be empty when ai.enabled=false, got %q", doc.Summary)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Title != "Bug Fixes" {
		t.Errorf("sections = %+v", doc.Sections)
	}
	if doc.Previous != "v0.1.0" {
		t.Errorf("previous = %q", doc.Previous)
	}
}

func TestRenderHistoryTable(t *testing.T) {
	out := renderHistoryTable([]store.Release{
		{Version: "v0.2.0", CreatedAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), PRCount: 4, Source: "release", PRURL: "https://example.com/pr/9"},
		{Version: "v0.1.0", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), PRCount: 2, Source: "bump"},
	})

	for _, want := range []string{"v0.2.0", "2026-03-14", "release", "https://example.com/pr/9", "v0.1.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDelta(t *testing.T) {
	out := renderDelta(store.Delta{
		From:    store.Release{Version: "v0.1.0"},
		To:      store.Release{Version: "v0.2.0"},
		ByTitle: map[string]int{"Bug Fixes": -2, "New Features": 3, "Documentation": 0},
	})

	for _, want := range []string{"v0.1.0 -> v0.2.0", "+3", "-2", "Bug Fixes", "New Features"} {
		if !strings.Contains(out, want) {
			t.Errorf("delta missing %q:\n%s", want, out)
		}
	}
}

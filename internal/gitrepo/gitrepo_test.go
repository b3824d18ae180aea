package gitrepo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestPRNumber(t *testing.T) {
	cases := []struct {
		subject string
		want    int
	}{
		{"Merge pull request #42 from acme/fix-crash", 42},
		{"feat: add bump command (#107)", 107},
		{"fix typo", 0},
		{"Merge branch 'main' into dev", 0},
		{"docs: mention #12 in readme", 0},
	}
	for _, tc := range cases {
		if got := prNumber(tc.subject); got != tc.want {
			t.Errorf("prNumber(%q) = %d, want %d", tc.subject, got, tc.want)
		}
	}
}

// initTestRepo creates a throwaway git repository with one initial commit.
func initTestRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	run("init", "-b", "main")
	run("config", "user.name", "test")
	run("config", "user.email", "test@example.com")
	if err := os.WriteFile(filepath.Join(dir, "version.txt"), []byte("__version__: v0.1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial commit")

	return Open(dir), dir
}

func commitFile(t *testing.T, dir, name, content, message string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{{"add", "."}, {"commit", "-m", message}} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
}

func TestHeadAndBranch(t *testing.T) {
	repo, _ := initTestRepo(t)
	ctx := context.Background()

	full, short, err := repo.Head(ctx)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if len(full) != 40 || len(short) != 7 || full[:7] != short {
		t.Errorf("Head = (%q, %q)", full, short)
	}

	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch = %q", branch)
	}
}

func TestLatestTag_NoTag(t *testing.T) {
	repo, _ := initTestRepo(t)

	_, err := repo.LatestTag(context.Background())
	if !errors.Is(err, ErrNoTag) {
		t.Errorf("expected ErrNoTag, got %v", err)
	}
}

func TestCommitsSince(t *testing.T) {
	repo, dir := initTestRepo(t)
	ctx := context.Background()

	tag := exec.Command("git", "tag", "v0.1.0")
	tag.Dir = dir
	if out, err := tag.CombinedOutput(); err != nil {
		t.Fatalf("git tag failed: %v\n%s", err, out)
	}

	commitFile(t, dir, "a.txt", "a", "feat: add a (#11)")
	commitFile(t, dir, "b.txt", "b", "Merge pull request #12 from acme/b")

	got, err := repo.LatestTag(ctx)
	if err != nil {
		t.Fatalf("LatestTag failed: %v", err)
	}
	if got != "v0.1.0" {
		t.Errorf("LatestTag = %q", got)
	}

	commits, err := repo.CommitsSince(ctx, "v0.1.0")
	if err != nil {
		t.Fatalf("CommitsSince failed: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("CommitsSince returned %d commits, want 2", len(commits))
	}
	// Newest first.
	if commits[0].PRNumber != 12 || commits[1].PRNumber != 11 {
		t.Errorf("PR numbers = %d, %d", commits[0].PRNumber, commits[1].PRNumber)
	}
	if commits[1].Subject != "feat: add a (#11)" {
		t.Errorf("Subject = %q", commits[1].Subject)
	}
}

func TestFileChangedInHead(t *testing.T) {
	repo, dir := initTestRepo(t)
	ctx := context.Background()

	changed, err := repo.FileChangedInHead(ctx, "version.txt")
	if err != nil {
		t.Fatalf("FileChangedInHead failed: %v", err)
	}
	if !changed {
		t.Error("version.txt changed in the initial commit")
	}

	commitFile(t, dir, "other.txt", "x", "unrelated change")

	changed, err = repo.FileChangedInHead(ctx, "version.txt")
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("version.txt did not change in HEAD")
	}
}

func TestIsCleanAndCommit(t *testing.T) {
	repo, dir := initTestRepo(t)
	ctx := context.Background()

	clean, err := repo.IsClean(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !clean {
		t.Error("fresh repo should be clean")
	}

	if err := os.WriteFile(filepath.Join(dir, "version.txt"), []byte("__version__: v0.2.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	clean, err = repo.IsClean(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if clean {
		t.Error("repo with modified file should be dirty")
	}

	if err := repo.CheckoutNew(ctx, "release/bump-v0.2.0"); err != nil {
		t.Fatalf("CheckoutNew failed: %v", err)
	}
	if err := repo.Add(ctx, "version.txt"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := repo.Commit(ctx, "chore: bump version to v0.2.0"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if branch != "release/bump-v0.2.0" {
		t.Errorf("CurrentBranch = %q", branch)
	}
}

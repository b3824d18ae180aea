// Package gitrepo inspects and mutates the local git repository by running
// the git binary. Every call is context-aware and bounded by a timeout.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"relkit/internal/logging"
)

// ErrNoTag is returned when the repository has no reachable v* tag.
var ErrNoTag = errors.New("no version tag found")

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 30 * time.Second

// Commit is one entry of the history between two refs.
type Commit struct {
	Hash      string
	ShortHash string
	Subject   string
	Author    string
	// PRNumber is the pull request extracted from the subject
	// (merge or squash style), 0 if none.
	PRNumber int
}

// Repo runs git commands rooted at a working directory.
type Repo struct {
	dir     string
	timeout time.Duration
	log     *logging.Logger
}

// Open returns a Repo for the given directory. The directory is not
// validated here; the first command fails with git's own diagnostic if it
// is not a repository.
func Open(dir string) *Repo {
	return &Repo{
		dir:     dir,
		timeout: DefaultTimeout,
		log:     logging.Get(logging.CategoryGit),
	}
}

// run executes git with the given arguments and returns trimmed stdout.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.log.Debug("git %s (%s)", strings.Join(args, " "), time.Since(start))

	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		r.log.Error("git %s failed: %s", strings.Join(args, " "), msg)
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Head returns the full and short (7-char) hash of HEAD.
func (r *Repo) Head(ctx context.Context) (full, short string, err error) {
	full, err = r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", "", err
	}
	if len(full) < 7 {
		return "", "", fmt.Errorf("unexpected rev-parse output %q", full)
	}
	return full, full[:7], nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// LatestTag returns the most recent v* tag reachable from HEAD.
func (r *Repo) LatestTag(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "describe", "--tags", "--abbrev=0", "--match", "v*")
	if err != nil {
		if strings.Contains(err.Error(), "No names found") ||
			strings.Contains(err.Error(), "cannot describe") ||
			strings.Contains(err.Error(), "No tags can describe") {
			return "", ErrNoTag
		}
		return "", err
	}
	if out == "" {
		return "", ErrNoTag
	}
	return out, nil
}

// TagDate returns the commit date of a tag.
func (r *Repo) TagDate(ctx context.Context, tag string) (time.Time, error) {
	out, err := r.run(ctx, "log", "-1", "--format=%cI", tag)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, out)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse tag date %q: %w", out, err)
	}
	return t, nil
}

// CommitsSince lists commits in (sinceRef, HEAD], newest first. An empty
// sinceRef lists the full history.
func (r *Repo) CommitsSince(ctx context.Context, sinceRef string) ([]Commit, error) {
	// %x1f separates fields, %x1e separates records. Subjects may contain
	// anything short of a newline, so printable separators are not safe.
	args := []string{"log", "--format=%H%x1f%h%x1f%an%x1f%s%x1e"}
	if sinceRef != "" {
		args = append(args, sinceRef+"..HEAD")
	}

	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var commits []Commit
	for _, record := range strings.Split(out, "\x1e") {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.Split(record, "\x1f")
		if len(fields) != 4 {
			return nil, fmt.Errorf("unexpected log record %q", record)
		}
		commits = append(commits, Commit{
			Hash:      fields[0],
			ShortHash: fields[1],
			Author:    fields[2],
			Subject:   fields[3],
			PRNumber:  prNumber(fields[3]),
		})
	}
	return commits, nil
}

// FileChangedInHead reports whether path was modified by the HEAD commit.
// This drives the auto-bump guard: a dev mark is only applied when the
// marker file did not change in the latest commit.
func (r *Repo) FileChangedInHead(ctx context.Context, path string) (bool, error) {
	out, err := r.run(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", "HEAD")
	if err != nil {
		return false, err
	}
	for _, changed := range strings.Split(out, "\n") {
		if strings.TrimSpace(changed) == path {
			return true, nil
		}
	}
	return false, nil
}

// IsClean reports whether the working tree has no staged or unstaged changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// CheckoutNew creates and checks out a branch.
func (r *Repo) CheckoutNew(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "checkout", "-b", branch)
	return err
}

// Add stages a path.
func (r *Repo) Add(ctx context.Context, path string) error {
	_, err := r.run(ctx, "add", "--", path)
	return err
}

// Commit records staged changes with the given message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes a branch to origin.
func (r *Repo) Push(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "push", "-u", "origin", branch)
	return err
}

var (
	mergeSubject  = regexp.MustCompile(`^Merge pull request #(\d+)\b`)
	squashSubject = regexp.MustCompile(`\(#(\d+)\)$`)
)

// prNumber extracts the PR number from a merge- or squash-style subject.
func prNumber(subject string) int {
	if m := mergeSubject.FindStringSubmatch(subject); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := squashSubject.FindStringSubmatch(strings.TrimSpace(subject)); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

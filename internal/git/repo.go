// Package git shells out to the git CLI to collect working-tree changes
// as ChangeRecords and to apply staging plans. The analysis engine never
// touches the working tree; everything that does lives here.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runGit executes one git command in dir and returns trimmed stdout.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// FindRoot returns the repository root for dir.
func FindRoot(ctx context.Context, dir string) (string, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	return out, nil
}

// CurrentBranch returns the checked-out branch name.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	return runGit(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// RecentCommits returns up to n one-line commit subjects on branch that
// are not on base. An empty base lists the latest commits on HEAD.
func RecentCommits(ctx context.Context, dir, base string, n int) ([]string, error) {
	args := []string{"log", fmt.Sprintf("--max-count=%d", n), "--pretty=format:%s"}
	if base != "" {
		args = append(args, base+"..HEAD")
	}
	out, err := runGit(ctx, dir, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// RemoteURL returns the fetch URL of origin, or "" when unset.
func RemoteURL(ctx context.Context, dir string) string {
	out, err := runGit(ctx, dir, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return out
}

// HasStagedChanges reports whether the index differs from HEAD.
func HasStagedChanges(ctx context.Context, dir string) (bool, error) {
	out, err := runGit(ctx, dir, "diff", "--cached", "--name-only")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

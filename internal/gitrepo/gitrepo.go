package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Client issues git commands against a single working tree. The approval
// layer assumes exclusive write access during a transition and serializes
// mutating calls itself; Client adds no locking of its own.
type Client struct {
	path string
}

func New(path string) *Client {
	return &Client{path: path}
}

// Path returns the working tree location.
func (c *Client) Path() string { return c.path }

// Status returns `git status --porcelain` output; empty means clean.
func (c *Client) Status(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("gitrepo.Client.Status: %w", err)
	}
	return out, nil
}

// Dirty reports whether the working tree has uncommitted differences,
// including untracked files.
func (c *Client) Dirty(ctx context.Context) (bool, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(status) != "", nil
}

// Diff returns the working tree diff against HEAD. Untracked files appear in
// Status but not here; both are surfaced to reviewers.
func (c *Client) Diff(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "diff", "HEAD")
	if err != nil {
		return "", fmt.Errorf("gitrepo.Client.Diff: %w", err)
	}
	return out, nil
}

// AddAll stages every change in the working tree, untracked files included.
func (c *Client) AddAll(ctx context.Context) error {
	if _, err := c.run(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("gitrepo.Client.AddAll: %w", err)
	}
	return nil
}

// Commit records the staged changes with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	if _, err := c.run(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("gitrepo.Client.Commit: %w", err)
	}
	return nil
}

// ResetHard discards all tracked modifications back to HEAD.
func (c *Client) ResetHard(ctx context.Context) error {
	if _, err := c.run(ctx, "reset", "--hard", "HEAD"); err != nil {
		return fmt.Errorf("gitrepo.Client.ResetHard: %w", err)
	}
	return nil
}

// CleanUntracked removes untracked files and directories.
func (c *Client) CleanUntracked(ctx context.Context) error {
	if _, err := c.run(ctx, "clean", "-fd"); err != nil {
		return fmt.Errorf("gitrepo.Client.CleanUntracked: %w", err)
	}
	return nil
}

// CommitCount returns the number of commits reachable from HEAD.
func (c *Client) CommitCount(ctx context.Context) (int, error) {
	out, err := c.run(ctx, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, fmt.Errorf("gitrepo.Client.CommitCount: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("gitrepo.Client.CommitCount: parse %q: %w", out, err)
	}
	return n, nil
}

// LastCommitMessage returns the full message of the HEAD commit.
func (c *Client) LastCommitMessage(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "log", "-1", "--pretty=%B")
	if err != nil {
		return "", fmt.Errorf("gitrepo.Client.LastCommitMessage: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", c.path}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, detail)
	}

	return stdout.String(), nil
}

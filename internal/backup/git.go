package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// commitMessage is used for every backup commit.
const commitMessage = "backup: update widget preferences"

// GitDestination keeps the latest export in a file of a local clone and
// pushes a commit whenever the export changes.
type GitDestination struct {
	repo   string
	file   string
	branch string
}

// NewGitDestination creates a git destination. repo is the path to an
// existing local clone; file is relative to it.
func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{repo: repo, file: file, branch: branch}
}

// Write stores data in the tracked file. An export identical to the file
// already on the branch produces no commit and no push.
func (d *GitDestination) Write(ctx context.Context, data []byte) error {
	if _, err := d.git(ctx, "checkout", d.branch); err != nil {
		return err
	}
	// The remote branch may not exist yet.
	_, _ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	path := filepath.Join(d.repo, d.file)
	same, err := sameContent(path, data)
	if err != nil {
		return err
	}
	if same {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(d.file), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", d.file, err)
	}

	if _, err := d.git(ctx, "add", "--", d.file); err != nil {
		return err
	}
	staged, err := d.git(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(staged)) == 0 {
		return nil
	}
	if _, err := d.git(ctx, "commit", "-m", commitMessage); err != nil {
		return err
	}
	_, err = d.git(ctx, "push", "origin", d.branch)
	return err
}

// sameContent reports whether the file at path already holds data.
func sameContent(path string, data []byte) (bool, error) {
	current, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return bytes.Equal(current, data), nil
}

// git runs a git subcommand in the clone and returns its stdout. Failures
// carry the subcommand and its trimmed stderr.
func (d *GitDestination) git(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return stdout.Bytes(), nil
}

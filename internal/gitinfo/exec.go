package gitinfo

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
)

var _ interfaces.GitHistory = (*ExecHistory)(nil)

const (
	gitBinary = "git"

	// DateLayout is the git "%ai" date format
	DateLayout = "2006-01-02 15:04:05 -0700"

	logFormat        = "--pretty=format:%H%x09%ai%x09%ae"
	blameAuthorEmail = "author-mail "
)

// ExecHistory reads history by running the git binary
type ExecHistory struct {
	binary  string
	timeout time.Duration
}

// NewExecHistory returns a history backed by the git binary found in PATH
func NewExecHistory(timeout time.Duration) *ExecHistory {
	return &ExecHistory{binary: gitBinary, timeout: timeout}
}

func (h *ExecHistory) Log(ctx context.Context, path string) ([]model.Commit, error) {
	dir, name := filepath.Split(path)
	if err := h.checkRepository(ctx, dir); err != nil {
		return nil, err
	}

	out, err := h.run(ctx, dir, "log", logFormat, "--", name)
	if err != nil {
		return nil, err
	}

	return parseLog(out)
}

func (h *ExecHistory) Blame(ctx context.Context, path string) ([]string, error) {
	dir, name := filepath.Split(path)
	out, err := h.run(ctx, dir, "blame", "--line-porcelain", "--", name)
	if err != nil {
		return nil, err
	}
	return parseBlame(out), nil
}

func (h *ExecHistory) RemoteURL(ctx context.Context, dir string) (string, error) {
	out, err := h.run(ctx, dir, "config", "--get", "remote.origin.url")
	if err != nil {
		return "", errm.Wrap(ErrNoRemote, err.Error())
	}
	return strings.TrimSpace(string(out)), nil
}

func (h *ExecHistory) checkRepository(ctx context.Context, dir string) error {
	out, err := h.run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(string(out)) != "true" {
		return ErrNotRepository
	}
	return nil
}

func (h *ExecHistory) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.binary, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, errm.Wrap(err, "git "+args[0]+": "+strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func parseLog(out []byte) ([]model.Commit, error) {
	var commits []model.Commit
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 2 {
			return nil, errm.New("unexpected log line: %q", line)
		}
		when, err := time.Parse(DateLayout, parts[1])
		if err != nil {
			return nil, errm.Wrap(err, "failed to parse commit date")
		}
		c := model.Commit{Hash: parts[0], When: when}
		if len(parts) == 3 {
			c.Email = strings.TrimSpace(parts[2])
		}
		commits = append(commits, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, errm.Wrap(err, "failed to read log")
	}
	return commits, nil
}

func parseBlame(out []byte) []string {
	var emails []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, blameAuthorEmail) {
			continue
		}
		email := strings.TrimPrefix(line, blameAuthorEmail)
		emails = append(emails, strings.Trim(strings.TrimSpace(email), "<>"))
	}
	return emails
}

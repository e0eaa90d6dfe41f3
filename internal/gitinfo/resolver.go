// Package gitinfo resolves per-file git facts: creation and modification dates
// and the number of changes made by every author.
package gitinfo

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/sync/errgroup"
)

// UncommittedEmail is the author git blame reports for lines not committed yet
const UncommittedEmail = "not.committed.yet"

// NewHistory returns the history backend selected in the config
func NewHistory(cfg Config) interfaces.GitHistory {
	switch cfg.Backend {
	case GoGit:
		return NewGoGitHistory()
	default:
		return NewExecHistory(cfg.Timeout)
	}
}

// Resolver computes git records and keeps them in memory for the lifetime of a batch
type Resolver struct {
	history interfaces.GitHistory
	cfg     Config
	records *abstract.SafeMap[string, model.GitRecord]
	log     logze.Logger
}

func New(cfg Config, history interfaces.GitHistory) *Resolver {
	return &Resolver{
		history: history,
		cfg:     cfg,
		records: abstract.NewSafeMap[string, model.GitRecord](),
		log:     logze.With("module", "gitinfo"),
	}
}

// Resolve returns the git record of a file. Any backend failure results in
// a record with placeholder dates and no authors.
func (r *Resolver) Resolve(ctx context.Context, path string) model.GitRecord {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if rec, ok := r.records.Lookup(abs); ok {
		return rec
	}

	rec := r.compute(ctx, abs)
	if ctx.Err() == nil {
		r.records.Set(abs, rec)
	}
	return rec
}

// ResolveAll computes records for all paths in parallel
func (r *Resolver) ResolveAll(ctx context.Context, paths []string) map[string]model.GitRecord {
	timer := abstract.StartTimer()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, path := range paths {
		g.Go(func() error {
			r.Resolve(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]model.GitRecord, len(paths))
	var withHistory int
	for _, path := range paths {
		rec := r.Resolve(ctx, path)
		if rec.HasHistory() {
			withHistory++
		}
		out[path] = rec
	}

	r.log.Info("git history resolved", "files", len(paths), "with_history", withHistory, "elapsed", timer.ElapsedTime().String())

	return out
}

// RepoURL returns the https URL of the origin remote of the repository containing dir.
// It returns an empty string when there is no such remote.
func (r *Resolver) RepoURL(ctx context.Context, dir string) string {
	raw, err := r.history.RemoteURL(ctx, dir)
	if err != nil {
		r.log.DebugIf(r.cfg.Verbose, "cannot get remote url", "dir", dir, "error", err)
		return ""
	}
	return NormalizeRemoteURL(raw)
}

func (r *Resolver) compute(ctx context.Context, path string) model.GitRecord {
	rec := model.NoHistory()

	commits, err := r.history.Log(ctx, path)
	if err != nil {
		r.log.DebugIf(r.cfg.Verbose, "no git history", "path", path, "error", err)
		return rec
	}
	if len(commits) > 0 {
		rec.Modified = commits[0].When
		rec.Created = commits[len(commits)-1].When
	}

	counts := newCounter()
	for _, c := range commits {
		if email := r.email(c.Email); email != "" {
			counts.add(email, 1)
		}
	}

	blame, err := r.history.Blame(ctx, path)
	if err != nil {
		r.log.DebugIf(r.cfg.Verbose, "cannot blame file", "path", path, "error", err)
	}
	for _, email := range blame {
		if strings.TrimSpace(email) == UncommittedEmail {
			continue
		}
		// authors of surviving lines get credit even without commits in the log
		if email = r.email(email); email != "" && !counts.has(email) {
			counts.add(email, 1)
		}
	}

	rec.Authors = counts.list()

	return rec
}

func (r *Resolver) email(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return r.cfg.DefaultAuthor
	}
	return email
}

// NormalizeRemoteURL converts a remote URL to a browsable https URL
func NormalizeRemoteURL(raw string) string {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	raw = strings.TrimSuffix(raw, ".git")
	if raw == "" {
		return ""
	}

	if rest, ok := strings.CutPrefix(raw, "git@"); ok {
		return "https://" + strings.Replace(rest, ":", "/", 1)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = "https"
	u.User = nil
	return u.String()
}

// UniqueEmails returns author emails of all records in first-seen order
func UniqueEmails(records ...model.GitRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		for _, email := range rec.Emails() {
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = struct{}{}
			out = append(out, email)
		}
	}
	return out
}

type counter struct {
	index map[string]int
	authors []model.AuthorCount
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) has(email string) bool {
	_, ok := c.index[email]
	return ok
}

func (c *counter) add(email string, n int) {
	if i, ok := c.index[email]; ok {
		c.authors[i].Changes += n
		return
	}
	c.index[email] = len(c.authors)
	c.authors = append(c.authors, model.AuthorCount{Email: email, Changes: n})
}

func (c *counter) list() []model.AuthorCount {
	return c.authors
}

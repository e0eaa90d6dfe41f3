package gitinfo

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
)

var _ interfaces.GitHistory = (*GoGitHistory)(nil)

// GoGitHistory reads history with go-git, opened repositories are reused
type GoGitHistory struct {
	mu    sync.Mutex
	repos map[string]*git.Repository
}

func NewGoGitHistory() *GoGitHistory {
	return &GoGitHistory{repos: make(map[string]*git.Repository)}
}

func (h *GoGitHistory) Log(ctx context.Context, path string) ([]model.Commit, error) {
	repo, rel, err := h.open(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return nil, errm.Wrap(err, "failed to read log")
	}
	defer iter.Close()

	var commits []model.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, model.Commit{
			Hash:  c.Hash.String(),
			Email: c.Author.Email,
			When:  c.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to iterate log")
	}

	return commits, nil
}

func (h *GoGitHistory) Blame(ctx context.Context, path string) ([]string, error) {
	repo, rel, err := h.open(path)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, errm.Wrap(err, "failed to get head")
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, errm.Wrap(err, "failed to get head commit")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blame, err := git.Blame(commit, rel)
	if err != nil {
		return nil, errm.Wrap(err, "failed to blame")
	}

	emails := make([]string, 0, len(blame.Lines))
	for _, line := range blame.Lines {
		emails = append(emails, line.Author)
	}
	return emails, nil
}

func (h *GoGitHistory) RemoteURL(_ context.Context, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errm.Wrap(err, "failed to get absolute path")
	}
	repo, _, err := h.repository(abs)
	if err != nil {
		return "", err
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", errm.Wrap(ErrNoRemote, err.Error())
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", ErrNoRemote
	}
	return urls[0], nil
}

// open returns the repository containing path and the slash separated path relative to its worktree
func (h *GoGitHistory) open(path string) (*git.Repository, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", errm.Wrap(err, "failed to get absolute path")
	}
	repo, root, err := h.repository(filepath.Dir(abs))
	if err != nil {
		return nil, "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return nil, "", errm.Wrap(err, "failed to get relative path")
	}
	return repo, filepath.ToSlash(rel), nil
}

// repository returns the repository containing dir and its worktree root
func (h *GoGitHistory) repository(dir string) (*git.Repository, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for root, repo := range h.repos {
		if dir == root || strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return repo, root, nil
		}
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, "", errm.Wrap(ErrNotRepository, err.Error())
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", errm.Wrap(ErrNotRepository, err.Error())
	}
	root := wt.Filesystem.Root()
	h.repos[root] = repo

	return repo, root, nil
}

package interfaces

import (
	"context"

	"github.com/maxbolgarin/docmeta/internal/model"
)

// GitHistory defines the interface for querying version control history of a file
type GitHistory interface {
	// Log returns commits touching the file, newest first
	Log(ctx context.Context, path string) ([]model.Commit, error)
	// Blame returns the author email of every current line of the file
	Blame(ctx context.Context, path string) ([]string, error)
	// RemoteURL returns the origin remote URL of the repository containing dir
	RemoteURL(ctx context.Context, dir string) (string, error)
}

// UserDirectory defines the interface for a remote user directory (GitHub, GitLab, etc.)
type UserDirectory interface {
	// FindByEmail returns nil user without error when the directory confirms there is no match
	FindByEmail(ctx context.Context, email string) (*model.DirectoryUser, error)
	// Host returns the public web host of the directory, e.g. github.com
	Host() string
}

// IdentityLookup defines read access to resolved identities
type IdentityLookup interface {
	Lookup(email string) (model.Identity, bool)
}

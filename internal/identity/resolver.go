// Package identity maps commit emails to public platform identities.
// Answers, including "not found", are kept in a YAML cache that is written
// by a single coordinator and handed to workers as read-only snapshots.
package identity

import (
	"context"
	"strings"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

type avatarVerifier interface {
	Verify(ctx context.Context, avatarURL string) (string, error)
}

// NewDirectory returns the user directory selected in the config, nil for None
func NewDirectory(cfg Config) (interfaces.UserDirectory, error) {
	switch cfg.Directory {
	case GitHub:
		return NewGitHubDirectory(cfg)
	case GitLab:
		return NewGitLabDirectory(cfg)
	default:
		return nil, nil
	}
}

// Resolver resolves emails through the cache, noreply parsing and a remote directory
type Resolver struct {
	cfg       Config
	cache     *Cache
	directory interfaces.UserDirectory
	avatars   avatarVerifier
	limiter   *rate.Limiter
	group     singleflight.Group
	log       logze.Logger
}

// New creates a resolver, directory may be nil to disable remote lookups
func New(cfg Config, cache *Cache, directory interfaces.UserDirectory) (*Resolver, error) {
	r := &Resolver{
		cfg:       cfg,
		cache:     cache,
		directory: directory,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		log:       logze.With("module", "identity"),
	}
	if !cfg.SkipAvatarCheck {
		verifier, err := NewAvatarVerifier(cfg.UserAgent, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		r.avatars = verifier
	}
	return r, nil
}

// Host is the platform host used for profile URLs
func (r *Resolver) Host() string {
	if r.directory != nil {
		return r.directory.Host()
	}
	return githubHost
}

// Contributors returns a badge builder reading identities from lookup,
// unresolved authors link to repoURL
func (r *Resolver) Contributors(lookup interfaces.IdentityLookup, repoURL string) Contributors {
	return Contributors{
		Lookup:        lookup,
		Host:          r.Host(),
		RepoURL:       repoURL,
		DefaultAvatar: r.cfg.DefaultAvatar,
	}
}

// Resolve returns the identity of an email. A confirmed absence is cached as an
// identity without username and is never looked up again; transport errors and
// timeouts give an unknown identity that is not cached.
func (r *Resolver) Resolve(ctx context.Context, email string) model.Identity {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.Identity{}
	}
	if id, ok := r.cache.Lookup(email); ok {
		return id
	}

	v, _, _ := r.group.Do(email, func() (any, error) {
		if id, ok := r.cache.Lookup(email); ok {
			return id, nil
		}
		id, err := r.resolve(ctx, email)
		if err != nil {
			r.log.DebugIf(r.cfg.Verbose, "cannot resolve author", "email", email, "error", err)
			return model.Identity{Email: email}, nil
		}
		r.cache.Put(id)
		return id, nil
	})

	return v.(model.Identity)
}

// ResolveAll resolves every email once and saves the cache if it changed
func (r *Resolver) ResolveAll(ctx context.Context, emails []string) error {
	timer := abstract.StartTimer()

	var found int
	for _, email := range emails {
		if ctx.Err() != nil {
			break
		}
		if r.Resolve(ctx, email).Found() {
			found++
		}
	}

	saved, err := r.cache.Save()
	if err != nil {
		return errm.Wrap(err, "failed to save authors cache")
	}

	r.log.Info("authors resolved", "emails", len(emails), "found", found, "cache_saved", saved, "elapsed", timer.ElapsedTime().String())

	return nil
}

// Snapshot returns a read-only copy of the cache for workers
func (r *Resolver) Snapshot() Snapshot {
	return r.cache.Snapshot()
}

func (r *Resolver) resolve(ctx context.Context, email string) (model.Identity, error) {
	if username, host, ok := ParseNoreply(email); ok {
		avatar := r.verifyAvatar(ctx, ConventionalAvatar(host, username))
		return knownIdentity(email, username, avatar, ProfileURL(host, username)), nil
	}

	if r.directory == nil {
		return model.Identity{}, errLookupDisabled
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return model.Identity{}, errm.Wrap(err, "rate limit")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	user, err := r.directory.FindByEmail(lookupCtx, email)
	if err != nil {
		return model.Identity{}, err
	}
	if user == nil || user.Username == "" {
		return model.Identity{Email: email}, nil
	}

	avatar := user.AvatarURL
	if avatar != "" {
		avatar = r.verifyAvatar(ctx, avatar)
	}

	profile := lang.Check(user.ProfileURL, ProfileURL(r.Host(), user.Username))
	return knownIdentity(email, user.Username, avatar, profile), nil
}

func (r *Resolver) verifyAvatar(ctx context.Context, avatarURL string) string {
	if r.avatars == nil {
		return avatarURL
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	final, err := r.avatars.Verify(ctx, avatarURL)
	if err != nil {
		r.log.DebugIf(r.cfg.Verbose, "cannot verify avatar", "url", avatarURL, "error", err)
		return avatarURL
	}
	return final
}

func knownIdentity(email, username, avatar, profile string) model.Identity {
	id := model.Identity{Email: email, Username: &username, ProfileURL: profile}
	if avatar != "" {
		id.Avatar = &avatar
	}
	return id
}

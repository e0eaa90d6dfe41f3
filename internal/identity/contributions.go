package identity

import (
	"cmp"
	"slices"

	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/lang"
)

// Contributors builds author badges from git records
type Contributors struct {
	Lookup interfaces.IdentityLookup
	// Host is the platform host of profile URLs for identities cached without one
	Host string
	// RepoURL is the profile fallback for unresolved authors
	RepoURL       string
	DefaultAvatar string
}

// Build returns contributions ordered by descending number of changes.
// Emails resolving to the same username are merged. Equal counts keep record order.
func (c Contributors) Build(rec model.GitRecord) []model.Contribution {
	index := make(map[string]int, len(rec.Authors))
	out := make([]model.Contribution, 0, len(rec.Authors))

	for _, a := range rec.Authors {
		var id model.Identity
		if c.Lookup != nil {
			id, _ = c.Lookup.Lookup(a.Email)
		}

		name, profile := a.Email, c.RepoURL
		if id.Found() {
			name = *id.Username
			profile = lang.Check(id.ProfileURL, ProfileURL(c.Host, name))
		}
		avatar := c.DefaultAvatar
		if id.Avatar != nil && *id.Avatar != "" {
			avatar = *id.Avatar
		}

		if i, ok := index[name]; ok {
			out[i].Changes += a.Changes
			continue
		}
		index[name] = len(out)
		out = append(out, model.Contribution{
			Name:       name,
			ProfileURL: profile,
			Changes:    a.Changes,
			Avatar:     avatar,
		})
	}

	slices.SortStableFunc(out, func(a, b model.Contribution) int {
		return cmp.Compare(b.Changes, a.Changes)
	})

	return out
}

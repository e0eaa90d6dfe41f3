package identity

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestContributionsBuild(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "authors.yaml"))
	alice, avatar := "alice", "https://avatars.example.com/u/1?v=4"
	cache.Put(model.Identity{Email: "a@work.com", Username: &alice, Avatar: &avatar})
	cache.Put(model.Identity{Email: "a@home.com", Username: &alice, Avatar: &avatar})
	cache.Put(model.Identity{Email: "ghost@example.com"})

	c := Contributors{
		Lookup:        cache.Snapshot(),
		Host:          "github.com",
		RepoURL:       "https://github.com/org/docs",
		DefaultAvatar: DefaultAvatar,
	}
	rec := model.GitRecord{Authors: []model.AuthorCount{
		{Email: "ghost@example.com", Changes: 2},
		{Email: "a@work.com", Changes: 1},
		{Email: "unknown@example.com", Changes: 2},
		{Email: "a@home.com", Changes: 2},
	}}

	assert.Equal(t, []model.Contribution{
		{Name: "alice", ProfileURL: "https://github.com/alice", Changes: 3, Avatar: avatar},
		{Name: "ghost@example.com", ProfileURL: "https://github.com/org/docs", Changes: 2, Avatar: DefaultAvatar},
		{Name: "unknown@example.com", ProfileURL: "https://github.com/org/docs", Changes: 2, Avatar: DefaultAvatar},
	}, c.Build(rec))
}

func TestContributionsEmpty(t *testing.T) {
	assert.Empty(t, Contributors{}.Build(model.GitRecord{}))
}

func TestContributionsOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		rec := model.GitRecord{}
		for i := range n {
			rec.Authors = append(rec.Authors, model.AuthorCount{
				Email:   fmt.Sprintf("user%d@example.com", i),
				Changes: rapid.IntRange(1, 5).Draw(t, "changes"),
			})
		}

		out := Contributors{DefaultAvatar: DefaultAvatar}.Build(rec)
		if len(out) != n {
			t.Fatalf("expected %d contributions, got %d", n, len(out))
		}

		position := make(map[string]int, n)
		for i, a := range rec.Authors {
			position[a.Email] = i
		}
		for i := 1; i < len(out); i++ {
			prev, cur := out[i-1], out[i]
			if prev.Changes < cur.Changes {
				t.Fatalf("not sorted: %v", out)
			}
			if prev.Changes == cur.Changes && position[prev.Name] > position[cur.Name] {
				t.Fatalf("ties are not stable: %v", out)
			}
		}
	})
}

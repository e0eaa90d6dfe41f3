package identity

import (
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"gopkg.in/yaml.v3"
)

var (
	_ interfaces.IdentityLookup = (*Cache)(nil)
	_ interfaces.IdentityLookup = Snapshot{}
)

type entry struct {
	Username *string `yaml:"username"`
	Avatar   *string `yaml:"avatar"`
	Profile  string  `yaml:"profile_url,omitempty"`
}

func (e entry) identity(email string) model.Identity {
	return model.Identity{Email: email, Username: e.Username, Avatar: e.Avatar, ProfileURL: e.Profile}
}

// Cache maps emails to resolved identities. Negative answers are stored as
// entries with nil username and avatar. The backing file is only written by Save.
type Cache struct {
	path    string
	entries map[string]entry
	dirty   bool
	mu      sync.Mutex
}

// NewCache returns an empty cache persisted to path
func NewCache(path string) *Cache {
	return &Cache{path: path, entries: make(map[string]entry)}
}

// LoadCache reads the cache file, a missing file gives an empty cache
func LoadCache(path string) (*Cache, error) {
	c := NewCache(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errm.Wrap(err, "failed to read cache")
	}
	if err := yaml.Unmarshal(data, &c.entries); err != nil {
		return nil, errm.Wrap(err, "failed to parse cache")
	}
	if c.entries == nil {
		c.entries = make(map[string]entry)
	}

	return c, nil
}

// Lookup returns the cached identity of an email
func (c *Cache) Lookup(email string) (model.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[email]
	if !ok {
		return model.Identity{}, false
	}
	return e.identity(email), true
}

// Put stores an identity and marks the cache as changed
func (c *Cache) Put(id model.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id.Email] = entry{Username: id.Username, Avatar: id.Avatar, Profile: id.ProfileURL}
	c.dirty = true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Dirty reports whether entries were added since the cache was loaded or saved
func (c *Cache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Save overwrites the cache file if anything changed. It returns true if the file was written.
func (c *Cache) Save() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return false, nil
	}

	data, err := yaml.Marshal(c.entries)
	if err != nil {
		return false, errm.Wrap(err, "failed to marshal cache")
	}
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, errm.Wrap(err, "failed to create cache dir")
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return false, errm.Wrap(err, "failed to write cache")
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return false, errm.Wrap(err, "failed to replace cache")
	}
	c.dirty = false

	return true, nil
}

// Snapshot returns an immutable copy of the current entries
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{entries: maps.Clone(c.entries)}
}

// Snapshot is a read-only view of the cache handed to workers
type Snapshot struct {
	entries map[string]entry
}

func (s Snapshot) Lookup(email string) (model.Identity, bool) {
	e, ok := s.entries[email]
	if !ok {
		return model.Identity{}, false
	}
	return e.identity(email), true
}

// Clone returns a deep copy that shares no memory with s
func (s Snapshot) Clone() Snapshot {
	out := make(map[string]entry, len(s.entries))
	for email, e := range s.entries {
		out[email] = entry{Username: clonePtr(e.Username), Avatar: clonePtr(e.Avatar), Profile: e.Profile}
	}
	return Snapshot{entries: out}
}

func (s Snapshot) Len() int {
	return len(s.entries)
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

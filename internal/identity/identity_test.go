package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users map[string]*model.DirectoryUser
	delay time.Duration
	err   error
	host  string
	calls atomic.Int32
}

func (d *fakeDirectory) FindByEmail(ctx context.Context, email string) (*model.DirectoryUser, error) {
	d.calls.Add(1)
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.users[email], nil
}

func (d *fakeDirectory) Host() string {
	if d.host != "" {
		return d.host
	}
	return "github.com"
}

type fakeVerifier struct {
	calls atomic.Int32
}

func (v *fakeVerifier) Verify(_ context.Context, avatarURL string) (string, error) {
	v.calls.Add(1)
	return avatarURL + "?verified=1", nil
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := Config{SkipAvatarCheck: true, RateLimit: 1000, Burst: 10}
	require.NoError(t, cfg.PrepareAndValidate())
	return cfg
}

func newTestResolver(t *testing.T, cfg Config, dir *fakeDirectory) (*Resolver, *Cache) {
	t.Helper()
	cache := NewCache(filepath.Join(t.TempDir(), "authors.yaml"))
	r, err := New(cfg, cache, nil)
	require.NoError(t, err)
	if dir != nil {
		r.directory = dir
	}
	return r, cache
}

func TestParseNoreply(t *testing.T) {
	for _, tc := range []struct {
		email, user, host string
		ok                bool
	}{
		{"12345+alice@users.noreply.github.com", "alice", "github.com", true},
		{"alice@users.noreply.github.com", "alice", "github.com", true},
		{"7+bob-smith@users.noreply.GitLab.example.com", "bob-smith", "gitlab.example.com", true},
		{"alice@example.com", "", "", false},
		{"users.noreply.github.com", "", "", false},
		{"+alice@users.noreply.github.com", "", "", false},
		{"", "", "", false},
	} {
		user, host, ok := ParseNoreply(tc.email)
		assert.Equal(t, tc.ok, ok, tc.email)
		assert.Equal(t, tc.user, user, tc.email)
		assert.Equal(t, tc.host, host, tc.email)
	}
}

func TestResolveNoreplyWithoutNetwork(t *testing.T) {
	dir := &fakeDirectory{}
	r, cache := newTestResolver(t, testConfig(t), dir)
	verifier := &fakeVerifier{}
	r.avatars = verifier

	id := r.Resolve(context.Background(), "12345+alice@users.noreply.github.com")

	require.True(t, id.Found())
	assert.Equal(t, "alice", *id.Username)
	assert.Equal(t, "https://github.com/alice.png?verified=1", *id.Avatar)
	assert.Equal(t, int32(0), dir.calls.Load())
	assert.Equal(t, int32(1), verifier.calls.Load())
	assert.True(t, cache.Dirty())
}

func TestResolveDirectoryMatch(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*model.DirectoryUser{
		"a@example.com": {Username: "alice", AvatarURL: "https://avatars.example.com/u/1"},
	}}
	r, cache := newTestResolver(t, testConfig(t), dir)

	id := r.Resolve(context.Background(), " a@example.com ")
	require.True(t, id.Found())
	assert.Equal(t, "alice", *id.Username)
	assert.Equal(t, "https://avatars.example.com/u/1", *id.Avatar)

	cached, ok := cache.Lookup("a@example.com")
	require.True(t, ok)
	assert.Equal(t, id, cached)
}

func TestResolveProfileFollowsPlatform(t *testing.T) {
	dir := &fakeDirectory{host: "gitlab.com", users: map[string]*model.DirectoryUser{
		"b@example.com": {Username: "bob", ProfileURL: "https://gitlab.com/bob"},
		"c@example.com": {Username: "carol"},
	}}
	r, cache := newTestResolver(t, testConfig(t), dir)

	noreply := r.Resolve(context.Background(), "12345+alice@users.noreply.github.com")
	assert.Equal(t, "https://github.com/alice", noreply.ProfileURL)

	bob := r.Resolve(context.Background(), "b@example.com")
	assert.Equal(t, "https://gitlab.com/bob", bob.ProfileURL)

	carol := r.Resolve(context.Background(), "c@example.com")
	assert.Equal(t, "https://gitlab.com/carol", carol.ProfileURL)

	contributions := r.Contributors(cache.Snapshot(), "https://gitlab.com/org/docs").Build(model.GitRecord{
		Authors: []model.AuthorCount{
			{Email: "12345+alice@users.noreply.github.com", Changes: 2},
			{Email: "b@example.com", Changes: 1},
		},
	})
	require.Len(t, contributions, 2)
	assert.Equal(t, "https://github.com/alice", contributions[0].ProfileURL)
	assert.Equal(t, "https://gitlab.com/bob", contributions[1].ProfileURL)
}

func TestResolveNegativeIsTerminal(t *testing.T) {
	dir := &fakeDirectory{}
	r, cache := newTestResolver(t, testConfig(t), dir)

	first := r.Resolve(context.Background(), "ghost@example.com")
	second := r.Resolve(context.Background(), "ghost@example.com")

	assert.Equal(t, first, second)
	assert.False(t, first.Found())
	assert.Nil(t, first.Avatar)
	assert.Equal(t, int32(1), dir.calls.Load())

	_, ok := cache.Lookup("ghost@example.com")
	assert.True(t, ok, "confirmed absence is cached")
}

func TestResolveTimeoutIsNotCached(t *testing.T) {
	dir := &fakeDirectory{delay: time.Second}
	cfg := testConfig(t)
	cfg.Timeout = 20 * time.Millisecond
	r, cache := newTestResolver(t, cfg, dir)

	id := r.Resolve(context.Background(), "slow@example.com")
	assert.False(t, id.Found())
	_, ok := cache.Lookup("slow@example.com")
	assert.False(t, ok)
	assert.False(t, cache.Dirty())

	r.Resolve(context.Background(), "slow@example.com")
	assert.Equal(t, int32(2), dir.calls.Load(), "transient failures are retried")
}

func TestResolveTransportErrorIsNotCached(t *testing.T) {
	dir := &fakeDirectory{err: assert.AnError}
	r, cache := newTestResolver(t, testConfig(t), dir)

	assert.False(t, r.Resolve(context.Background(), "a@example.com").Found())
	assert.Equal(t, 0, cache.Len())
}

func TestResolveBlankEmail(t *testing.T) {
	dir := &fakeDirectory{}
	r, cache := newTestResolver(t, testConfig(t), dir)

	assert.Equal(t, model.Identity{}, r.Resolve(context.Background(), "  "))
	assert.Equal(t, int32(0), dir.calls.Load())
	assert.Equal(t, 0, cache.Len())
}

func TestResolveWithoutDirectory(t *testing.T) {
	r, cache := newTestResolver(t, testConfig(t), nil)

	assert.False(t, r.Resolve(context.Background(), "a@example.com").Found())
	assert.True(t, r.Resolve(context.Background(), "alice@users.noreply.github.com").Found())
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, "github.com", r.Host())
}

func TestResolveConcurrentCollapses(t *testing.T) {
	dir := &fakeDirectory{delay: 50 * time.Millisecond, users: map[string]*model.DirectoryUser{
		"a@example.com": {Username: "alice"},
	}}
	r, _ := newTestResolver(t, testConfig(t), dir)

	var wg sync.WaitGroup
	results := make([]model.Identity, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), "a@example.com")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), dir.calls.Load())
	for _, id := range results {
		require.True(t, id.Found())
		assert.Equal(t, "alice", *id.Username)
	}
}

func TestResolveAllSavesOnce(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*model.DirectoryUser{"a@example.com": {Username: "alice"}}}
	r, cache := newTestResolver(t, testConfig(t), dir)

	require.NoError(t, r.ResolveAll(context.Background(), []string{"a@example.com", "ghost@example.com", "a@example.com"}))
	assert.Equal(t, int32(2), dir.calls.Load())
	assert.False(t, cache.Dirty())

	info, err := os.Stat(cache.path)
	require.NoError(t, err)

	require.NoError(t, r.ResolveAll(context.Background(), []string{"a@example.com", "ghost@example.com"}))
	after, err := os.Stat(cache.path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime(), "nothing new, nothing written")
	assert.Equal(t, int32(2), dir.calls.Load())

	snapshot := r.Snapshot()
	assert.Equal(t, 2, snapshot.Len())
}

func TestCachePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "authors.yaml")

	cache, err := LoadCache(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())

	saved, err := cache.Save()
	require.NoError(t, err)
	assert.False(t, saved, "clean cache is not written")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	user, avatar := "alice", "https://github.com/alice.png"
	cache.Put(model.Identity{Email: "a@example.com", Username: &user, Avatar: &avatar, ProfileURL: "https://github.com/alice"})
	cache.Put(model.Identity{Email: "ghost@example.com"})

	saved, err = cache.Save()
	require.NoError(t, err)
	assert.True(t, saved)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ghost@example.com:")
	assert.Contains(t, string(data), "username: null")

	loaded, err := LoadCache(path)
	require.NoError(t, err)
	assert.False(t, loaded.Dirty())

	id, ok := loaded.Lookup("a@example.com")
	require.True(t, ok)
	assert.Equal(t, "alice", *id.Username)
	assert.Equal(t, avatar, *id.Avatar)
	assert.Equal(t, "https://github.com/alice", id.ProfileURL)

	ghost, ok := loaded.Lookup("ghost@example.com")
	require.True(t, ok)
	assert.Nil(t, ghost.Username)
	assert.Nil(t, ghost.Avatar)
}

func TestLoadCacheInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o644))

	_, err := LoadCache(path)
	assert.Error(t, err)
}

func TestSnapshotIsIsolated(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "authors.yaml"))
	user := "alice"
	cache.Put(model.Identity{Email: "a@example.com", Username: &user})

	snapshot := cache.Snapshot()
	clone := snapshot.Clone()

	other := "bob"
	cache.Put(model.Identity{Email: "b@example.com", Username: &other})
	_, ok := snapshot.Lookup("b@example.com")
	assert.False(t, ok)

	id, _ := clone.Lookup("a@example.com")
	*id.Username = "mallory"
	orig, _ := snapshot.Lookup("a@example.com")
	assert.Equal(t, "alice", *orig.Username)
}

func TestAvatarVerifier(t *testing.T) {
	var methods []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		switch r.URL.Path {
		case "/alice.png":
			http.Redirect(w, r, "/avatars/u/1?v=4", http.StatusFound)
		case "/avatars/u/1":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	v, err := NewAvatarVerifier("docmeta-test", time.Second)
	require.NoError(t, err)

	final, err := v.Verify(context.Background(), srv.URL+"/alice.png")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/avatars/u/1?v=4", final)

	final, err = v.Verify(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
	assert.Equal(t, srv.URL+"/missing.png", final)

	mu.Lock()
	defer mu.Unlock()
	for _, m := range methods {
		assert.Equal(t, http.MethodHead, m)
	}
}

func TestGitHubDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/search/users", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("q") {
		case "a@example.com in:email":
			_, _ = w.Write([]byte(`{"total_count":1,"incomplete_results":false,"items":[
				{"login":"alice","avatar_url":"https://avatars.example.com/u/1?v=4","html_url":"https://github.example.com/alice"}]}`))
		default:
			_, _ = w.Write([]byte(`{"total_count":0,"incomplete_results":false,"items":[]}`))
		}
	}))
	defer srv.Close()

	d, err := NewGitHubDirectory(Config{BaseURL: srv.URL, Token: "token"})
	require.NoError(t, err)
	assert.Equal(t, srv.Listener.Addr().String(), d.Host())

	user, err := d.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, model.DirectoryUser{
		Username:   "alice",
		AvatarURL:  "https://avatars.example.com/u/1?v=4",
		ProfileURL: "https://github.example.com/alice",
	}, *user)

	user, err = d.FindByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGitHubDirectoryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d, err := NewGitHubDirectory(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = d.FindByEmail(context.Background(), "a@example.com")
	assert.Error(t, err)
}

func TestGitLabDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/users", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("search") == "b@example.com" {
			_, _ = w.Write([]byte(`[{"id":2,"username":"bob","avatar_url":"https://gitlab.example.com/uploads/bob.png","web_url":"https://gitlab.example.com/bob"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	d, err := NewGitLabDirectory(Config{BaseURL: srv.URL, Token: "token"})
	require.NoError(t, err)

	user, err := d.FindByEmail(context.Background(), "b@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "https://gitlab.example.com/uploads/bob.png", user.AvatarURL)
	assert.Equal(t, "https://gitlab.example.com/bob", user.ProfileURL)

	user, err = d.FindByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestConfigPrepareAndValidate(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.PrepareAndValidate())
	assert.Equal(t, GitHub, cfg.Directory)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultAvatar, cfg.DefaultAvatar)
	assert.Equal(t, defaultCacheFile, cfg.CachePath)

	cfg.Directory = "bitbucket"
	assert.Error(t, cfg.PrepareAndValidate())
}

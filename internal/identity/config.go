package identity

import (
	"slices"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

type DirectoryType string

// Supported user directories
const (
	// None disables remote lookups, only noreply emails are resolved
	None   DirectoryType = "none"
	GitHub DirectoryType = "github"
	GitLab DirectoryType = "gitlab"
)

var supportedDirectoryTypes = []DirectoryType{None, GitHub, GitLab}

const (
	// DefaultAvatar is shown for authors without a known avatar
	DefaultAvatar = "https://github.com/github.png"

	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 5
	defaultBurst     = 1
	defaultUserAgent = "docmeta"
	defaultCacheFile = "docmeta_authors.yaml"
)

// Config represents author identity resolution configuration
type Config struct {
	Directory DirectoryType `yaml:"directory" env:"IDENTITY_DIRECTORY"`
	BaseURL   string        `yaml:"base_url" env:"IDENTITY_BASE_URL"`
	Token     string        `yaml:"token" env:"IDENTITY_TOKEN"`

	// Timeout bounds every remote lookup
	Timeout time.Duration `yaml:"timeout" env:"IDENTITY_TIMEOUT"`
	// RateLimit is the number of remote lookups per second
	RateLimit float64 `yaml:"rate_limit" env:"IDENTITY_RATE_LIMIT"`
	Burst     int     `yaml:"burst" env:"IDENTITY_BURST"`

	// CachePath is the YAML cache file, relative paths are resolved against the docs dir
	CachePath     string `yaml:"cache_path" env:"IDENTITY_CACHE_PATH"`
	DefaultAvatar string `yaml:"default_avatar" env:"IDENTITY_DEFAULT_AVATAR"`
	UserAgent     string `yaml:"user_agent" env:"IDENTITY_USER_AGENT"`
	// SkipAvatarCheck keeps avatar URLs as returned without a HEAD request
	SkipAvatarCheck bool `yaml:"skip_avatar_check" env:"IDENTITY_SKIP_AVATAR_CHECK"`

	Verbose bool `yaml:"verbose" env:"IDENTITY_VERBOSE"`
}

func (c *Config) PrepareAndValidate() error {
	c.Directory = lang.Check(c.Directory, GitHub)
	c.Timeout = lang.Check(c.Timeout, defaultTimeout)
	c.RateLimit = lang.Check(c.RateLimit, defaultRateLimit)
	c.Burst = lang.Check(c.Burst, defaultBurst)
	c.CachePath = lang.Check(c.CachePath, defaultCacheFile)
	c.DefaultAvatar = lang.Check(c.DefaultAvatar, DefaultAvatar)
	c.UserAgent = lang.Check(c.UserAgent, defaultUserAgent)

	if !slices.Contains(supportedDirectoryTypes, c.Directory) {
		return errm.New("invalid directory type: %s", c.Directory)
	}
	if c.RateLimit < 0 || c.Burst < 0 {
		return errm.New("invalid rate limit: %v/%d", c.RateLimit, c.Burst)
	}

	return nil
}

package gitinfo

import (
	"slices"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

type Backend string

// Supported history backends
const (
	// Exec runs the git binary
	Exec Backend = "exec"
	// GoGit reads the repository with go-git, no binary required
	GoGit Backend = "gogit"
)

var supportedBackends = []Backend{Exec, GoGit}

const (
	defaultTimeout = 30 * time.Second
	defaultWorkers = 8
)

// Config represents git history configuration
type Config struct {
	Backend Backend `yaml:"backend" env:"GIT_BACKEND"`
	// DefaultAuthor replaces blank commit emails
	DefaultAuthor string        `yaml:"default_author" env:"GIT_DEFAULT_AUTHOR"`
	Timeout       time.Duration `yaml:"timeout" env:"GIT_TIMEOUT"`
	Workers       int           `yaml:"workers" env:"GIT_WORKERS"`
	Verbose       bool          `yaml:"verbose" env:"GIT_VERBOSE"`
}

func (c *Config) PrepareAndValidate() error {
	c.Backend = lang.Check(c.Backend, Exec)
	c.Timeout = lang.Check(c.Timeout, defaultTimeout)
	c.Workers = lang.Check(c.Workers, defaultWorkers)

	if !slices.Contains(supportedBackends, c.Backend) {
		return errm.New("invalid git backend: %s", c.Backend)
	}
	if c.Workers < 0 {
		return errm.New("invalid git workers: %d", c.Workers)
	}

	return nil
}

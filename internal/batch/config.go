package batch

import (
	"runtime"
	"slices"

	"github.com/maxbolgarin/docmeta/internal/llms"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

type Mode string

// Dispatch modes, both give the same output
const (
	// Shared workers of one pool read the same identity snapshot
	Shared Mode = "shared"
	// Isolated workers own a private copy of the identity snapshot
	Isolated Mode = "isolated"
)

var supportedModes = []Mode{Shared, Isolated}

const (
	defaultDocsDir  = "docs"
	defaultSiteName = "Documentation"
)

// Config represents batch run configuration
type Config struct {
	SiteDir string `yaml:"site_dir" env:"SITE_DIR"`
	DocsDir string `yaml:"docs_dir" env:"DOCS_DIR"`
	// SiteURL is the public root of the site, pages get relative URLs without it
	SiteURL         string `yaml:"site_url" env:"SITE_URL"`
	SiteName        string `yaml:"site_name" env:"SITE_NAME"`
	SiteDescription string `yaml:"site_description" env:"SITE_DESCRIPTION"`

	Workers int  `yaml:"workers" env:"WORKERS"`
	Mode    Mode `yaml:"mode" env:"MODE"`

	// MetricsPath is a Prometheus textfile written after every run, empty to skip
	MetricsPath string `yaml:"metrics_path" env:"METRICS_PATH"`

	LLMs llms.Config `yaml:"llms"`

	Verbose bool `yaml:"verbose" env:"VERBOSE"`
}

func (c *Config) PrepareAndValidate() error {
	c.DocsDir = lang.Check(c.DocsDir, defaultDocsDir)
	c.SiteName = lang.Check(c.SiteName, defaultSiteName)
	c.Workers = lang.Check(c.Workers, runtime.NumCPU())
	c.Mode = lang.Check(c.Mode, Shared)

	if c.SiteDir == "" {
		return ErrSiteDirRequired
	}
	if !slices.Contains(supportedModes, c.Mode) {
		return errm.New("invalid dispatch mode: %s", c.Mode)
	}
	if c.Workers < 0 {
		return errm.New("invalid workers: %d", c.Workers)
	}

	return c.LLMs.PrepareAndValidate()
}

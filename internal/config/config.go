package config

import (
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/docmeta/internal/batch"
	"github.com/maxbolgarin/docmeta/internal/gitinfo"
	"github.com/maxbolgarin/docmeta/internal/identity"
	"github.com/maxbolgarin/docmeta/internal/processor"
	"github.com/maxbolgarin/docmeta/internal/server"
	"github.com/maxbolgarin/errm"
)

// Config represents the main application configuration
type Config struct {
	Batch    batch.Config     `yaml:"batch" env-prefix:"DOCMETA_"`
	Enrich   processor.Config `yaml:"enrich" env-prefix:"DOCMETA_"`
	Git      gitinfo.Config   `yaml:"git" env-prefix:"DOCMETA_"`
	Identity identity.Config  `yaml:"identity" env-prefix:"DOCMETA_"`
	Server   server.Config    `yaml:"server" env-prefix:"DOCMETA_"`

	Debug bool `yaml:"debug" env:"DOCMETA_DEBUG"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Enrich: processor.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults, environment variables win.
// With an empty path only the environment is read.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, errm.Wrap(err, "failed to read env")
		}
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, errm.Wrap(ErrConfigNotFound, path)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, errm.Wrap(err, "failed to read config")
	}

	return cfg, nil
}

// PrepareAndValidate applies defaults of every component and checks the values
func (c *Config) PrepareAndValidate() error {
	if err := c.Batch.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "batch")
	}
	if err := c.Git.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "git")
	}
	if err := c.Identity.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "identity")
	}

	if c.Enrich.AddJSONLD && c.Enrich.OrganizationName == "" {
		c.Enrich.OrganizationName = c.Batch.SiteName
	}
	if c.Enrich.OrganizationURL == "" {
		c.Enrich.OrganizationURL = c.Batch.SiteURL
	}
	if c.Server.SiteDir == "" {
		c.Server.SiteDir = c.Batch.SiteDir
	}

	return nil
}

// IdentityCachePath returns the authors cache path, relative paths are resolved against the docs dir
func (c Config) IdentityCachePath() string {
	if filepath.IsAbs(c.Identity.CachePath) {
		return c.Identity.CachePath
	}
	return filepath.Join(c.Batch.DocsDir, c.Identity.CachePath)
}

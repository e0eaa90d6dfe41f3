package app

import (
	"context"

	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/docmeta/internal/batch"
	"github.com/maxbolgarin/docmeta/internal/config"
	"github.com/maxbolgarin/docmeta/internal/gitinfo"
	"github.com/maxbolgarin/docmeta/internal/identity"
	"github.com/maxbolgarin/docmeta/internal/metrics"
	"github.com/maxbolgarin/docmeta/internal/server"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

// Docmeta wires the components of a site enrichment run and the preview server
type Docmeta struct {
	runner  *batch.Runner
	metrics *metrics.Metrics

	cfg config.Config
	log logze.Logger
}

// New creates the application from a loaded config
func New(cfg config.Config) (*Docmeta, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "failed to prepare and validate config")
	}

	d := &Docmeta{
		metrics: metrics.New(),
		cfg:     cfg,
		log:     logze.With("component", "app"),
	}

	if err := d.init(); err != nil {
		return nil, erro.Wrap(err, "failed to initialize")
	}

	return d, nil
}

// Process enriches the site once
func (d *Docmeta) Process(ctx context.Context) (batch.Report, error) {
	report, err := d.runner.Run(ctx)
	if err != nil {
		return report, erro.Wrap(err, "failed to process site")
	}
	return report, nil
}

// Serve starts the preview server and blocks until ctx is done
func (d *Docmeta) Serve(ctx contem.Context) error {
	srv, err := server.New(d.cfg.Server, d.metrics)
	if err != nil {
		return erro.Wrap(err, "failed to create server")
	}
	if err := srv.Start(ctx); err != nil {
		return erro.Wrap(err, "failed to start server")
	}
	ctx.Add(srv.Stop)

	<-ctx.Done()

	return nil
}

func (d *Docmeta) init() (err error) {
	var (
		git        *gitinfo.Resolver
		identities *identity.Resolver
	)

	if d.cfg.Enrich.NeedsGit() {
		git = gitinfo.New(d.cfg.Git, gitinfo.NewHistory(d.cfg.Git))

		identities, err = d.newIdentityResolver()
		if err != nil {
			return erro.Wrap(err, "failed to create identity resolver")
		}
	}

	d.runner, err = batch.New(d.cfg.Batch, d.cfg.Enrich, git, identities, d.metrics)
	if err != nil {
		return erro.Wrap(err, "failed to create batch runner")
	}

	d.log.Debug("initialized",
		"site_dir", d.cfg.Batch.SiteDir,
		"docs_dir", d.cfg.Batch.DocsDir,
		"mode", d.cfg.Batch.Mode,
		"workers", d.cfg.Batch.Workers,
		"git", d.cfg.Enrich.NeedsGit(),
	)

	return nil
}

func (d *Docmeta) newIdentityResolver() (*identity.Resolver, error) {
	cache, err := identity.LoadCache(d.cfg.IdentityCachePath())
	if err != nil {
		return nil, erro.Wrap(err, "failed to load authors cache")
	}

	directory, err := identity.NewDirectory(d.cfg.Identity)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create user directory")
	}

	return identity.New(d.cfg.Identity, cache, directory)
}

package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/docmeta/internal/app"
	"github.com/maxbolgarin/docmeta/internal/batch"
	"github.com/maxbolgarin/docmeta/internal/config"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()
	siteDir    = kingpin.Flag("site-dir", "built site directory").Short('s').String()
	docsDir    = kingpin.Flag("docs-dir", "markdown sources directory").Short('d').String()
	siteURL    = kingpin.Flag("site-url", "public root url of the site").String()
	verbose    = kingpin.Flag("verbose", "verbose logging").Short('v').Bool()

	processCmd = kingpin.Command("process", "enrich every page of the site").Default()
	workers    = processCmd.Flag("workers", "number of workers").Int()
	mode       = processCmd.Flag("mode", "dispatch mode: shared or isolated").Enum(string(batch.Shared), string(batch.Isolated))
	withLLMs   = processCmd.Flag("llms", "write llms.txt").Bool()

	serveCmd = kingpin.Command("serve", "serve the site for preview")
	address  = serveCmd.Flag("address", "listen address").String()
)

func main() {
	kingpin.Version(Version)
	command := kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()

	err = run(ctx, command)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context, command string) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}
	applyFlags(&cfg)

	level := logze.LevelInfo
	if cfg.Debug {
		level = logze.LevelDebug
	}
	logze.Init(logze.C().WithConsole().WithLevel(level))

	logze.Debug("starting", "version", Version, "branch", Branch, "commit", Commit, "build_date", BuildDate)

	docmeta, err := app.New(cfg)
	if err != nil {
		return erro.Wrap(err, "new app")
	}

	switch command {
	case serveCmd.FullCommand():
		if err := docmeta.Serve(ctx); err != nil {
			return erro.Wrap(err, "serve")
		}
	default:
		if _, err := docmeta.Process(ctx); err != nil {
			return erro.Wrap(err, "process")
		}
	}

	return nil
}

func applyFlags(cfg *config.Config) {
	if *siteDir != "" {
		cfg.Batch.SiteDir = *siteDir
		cfg.Server.SiteDir = *siteDir
	}
	if *docsDir != "" {
		cfg.Batch.DocsDir = *docsDir
	}
	if *siteURL != "" {
		cfg.Batch.SiteURL = *siteURL
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *mode != "" {
		cfg.Batch.Mode = batch.Mode(*mode)
	}
	if *withLLMs {
		cfg.Batch.LLMs.Enabled = true
	}
	if *address != "" {
		cfg.Server.Address = *address
	}
	if *verbose {
		cfg.Debug = true
		cfg.Batch.Verbose = true
		cfg.Git.Verbose = true
		cfg.Identity.Verbose = true
	}
}

// Package batch enriches every page of a built site. Setup runs once per
// batch: the markdown index, git records and author identities are resolved
// before dispatch and stay read-only while workers process files.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/docmeta/internal/gitinfo"
	"github.com/maxbolgarin/docmeta/internal/identity"
	"github.com/maxbolgarin/docmeta/internal/llms"
	"github.com/maxbolgarin/docmeta/internal/markdown"
	"github.com/maxbolgarin/docmeta/internal/metrics"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/docmeta/internal/processor"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

const poolReleaseTimeout = 5 * time.Second

// Report summarizes one run
type Report struct {
	RunID     string
	Total     int
	Processed int
	Changed   int
	Failed    int
	Results   []model.Result
	Elapsed   time.Duration
}

// Runner processes a site directory
type Runner struct {
	cfg        Config
	enrich     processor.Config
	processor  *processor.Processor
	git        *gitinfo.Resolver
	identities *identity.Resolver
	metrics    *metrics.Metrics
	log        logze.Logger
}

// state is shared by all workers of a run and never mutated during dispatch
type state struct {
	siteDir string
	index   *markdown.Index
	records map[string]model.GitRecord
	repoURL string
}

type job struct {
	result model.Result
	// summary is the first paragraph of the source, used by llms.txt
	summary string
}

// New creates a runner. git and identities are required only when enrich needs git data.
func New(cfg Config, enrich processor.Config, git *gitinfo.Resolver, identities *identity.Resolver, m *metrics.Metrics) (*Runner, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "failed to prepare and validate config")
	}
	if enrich.NeedsGit() && (git == nil || identities == nil) {
		return nil, errm.New("git and identity resolvers are required for authors and structured data")
	}
	if m == nil {
		m = metrics.New()
	}

	return &Runner{
		cfg:        cfg,
		enrich:     enrich,
		processor:  processor.New(enrich),
		git:        git,
		identities: identities,
		metrics:    m,
		log:        logze.With("component", "batch"),
	}, nil
}

// Run processes every HTML file of the site dir. It fails only on setup errors,
// failures of single files are reported in their results.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	timer := abstract.StartTimer()
	report := Report{RunID: uuid.NewString()}
	log := r.log.WithFields("run_id", report.RunID)

	siteDir, err := filepath.Abs(r.cfg.SiteDir)
	if err != nil {
		return report, errm.Wrap(err, "failed to get absolute path")
	}
	if info, err := os.Stat(siteDir); err != nil || !info.IsDir() {
		return report, errm.Wrap(ErrSiteDirNotFound, siteDir)
	}
	if r.cfg.SiteURL == "" {
		log.Warn("site url is not set, pages get relative urls")
	}

	st := &state{siteDir: siteDir}
	pages, err := r.index(ctx, log, st)
	if err != nil {
		return report, err
	}

	var lookup interfaces.IdentityLookup
	if r.enrich.NeedsGit() {
		lookup = r.resolveGit(ctx, log, st)
	}

	phase := abstract.StartTimer()
	jobs := r.dispatch(ctx, st, lookup, pages)
	r.metrics.ObservePhase("dispatch", phase.ElapsedTime())

	report.Total = len(jobs)
	report.Results = make([]model.Result, 0, len(jobs))
	for _, j := range jobs {
		res := j.result
		report.Results = append(report.Results, res)
		if !res.OK() {
			report.Failed++
			log.Err(res.Err, "failed to process file", "path", res.Path)
			continue
		}
		report.Processed++
		if res.Changed {
			report.Changed++
		}
		log.DebugIf(r.cfg.Verbose, "processed", "path", res.Path, "changed", res.Changed, "source", res.Source)
	}

	if r.cfg.LLMs.Enabled {
		if err := r.writeLLMs(siteDir, jobs); err != nil {
			log.Err(err, "failed to write llms.txt")
		}
	}

	report.Elapsed = timer.ElapsedTime()
	r.metrics.Finish(time.Now())
	if r.cfg.MetricsPath != "" {
		if err := r.metrics.WriteTextfile(r.cfg.MetricsPath); err != nil {
			log.Err(err, "failed to write metrics")
		}
	}

	log.Info("batch finished",
		"processed", fmt.Sprintf("%d/%d", report.Processed, report.Total),
		"changed", report.Changed,
		"failed", report.Failed,
		"elapsed_time", report.Elapsed.String(),
	)

	return report, nil
}

// index lists output pages and indexes markdown sources concurrently
func (r *Runner) index(ctx context.Context, log logze.Logger, st *state) ([]string, error) {
	phase := abstract.StartTimer()

	var pages []string
	waiterSet := abstract.NewWaiterSet(log)
	waiterSet.Add(ctx, func(context.Context) (err error) {
		pages, err = listPages(st.siteDir)
		return err
	})
	waiterSet.Add(ctx, func(context.Context) error {
		idx, err := markdown.BuildIndex(r.cfg.DocsDir)
		if err != nil {
			log.Warn("cannot index docs dir, pages have no sources", "docs_dir", r.cfg.DocsDir, "error", err)
			idx = &markdown.Index{}
		}
		st.index = idx
		return nil
	})
	if err := waiterSet.Await(ctx); err != nil {
		return nil, errm.Wrap(err, "failed to index site")
	}

	r.metrics.ObservePhase("index", phase.ElapsedTime())
	log.Info("site indexed", "pages", len(pages), "sources", st.index.Len(), "elapsed_time", phase.ElapsedTime().String())

	return pages, nil
}

// resolveGit computes git records of all sources and resolves their authors
func (r *Runner) resolveGit(ctx context.Context, log logze.Logger, st *state) interfaces.IdentityLookup {
	phase := abstract.StartTimer()
	st.records = r.git.ResolveAll(ctx, st.index.Sources())
	if root := st.index.Root(); root != "" {
		st.repoURL = r.git.RepoURL(ctx, root)
	}
	r.metrics.ObservePhase("git", phase.ElapsedTime())

	phase = abstract.StartTimer()
	records := make([]model.GitRecord, 0, len(st.records))
	for _, rec := range st.records {
		records = append(records, rec)
	}
	emails := gitinfo.UniqueEmails(records...)
	if err := r.identities.ResolveAll(ctx, emails); err != nil {
		log.Err(err, "failed to resolve authors")
	}
	snapshot := r.identities.Snapshot()
	r.metrics.ObservePhase("authors", phase.ElapsedTime())

	var found int
	for _, email := range emails {
		if id, ok := snapshot.Lookup(email); ok && id.Found() {
			found++
		}
	}
	r.metrics.Authors.WithLabelValues("resolved").Set(float64(found))
	r.metrics.Authors.WithLabelValues("unresolved").Set(float64(len(emails) - found))

	return snapshot
}

func (r *Runner) dispatch(ctx context.Context, st *state, lookup interfaces.IdentityLookup, pages []string) []job {
	jobs := make([]job, len(pages))
	if len(pages) == 0 {
		return jobs
	}

	switch r.cfg.Mode {
	case Isolated:
		r.dispatchIsolated(ctx, st, lookup, pages, jobs)
	default:
		r.dispatchShared(ctx, st, lookup, pages, jobs)
	}

	return jobs
}

func (r *Runner) dispatchShared(ctx context.Context, st *state, lookup interfaces.IdentityLookup, pages []string, jobs []job) {
	pool, err := ants.NewPool(r.cfg.Workers)
	if err != nil {
		r.log.Err(err, "failed to create pool, processing sequentially")
		for i, rel := range pages {
			jobs[i] = r.processFile(ctx, st, lookup, rel)
		}
		return
	}
	defer func() {
		if err := pool.ReleaseTimeout(poolReleaseTimeout); err != nil {
			r.log.Err(err, "failed to release pool")
		}
	}()

	var wg sync.WaitGroup
	for i, rel := range pages {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			jobs[i] = r.processFile(ctx, st, lookup, rel)
		})
		if err != nil {
			wg.Done()
			jobs[i] = job{result: model.Result{Path: rel, Err: errm.Wrap(err, "failed to submit")}}
		}
	}
	wg.Wait()
}

func (r *Runner) dispatchIsolated(ctx context.Context, st *state, lookup interfaces.IdentityLookup, pages []string, jobs []job) {
	queue := make(chan int)

	var g errgroup.Group
	for range min(r.cfg.Workers, len(pages)) {
		local := lookup
		if snapshot, ok := lookup.(identity.Snapshot); ok {
			local = snapshot.Clone()
		}
		g.Go(func() error {
			for i := range queue {
				jobs[i] = r.processFile(ctx, st, local, pages[i])
			}
			return nil
		})
	}

	for i := range pages {
		queue <- i
	}
	close(queue)

	_ = g.Wait()
}

// processFile enriches one file in place. Any failure leaves the file untouched.
func (r *Runner) processFile(ctx context.Context, st *state, lookup interfaces.IdentityLookup, rel string) (out job) {
	timer := abstract.StartTimer()
	out.result = model.Result{Path: rel, URL: PageURL(r.cfg.SiteURL, rel)}

	defer func() {
		if p := recover(); p != nil {
			out.result.Err = errm.New("panic while processing file: %v", p)
			out.result.Changed = false
		}
		r.metrics.ObserveFile(resultLabel(out.result), timer.ElapsedTime())
	}()

	if err := ctx.Err(); err != nil {
		out.result.Err = err
		return out
	}

	path := filepath.Join(st.siteDir, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		out.result.Err = errm.Wrap(err, "failed to read file")
		return out
	}

	page := model.Page{URL: out.result.URL, HTML: string(data)}

	var git *model.PageGit
	if source, ok := st.index.Lookup(rel); ok {
		out.result.Source = source
		page.SourcePath = source

		src, err := markdown.ReadSource(source)
		if err != nil {
			r.log.DebugIf(r.cfg.Verbose, "cannot read source", "source", source, "error", err)
		}
		page.Keywords = src.Keywords
		page.Description = src.Description
		out.summary = src.Summary

		if st.records != nil {
			rec, ok := st.records[source]
			if !ok {
				rec = model.NoHistory()
			}
			git = &model.PageGit{
				Record:        rec,
				Contributions: r.identities.Contributors(lookup, st.repoURL).Build(rec),
			}
		}
	}

	processed, err := r.processor.Process(page, git)
	out.result.Title = processed.Title
	out.result.Meta = processed.Meta
	if err != nil {
		out.result.Err = err
		return out
	}
	if !processed.Changed {
		return out
	}

	if err := writeFile(path, []byte(processed.HTML)); err != nil {
		out.result.Err = err
		return out
	}
	out.result.Changed = true

	return out
}

func (r *Runner) writeLLMs(siteDir string, jobs []job) error {
	var nav []llms.NavSection
	if r.cfg.LLMs.NavFile != "" {
		var err error
		nav, err = llms.LoadNav(r.cfg.LLMs.NavFile)
		if err != nil {
			return err
		}
	}

	pages := make([]llms.Page, 0, len(jobs))
	for _, j := range jobs {
		res := j.result
		if !res.OK() {
			continue
		}
		key := markdown.Key(res.Path)
		pages = append(pages, llms.Page{
			Key:         key,
			Title:       res.Title,
			URL:         res.URL,
			Description: lang.Check(res.Meta.Description, j.summary),
		})
	}

	path := r.cfg.LLMs.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(siteDir, path)
	}

	site := llms.Site{Name: r.cfg.SiteName, Description: r.cfg.SiteDescription}
	if err := llms.Write(path, site, pages, nav); err != nil {
		return err
	}

	r.log.Info("llms.txt written", "path", path, "pages", len(pages))

	return nil
}

func resultLabel(res model.Result) string {
	switch {
	case !res.OK():
		return metrics.ResultFailed
	case res.Changed:
		return metrics.ResultChanged
	default:
		return metrics.ResultUnchanged
	}
}

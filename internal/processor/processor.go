// Package processor runs the enrichment pipeline for a single page:
// extraction, metadata injection, structured data and decoration.
package processor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maxbolgarin/docmeta/internal/decorate"
	"github.com/maxbolgarin/docmeta/internal/extract"
	"github.com/maxbolgarin/docmeta/internal/inject"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/errm"
)

// Output is the enriched page
type Output struct {
	HTML    string
	Title   string
	Meta    model.PageMeta
	Changed bool
}

type Processor struct {
	cfg       Config
	decorator *decorate.Decorator
}

func New(cfg Config) *Processor {
	return &Processor{
		cfg: cfg,
		decorator: decorate.New(decorate.Options{
			AddAuthors:      cfg.AddAuthors,
			AddCSS:          cfg.AddCSS,
			AddShareButtons: cfg.AddShareButtons,
			AddCopyLLM:      cfg.AddCopyLLM,
		}),
	}
}

// Process enriches a page. git may be nil when the page has no source file.
// Pages without <head> are returned unchanged. On error, including a panic
// inside enrichment, the output holds the original HTML.
func (p *Processor) Process(page model.Page, git *model.PageGit) (out Output, err error) {
	out = Output{HTML: page.HTML, Title: page.Title}

	defer func() {
		if r := recover(); r != nil {
			out = Output{HTML: page.HTML, Title: page.Title}
			err = errm.New("panic while processing page: %v", r)
		}
	}()

	if !inject.HasHead(page.HTML) {
		return out, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return out, errm.Wrap(err, "failed to parse html")
	}

	title := page.Title
	if title == "" {
		title = extract.Title(doc)
	}
	meta := p.extract(doc, page)

	inject.Apply(doc, inject.Table(inject.Fields{
		Title:           title,
		URL:             page.URL,
		Meta:            meta,
		AddDesc:         p.cfg.AddDesc,
		AddImage:        p.cfg.AddImage,
		AddKeywords:     p.cfg.AddKeywords,
		AddShareButtons: p.cfg.AddShareButtons,
	}))

	p.decorator.Apply(doc, page.URL, git)

	if p.cfg.AddJSONLD {
		rec := model.NoHistory()
		if git != nil {
			rec = git.Record
		}
		_, err = inject.JSONLD(doc, inject.Article{
			Headline:    title,
			Image:       meta.Image,
			Published:   rec.Created,
			Modified:    rec.Modified,
			Description: meta.Description,
			Author:      inject.Organization{Name: p.cfg.OrganizationName, URL: p.cfg.OrganizationURL},
			FAQ:         extract.FAQ(doc),
		})
		if err != nil {
			return out, err
		}
	}

	html, err := doc.Html()
	if err != nil {
		return out, errm.Wrap(err, "failed to render html")
	}

	return Output{HTML: html, Title: title, Meta: meta, Changed: html != page.HTML}, nil
}

func (p *Processor) extract(doc *goquery.Document, page model.Page) model.PageMeta {
	var meta model.PageMeta

	if p.cfg.AddDesc {
		if extract.ValidDescription(page.Description) {
			meta.Description = page.Description
		} else if desc, ok := extract.Description(doc); ok {
			meta.Description = desc
		}
	}
	if p.cfg.AddImage {
		meta.Image, _ = extract.Image(doc, p.cfg.DefaultImage)
	}
	if p.cfg.AddKeywords {
		meta.Keywords = strings.TrimSpace(page.Keywords)
	}

	return meta
}

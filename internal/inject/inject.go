// Package inject inserts or updates SEO metadata in the document head.
// All changes are described by a table of upserts applied by one routine,
// so running the injector on its own output changes nothing.
package inject

import (
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/maxbolgarin/docmeta/internal/extract"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/lang"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// IconFontURL is the stylesheet with the share button icons
	IconFontURL = "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.2/css/all.min.css"

	ogType      = "website"
	twitterCard = "summary_large_image"
)

var headTagRe = regexp.MustCompile(`(?i)<head[\s>/]`)

// HasHead reports whether the raw markup declares a <head> element.
// HTML parsing always synthesizes a head, so the check runs on the source.
func HasHead(raw string) bool {
	return headTagRe.MatchString(raw)
}

// Upsert describes one element that must be present exactly once in the head
type Upsert struct {
	Tag       string
	KeyAttr   string
	Key       string
	ValueAttr string
	Value     string

	// Selector overrides the default tag[key_attr="key"] selector
	Selector string
	// OnlyIfAbsent leaves an existing element untouched
	OnlyIfAbsent bool
}

func (u Upsert) selector() string {
	if u.Selector != "" {
		return u.Selector
	}
	return fmt.Sprintf(`%s[%s=%q]`, u.Tag, u.KeyAttr, u.Key)
}

func (u Upsert) node() *html.Node {
	return element(u.Tag, u.KeyAttr, u.Key, u.ValueAttr, u.Value)
}

// Meta builds a <meta> upsert keyed by name or property
func Meta(keyAttr, key, content string) Upsert {
	return Upsert{Tag: "meta", KeyAttr: keyAttr, Key: key, ValueAttr: "content", Value: content}
}

// Fields are the inputs of the upsert table
type Fields struct {
	Title string
	URL   string
	Meta  model.PageMeta

	AddDesc         bool
	AddImage        bool
	AddKeywords     bool
	AddShareButtons bool
}

// Table returns the ordered list of upserts for a page
func Table(f Fields) []Upsert {
	desc := lang.If(extract.ValidDescription(f.Meta.Description), f.Meta.Description, "")
	hasImage := f.AddImage && f.Meta.Image != ""

	out := []Upsert{Meta("name", "title", f.Title)}

	if f.AddShareButtons {
		out = append(out, Upsert{
			Tag:          "link",
			KeyAttr:      "rel",
			Key:          "stylesheet",
			ValueAttr:    "href",
			Value:        IconFontURL,
			Selector:     `link[rel="stylesheet"][href*="font-awesome"]`,
			OnlyIfAbsent: true,
		})
	}
	if f.AddKeywords && f.Meta.Keywords != "" {
		out = append(out, Meta("name", "keywords", f.Meta.Keywords))
	}
	if f.AddDesc && desc != "" {
		out = append(out, Meta("name", "description", desc))
	}

	out = append(out,
		Meta("property", "og:type", ogType),
		Meta("property", "og:url", f.URL),
		Meta("property", "og:title", f.Title),
		Meta("property", "og:description", desc),
	)
	if hasImage {
		out = append(out, Meta("property", "og:image", f.Meta.Image))
	}

	out = append(out,
		Meta("property", "twitter:card", twitterCard),
		Meta("property", "twitter:url", f.URL),
		Meta("property", "twitter:title", f.Title),
		Meta("property", "twitter:description", desc),
	)
	if hasImage {
		out = append(out, Meta("property", "twitter:image", f.Meta.Image))
	}

	return out
}

// Apply applies upserts to the document. Matching elements are updated in place
// and duplicates beyond the first are removed; missing ones are appended to the head.
// It returns false without changes when the document has no head.
func Apply(doc *goquery.Document, upserts []Upsert) bool {
	head := doc.Find("head").First()
	if head.Length() == 0 {
		return false
	}
	for _, u := range upserts {
		existing := doc.Find(u.selector())
		if existing.Length() == 0 {
			head.AppendNodes(u.node())
			continue
		}
		if !u.OnlyIfAbsent {
			existing.First().SetAttr(u.ValueAttr, u.Value)
		}
		if existing.Length() > 1 {
			existing.Slice(1, existing.Length()).Remove()
		}
	}
	return true
}

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

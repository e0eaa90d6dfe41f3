// Package decorate builds the page fragments derived from git and social data
// and inserts them into the rendered document.
package decorate

import (
	"fmt"
	stdhtml "html"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/lang"
)

const (
	commentsSelector = "h2#__comments"
	contentSelector  = ".md-content__inner"

	footerSelector     = ".git-info"
	shareSelector      = "div.share-buttons"
	editButtonSelector = `a[title="Edit this page"]`
	copyButtonSelector = `a[onclick*="copyMarkdownForLLM"]`

	referencePath = "/reference/"
	avatarSize    = "s=96"
)

// Options toggles the fragments added by the decorator
type Options struct {
	AddAuthors      bool
	AddCSS          bool
	AddShareButtons bool
	AddCopyLLM      bool
}

// Decorator inserts the footer, share and copy controls into pages
type Decorator struct {
	opts Options
	now  func() time.Time
}

// New returns a decorator that measures relative dates against the wall clock
func New(opts Options) *Decorator {
	return &Decorator{opts: opts, now: time.Now}
}

// Changes lists what Apply inserted
type Changes struct {
	Footer bool
	CSS    bool
	Share  bool
	Copy   bool
}

// Any reports whether the document was modified
func (c Changes) Any() bool {
	return c.Footer || c.CSS || c.Share || c.Copy
}

// Apply adds every enabled fragment that is not already present.
// git may be nil when the page has no source file.
func (d *Decorator) Apply(doc *goquery.Document, pageURL string, git *model.PageGit) Changes {
	var out Changes

	if d.opts.AddCopyLLM {
		out.Copy = CopyButton(doc, pageURL)
	}
	if d.opts.AddAuthors && git != nil {
		out.Footer = Footer(doc, git.Record, git.Contributions, d.now())
		if out.Footer && d.opts.AddCSS {
			out.CSS = Style(doc)
		}
	}
	if d.opts.AddShareButtons {
		out.Share = ShareButtons(doc, pageURL)
	}

	return out
}

// Insert places a fragment before the comments heading or at the end of the
// content container. It returns false when neither anchor exists.
func Insert(doc *goquery.Document, fragment string) bool {
	if anchor := doc.Find(commentsSelector).First(); anchor.Length() > 0 {
		anchor.BeforeHtml(fragment)
		return true
	}
	if container := doc.Find(contentSelector).First(); container.Length() > 0 {
		container.AppendHtml(fragment)
		return true
	}
	return false
}

// Footer renders the created/updated dates and author badges.
// Nothing is rendered for records with placeholder dates and no authors.
func Footer(doc *goquery.Document, rec model.GitRecord, contributions []model.Contribution, now time.Time) bool {
	if !rec.HasHistory() && !rec.HasAuthors() {
		return false
	}
	if doc.Find(footerSelector).Length() > 0 {
		return false
	}
	return Insert(doc, footerHTML(rec, contributions, now))
}

func footerHTML(rec model.GitRecord, contributions []model.Contribution, now time.Time) string {
	var b strings.Builder

	b.WriteString("<br><br>\n<div class=\"git-info\">\n<div class=\"dates-container\">\n")
	fmt.Fprintf(&b, `    <span class="date-item" title="This page was first created on %s">
        <span class="hover-item">📅</span> Created %s ago
    </span>
`, rec.Created.Format(PrettyDateLayout), TimeAgo(rec.Created, now))
	fmt.Fprintf(&b, `    <span class="date-item" title="This page was last updated on %s">
        <span class="hover-item">✏️</span> Updated %s ago
    </span>
`, rec.Modified.Format(PrettyDateLayout), TimeAgo(rec.Modified, now))
	b.WriteString("</div>\n<div class=\"authors-container\">\n")

	for _, c := range contributions {
		name := stdhtml.EscapeString(c.Name)
		fmt.Fprintf(&b, `<a href="%s" class="author-link" title="%s (%d change%s)">
    <img src="%s" alt="%s" class="hover-item" loading="lazy">
</a>
`, stdhtml.EscapeString(c.ProfileURL), name, c.Changes, lang.If(c.Changes > 1, "s", ""),
			stdhtml.EscapeString(AvatarURL(c.Avatar)), name)
	}

	b.WriteString("</div></div>")
	return b.String()
}

// AvatarURL requests a 96px avatar
func AvatarURL(avatar string) string {
	return avatar + lang.If(strings.Contains(avatar, "?"), "&", "?") + avatarSize
}

// Style adds the decoration stylesheet to the head once
func Style(doc *goquery.Document) bool {
	exists := doc.Find("style").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "git-info")
	}).Length() > 0
	if exists {
		return false
	}
	head := doc.Find("head").First()
	if head.Length() == 0 {
		return false
	}
	head.AppendHtml("<style>" + footerCSS + "</style>")
	return true
}

// ShareLinks returns the X and LinkedIn share URLs of a page
func ShareLinks(pageURL string) (twitter, linkedin string) {
	encoded := url.QueryEscape(pageURL)
	return "https://twitter.com/intent/tweet?url=" + encoded, "https://www.linkedin.com/shareArticle?url=" + encoded
}

// ShareButtons inserts the share controls once per page
func ShareButtons(doc *goquery.Document, pageURL string) bool {
	if doc.Find(shareSelector).Length() > 0 {
		return false
	}
	twitter, linkedin := ShareLinks(pageURL)
	fragment := fmt.Sprintf(`<div class="share-buttons">
    <button onclick="window.open('%s', 'TwitterShare', 'width=550,height=680,menubar=no,toolbar=no'); return false;" class="share-button hover-item">
        <i class="fa-brands fa-x-twitter"></i> Tweet
    </button>
    <button onclick="window.open('%s', 'LinkedinShare', 'width=550,height=730,menubar=no,toolbar=no'); return false;" class="share-button hover-item linkedin">
        <i class="fa-brands fa-linkedin-in"></i> Share
    </button>
</div>
<br>
`, stdhtml.EscapeString(twitter), stdhtml.EscapeString(linkedin))
	return Insert(doc, fragment)
}

// CopyButton adds the copy-as-markdown control next to the edit button.
// The markdown is fetched by the browser from the repository at view time.
func CopyButton(doc *goquery.Document, pageURL string) bool {
	if strings.Contains(pageURL, referencePath) {
		return false
	}
	edit := doc.Find(editButtonSelector).First()
	if edit.Length() == 0 || doc.Find(copyButtonSelector).Length() > 0 {
		return false
	}

	edit.AfterHtml(`<a href="javascript:void(0)" onclick="copyMarkdownForLLM(this); return false;" ` +
		`class="md-content__button md-icon" title="Copy page in Markdown format">` + copyIcon + `</a>`)

	hasScript := doc.Find("script").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "function copyMarkdownForLLM")
	}).Length() > 0
	if body := doc.Find("body").First(); !hasScript && body.Length() > 0 {
		body.AppendHtml("<script>" + copyScript + "</script>")
	}

	return true
}

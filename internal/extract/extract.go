// Package extract finds the semantic signals of a rendered page: its first
// descriptive paragraph, its first image or video thumbnail and its FAQ section.
// Functions here never modify the document.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ContentSelector is the main content region of a rendered page
	ContentSelector = "article.md-content__inner"

	// DecorationSelector matches fragments inserted by the decorator
	DecorationSelector = ".git-info, .share-buttons"

	minDescriptionLength = 10
	maxDescriptionLength = 500

	youtubeThumbnailURL = "https://img.youtube.com/vi/%s/maxresdefault.jpg"
)

var youtubeEmbedRe = regexp.MustCompile(`youtube(?:-nocookie)?\.com/embed/([a-zA-Z0-9_-]+)`)

// ContentRegion returns the main content region or the whole document if there is none
func ContentRegion(doc *goquery.Document) *goquery.Selection {
	if region := doc.Find(ContentSelector).First(); region.Length() > 0 {
		return region
	}
	return doc.Selection
}

// Description returns the trimmed text of the first paragraph of the content region.
// The second value is false when there is no paragraph or the text is out of bounds.
func Description(doc *goquery.Document) (string, bool) {
	p := first(ContentRegion(doc), "p")
	if p.Length() == 0 {
		return "", false
	}
	desc := strings.TrimSpace(p.Text())
	return desc, ValidDescription(desc)
}

// ValidDescription reports whether the description length is strictly between 10 and 500 characters
func ValidDescription(desc string) bool {
	n := utf8.RuneCountInString(desc)
	return n > minDescriptionLength && n < maxDescriptionLength
}

// Image returns the page image: the first <img> of the content region, then
// the thumbnail of the first embedded YouTube video, then defaultImage.
// A first image with a rejected source gives no image at all.
func Image(doc *goquery.Document, defaultImage string) (string, bool) {
	if img := first(ContentRegion(doc), "img"); img.Length() > 0 {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if !ValidImageSource(src) {
			return "", false
		}
		return src, true
	}
	if ids := YouTubeIDs(doc); len(ids) > 0 {
		return VideoThumbnail(ids[0]), true
	}
	if defaultImage != "" {
		return defaultImage, true
	}
	return "", false
}

// ValidImageSource rejects empty, javascript: and data: sources
func ValidImageSource(src string) bool {
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	return !strings.HasPrefix(lower, "javascript:") && !strings.HasPrefix(lower, "data:")
}

// YouTubeIDs returns video IDs of embedded YouTube iframes in document order
func YouTubeIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		if m := youtubeEmbedRe.FindStringSubmatch(s.AttrOr("src", "")); m != nil {
			ids = append(ids, m[1])
		}
	})
	return ids
}

// VideoThumbnail returns the thumbnail URL of a YouTube video
func VideoThumbnail(id string) string {
	return fmt.Sprintf(youtubeThumbnailURL, id)
}

// Title returns the text of the first h1 or the document title
func Title(doc *goquery.Document) string {
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		return HeadingText(h1)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// HeadingText returns the heading text without permalink anchors
func HeadingText(s *goquery.Selection) string {
	text := strings.TrimSpace(s.Text())
	if anchor := strings.TrimSpace(s.Find("a.headerlink").Text()); anchor != "" {
		text = strings.TrimSpace(strings.TrimSuffix(text, anchor))
	}
	return text
}

// first returns the first element matching selector that is not inside our own decorations
func first(region *goquery.Selection, selector string) *goquery.Selection {
	return region.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest(DecorationSelector).Length() == 0
	}).First()
}

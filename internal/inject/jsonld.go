package inject

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/errm"
	"golang.org/x/net/html"
)

const (
	// DateLayout matches the git "%ai" format
	DateLayout = "2006-01-02 15:04:05 -0700"

	jsonLDType     = "application/ld+json"
	jsonLDSelector = `script[type="application/ld+json"]`
	schemaContext  = "https://schema.org"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Organization is the publisher named as the author of every article
type Organization struct {
	Name string
	URL  string
}

// Article is the input of the structured data block
type Article struct {
	Headline    string
	Image       string
	Published   time.Time
	Modified    time.Time
	Description string
	Author      Organization
	FAQ         []model.FAQ
}

type articleLD struct {
	Context       string     `json:"@context"`
	Type          any        `json:"@type"`
	Headline      string     `json:"headline"`
	Image         []string   `json:"image"`
	DatePublished string     `json:"datePublished"`
	DateModified  string     `json:"dateModified"`
	Author        []thingLD  `json:"author"`
	Abstract      string     `json:"abstract"`
	MainEntity    []question `json:"mainEntity,omitempty"`
}

type thingLD struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer answer `json:"acceptedAnswer"`
}

type answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// MarshalJSONLD encodes the article as schema.org JSON-LD
func MarshalJSONLD(a Article) ([]byte, error) {
	ld := articleLD{
		Context:       schemaContext,
		Type:          "Article",
		Headline:      a.Headline,
		Image:         []string{},
		DatePublished: a.Published.Format(DateLayout),
		DateModified:  a.Modified.Format(DateLayout),
		Author:        []thingLD{{Type: "Organization", Name: a.Author.Name, URL: a.Author.URL}},
		Abstract:      a.Description,
	}
	if a.Image != "" {
		ld.Image = append(ld.Image, a.Image)
	}
	if len(a.FAQ) > 0 {
		ld.Type = []string{"Article", "FAQPage"}
		for _, f := range a.FAQ {
			ld.MainEntity = append(ld.MainEntity, question{
				Type:           "Question",
				Name:           f.Question,
				AcceptedAnswer: answer{Type: "Answer", Text: f.Answer},
			})
		}
	}

	data, err := json.Marshal(ld)
	if err != nil {
		return nil, errm.Wrap(err, "failed to marshal json-ld")
	}
	return data, nil
}

// JSONLD appends the structured data script to the head unless the document already has one
func JSONLD(doc *goquery.Document, a Article) (bool, error) {
	head := doc.Find("head").First()
	if head.Length() == 0 || doc.Find(jsonLDSelector).Length() > 0 {
		return false, nil
	}

	data, err := MarshalJSONLD(a)
	if err != nil {
		return false, err
	}

	script := element("script", "type", jsonLDType)
	script.AppendChild(&html.Node{Type: html.TextNode, Data: string(data)})
	head.AppendNodes(script)

	return true, nil
}

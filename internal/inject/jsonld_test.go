package inject

import (
	"testing"
	"time"

	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArticle() Article {
	return Article{
		Headline:    "Example",
		Image:       "a.png",
		Published:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Modified:    time.Date(2024, 5, 2, 12, 30, 0, 0, time.FixedZone("", 3*3600)),
		Description: "Hello world, this description is long enough.",
		Author:      Organization{Name: "Docs Team", URL: "https://example.com"},
	}
}

func TestMarshalJSONLDArticle(t *testing.T) {
	data, err := MarshalJSONLD(testArticle())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "https://schema.org", got["@context"])
	assert.Equal(t, "Article", got["@type"])
	assert.Equal(t, "Example", got["headline"])
	assert.Equal(t, []any{"a.png"}, got["image"])
	assert.Equal(t, "2024-03-01 10:00:00 +0000", got["datePublished"])
	assert.Equal(t, "2024-05-02 12:30:00 +0300", got["dateModified"])
	assert.Equal(t, "Hello world, this description is long enough.", got["abstract"])
	assert.NotContains(t, got, "mainEntity")

	authors := got["author"].([]any)
	require.Len(t, authors, 1)
	assert.Equal(t, map[string]any{"@type": "Organization", "name": "Docs Team", "url": "https://example.com"}, authors[0])
}

func TestMarshalJSONLDFAQ(t *testing.T) {
	a := testArticle()
	a.Image = ""
	a.FAQ = []model.FAQ{{Question: "Q1?", Answer: "A1."}, {Question: "Q2?", Answer: "A2."}}

	data, err := MarshalJSONLD(a)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, []any{"Article", "FAQPage"}, got["@type"])
	assert.Equal(t, []any{}, got["image"])

	entities := got["mainEntity"].([]any)
	require.Len(t, entities, 2)
	first := entities[0].(map[string]any)
	assert.Equal(t, "Question", first["@type"])
	assert.Equal(t, "Q1?", first["name"])
	assert.Equal(t, map[string]any{"@type": "Answer", "text": "A1."}, first["acceptedAnswer"])
	assert.Equal(t, "Q2?", entities[1].(map[string]any)["name"])
}

func TestJSONLDAtMostOnce(t *testing.T) {
	doc := parse(t, examplePage)

	added, err := JSONLD(doc, testArticle())
	require.NoError(t, err)
	assert.True(t, added)

	added, err = JSONLD(doc, testArticle())
	require.NoError(t, err)
	assert.False(t, added)

	out := parse(t, render(t, doc))
	script := out.Find(`script[type="application/ld+json"]`)
	require.Equal(t, 1, script.Length())
	assert.Equal(t, 1, out.Find("head").Find(`script[type="application/ld+json"]`).Length())

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(script.Text()), &got))
	assert.Equal(t, "Example", got["headline"])
}

func TestJSONLDKeepsExistingScript(t *testing.T) {
	doc := parse(t, `<html><head><script type="application/ld+json">{"@type":"WebSite"}</script></head><body></body></html>`)

	added, err := JSONLD(doc, testArticle())
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, `{"@type":"WebSite"}`, doc.Find(`script[type="application/ld+json"]`).Text())
}

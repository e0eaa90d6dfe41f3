package markdown

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/maxbolgarin/errm"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Source is what the enrichment reads from a markdown file
type Source struct {
	Path        string
	Title       string
	Description string
	// Keywords is a comma separated list
	Keywords string
	// Summary is the plain text of the first paragraph
	Summary string
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ReadSource reads front matter and the first paragraph of a markdown file.
// Files without front matter are read as plain markdown.
func ReadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, errm.Wrap(err, "failed to read source")
	}
	return ParseSource(path, data), nil
}

// ParseSource parses markdown content
func ParseSource(path string, data []byte) Source {
	src := Source{Path: path}

	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		body, fm = data, nil
	}

	src.Title = stringValue(fm["title"])
	src.Description = stringValue(fm["description"])
	src.Keywords = keywords(fm["keywords"])
	src.Summary = FirstParagraph(body)

	return src
}

// FirstParagraph returns the plain text of the first top level paragraph
func FirstParagraph(body []byte) string {
	doc := md.Parser().Parse(text.NewReader(body))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindParagraph {
			continue
		}
		if s := plainText(n, body); s != "" {
			return s
		}
	}
	return ""
}

func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func keywords(v any) string {
	list, ok := v.([]any)
	if !ok {
		return stringValue(v)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := stringValue(item); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

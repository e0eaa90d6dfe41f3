// Package markdown indexes the documentation sources and reads what the
// enrichment needs from them: front matter and the first paragraph.
package markdown

import (
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maxbolgarin/errm"
)

const (
	markdownExt = ".md"
	htmlExt     = ".html"
	indexName   = "index"
)

// Index maps normalized page paths to absolute markdown paths. It is read-only after BuildIndex.
type Index struct {
	root    string
	entries map[string]string
}

// BuildIndex walks docsDir once and indexes every markdown file.
// When two files map to the same key the last one walked wins.
func BuildIndex(docsDir string) (*Index, error) {
	root, err := filepath.Abs(docsDir)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get absolute path")
	}

	idx := &Index{root: root, entries: make(map[string]string)}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), markdownExt) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		idx.entries[Key(rel)] = p
		return nil
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to walk docs dir")
	}

	return idx, nil
}

// Key normalizes a path relative to the docs or site root: the extension and
// a trailing "index" element are removed, so "guide/index.html", "guide/index.md"
// and "guide.md" all give "guide". The root page gives "".
func Key(rel string) string {
	p := filepath.ToSlash(rel)
	p = strings.TrimSuffix(p, path.Ext(p))
	p = strings.Trim(p, "/")
	if p == indexName {
		return ""
	}
	return strings.TrimSuffix(p, "/"+indexName)
}

// Lookup returns the markdown source of an output file given relative to the site dir
func (i *Index) Lookup(outputRel string) (string, bool) {
	src, ok := i.entries[Key(outputRel)]
	return src, ok
}

// Sources returns all indexed markdown paths sorted
func (i *Index) Sources() []string {
	out := make([]string, 0, len(i.entries))
	for _, src := range i.entries {
		out = append(out, src)
	}
	slices.Sort(out)
	return out
}

func (i *Index) Root() string {
	return i.root
}

func (i *Index) Len() int {
	return len(i.entries)
}

// IsHTML reports whether the file name is an HTML page
func IsHTML(name string) bool {
	return strings.EqualFold(filepath.Ext(name), htmlExt)
}

package llms

import (
	"os"
	"strings"

	"github.com/maxbolgarin/docmeta/internal/markdown"
	"github.com/maxbolgarin/errm"
	"gopkg.in/yaml.v3"
)

// NavSection is a top level entry of the navigation tree with the keys of its pages in order
type NavSection struct {
	Title string
	Keys  []string
}

type navFile struct {
	Nav []any `yaml:"nav"`
}

// LoadNav reads the "nav" tree of a mkdocs-style YAML file
func LoadNav(path string) ([]NavSection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errm.Wrap(err, "failed to read nav file")
	}
	return ParseNav(data)
}

// ParseNav converts a navigation tree into sections. Top level groups become
// sections holding all pages below them; top level pages go to the Home section.
func ParseNav(data []byte) ([]NavSection, error) {
	var f navFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errm.Wrap(err, "failed to parse nav")
	}

	var (
		out  []NavSection
		home = NavSection{Title: homeSection}
	)
	for _, item := range f.Nav {
		switch v := item.(type) {
		case string:
			home.Keys = append(home.Keys, pageKeys(v)...)
		case map[string]any:
			for title, child := range v {
				if children, ok := child.([]any); ok {
					out = append(out, NavSection{Title: title, Keys: pageKeys(children...)})
				} else {
					home.Keys = append(home.Keys, pageKeys(child)...)
				}
			}
		}
	}
	if len(home.Keys) > 0 {
		out = append([]NavSection{home}, out...)
	}

	return out, nil
}

func pageKeys(items ...any) []string {
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if isExternal(v) {
				continue
			}
			out = append(out, markdown.Key(v))
		case []any:
			out = append(out, pageKeys(v...)...)
		case map[string]any:
			for _, child := range v {
				out = append(out, pageKeys(child)...)
			}
		}
	}
	return out
}

func isExternal(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "mailto:")
}

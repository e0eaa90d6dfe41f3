// Package llms writes llms.txt, a plain text index of the site for language models.
package llms

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultFileName = "llms.txt"
	homeSection     = "Home"
	maxDescription  = 300
)

// Config represents llms.txt configuration
type Config struct {
	Enabled bool `yaml:"enabled" env:"LLMS_ENABLED"`
	// Path of the output file, relative paths are resolved against the site dir
	Path string `yaml:"path" env:"LLMS_PATH"`
	// NavFile is a YAML file with a mkdocs-style "nav" tree, optional
	NavFile string `yaml:"nav_file" env:"LLMS_NAV_FILE"`
}

func (c *Config) PrepareAndValidate() error {
	c.Path = lang.Check(c.Path, defaultFileName)
	return nil
}

// Page is one line of the index
type Page struct {
	// Key is the normalized page path, see markdown.Key
	Key         string
	Title       string
	URL         string
	Description string
}

// Site is the header of the index
type Site struct {
	Name        string
	Description string
}

// Section groups pages under a heading
type Section struct {
	Title string
	Pages []Page
}

var titleCaser = cases.Title(language.English)

// Group orders pages into sections. With a navigation tree pages follow its order
// and pages missing from it are grouped by path. Without it pages are grouped by
// their first path segment.
func Group(pages []Page, nav []NavSection) []Section {
	byKey := make(map[string]Page, len(pages))
	for _, p := range pages {
		byKey[p.Key] = p
	}

	var out []Section
	used := make(map[string]struct{}, len(pages))

	for _, ns := range nav {
		section := Section{Title: ns.Title}
		for _, key := range ns.Keys {
			p, ok := byKey[key]
			if !ok {
				continue
			}
			if _, dup := used[key]; dup {
				continue
			}
			used[key] = struct{}{}
			section.Pages = append(section.Pages, p)
		}
		if len(section.Pages) > 0 {
			out = append(out, section)
		}
	}

	rest := make([]Page, 0, len(pages))
	for _, p := range pages {
		if _, ok := used[p.Key]; !ok {
			rest = append(rest, p)
		}
	}
	slices.SortStableFunc(rest, func(a, b Page) int {
		return strings.Compare(a.Key, b.Key)
	})

	index := make(map[string]int)
	for _, p := range rest {
		title := sectionTitle(p.Key)
		i, ok := index[title]
		if !ok {
			i = len(out)
			index[title] = i
			out = append(out, Section{Title: title})
		}
		out[i].Pages = append(out[i].Pages, p)
	}

	return out
}

// Render returns the llms.txt content
func Render(site Site, sections []Section) string {
	var b strings.Builder

	b.WriteString("# " + oneLine(site.Name) + "\n")
	if desc := oneLine(site.Description); desc != "" {
		b.WriteString("\n> " + desc + "\n")
	}

	for _, s := range sections {
		b.WriteString("\n## " + s.Title + "\n\n")
		for _, p := range s.Pages {
			b.WriteString("- [" + oneLine(p.Title) + "](" + p.URL + ")")
			if desc := oneLine(p.Description); desc != "" {
				b.WriteString(": " + lang.TruncateString(desc, maxDescription))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Write renders the index and writes it to path
func Write(path string, site Site, pages []Page, nav []NavSection) error {
	content := Render(site, Group(pages, nav))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errm.Wrap(err, "failed to create dir")
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errm.Wrap(err, "failed to write llms.txt")
	}
	return nil
}

func sectionTitle(key string) string {
	first, _, nested := strings.Cut(key, "/")
	if !nested || first == "" {
		return homeSection
	}
	return titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(first))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

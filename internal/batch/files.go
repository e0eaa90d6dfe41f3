package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/maxbolgarin/docmeta/internal/markdown"
	"github.com/maxbolgarin/errm"
)

const indexPage = "index.html"

// listPages returns paths of all HTML files under siteDir relative to it, in lexical order
func listPages(siteDir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(siteDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !markdown.IsHTML(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(siteDir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to walk site dir")
	}
	return out, nil
}

// PageURL returns the public URL of an output file: "guide/index.html" is
// served as "<site>/guide/". Without siteURL the URL is root relative.
func PageURL(siteURL, rel string) string {
	rel = filepath.ToSlash(rel)
	switch {
	case rel == indexPage:
		rel = ""
	case strings.HasSuffix(rel, "/"+indexPage):
		rel = strings.TrimSuffix(rel, indexPage)
	}
	return strings.TrimRight(siteURL, "/") + "/" + rel
}

// writeFile replaces the file content through a temporary file, the
// original is left intact when writing fails. A file that cannot be opened
// for writing is not replaced.
func writeFile(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return errm.Wrap(err, "file is not writable")
	}
	if err := f.Close(); err != nil {
		return errm.Wrap(err, "failed to close file")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errm.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errm.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errm.Wrap(err, "failed to close temp file")
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return errm.Wrap(err, "failed to chmod temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errm.Wrap(err, "failed to replace file")
	}

	return nil
}

package markdown

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestKey(t *testing.T) {
	for in, want := range map[string]string{
		"index.html":             "",
		"index.md":               "",
		"guide.md":               "guide",
		"guide/index.html":       "guide",
		"guide/index.md":         "guide",
		"guide/setup/index.html": "guide/setup",
		"guide/setup.md":         "guide/setup",
		"reindex.md":             "reindex",
		"404.html":               "404",
	} {
		assert.Equal(t, want, Key(in), in)
	}
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home")
	writeFile(t, filepath.Join(dir, "guide", "setup.md"), "# Setup")
	writeFile(t, filepath.Join(dir, "guide", "index.md"), "# Guide")
	writeFile(t, filepath.Join(dir, "assets", "logo.png"), "png")

	idx, err := BuildIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	src, ok := idx.Lookup("guide/setup/index.html")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "guide", "setup.md"), src)

	src, ok = idx.Lookup("index.html")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "index.md"), src)

	_, ok = idx.Lookup("missing/index.html")
	assert.False(t, ok)

	assert.Equal(t, []string{
		filepath.Join(dir, "guide", "index.md"),
		filepath.Join(dir, "guide", "setup.md"),
		filepath.Join(dir, "index.md"),
	}, idx.Sources())
}

func TestBuildIndexMissingDir(t *testing.T) {
	_, err := BuildIndex(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestParseSource(t *testing.T) {
	src := ParseSource("guide.md", []byte(`---
title: Guide
description: How to use the tool.
keywords:
  - docs
  - guide
---

# Guide

![logo](logo.png) This is the **first** paragraph
of the guide with a [link](https://example.com).

Second paragraph.
`))

	assert.Equal(t, "Guide", src.Title)
	assert.Equal(t, "How to use the tool.", src.Description)
	assert.Equal(t, "docs, guide", src.Keywords)
	assert.Equal(t, "This is the first paragraph of the guide with a link.", src.Summary)
}

func TestParseSourceKeywordsString(t *testing.T) {
	src := ParseSource("a.md", []byte("---\nkeywords: a, b, c\n---\nText here.\n"))
	assert.Equal(t, "a, b, c", src.Keywords)
	assert.Equal(t, "Text here.", src.Summary)
}

func TestParseSourceWithoutFrontMatter(t *testing.T) {
	src := ParseSource("a.md", []byte("# Title\n\n- item\n\nParagraph after list.\n"))
	assert.Empty(t, src.Title)
	assert.Empty(t, src.Keywords)
	assert.Equal(t, "Paragraph after list.", src.Summary)
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.md")
	writeFile(t, path, "---\ndescription: From file\n---\nBody.\n")

	src, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "From file", src.Description)
	assert.Equal(t, path, src.Path)

	_, err = ReadSource(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxbolgarin/docmeta/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "guide"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide", "index.html"), []byte("<h1>Guide</h1>"), 0o644))

	m := metrics.New()
	s, err := New(Config{SiteDir: dir}, m)
	require.NoError(t, err)
	return s, m
}

func get(t *testing.T, h http.HandlerFunc, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHandleFile(t *testing.T) {
	s, _ := newTestServer(t)

	code, body := get(t, s.handleFile, "/guide/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "<h1>Guide</h1>", body)

	code, _ = get(t, s.handleFile, "/missing/")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandleMetricsCountsRequests(t *testing.T) {
	s, _ := newTestServer(t)

	get(t, s.handleFile, "/guide/")
	get(t, s.handleFile, "/guide/")
	get(t, s.handleFile, "/missing/")

	code, body := get(t, s.handleMetrics, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `docmeta_preview_requests_total{code="200"} 2`)
	assert.Contains(t, body, `docmeta_preview_requests_total{code="404"} 1`)
}

func TestNewMissingSiteDir(t *testing.T) {
	_, err := New(Config{SiteDir: filepath.Join(t.TempDir(), "missing")}, nil)
	assert.Error(t, err)

	_, err = New(Config{}, nil)
	assert.Error(t, err)
}

func TestConfigPrepareAndValidate(t *testing.T) {
	cfg := Config{SiteDir: "site"}
	require.NoError(t, cfg.PrepareAndValidate())
	assert.Equal(t, defaultAddress, cfg.Address)
	assert.Equal(t, defaultMetricsPath, cfg.MetricsPath)

	cfg = Config{SiteDir: "site", EnableHTTPS: true}
	assert.Error(t, cfg.PrepareAndValidate())
}

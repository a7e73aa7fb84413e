// Package testutil provides site fixtures and response assertions for tests.
package testutil

import (
	"net/http"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// ArcadeSite is the small site most server tests run against.
func ArcadeSite() map[string]string {
	return map[string]string{
		"index.html":        "<h1>Home</h1>",
		"arcade/chess.html": "<h1>Chess</h1>",
		"css/site.css":      "body { color: #0f0; }",
		"js/app.js":         "console.log('arcade');",
	}
}

// CreateMemSite builds an in-memory filesystem whose "/" is the served root.
func CreateMemSite(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		path := "/" + strings.TrimPrefix(filepath.ToSlash(name), "/")
		if err := fs.MkdirAll(pathpkg.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	return fs
}

// CreateDiskSite writes files under a fresh temporary directory and returns it.
func CreateDiskSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	return root
}

// WriteFiles writes files relative to dir, creating parents as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
}

// DevHeaders are the headers every response must carry.
var DevHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
	"Cache-Control":                "no-store, no-cache, must-revalidate",
}

// AssertDevHeaders checks that h carries every DevHeaders entry exactly once
// with the exact value.
func AssertDevHeaders(t *testing.T, h http.Header) {
	t.Helper()
	for key, want := range DevHeaders {
		got := h.Values(key)
		if len(got) != 1 || got[0] != want {
			t.Errorf("header %s = %q, want [%q]", key, got, want)
		}
	}
}

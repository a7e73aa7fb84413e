package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newBase creates a base directory with an empty public/ root.
func newBase(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "public"), 0755); err != nil {
		t.Fatalf("Failed to create root: %v", err)
	}
	t.Setenv("PORT", "")
	t.Setenv("DEVSERVER_HOST", "")
	return base
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	base := newBase(t)

	cfg, err := Load([]string{"--base", base})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if cfg.Host != "" {
		t.Errorf("Host = %q, want all interfaces", cfg.Host)
	}
	if want := filepath.Join(base, "public"); cfg.Root != want {
		t.Errorf("Root = %q, want %q", cfg.Root, want)
	}
	if cfg.Watch {
		t.Error("Watch should be disabled by default")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
	if cfg.MimeTypes[".wasm"] != "application/wasm" {
		t.Errorf("wasm mime type = %q", cfg.MimeTypes[".wasm"])
	}
	if len(cfg.QuickLinks) != 4 {
		t.Errorf("QuickLinks = %d entries, want 4", len(cfg.QuickLinks))
	}
	if got := cfg.ListenAddress(); got != ":8000" {
		t.Errorf("ListenAddress() = %q, want %q", got, ":8000")
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	base := t.TempDir()
	t.Setenv("PORT", "")

	_, err := Load([]string{"--base", base})
	if !errors.Is(err, ErrRootMissing) {
		t.Fatalf("Load() error = %v, want ErrRootMissing", err)
	}
}

func TestLoad_RootIsFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("PORT", "")
	writeFile(t, filepath.Join(base, "public"), "not a dir")

	_, err := Load([]string{"--base", base})
	if !errors.Is(err, ErrRootMissing) {
		t.Fatalf("Load() error = %v, want ErrRootMissing", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	base := newBase(t)
	if err := os.MkdirAll(filepath.Join(base, "site"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(base, DefaultFile), `
port: 9100
root: site
watch: true
shutdownTimeout: 2m
debounceDuration: 1ms
mimeTypes:
  .glb: model/gltf-binary
quickLinks:
  - name: Snake
    path: /arcade/snake.html
`)

	cfg, err := Load([]string{"--base", base})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if want := filepath.Join(base, "site"); cfg.Root != want {
		t.Errorf("Root = %q, want %q", cfg.Root, want)
	}
	if !cfg.Watch {
		t.Error("Watch should be enabled from file")
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("ShutdownTimeout = %v, want clamped to 60s", cfg.ShutdownTimeout)
	}
	if cfg.DebounceDuration != 10*time.Millisecond {
		t.Errorf("DebounceDuration = %v, want clamped to 10ms", cfg.DebounceDuration)
	}
	if cfg.MimeTypes[".glb"] != "model/gltf-binary" {
		t.Error("file mime type not loaded")
	}
	if cfg.MimeTypes[".wasm"] != "application/wasm" {
		t.Error("default mime type should survive file merge")
	}
	if len(cfg.QuickLinks) != 1 || cfg.QuickLinks[0].Name != "Snake" {
		t.Errorf("QuickLinks = %+v, want file list", cfg.QuickLinks)
	}
}

func TestLoad_Precedence(t *testing.T) {
	base := newBase(t)
	writeFile(t, filepath.Join(base, DefaultFile), "port: 9100\nhost: 10.0.0.1\n")

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("PORT", "9200")
		t.Setenv("DEVSERVER_HOST", "127.0.0.1")
		cfg, err := Load([]string{"--base", base})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != 9200 || cfg.Host != "127.0.0.1" {
			t.Errorf("got %s, want 127.0.0.1:9200", cfg.ListenAddress())
		}
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("PORT", "9200")
		cfg, err := Load([]string{"--base", base, "--port", "9300", "--host", "localhost"})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got := cfg.ListenAddress(); got != "localhost:9300" {
			t.Errorf("ListenAddress() = %q, want localhost:9300", got)
		}
	})
}

func TestLoad_Errors(t *testing.T) {
	base := newBase(t)
	bad := filepath.Join(base, "bad.yaml")
	writeFile(t, bad, "port: [1, 2")

	tests := []struct {
		name string
		args []string
		env  string
	}{
		{"unknown flag", []string{"--base", base, "--nope"}, ""},
		{"missing explicit config", []string{"--base", base, "--config", filepath.Join(base, "absent.yaml")}, ""},
		{"malformed config", []string{"--base", base, "--config", bad}, ""},
		{"port out of range", []string{"--base", base, "--port", "70000"}, ""},
		{"bad PORT env", []string{"--base", base}, "eighty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.env)
			if _, err := Load(tt.args); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestLoad_AbsoluteRoot(t *testing.T) {
	base := newBase(t)
	other := t.TempDir()

	cfg, err := Load([]string{"--base", base, "--root", other})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Root != filepath.Clean(other) {
		t.Errorf("Root = %q, want %q", cfg.Root, other)
	}
}

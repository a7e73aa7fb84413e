// Package config builds the immutable runtime configuration of the dev server
// from defaults, an optional devserver.yaml, the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in BaseDir when --config is not given.
const DefaultFile = "devserver.yaml"

// ErrRootMissing is returned when the served root is absent or not a directory.
var ErrRootMissing = errors.New("served root directory does not exist")

// QuickLink is a page advertised in the startup banner.
type QuickLink struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Config holds every tunable of the server. It is built once by Load and
// treated as read-only afterwards.
type Config struct {
	Host string `yaml:"host"` // empty means all interfaces
	Port int    `yaml:"port"`
	Root string `yaml:"root"` // absolute after Load

	Watch bool `yaml:"watch"` // report changes under Root to the console

	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`
	DebounceDuration time.Duration `yaml:"debounceDuration"`

	MimeTypes  map[string]string `yaml:"mimeTypes"`
	QuickLinks []QuickLink       `yaml:"quickLinks"`

	// BaseDir anchors relative roots. Defaults to the executable's directory
	// so the server behaves the same wherever it is launched from.
	BaseDir string `yaml:"-"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:             8000,
		Root:             "public",
		ShutdownTimeout:  5 * time.Second,
		DebounceDuration: 300 * time.Millisecond,
		MimeTypes: map[string]string{
			".wasm": "application/wasm",
		},
		QuickLinks: []QuickLink{
			{Name: "Homepage", Path: "/"},
			{Name: "Chess", Path: "/arcade/chess.html"},
			{Name: "LuckyBlock", Path: "/arcade/luckyblock.html"},
			{Name: "CoinToss", Path: "/arcade/cointoss.html"},
		},
	}
}

// Load parses args (without the program name) and assembles the final
// configuration. Precedence: flags, environment, config file, defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	host := fs.String("host", "", "The host/IP to bind to (default: all interfaces)")
	port := fs.Int("port", 8000, "The port to listen on")
	root := fs.String("root", "public", "Directory to serve, relative to the base directory")
	base := fs.String("base", "", "Base directory (default: directory of the executable)")
	file := fs.String("config", "", "Path to a YAML config file (default: <base>/"+DefaultFile+")")
	watch := fs.Bool("watch", false, "Report file changes under the served root")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := Default()

	if set["base"] {
		abs, err := filepath.Abs(*base)
		if err != nil {
			return nil, fmt.Errorf("invalid base directory: %w", err)
		}
		cfg.BaseDir = abs
	} else {
		dir, err := executableDir()
		if err != nil {
			return nil, err
		}
		cfg.BaseDir = dir
	}

	path, explicit := *file, set["config"]
	if !explicit {
		path = filepath.Join(cfg.BaseDir, DefaultFile)
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	if v := os.Getenv("DEVSERVER_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = p
	}

	if set["host"] {
		cfg.Host = *host
	}
	if set["port"] {
		cfg.Port = *port
	}
	if set["root"] {
		cfg.Root = *root
	}
	if set["watch"] {
		cfg.Watch = *watch
	}

	cfg.clamp()
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(cfg.BaseDir, cfg.Root)
	}
	cfg.Root = filepath.Clean(cfg.Root)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays a YAML file onto c. A missing file is only an error when
// it was asked for explicitly.
func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// clamp keeps durations within sane bounds.
func (c *Config) clamp() {
	if c.ShutdownTimeout < 1*time.Second {
		c.ShutdownTimeout = 1 * time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
	if c.DebounceDuration < 10*time.Millisecond {
		c.DebounceDuration = 10 * time.Millisecond
	}
	if c.DebounceDuration > 5*time.Second {
		c.DebounceDuration = 5 * time.Second
	}
}

// Validate checks the port range and that Root is an existing directory.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	info, err := os.Stat(c.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRootMissing, c.Root)
		}
		return fmt.Errorf("cannot access served root %s: %w", c.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootMissing, c.Root)
	}
	return nil
}

// ListenAddress returns the host:port pair to bind.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

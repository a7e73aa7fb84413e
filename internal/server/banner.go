package server

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/arcade-devserver/internal/config"
)

var rule = strings.Repeat("=", 60)

type palette struct {
	title, ok, warn, stop, link *color.Color
}

func newPalette(w io.Writer) palette {
	p := palette{
		title: color.New(color.FgMagenta, color.Bold),
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		stop:  color.New(color.FgRed),
		link:  color.New(color.FgCyan),
	}
	if !isTerminal(w) {
		for _, c := range []*color.Color{p.title, p.ok, p.warn, p.stop, p.link} {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printBanner writes the startup text. Only quick links whose target exists
// under the root are listed.
func printBanner(w io.Writer, cfg *config.Config, port int, fsys afero.Fs) {
	p := newPalette(w)

	fmt.Fprintf(w, "\n%s\n", rule)
	p.title.Fprintln(w, "  🎮 THE BASEMENT ARCADE - DEV SERVER")
	fmt.Fprintf(w, "%s\n\n", rule)

	p.ok.Fprintln(w, "  ✅ Server running at:")
	p.link.Fprintf(w, "     http://localhost:%d\n", port)
	p.link.Fprintf(w, "     http://127.0.0.1:%d\n", port)
	if cfg.Host == "" || cfg.Host == "0.0.0.0" || cfg.Host == "::" {
		fmt.Fprintln(w, "     (Accessible on your local network)")
	}

	fmt.Fprintf(w, "\n  📁 Serving files from: %s\n", cfg.Root)
	if cfg.Watch {
		fmt.Fprintln(w, "  👀 Watching for changes")
	}

	var links []config.QuickLink
	for _, l := range cfg.QuickLinks {
		if quickLinkExists(fsys, l.Path) {
			links = append(links, l)
		}
	}
	if len(links) > 0 {
		fmt.Fprintln(w, "\n  🎯 Quick Links:")
		for _, l := range links {
			fmt.Fprintf(w, "     %-12s ", l.Name+":")
			p.link.Fprintf(w, "http://localhost:%d%s\n", port, l.Path)
		}
	}

	p.warn.Fprintln(w, "\n  ⚠️  Press Ctrl+C to stop the server")
	fmt.Fprintf(w, "%s\n\n", rule)
}

func quickLinkExists(fsys afero.Fs, urlPath string) bool {
	name, err := resolveRequestPath(urlPath)
	if err != nil {
		return false
	}
	info, err := fsys.Stat(name)
	return err == nil && !info.IsDir()
}

func printShutdown(w io.Writer) {
	p := newPalette(w)
	p.stop.Fprintln(w, "\n\n  ❌ Server stopped by user")
	fmt.Fprintf(w, "%s\n\n", rule)
}

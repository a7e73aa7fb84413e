package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/spf13/afero"
)

const notFoundPage = "/404.html"

// Handler answers requests from a single served root. It keeps no state
// between requests, so one value can serve any number of connections.
type Handler struct {
	fs    afero.Fs
	files http.Handler // directory requests
}

// NewHandler serves the files of fsys, whose "/" is the served root.
func NewHandler(fsys afero.Fs) *Handler {
	return &Handler{
		fs:    fsys,
		files: http.FileServer(afero.NewHttpFs(fsys)),
	}
}

// ServeHTTP implements http.Handler. Every response carries devHeaders.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	withDevHeaders(http.HandlerFunc(h.serve)).ServeHTTP(w, r)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		// CORS preflight
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		http.Error(w, "501 - Not Implemented: unsupported method", http.StatusNotImplemented)
		return
	}

	name, err := resolveRequestPath(r.URL.Path)
	if err != nil {
		http.Error(w, "403 - Forbidden: Invalid path", http.StatusForbidden)
		return
	}

	info, err := h.fs.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.notFound(w)
			return
		}
		slog.Warn("Failed to stat file", "path", name, "error", err)
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		h.files.ServeHTTP(w, r)
		return
	}

	f, err := h.fs.Open(name)
	if err != nil {
		slog.Warn("Failed to open file", "path", name, "error", err)
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close file", "path", name, "error", cerr)
		}
	}()

	http.ServeContent(w, r, path.Base(name), info.ModTime(), f)
}

// notFound answers 404, using the site's own 404.html when it has one.
func (h *Handler) notFound(w http.ResponseWriter) {
	content, err := afero.ReadFile(h.fs, notFoundPage)
	if err != nil {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(content)
}

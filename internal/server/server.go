package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/arcade-devserver/internal/config"
	"github.com/Kush-Singh-26/arcade-devserver/internal/watch"
)

// Server binds the configured address and serves the root directory until
// its context is cancelled.
type Server struct {
	config  *config.Config
	fs      afero.Fs
	handler http.Handler
	out     io.Writer

	listener net.Listener
}

// New validates cfg and prepares a server that writes its banners to out.
func New(cfg *config.Config, out io.Writer) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for ext, typ := range cfg.MimeTypes {
		if err := mime.AddExtensionType(ext, typ); err != nil {
			return nil, fmt.Errorf("invalid mime type %q for %s: %w", typ, ext, err)
		}
	}

	// Read-only view rooted at cfg.Root; names cannot resolve above it.
	fsys := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.Root))

	return &Server{
		config:  cfg,
		fs:      fsys,
		handler: NewHandler(fsys),
		out:     out,
	}, nil
}

// Listen binds the listening socket. A port held by another process is
// reported here, before anything is served.
func (s *Server) Listen() error {
	addr := s.config.ListenAddress()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve runs the accept loop on the bound listener. Cancelling ctx stops
// accepting, waits up to ShutdownTimeout for in-flight requests and closes
// the listener. It returns nil on a cancellation-driven stop.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}

	port := s.config.Port
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	printBanner(s.out, s.config, port, s.fs)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	var watchWg sync.WaitGroup
	if s.config.Watch {
		s.startWatcher(watchCtx, &watchWg)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		stopWatch()
		watchWg.Wait()
		s.listener = nil
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", "error", err)
		_ = httpServer.Close()
	}
	<-serveErr

	stopWatch()
	watchWg.Wait()
	s.listener = nil

	printShutdown(s.out)
	return nil
}

func (s *Server) startWatcher(ctx context.Context, wg *sync.WaitGroup) {
	root := s.config.Root
	w, err := watch.New(root, s.config.DebounceDuration, func(e watch.Event) {
		rel, err := filepath.Rel(root, e.Name)
		if err != nil {
			rel = e.Name
		}
		slog.Info("File changed", "path", filepath.ToSlash(rel), "op", e.Op.String())
	})
	if err != nil {
		slog.Warn("Failed to create file watcher", "error", err)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Run(ctx); err != nil {
			slog.Warn("File watcher stopped", "error", err)
		}
	}()
}

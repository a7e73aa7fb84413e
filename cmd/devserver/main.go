package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kush-Singh-26/arcade-devserver/internal/config"
	"github.com/Kush-Singh-26/arcade-devserver/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("Dev server failed", "error", err)
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	srv, err := server.New(cfg, os.Stdout)
	if err != nil {
		return err
	}

	// Ctrl+C stops accepting and releases the port.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kcgrab/kcgrab/internal/app"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	var req app.Request
	flag.StringVar(&req.Links, "posts", "", "post links to download, comma/space separated")
	flag.StringVar(&req.IDs, "ids", "", "bare post IDs, resolved against -profile")
	flag.StringVar(&req.Profile, "profile", "", "profile link to download from")
	flag.StringVar(&req.Mode, "mode", "all", "profile fetch mode: all | <offset> | <a>-<b> | <id1>-<id2>")
	flag.BoolVar(&req.RetryFailed, "retry", false, "retry every link in the failure log")
	flag.Parse()

	log := logger.New(logger.Opts{})

	fxApp := fx.New(
		fx.Logger(log),
		fx.Supply(&req),
		app.Module,
	)

	if err := fxApp.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// Wait for the run to finish or for an interrupt.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-fxApp.Done():
	}

	if err := fxApp.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}

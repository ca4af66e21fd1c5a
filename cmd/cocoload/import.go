package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"cocoload/internal/config"
	"cocoload/internal/pipeline"
	"cocoload/internal/progress"
	"cocoload/internal/ui"
)

// runImport executes the full dataset import pipeline: download every
// manifest archive in parallel, then extract, delete and copy each one
// into the destination.
func runImport(args []string) int {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	scratch := fs.String("scratch", "", "Scratch directory for archives and extracted trees")
	dest := fs.String("dest", "", "Destination root: mounted path or bucket URL (required unless configured)")
	workers := fs.Int("workers", 0, "Copy worker pool size")
	builtin := fs.Bool("builtin", false, "Use the built-in HTTP downloader instead of wget")
	showProgress := fs.Bool("progress", false, "Show plain progress output")
	fancy := fs.Bool("fancy", false, "Show console progress trackers")
	diskInterval := fs.Duration("disk-interval", 0, "Free-space sampling interval (0 = config default)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cocoload import [options]

Run the full COCO dataset import. Archives download in parallel; each is
then extracted into scratch space, deleted, and copied into the
destination subdirectory named for its dataset split.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := loadConfig(*configPath)
	if code != ExitSuccess {
		return code
	}
	cfg = cfg.Merge(config.Config{
		ScratchDir:   *scratch,
		Dest:         *dest,
		Workers:      *workers,
		DiskInterval: *diskInterval,
	})
	if *builtin {
		cfg.Command = nil
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	events, cleanup := phaseEvents(*showProgress || cfg.Progress, *fancy)
	start := time.Now()
	err := pipeline.Run(ctx, cfg, pipeline.Options{Events: events})
	cleanup()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, pipeline.ErrDownload):
			return ExitDownloadFailed
		case errors.Is(err, pipeline.ErrExtract):
			return ExitExtractFailed
		case errors.Is(err, pipeline.ErrCopy):
			return ExitCopyFailed
		default:
			return ExitGeneralError
		}
	}

	fmt.Fprintf(os.Stderr, "[cocoload] Import complete: %d archives in %s\n",
		len(cfg.Archives), progress.FormatDuration(time.Since(start)))
	return ExitSuccess
}

// loadConfig layers defaults, .env, an optional YAML file, and the
// environment.
func loadConfig(path string) (config.Config, int) {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		return config.Config{}, ExitGeneralError
	}

	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.LoadFromFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return config.Config{}, ExitInvalidArgs
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return config.Config{}, ExitInvalidArgs
	}
	return cfg, ExitSuccess
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[cocoload] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}

// phaseEvents wires pipeline phases to either plain progress lines or
// go-pretty console trackers.
func phaseEvents(showProgress, fancy bool) (pipeline.Events, func()) {
	switch {
	case fancy:
		renderer := ui.NewRenderer()
		renderer.Start()
		events := pipeline.Events{
			PhaseStarted: func(label string, total int64) (*progress.Reporter, func()) {
				// A silent reporter backs the tracker's byte counter.
				reporter := progress.NewReporter(progress.Options{
					Label:      label,
					TotalBytes: total,
					Output:     io.Discard,
				})
				done := renderer.Track(label, total, reporter.Bytes)
				return reporter, done
			},
		}
		return events, renderer.Stop
	case showProgress:
		events := pipeline.Events{
			PhaseStarted: func(label string, total int64) (*progress.Reporter, func()) {
				reporter := progress.NewReporter(progress.Options{
					Label:      label,
					TotalBytes: total,
				})
				reporter.Start()
				return reporter, reporter.Stop
			},
		}
		return events, func() {}
	default:
		return pipeline.Events{}, func() {}
	}
}

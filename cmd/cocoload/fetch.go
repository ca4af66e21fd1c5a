package main

import (
	"flag"
	"fmt"
	"os"

	"cocoload/internal/config"
	"cocoload/internal/fetch"
	"cocoload/internal/pipeline"
	"cocoload/internal/progress"
)

// runFetch downloads every manifest archive in parallel to scratch
// space and stops there. Useful for staging downloads ahead of an
// import run.
func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	scratch := fs.String("scratch", "", "Scratch directory for downloaded archives")
	builtin := fs.Bool("builtin", false, "Use the built-in HTTP downloader instead of wget")
	showProgress := fs.Bool("progress", false, "Show progress output (built-in mode only)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cocoload fetch [options]

Download all manifest archives in parallel to scratch space. Every
download runs to completion; failures are aggregated and reported once
all of them have been observed.

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
	cfg = cfg.Merge(config.Config{ScratchDir: *scratch})
	if *builtin {
		cfg.Command = nil
	}
	if err := cfg.ValidateFetch(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := os.MkdirAll(cfg.ScratchDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	var reporter *progress.Reporter
	if *showProgress || cfg.Progress {
		reporter = progress.NewReporter(progress.Options{Label: "download"})
		reporter.Start()
		defer reporter.Stop()
	}

	err := fetch.Run(ctx, pipeline.Jobs(cfg), fetch.Options{
		Command:  cfg.Command,
		Progress: reporter,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitDownloadFailed
	}

	fmt.Fprintf(os.Stderr, "[cocoload] Fetched %d archives to %s\n", len(cfg.Archives), cfg.ScratchDir)
	return ExitSuccess
}

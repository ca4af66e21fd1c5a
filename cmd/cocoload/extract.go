package main

import (
	"flag"
	"fmt"
	"os"

	"cocoload/internal/extract"
	"cocoload/internal/progress"
)

// runExtract extracts a single zip archive to a destination directory.
func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)

	archive := fs.String("archive", "", "Path to the zip archive (required)")
	dest := fs.String("dest", "", "Destination directory (required)")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cocoload extract [options]

Extract a zip archive to a destination directory, streaming entries so
archives larger than memory are fine. The source archive is not
modified.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *archive == "" || *dest == "" {
		fmt.Fprintln(os.Stderr, "Error: -archive and -dest are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	total, err := extract.TotalSize(*archive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitExtractFailed
	}

	var reporter *progress.Reporter
	if *showProgress {
		reporter = progress.NewReporter(progress.Options{
			Label:      *archive,
			TotalBytes: total,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	if err := extract.Extract(ctx, *archive, *dest, extract.Options{Progress: reporter}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitExtractFailed
	}

	fmt.Fprintf(os.Stderr, "[cocoload] Extracted %s (%s) to %s\n",
		*archive, progress.FormatBytes(total), *dest)
	return ExitSuccess
}

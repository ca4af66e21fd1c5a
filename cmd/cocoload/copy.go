package main

import (
	"flag"
	"fmt"
	"os"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"cocoload/internal/copier"
	"cocoload/internal/progress"
	"cocoload/internal/uploader"
)

// runCopy copies a directory tree to a local destination or uploads it
// to a bucket URL.
func runCopy(args []string) int {
	fs := flag.NewFlagSet("copy", flag.ExitOnError)

	src := fs.String("src", "", "Source directory (required)")
	dest := fs.String("dest", "", "Destination: directory or bucket URL (required)")
	prefix := fs.String("prefix", "", "Key prefix inside the bucket (bucket destinations only)")
	workers := fs.Int("workers", copier.DefaultWorkers, "Worker pool size")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cocoload copy [options]

Copy a directory tree into a destination directory or bucket, using a
bounded worker pool. Existing destination directories are reused and
files are overwritten. Per-file failures are aggregated and reported
after the pool drains.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *src == "" || *dest == "" {
		fmt.Fprintln(os.Stderr, "Error: -src and -dest are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	var reporter *progress.Reporter
	if *showProgress {
		reporter = progress.NewReporter(progress.Options{Label: *src})
		reporter.Start()
		defer reporter.Stop()
	}

	if uploader.IsBucketURL(*dest) {
		bucket, err := blob.OpenBucket(ctx, *dest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
			return ExitStorageError
		}
		defer bucket.Close()

		err = uploader.UploadTree(ctx, bucket, *src, *prefix, uploader.Options{
			Workers:  *workers,
			Progress: reporter,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitCopyFailed
		}
	} else {
		err := copier.Copy(ctx, *src, *dest, copier.Options{
			Workers:  *workers,
			Progress: reporter,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitCopyFailed
		}
	}

	fmt.Fprintf(os.Stderr, "[cocoload] Copied %s to %s\n", *src, *dest)
	return ExitSuccess
}

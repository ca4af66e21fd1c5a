package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"

	"cocoload/internal/config"
	"cocoload/internal/copier"
	"cocoload/internal/diskmon"
	"cocoload/internal/extract"
	"cocoload/internal/fetch"
	"cocoload/internal/progress"
	"cocoload/internal/uploader"
)

// Phase sentinels. Every error Run returns wraps the sentinel of the
// phase it came from, so callers can map failures with errors.Is.
var (
	ErrDownload = errors.New("download phase")
	ErrExtract  = errors.New("extract")
	ErrCopy     = errors.New("copy")
)

// Events lets the caller observe pipeline phases.
type Events struct {
	// PhaseStarted is invoked at the start of each phase with a display
	// label and the expected byte total (0 if unknown). The returned
	// reporter (which may be nil) receives byte progress for the phase;
	// the returned function is called when the phase ends.
	PhaseStarted func(label string, totalBytes int64) (*progress.Reporter, func())
}

// Options configures a pipeline run.
type Options struct {
	Events Events

	// Output receives log lines and external downloader output.
	// Default: os.Stderr
	Output io.Writer

	// Bucket overrides the destination bucket. When nil and cfg.Dest is
	// a bucket URL, the bucket is opened from the URL.
	Bucket *blob.Bucket
}

// Jobs builds the download jobs for the configured manifest. Each
// archive's scratch destination is fixed up front.
func Jobs(cfg config.Config) []fetch.Job {
	jobs := make([]fetch.Job, 0, len(cfg.Archives))
	for _, a := range cfg.Archives {
		jobs = append(jobs, fetch.Job{
			URL:  a.URL,
			Dest: filepath.Join(cfg.ScratchDir, a.Name+".zip"),
		})
	}
	return jobs
}

// Run executes the full import: download all archives in parallel, then
// for each archive in manifest order extract it into scratch space,
// delete the source archive to free disk, and copy the extracted tree
// into the destination subdirectory named for the archive.
//
// A download failure in any job aborts the run after all downloads have
// been observed. Extraction and copy failures abort immediately. Nothing
// is cleaned up on failure; scratch and destination are left as they are.
func Run(ctx context.Context, cfg config.Config, opts Options) error {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	phaseStarted := opts.Events.PhaseStarted
	if phaseStarted == nil {
		phaseStarted = func(string, int64) (*progress.Reporter, func()) {
			return nil, func() {}
		}
	}

	if cfg.DiskInterval > 0 {
		mon := &diskmon.Monitor{
			Path:     cfg.ScratchDir,
			Interval: cfg.DiskInterval,
			Output:   opts.Output,
		}
		// Scope the monitor to this run so it cannot outlive us.
		monCtx, cancel := context.WithCancel(ctx)
		stop := mon.Start(monCtx)
		defer func() {
			cancel()
			stop()
		}()
	}

	if err := os.MkdirAll(cfg.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	bucket := opts.Bucket
	if bucket == nil && uploader.IsBucketURL(cfg.Dest) {
		var err error
		bucket, err = blob.OpenBucket(ctx, cfg.Dest)
		if err != nil {
			return fmt.Errorf("open destination bucket: %w", err)
		}
		defer bucket.Close()
	}

	jobs := Jobs(cfg)
	reporter, finish := phaseStarted("download", 0)
	err := fetch.Run(ctx, jobs, fetch.Options{
		Command:  cfg.Command,
		Progress: reporter,
		Output:   opts.Output,
	})
	finish()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}

	for i, a := range cfg.Archives {
		if err := importArchive(ctx, cfg, bucket, a, jobs[i].Dest, phaseStarted); err != nil {
			return err
		}
	}

	return nil
}

// importArchive runs extract -> delete -> copy for one archive.
func importArchive(
	ctx context.Context,
	cfg config.Config,
	bucket *blob.Bucket,
	a config.Archive,
	archivePath string,
	phaseStarted func(string, int64) (*progress.Reporter, func()),
) error {
	extractDir := filepath.Join(cfg.ScratchDir, a.Name)

	total, err := extract.TotalSize(archivePath)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrExtract, a.Name, err)
	}

	reporter, finish := phaseStarted("extract "+a.Name, total)
	err = extract.Extract(ctx, archivePath, extractDir, extract.Options{
		Progress:   reporter,
		BufferSize: cfg.BufferSize,
	})
	finish()
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrExtract, a.Name, err)
	}

	// Free scratch space before the copy; the archives are large and
	// scratch has to fit both the zip and its extracted tree otherwise.
	if err := os.Remove(archivePath); err != nil {
		return fmt.Errorf("%w %s: remove archive: %w", ErrExtract, a.Name, err)
	}

	reporter, finish = phaseStarted("copy "+a.Name, total)
	if bucket != nil {
		err = uploader.UploadTree(ctx, bucket, extractDir, a.Name, uploader.Options{
			Workers:    cfg.Workers,
			BufferSize: cfg.BufferSize,
			Progress:   reporter,
		})
	} else {
		err = copier.Copy(ctx, extractDir, filepath.Join(cfg.Dest, a.Name), copier.Options{
			Workers:    cfg.Workers,
			BufferSize: cfg.BufferSize,
			Progress:   reporter,
		})
	}
	finish()
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrCopy, a.Name, err)
	}

	return nil
}

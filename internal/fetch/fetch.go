package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	cocohttp "cocoload/internal/http"
	"cocoload/internal/progress"
)

// Job describes a single archive download.
type Job struct {
	// URL is the source URL.
	URL string

	// Dest is the local path the archive is written to. Destinations
	// must be unique across a batch; Run rejects duplicates up front.
	Dest string
}

// Options configures a fetch batch.
type Options struct {
	// Command is the external downloader invocation. Each argument may
	// contain the {url} and {dest} placeholders. Empty means the built-in
	// HTTP downloader is used instead of an external process.
	Command []string

	// HTTPOptions configures the built-in HTTP downloader.
	HTTPOptions cocohttp.Options

	// Progress is an optional progress reporter. Byte counts are only
	// reported in built-in HTTP mode; external processes report their
	// own progress on stderr.
	Progress *progress.Reporter

	// Output receives stdout/stderr of external download processes.
	// Default: os.Stderr
	Output io.Writer
}

// DefaultCommand is the external downloader used when none is configured
// and built-in HTTP mode is not requested.
var DefaultCommand = []string{"wget", "{url}", "-O", "{dest}"}

// Run starts all jobs concurrently, waits for every one of them to finish,
// and returns the aggregated failures, if any. A failing job never stops
// the others; partial output at a failed job's destination is left in
// place for the caller to deal with.
func Run(ctx context.Context, jobs []Job, opts Options) error {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if job.URL == "" || job.Dest == "" {
			return fmt.Errorf("fetch: job must have url and dest (url=%q dest=%q)", job.URL, job.Dest)
		}
		if seen[job.Dest] {
			return fmt.Errorf("fetch: duplicate destination %q", job.Dest)
		}
		seen[job.Dest] = true
	}

	if len(opts.Command) == 0 {
		return runHTTP(ctx, jobs, opts)
	}
	return runCommands(ctx, jobs, opts)
}

// runCommands launches one external process per job and waits for them in
// submission order.
func runCommands(ctx context.Context, jobs []Job, opts Options) error {
	type launched struct {
		cmd  *exec.Cmd
		args []string
		err  error
	}

	procs := make([]launched, 0, len(jobs))
	for _, job := range jobs {
		args := renderCommand(opts.Command, job)
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Stdout = opts.Output
		cmd.Stderr = opts.Output

		l := launched{cmd: cmd, args: args}
		if err := cmd.Start(); err != nil {
			l.err = fmt.Errorf("start %q: %w", strings.Join(args, " "), err)
		}
		procs = append(procs, l)
	}

	var failures []error
	for _, p := range procs {
		if p.err != nil {
			failures = append(failures, p.err)
			opts.Progress.ItemFailed()
			continue
		}
		if err := p.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				failures = append(failures,
					fmt.Errorf("download %q failed with exit status %d", strings.Join(p.args, " "), exitErr.ExitCode()))
			} else {
				failures = append(failures,
					fmt.Errorf("download %q failed: %w", strings.Join(p.args, " "), err))
			}
			opts.Progress.ItemFailed()
			continue
		}
		opts.Progress.ItemDone()
	}

	return errors.Join(failures...)
}

// runHTTP downloads all jobs concurrently with the built-in HTTP client.
// Failures are collected per job and aggregated after all jobs finish,
// mirroring the external-process contract.
func runHTTP(ctx context.Context, jobs []Job, opts Options) error {
	client := cocohttp.NewClient(opts.HTTPOptions)

	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fetchOne(ctx, client, job, opts.Progress)
		}()
	}
	wg.Wait()

	var failures []error
	for i, err := range errs {
		if err != nil {
			failures = append(failures, fmt.Errorf("download %q failed: %w", jobs[i].URL, err))
			opts.Progress.ItemFailed()
		} else {
			opts.Progress.ItemDone()
		}
	}

	return errors.Join(failures...)
}

// fetchOne streams a single URL to its destination file. When the server
// reports a size up front, the written byte count is checked against it.
func fetchOne(ctx context.Context, client *cocohttp.Client, job Job, reporter *progress.Reporter) error {
	if err := os.MkdirAll(filepath.Dir(job.Dest), 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}

	info, err := client.Head(ctx, job.URL)
	if err != nil {
		return err
	}

	body, err := client.Get(ctx, job.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(job.Dest)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, &progress.Reader{R: body, Reporter: reporter})
	if err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	if info.Size >= 0 && written != info.Size {
		return fmt.Errorf("incomplete download: got %d bytes, want %d", written, info.Size)
	}

	return f.Close()
}

// renderCommand substitutes the {url} and {dest} placeholders into the
// configured command line.
func renderCommand(command []string, job Job) []string {
	args := make([]string, len(command))
	for i, arg := range command {
		arg = strings.ReplaceAll(arg, "{url}", job.URL)
		arg = strings.ReplaceAll(arg, "{dest}", job.Dest)
		args[i] = arg
	}
	return args
}

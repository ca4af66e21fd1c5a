package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Label identifies the operation being reported (e.g. the archive name).
	Label string

	// TotalBytes is the total number of bytes expected, or 0 if unknown.
	TotalBytes int64

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable byte progress for a single operation.
// Add and the item methods are safe for concurrent use. Reporting is
// observational only: a nil *Reporter is valid and all methods on it
// are no-ops.
type Reporter struct {
	opts Options

	mu        sync.Mutex
	bytes     atomic.Int64
	items     atomic.Int32
	failed    atomic.Int32
	startTime time.Time
	lastTime  time.Time
	lastBytes int64
	stopCh    chan struct{}
	stopped   bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	if r == nil {
		return
	}
	r.startTime = time.Now()
	r.lastTime = r.startTime

	if r.opts.TotalBytes > 0 {
		fmt.Fprintf(r.opts.Output, "[cocoload] %s: %s total\n",
			r.opts.Label, FormatBytes(r.opts.TotalBytes))
	} else {
		fmt.Fprintf(r.opts.Output, "[cocoload] %s\n", r.opts.Label)
	}

	go r.updateLoop()
}

// Stop stops the reporter and prints a final status line.
func (r *Reporter) Stop() {
	if r == nil {
		return
	}
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

// Add records n bytes of completed work.
func (r *Reporter) Add(n int64) {
	if r == nil {
		return
	}
	r.bytes.Add(n)
}

// ItemDone records one completed item (file, entry, download).
func (r *Reporter) ItemDone() {
	if r == nil {
		return
	}
	r.items.Add(1)
}

// ItemFailed records one failed item.
func (r *Reporter) ItemFailed() {
	if r == nil {
		return
	}
	r.failed.Add(1)
}

// Bytes returns the number of bytes recorded so far.
func (r *Reporter) Bytes() int64 {
	if r == nil {
		return 0
	}
	return r.bytes.Load()
}

func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinal()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

func (r *Reporter) printProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	done := r.bytes.Load()

	elapsed := now.Sub(r.lastTime).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(done-r.lastBytes) / elapsed
	r.lastTime = now
	r.lastBytes = done

	if r.opts.TotalBytes > 0 {
		percent := float64(done) / float64(r.opts.TotalBytes) * 100
		eta := "calculating..."
		if speed > 0 {
			remaining := float64(r.opts.TotalBytes - done)
			eta = FormatDuration(time.Duration(remaining / speed * float64(time.Second)))
		}
		fmt.Fprintf(r.opts.Output, "\r[cocoload] %s: %.1f%% | %s / %s | %s/s | ETA: %s    ",
			r.opts.Label, percent, FormatBytes(done), FormatBytes(r.opts.TotalBytes),
			FormatBytes(int64(speed)), eta)
	} else {
		fmt.Fprintf(r.opts.Output, "\r[cocoload] %s: %s | %s/s    ",
			r.opts.Label, FormatBytes(done), FormatBytes(int64(speed)))
	}
}

func (r *Reporter) printFinal() {
	done := r.bytes.Load()
	items := r.items.Load()
	failed := r.failed.Load()
	duration := time.Since(r.startTime)
	avg := float64(done) / duration.Seconds()

	fmt.Fprintf(r.opts.Output, "\r[cocoload] %s: %s in %s (%s/s), %d items",
		r.opts.Label, FormatBytes(done), FormatDuration(duration), FormatBytes(int64(avg)), items)
	if failed > 0 {
		fmt.Fprintf(r.opts.Output, ", %d failed", failed)
	}
	fmt.Fprintln(r.opts.Output)
}

// Reader wraps an io.Reader and reports bytes read to a Reporter.
type Reader struct {
	R        io.Reader
	Reporter *Reporter
}

func (cr *Reader) Read(p []byte) (int, error) {
	n, err := cr.R.Read(p)
	if n > 0 {
		cr.Reporter.Add(int64(n))
	}
	return n, err
}

// FormatBytes formats a byte count as a human-readable string using
// binary units.
func FormatBytes(b int64) string {
	const (
		KiB = 1 << 10
		MiB = 1 << 20
		GiB = 1 << 30
		TiB = 1 << 40
	)

	format := func(v float64, unit string) string {
		if v < 10 {
			return fmt.Sprintf("%.1f %s", v, unit)
		}
		return fmt.Sprintf("%.0f %s", v, unit)
	}

	switch {
	case b >= TiB:
		return format(float64(b)/TiB, "TiB")
	case b >= GiB:
		return format(float64(b)/GiB, "GiB")
	case b >= MiB:
		return format(float64(b)/MiB, "MiB")
	case b >= KiB:
		return format(float64(b)/KiB, "KiB")
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// ParseBytes parses a human-readable byte string. Binary suffixes
// (KiB, MiB, GiB, TiB) are powers of 1024; SI suffixes (KB, MB, GB, TB)
// are powers of 1000. A bare number or "B" suffix is a byte count.
func ParseBytes(s string) (int64, error) {
	var multiplier int64 = 1

	suffixes := []struct {
		suffix string
		mult   int64
	}{
		{"KiB", 1 << 10},
		{"MiB", 1 << 20},
		{"GiB", 1 << 30},
		{"TiB", 1 << 40},
		{"KB", 1000},
		{"MB", 1000 * 1000},
		{"GB", 1000 * 1000 * 1000},
		{"TB", 1000 * 1000 * 1000 * 1000},
		{"B", 1},
	}

	for _, sfx := range suffixes {
		if hasSuffix(s, sfx.suffix) {
			multiplier = sfx.mult
			s = s[:len(s)-len(sfx.suffix)]
			break
		}
	}

	var value float64
	if _, err := fmt.Sscanf(s, "%f", &value); err != nil {
		return 0, fmt.Errorf("invalid byte string: %s", s)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

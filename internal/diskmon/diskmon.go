package diskmon

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Monitor periodically logs free disk space for a path. It is purely
// diagnostic: it never affects control flow and any sampling error is
// logged, not returned.
type Monitor struct {
	// Path is the filesystem to sample.
	// Default: "/"
	Path string

	// Interval between samples.
	// Default: 30s
	Interval time.Duration

	// TaskID prefixes every log line. Default: COCOLOAD_TASK_ID from the
	// environment, falling back to the hostname.
	TaskID string

	// Output receives log lines.
	// Default: os.Stderr
	Output io.Writer
}

// Start launches the sampling loop in a goroutine. The loop stops when
// ctx is cancelled; the returned function waits for it to exit.
func (m *Monitor) Start(ctx context.Context) (stop func()) {
	if m.Path == "" {
		m.Path = "/"
	}
	if m.Interval <= 0 {
		m.Interval = 30 * time.Second
	}
	if m.TaskID == "" {
		m.TaskID = TaskID()
	}
	if m.Output == nil {
		m.Output = os.Stderr
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		m.sample()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sample()
			}
		}
	}()

	return func() { <-done }
}

// sample logs the current free space once.
func (m *Monitor) sample() {
	free, err := FreeSpace(m.Path)
	if err != nil {
		fmt.Fprintf(m.Output, "%s disk space check failed: %v\n", m.TaskID, err)
		return
	}
	fmt.Fprintf(m.Output, "%s free disk space: %.2f GiB\n", m.TaskID, float64(free)/(1<<30))
}

// FreeSpace returns the number of bytes available to unprivileged users
// on the filesystem containing path.
func FreeSpace(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return int64(st.Bavail) * st.Frsize, nil
}

// TaskID returns the environment-provided task identifier, or the
// hostname when none is set. Used only for diagnostic log lines.
func TaskID() string {
	if id := os.Getenv("COCOLOAD_TASK_ID"); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil {
		return "cocoload"
	}
	return host
}

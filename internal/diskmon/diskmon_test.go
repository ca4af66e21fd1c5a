package diskmon

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer makes bytes.Buffer safe for the sampling goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFreeSpace(t *testing.T) {
	free, err := FreeSpace(".")
	if err != nil {
		t.Fatalf("FreeSpace: %v", err)
	}
	if free <= 0 {
		t.Errorf("FreeSpace = %d, want > 0", free)
	}
}

func TestFreeSpaceBadPath(t *testing.T) {
	if _, err := FreeSpace("/nonexistent/path/for/sure"); err == nil {
		t.Error("expected error for nonexistent path")
	}
}

func TestMonitorLogsAndStops(t *testing.T) {
	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())

	m := &Monitor{
		Path:     ".",
		Interval: 10 * time.Millisecond,
		TaskID:   "ta-test123",
		Output:   &out,
	}
	wait := m.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()
	wait()

	got := out.String()
	if !strings.Contains(got, "ta-test123 free disk space:") {
		t.Errorf("output missing task-id prefixed sample: %q", got)
	}
	if !strings.Contains(got, "GiB") {
		t.Errorf("output missing unit: %q", got)
	}
}

func TestTaskIDFromEnv(t *testing.T) {
	t.Setenv("COCOLOAD_TASK_ID", "ta-abc")
	if got := TaskID(); got != "ta-abc" {
		t.Errorf("TaskID() = %q, want %q", got, "ta-abc")
	}
}

package ui

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/text"
)

var styleColors = progress.StyleColors{
	Message: text.Colors{text.FgWhite},
	Error:   text.Colors{text.FgRed},
	Percent: text.Colors{text.FgHiRed},
	Stats:   text.Colors{text.FgHiBlack},
	Time:    text.Colors{text.FgGreen},
	Tracker: text.Colors{text.FgYellow},
	Value:   text.Colors{text.FgCyan},
	Speed:   text.Colors{text.FgMagenta},
}

// Renderer draws one console tracker per pipeline phase.
type Renderer struct {
	pw progress.Writer
}

// NewRenderer creates a console renderer.
func NewRenderer() *Renderer {
	pw := progress.NewWriter()
	pw.SetAutoStop(false)
	pw.SetMessageLength(50)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(150 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.SetSortBy(progress.SortByMessage)
	pw.Style().Colors = styleColors
	pw.Style().Visibility.ETA = true

	return &Renderer{pw: pw}
}

// Start begins rendering.
func (r *Renderer) Start() {
	go r.pw.Render()
}

// Stop stops rendering once all trackers are finished.
func (r *Renderer) Stop() {
	r.pw.Stop()
}

// Track adds a tracker labeled message with the given byte total and
// polls bytes for its current value until the returned done function is
// called. A zero total renders as an indeterminate tracker.
func (r *Renderer) Track(message string, total int64, bytes func() int64) (done func()) {
	tracker := &progress.Tracker{
		Message: message,
		Total:   total,
		Units:   progress.UnitsBytes,
	}
	r.pw.AppendTracker(tracker)

	stopCh := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(150 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				tracker.SetValue(bytes())
				tracker.MarkAsDone()
				return
			case <-ticker.C:
				tracker.SetValue(bytes())
			}
		}
	}()

	return func() {
		close(stopCh)
		<-stopped
	}
}

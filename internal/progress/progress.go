// Package progress defines the scan-progress event emitted by the
// pipeline and two ways to consume it: a terminal spinner/bar for
// interactive callers, and a newline-framed JSON writer for a caller
// that talks to this tool over IPC.
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Event is one progress update. Total resets between Pass 2 and Pass 3
// - it is always the size of the current pass's candidate set, not a
// running grand total across the whole scan.
type Event struct {
	Current int64  `json:"current"`
	Total   int64  `json:"total"`
	File    string `json:"file"`
}

// Sink is a send-only channel for progress events. Emission onto a Sink
// is always fire-and-forget: a full or closed sink must never stall a
// scan.
type Sink chan<- Event

// Emit sends an event on sink without blocking. A nil sink, a closed
// sink, or one with no room and no ready receiver, silently drops the
// event.
func Emit(sink Sink, current, total int64, file string) {
	if sink == nil {
		return
	}
	// A send on a closed channel panics; recover so the event is dropped.
	defer func() { _ = recover() }()
	select {
	case sink <- Event{Current: current, Total: total, File: file}:
	default:
	}
}

// JSONLWriter drains events from ch and writes each as one
// newline-framed JSON object to w, matching the wire shape a GUI
// shell's IPC bridge expects. Returns when ch is closed or the first
// write error occurs.
func JSONLWriter(ch <-chan Event, w io.Writer) error {
	enc := json.NewEncoder(w)
	for ev := range ch {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("write progress event: %w", err)
		}
	}
	return nil
}

const updateInterval = 50 * time.Millisecond

// Bar wraps progressbar with enabled/disabled handling. All methods are
// no-ops when disabled, so callers that don't want a terminal UI (e.g.
// the GUI shell, or JSONLWriter-only consumers) can share the same call
// sites.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a progress bar. If enabled=false, returns a Bar where all
// methods are no-ops. Use total=-1 for spinner mode, or total>0 for
// determinate progress.
func New(enabled bool, total int64) *Bar {
	if !enabled {
		return &Bar{}
	}

	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(false),
		)
		return &Bar{bar: progressbar.NewOptions(-1, opts...)}
	}

	opts = append(opts, progressbar.OptionSetWidth(40))
	return &Bar{bar: progressbar.NewOptions64(total, opts...)}
}

// Set sets the progress bar to a specific value.
func (b *Bar) Set(n int64) {
	if b.bar != nil {
		_ = b.bar.Set64(n)
	}
}

// Describe updates the progress bar description.
func (b *Bar) Describe(s fmt.Stringer) {
	if b.bar != nil {
		b.bar.Describe(s.String())
	}
}

// Finish completes the progress bar and prints a final message.
func (b *Bar) Finish(s fmt.Stringer) {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(os.Stderr, "done: "+s.String())
	}
}

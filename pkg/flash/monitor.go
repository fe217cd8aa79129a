// Package flash coordinates a batch of concurrent device writes and exposes
// a lock-light polling interface over their progress. One writer goroutine
// per target owns its task's counters; a single periodic Monitor reads them,
// smooths transfer rates, and detects whole-batch completion.
package flash

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/driveforge/multiflash/pkg/imagebuffer"
)

// DefaultPollInterval is the reference cadence for Monitor.Step. The
// smoothed rate is expressed in bytes per this interval; no compensation is
// made for delayed or skipped polls.
const DefaultPollInterval = 500 // milliseconds

// Status tells the consumer what to render after a poll.
type Status int

const (
	// StatusIdle means no image is loaded and no session runs.
	StatusIdle Status = iota
	// StatusLoading means an image load is in progress; disable "proceed".
	StatusLoading
	// StatusReady means an image is loaded; "proceed" may be enabled.
	StatusReady
	// StatusFlashing means a session is active and Tasks carries progress.
	StatusFlashing
	// StatusDone means the session completed this poll; Summary and Errors
	// are populated and no further polls should be scheduled.
	StatusDone
)

// TaskReport is one task's state as observed in a single poll.
type TaskReport struct {
	DeviceID string
	// Fraction is the displayed completion in [0,1]. Exactly 1.0 once the
	// task is finished, regardless of the raw counter.
	Fraction float64
	// Rate is the smoothed transfer rate in bytes per poll interval.
	Rate     uint64
	Finished bool
}

// Report is what a single Monitor.Step hands to the presentation layer.
type Report struct {
	Status    Status
	ImagePath string
	ImageSize uint64
	Tasks     []TaskReport
	Summary   string
	Errors    ErrorCollector
}

// Monitor is the periodic polling function over an image buffer and a flash
// session. It never blocks during a poll: task reads are atomic loads, and
// the only blocking call (Session.Drain) happens after every finished flag
// has already been observed true.
//
// The session latch is deliberately separate from the buffer's load phase:
// Begin sets it when the consumer starts flashing, and completion clears it.
type Monitor struct {
	buffer  *imagebuffer.Buffer
	session *Session

	flashing bool
}

// NewMonitor creates a Monitor over the given buffer and session.
func NewMonitor(buffer *imagebuffer.Buffer, session *Session) *Monitor {
	return &Monitor{buffer: buffer, session: session}
}

// Begin latches "session active". The consumer calls it immediately after
// Session.Start. Beginning while already flashing is a programming error.
func (m *Monitor) Begin() {
	if m.flashing {
		panic("flash: Begin called while a session is already active")
	}
	m.flashing = true
}

// Step runs one poll. It returns the report for this poll and whether the
// consumer should schedule another one. Once it returns false the session
// has been drained and the ErrorCollector consumed into the report.
func (m *Monitor) Step() (Report, bool) {
	// The session latch is checked before the load phase: once flashing,
	// the buffer phase is irrelevant until the batch completes.
	if !m.flashing {
		switch m.buffer.Phase() {
		case imagebuffer.PhaseLoading:
			return Report{Status: StatusLoading}, true
		case imagebuffer.PhaseReady:
			path, size := m.buffer.Snapshot()
			return Report{Status: StatusReady, ImagePath: path, ImageSize: size}, true
		default: // PhaseEmpty, PhaseInvalidated
			return Report{Status: StatusIdle}, true
		}
	}

	tasks := m.session.Tasks()
	if len(tasks) == 0 {
		return Report{Status: StatusFlashing}, true
	}

	_, total := m.buffer.Snapshot()

	report := Report{
		Status: StatusFlashing,
		Tasks:  make([]TaskReport, 0, len(tasks)),
	}

	// Tasks are read in submission order every poll, so ring updates are
	// deterministic for a given raw progress sequence.
	finished := true
	for _, task := range tasks {
		raw := task.BytesWritten()
		done := task.Finished()
		if !done {
			finished = false
		}

		task.observe(raw)
		report.Tasks = append(report.Tasks, TaskReport{
			DeviceID: task.DeviceID,
			Fraction: taskFraction(raw, total, done),
			Rate:     task.smoothedRate(),
			Finished: done,
		})
	}

	if !finished {
		return report, true
	}

	// Whole batch done: join the writers, collect failures, stop.
	elapsed := time.Since(m.session.StartedAt())
	errs := m.session.Drain()
	m.flashing = false

	report.Status = StatusDone
	report.Errors = errs
	report.Summary = Summary(len(tasks), len(errs))
	slog.Info("flash_complete", "tasks", len(tasks), "failed", len(errs), "elapsed", elapsed)
	return report, false
}

// taskFraction guards the zero-size edge: a task writing a zero-byte image
// displays 0.0 until its writer reports finished, then 1.0.
func taskFraction(raw, total uint64, finished bool) float64 {
	if finished {
		return 1.0
	}
	if total == 0 {
		return 0.0
	}
	return float64(raw) / float64(total)
}

// Summary renders the batch outcome: every target succeeded, or K of N did.
func Summary(total, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("%d devices successfully flashed", total)
	}
	return fmt.Sprintf("%d of %d devices successfully flashed", total-failed, total)
}

// FormatRate renders a smoothed rate for display, in MiB/s when the value
// reaches a full MiB per interval unit and KiB/s otherwise.
func FormatRate(rate uint64) string {
	if rate >= 1024*1024 {
		return fmt.Sprintf("%d MiB/s", rate/(1024*1024))
	}
	return fmt.Sprintf("%d KiB/s", rate/1024)
}

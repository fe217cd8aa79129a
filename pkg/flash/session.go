package flash

import (
	"log/slog"
	"time"
)

// TaskError pairs a failed target with its failure reason.
type TaskError struct {
	DeviceID string
	Err      error
}

// ErrorCollector holds the per-target failures gathered at drain time, in
// task submission order. It is built exactly once per session and never
// mutated afterward.
type ErrorCollector []TaskError

// Session owns the tasks and writer goroutines of one flashing run. Tasks
// and join handles are index-aligned with the targets passed to Start, and
// both are released together, exactly once, by Drain.
type Session struct {
	tasks     []*Task
	handles   []chan error
	startedAt time.Time
}

// NewSession returns an empty session ready for Start.
func NewSession() *Session {
	return &Session{}
}

// Active reports whether the session currently holds undrained tasks.
func (s *Session) Active() bool {
	return len(s.tasks) != 0
}

// Tasks returns the session's tasks in submission order.
func (s *Session) Tasks() []*Task {
	return s.tasks
}

// StartedAt returns when Start was called. Zero for an idle session.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Start creates one task per target and spawns its writer goroutine. The
// image buffer is shared read-only across all writers; the caller must not
// begin a new image load while any writer spawned here still runs. Targets
// must already be validated (not the source device, unmounted per caller
// policy). Outcomes surface only through Drain.
//
// Starting a session that is already active is a programming error.
func (s *Session) Start(targets []string, image []byte, verify bool, w Writer) {
	if s.Active() {
		panic("flash: Start called on an active session")
	}

	total := uint64(len(image))
	s.startedAt = time.Now()
	s.tasks = make([]*Task, 0, len(targets))
	s.handles = make([]chan error, 0, len(targets))

	for _, target := range targets {
		task := newTask(target)
		handle := make(chan error, 1)
		s.tasks = append(s.tasks, task)
		s.handles = append(s.handles, handle)

		slog.Info("writer_started", "device", target, "image_size", total, "verify", verify)

		go func(task *Task, target string, handle chan error) {
			err := w.Write(image, target, total, verify, task.report, task.markFinished)
			// markFinished is idempotent; the task must read finished
			// once Write has returned, whatever the writer did.
			task.markFinished()
			handle <- err
		}(task, target, handle)
	}
}

// Drain joins every writer goroutine in task order and collects failures.
// It must be called exactly once per session, and only after every task has
// reported finished; the Monitor observes all finished flags before calling
// it, so the receives below return immediately. Calling Drain earlier is a
// programming error.
func (s *Session) Drain() ErrorCollector {
	if !s.Active() {
		panic("flash: Drain called on an idle session")
	}
	for _, task := range s.tasks {
		if !task.Finished() {
			panic("flash: Drain called before task finished: " + task.DeviceID)
		}
	}

	var collected ErrorCollector
	for i, handle := range s.handles {
		if err := <-handle; err != nil {
			slog.Error("writer_failed", "device", s.tasks[i].DeviceID, "error", err)
			collected = append(collected, TaskError{DeviceID: s.tasks[i].DeviceID, Err: err})
		} else {
			slog.Info("writer_succeeded", "device", s.tasks[i].DeviceID)
		}
	}

	s.tasks = nil
	s.handles = nil
	return collected
}

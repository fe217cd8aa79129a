package flash

import "sync/atomic"

// ringDepth is the number of per-poll byte deltas kept for rate smoothing.
const ringDepth = 6

// rateWindow is how many of the most recent deltas feed the smoothed rate.
const rateWindow = 3

// Task is the per-target progress record. Its two counters follow a strict
// single-writer/multi-reader discipline: bytesWritten and finished are stored
// only by the writer goroutine bound to this task, and only loaded by the
// Monitor. The sample ring is owned and mutated exclusively by the Monitor.
type Task struct {
	// DeviceID identifies the target device (path). Immutable after creation.
	DeviceID string

	bytesWritten atomic.Uint64
	finished     atomic.Bool

	// samples[0] is the raw baseline from the previous poll; samples[1..6]
	// are the deltas between consecutive polls, oldest first.
	samples [1 + ringDepth]uint64
}

func newTask(deviceID string) *Task {
	return &Task{DeviceID: deviceID}
}

// report is the progress sink handed to the writer goroutine.
func (t *Task) report(bytes uint64) {
	t.bytesWritten.Store(bytes)
}

// markFinished is the completion sink. Idempotent.
func (t *Task) markFinished() {
	t.finished.Store(true)
}

// BytesWritten returns the cumulative bytes reported by the writer.
func (t *Task) BytesWritten() uint64 {
	return t.bytesWritten.Load()
}

// Finished reports whether the writer has completed, successfully or not.
func (t *Task) Finished() bool {
	return t.finished.Load()
}

// observe records the raw counter for this poll: all delta slots shift left,
// the newest delta (raw minus the prior poll's baseline) enters the last
// slot, and raw becomes the new baseline. Monitor-only.
func (t *Task) observe(raw uint64) {
	copy(t.samples[1:], t.samples[2:])
	t.samples[ringDepth] = raw - t.samples[0]
	t.samples[0] = raw
}

// smoothedRate returns the average of the rateWindow most recent deltas,
// in bytes per poll interval. Monitor-only.
func (t *Task) smoothedRate() uint64 {
	var sum uint64
	for _, d := range t.samples[1+ringDepth-rateWindow:] {
		sum += d
	}
	return sum / rateWindow
}

// Package imagebuffer holds the source image behind an explicit load-phase
// protocol: written once by a loader goroutine, read by the poller and by
// session start.
package imagebuffer

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Phase is the load state of the buffer.
type Phase int32

const (
	// PhaseEmpty means no image has been chosen yet.
	PhaseEmpty Phase = iota
	// PhaseLoading means a loader goroutine is reading the image.
	PhaseLoading
	// PhaseReady means the buffer holds the complete image.
	PhaseReady
	// PhaseInvalidated means the last load failed; consumers treat this as
	// empty and report the error upstream.
	PhaseInvalidated
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// ErrLoadInProgress is returned by BeginLoad while a prior load is still
// running. Loads are serialized; overlapping loads are rejected, never raced.
var ErrLoadInProgress = errors.New("imagebuffer: load already in progress")

// Buffer holds the chosen image path and its loaded bytes. The phase is a
// lock-free load so the poller never blocks; path and data are guarded by a
// mutex that is only contended during load transitions. The data slice is
// never mutated once the phase reaches PhaseReady; a new load cycle first
// re-enters PhaseLoading and clears it. Callers must not begin a new load
// while a flash session still references the old bytes.
type Buffer struct {
	phase atomic.Int32

	mu   sync.Mutex
	path string
	data []byte
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Phase returns the current load phase.
func (b *Buffer) Phase() Phase {
	return Phase(b.phase.Load())
}

// BeginLoad clears the buffer, records the chosen path, and enters
// PhaseLoading. It rejects overlapping loads with ErrLoadInProgress.
func (b *Buffer) BeginLoad(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if Phase(b.phase.Load()) == PhaseLoading {
		return ErrLoadInProgress
	}
	b.path = path
	b.data = nil
	b.phase.Store(int32(PhaseLoading))
	return nil
}

// CompleteLoad installs the loaded bytes and enters PhaseReady. Called once
// by the loader goroutine on success; calling it outside a load is a
// programming error.
func (b *Buffer) CompleteLoad(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if Phase(b.phase.Load()) != PhaseLoading {
		panic("imagebuffer: CompleteLoad outside of a load")
	}
	b.data = data
	b.phase.Store(int32(PhaseReady))
}

// FailLoad enters PhaseInvalidated without touching the bytes. Called by the
// loader goroutine when the source could not be read.
func (b *Buffer) FailLoad() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if Phase(b.phase.Load()) != PhaseLoading {
		panic("imagebuffer: FailLoad outside of a load")
	}
	b.phase.Store(int32(PhaseInvalidated))
}

// Size returns the loaded image size. Only meaningful in PhaseReady.
func (b *Buffer) Size() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.data))
}

// Snapshot returns the chosen path and loaded size together.
func (b *Buffer) Snapshot() (string, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path, uint64(len(b.data))
}

// Bytes returns the loaded image for read-only sharing across writer
// goroutines. Only meaningful in PhaseReady.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

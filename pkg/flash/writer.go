package flash

import "fmt"

// Reason classifies why a write to a single target failed.
type Reason int

const (
	// ReasonOpen means the target device could not be opened for writing.
	ReasonOpen Reason = iota + 1
	// ReasonWrite means an I/O error occurred while writing the image.
	ReasonWrite
	// ReasonShortWrite means the device accepted fewer bytes than the image holds.
	ReasonShortWrite
	// ReasonSync means flushing written data to the device failed.
	ReasonSync
	// ReasonVerify means the read-back contents did not match the image.
	ReasonVerify
)

// String returns a stable, human-readable name for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonOpen:
		return "open failed"
	case ReasonWrite:
		return "write failed"
	case ReasonShortWrite:
		return "short write"
	case ReasonSync:
		return "sync failed"
	case ReasonVerify:
		return "verification mismatch"
	default:
		return fmt.Sprintf("unknown reason %d", int(r))
	}
}

// WriteError is the typed failure a Writer reports for one target.
type WriteError struct {
	Reason Reason
	Err    error
}

func (e *WriteError) Error() string {
	if e.Err == nil {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ProgressFunc receives cumulative bytes written so far. Values are
// non-decreasing and never exceed the total passed to Write.
type ProgressFunc func(bytes uint64)

// Writer performs the byte-level write (and optional verification) of an
// image onto one target device. Write is invoked once per task on its own
// goroutine. Implementations must call onProgress zero or more times with
// non-decreasing values up to total, then call onFinish exactly once before
// returning.
type Writer interface {
	Write(image []byte, targetPath string, total uint64, verify bool, onProgress ProgressFunc, onFinish func()) error
}

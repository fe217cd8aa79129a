package workflow

// FlashRequest is the FSM input
type FlashRequest struct {
	ImagePath string
	Devices   []string
	Verify    bool
}

// FailedDevice is one (device, reason) pair from the completed batch.
type FailedDevice struct {
	DevicePath string
	Reason     string
}

// FlashResponse is the FSM output (accumulated across transitions)
type FlashResponse struct {
	// From LoadImage
	ImageSize uint64
	SHA256    string

	// From Flash
	Summary string
	Failed  []FailedDevice

	// From Record (history row ids, index-aligned with request devices)
	RecordIDs []int64

	// From Complete/Failed
	Status string
}

// Succeeded returns how many devices flashed cleanly.
func (r *FlashResponse) Succeeded(total int) int {
	return total - len(r.Failed)
}

// FailureFor returns the failure reason recorded for a device, if any.
func (r *FlashResponse) FailureFor(devicePath string) (string, bool) {
	for _, f := range r.Failed {
		if f.DevicePath == devicePath {
			return f.Reason, true
		}
	}
	return "", false
}

// State names
const (
	StateLoadImage = "load_image"
	StateFlash     = "flash_devices"
	StateRecord    = "record_results"
	StateComplete  = "complete"
	StateFailed    = "failed"
)

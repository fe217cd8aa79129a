package workflow

import "testing"

func TestResponseAccumulation(t *testing.T) {
	resp := &FlashResponse{
		ImageSize: 4096,
		SHA256:    "abc123",
		RecordIDs: []int64{1, 2, 3},
	}

	// Simulate the flash state appending failures
	resp.Summary = "2 of 3 devices successfully flashed"
	resp.Failed = append(resp.Failed, FailedDevice{DevicePath: "/dev/sdc", Reason: "short write"})

	if resp.ImageSize == 0 {
		t.Error("ImageSize should be preserved from load state")
	}
	if len(resp.RecordIDs) != 3 {
		t.Error("RecordIDs should be preserved from flash state")
	}
	if resp.Succeeded(3) != 2 {
		t.Errorf("Succeeded = %d, want 2", resp.Succeeded(3))
	}
}

func TestFailureFor(t *testing.T) {
	resp := &FlashResponse{
		Failed: []FailedDevice{
			{DevicePath: "/dev/sdb", Reason: "open failed"},
			{DevicePath: "/dev/sdd", Reason: "verification mismatch"},
		},
	}

	tests := []struct {
		device     string
		wantReason string
		wantFound  bool
	}{
		{"/dev/sdb", "open failed", true},
		{"/dev/sdd", "verification mismatch", true},
		{"/dev/sdc", "", false},
	}

	for _, tt := range tests {
		reason, found := resp.FailureFor(tt.device)
		if found != tt.wantFound || reason != tt.wantReason {
			t.Errorf("FailureFor(%s) = (%q, %v), want (%q, %v)",
				tt.device, reason, found, tt.wantReason, tt.wantFound)
		}
	}
}

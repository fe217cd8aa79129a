//go:build linux

package device

import "testing"

func TestParentDisk(t *testing.T) {
	tests := []struct {
		device string
		want   string
	}{
		{"/dev/sdb1", "/dev/sdb"},
		{"/dev/sdb", "/dev/sdb"},
		{"/dev/mmcblk0", "/dev/mmcblk0"},
		{"/dev/mmcblk0p1", "/dev/mmcblk0"},
		{"/dev/nvme0n1", "/dev/nvme0n1"},
		{"/dev/nvme0n1p2", "/dev/nvme0n1"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := parentDisk(tt.device); got != tt.want {
			t.Errorf("parentDisk(%q) = %q, want %q", tt.device, got, tt.want)
		}
	}
}

package device

import (
	"strings"
	"testing"
)

func detectedFixture() []Target {
	return []Target{
		{Path: "/dev/sdb", Label: "Kingston DataTraveler", Size: 16 << 30},
		{Path: "/dev/sdc", Size: 8 << 30, MountPoints: []string{"/media/usb"}},
		{Path: "/dev/sdd", Label: "SanDisk Ultra", Size: 32 << 30},
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name         string
		requested    []string
		sourceDevice string
		allowMounted bool
		wantErr      string
		wantPaths    []string
	}{
		{
			name:      "unmounted targets pass",
			requested: []string{"/dev/sdb", "/dev/sdd"},
			wantPaths: []string{"/dev/sdb", "/dev/sdd"},
		},
		{
			name:      "order follows request",
			requested: []string{"/dev/sdd", "/dev/sdb"},
			wantPaths: []string{"/dev/sdd", "/dev/sdb"},
		},
		{
			name:      "unknown device rejected",
			requested: []string{"/dev/sda"},
			wantErr:   "not a removable device",
		},
		{
			name:         "source device rejected",
			requested:    []string{"/dev/sdb"},
			sourceDevice: "/dev/sdb",
			wantErr:      "source image",
		},
		{
			name:      "mounted device rejected by default",
			requested: []string{"/dev/sdc"},
			wantErr:   "mounted",
		},
		{
			name:         "mounted device allowed with unmount",
			requested:    []string{"/dev/sdc"},
			allowMounted: true,
			wantPaths:    []string{"/dev/sdc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(detectedFixture(), tt.requested, tt.sourceDevice, tt.allowMounted)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("got err %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.wantPaths) {
				t.Fatalf("got %d targets, want %d", len(got), len(tt.wantPaths))
			}
			for i, p := range tt.wantPaths {
				if got[i].Path != p {
					t.Errorf("target %d = %s, want %s", i, got[i].Path, p)
				}
			}
		})
	}
}

func TestTargetDisplay(t *testing.T) {
	withLabel := Target{Path: "/dev/sdb", Label: "Kingston DataTraveler"}
	if got := withLabel.Display(); got != "Kingston DataTraveler (/dev/sdb)" {
		t.Errorf("Display = %q", got)
	}

	bare := Target{Path: "/dev/sdc"}
	if got := bare.Display(); got != "/dev/sdc" {
		t.Errorf("Display = %q", got)
	}
}

func TestPaths(t *testing.T) {
	got := Paths(detectedFixture())
	want := []string{"/dev/sdb", "/dev/sdc", "/dev/sdd"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path %d = %s, want %s", i, got[i], want[i])
		}
	}
}

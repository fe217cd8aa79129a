// Package device enumerates removable block devices that may be flashed and
// resolves their mount state.
package device

import (
	"context"
	"fmt"
	"strings"
)

// Target describes one candidate output device.
type Target struct {
	// Path is the block device node, e.g. /dev/sdb. It is the stable
	// identifier carried through tasks and history records.
	Path string
	// Label is a human-readable vendor/model string, empty when unknown.
	Label string
	// Size is the device capacity in bytes.
	Size uint64
	// MountPoints lists where the device or any of its partitions is
	// currently mounted.
	MountPoints []string
}

// Display renders the target the way the device list shows it:
// "Label (/dev/sdb)" or just the path when no label is known.
func (t Target) Display() string {
	if t.Label == "" {
		return t.Path
	}
	return fmt.Sprintf("%s (%s)", t.Label, t.Path)
}

// Mounted reports whether the device or any partition is mounted.
func (t Target) Mounted() bool {
	return len(t.MountPoints) > 0
}

// Enumerator lists removable targets and resolves which device backs a
// given filesystem path.
type Enumerator interface {
	// ListTargets returns removable block devices in a stable order.
	ListTargets(ctx context.Context) ([]Target, error)

	// Backing returns the device path holding the filesystem that contains
	// path, or empty when it cannot be resolved.
	Backing(path string) string

	// Unmount unmounts the device's partitions.
	Unmount(ctx context.Context, target Target) error
}

// Select resolves the requested device paths against detected targets.
// It rejects unknown paths, the device backing the source image, and mounted
// targets unless unmounting was requested (in which case the caller unmounts
// them before flashing). Order of the result follows requested.
func Select(detected []Target, requested []string, sourceDevice string, allowMounted bool) ([]Target, error) {
	byPath := make(map[string]Target, len(detected))
	for _, t := range detected {
		byPath[t.Path] = t
	}

	selected := make([]Target, 0, len(requested))
	for _, path := range requested {
		t, ok := byPath[path]
		if !ok {
			return nil, fmt.Errorf("not a removable device: %s", path)
		}
		if sourceDevice != "" && t.Path == sourceDevice {
			return nil, fmt.Errorf("refusing to flash the device holding the source image: %s", path)
		}
		if t.Mounted() && !allowMounted {
			return nil, fmt.Errorf("device is mounted (pass --unmount to unmount): %s at %s",
				path, strings.Join(t.MountPoints, ", "))
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// Paths extracts the device paths from targets, preserving order.
func Paths(targets []Target) []string {
	paths := make([]string, 0, len(targets))
	for _, t := range targets {
		paths = append(paths, t.Path)
	}
	return paths
}

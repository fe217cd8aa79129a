//go:build linux

package device

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/driveforge/multiflash/pkg/errors"
	"github.com/shirou/gopsutil/v3/disk"
)

const sectorSize = 512

// linuxEnumerator scans /sys/block for removable devices and uses the
// partition table for mount resolution.
type linuxEnumerator struct {
	sysBlock string
}

// NewEnumerator returns the Linux enumerator.
func NewEnumerator() (Enumerator, error) {
	return &linuxEnumerator{sysBlock: "/sys/block"}, nil
}

func (e *linuxEnumerator) ListTargets(ctx context.Context) ([]Target, error) {
	entries, err := filepath.Glob(filepath.Join(e.sysBlock, "*"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan block devices")
	}
	sort.Strings(entries)

	partitions, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read partitions")
	}

	var targets []Target
	for _, entry := range entries {
		name := filepath.Base(entry)
		if !readSysFlag(filepath.Join(entry, "removable")) {
			continue
		}

		devPath := "/dev/" + name
		t := Target{
			Path:  devPath,
			Label: readLabel(entry),
			Size:  readSectors(filepath.Join(entry, "size")) * sectorSize,
		}
		for _, p := range partitions {
			if p.Device == devPath || strings.HasPrefix(p.Device, devPath) {
				t.MountPoints = append(t.MountPoints, p.Mountpoint)
			}
		}

		slog.Info("device_detected", "path", t.Path, "label", t.Label, "size", t.Size, "mounted", t.Mounted())
		targets = append(targets, t)
	}

	return targets, nil
}

func (e *linuxEnumerator) Backing(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	partitions, err := disk.Partitions(true)
	if err != nil {
		return ""
	}

	// Longest mountpoint prefix wins, then the partition device is reduced
	// to its parent disk (sdb1 -> sdb, nvme0n1p2 -> nvme0n1).
	var bestMount, bestDevice string
	for _, p := range partitions {
		if strings.HasPrefix(abs, p.Mountpoint) && len(p.Mountpoint) > len(bestMount) {
			bestMount = p.Mountpoint
			bestDevice = p.Device
		}
	}
	return parentDisk(bestDevice)
}

func (e *linuxEnumerator) Unmount(ctx context.Context, target Target) error {
	for _, mount := range target.MountPoints {
		slog.Info("unmounting", "device", target.Path, "mount", mount)
		cmd := exec.CommandContext(ctx, "umount", mount)
		if err := cmd.Run(); err != nil {
			slog.Error("unmount_failed", "device", target.Path, "mount", mount, "error", err)
			return errors.Wrapf(err, "failed to unmount %s", mount)
		}
	}
	return nil
}

// partition suffixes: sdb1 -> sdb, while mmcblk0p1/nvme0n1p2 use the pN form
var (
	partSuffixP = regexp.MustCompile(`^(.*\d)p\d+$`)
	partSuffix  = regexp.MustCompile(`^((?:s|h|v|xv)d[a-z]+)\d+$`)
)

// parentDisk strips a partition suffix from a device path, leaving disk
// names (sdb, mmcblk0, nvme0n1) untouched.
func parentDisk(devPath string) string {
	name := filepath.Base(devPath)
	if name == "" || name == "." || name == "/" {
		return ""
	}
	if m := partSuffixP.FindStringSubmatch(name); m != nil {
		return filepath.Join(filepath.Dir(devPath), m[1])
	}
	if m := partSuffix.FindStringSubmatch(name); m != nil {
		return filepath.Join(filepath.Dir(devPath), m[1])
	}
	return devPath
}

func readSysFlag(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

func readSectors(path string) uint64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func readLabel(sysEntry string) string {
	var parts []string
	for _, f := range []string{"device/vendor", "device/model"} {
		if data, err := os.ReadFile(filepath.Join(sysEntry, f)); err == nil {
			if s := strings.TrimSpace(string(data)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

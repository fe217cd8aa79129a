//go:build !linux

package device

import (
	"context"
	"fmt"
	"runtime"
)

// stubEnumerator refuses device operations on unsupported platforms.
type stubEnumerator struct{}

// NewEnumerator returns a stub on non-Linux systems.
func NewEnumerator() (Enumerator, error) {
	return &stubEnumerator{}, nil
}

func (e *stubEnumerator) ListTargets(ctx context.Context) ([]Target, error) {
	return nil, fmt.Errorf("device enumeration not supported on %s", runtime.GOOS)
}

func (e *stubEnumerator) Backing(path string) string {
	return ""
}

func (e *stubEnumerator) Unmount(ctx context.Context, target Target) error {
	return fmt.Errorf("unmount not supported on %s", runtime.GOOS)
}

package imagebuffer

import (
	"errors"
	"testing"
)

func TestPhaseLifecycle(t *testing.T) {
	buf := New()
	if buf.Phase() != PhaseEmpty {
		t.Fatalf("new buffer phase = %v, want empty", buf.Phase())
	}

	if err := buf.BeginLoad("/tmp/a.img"); err != nil {
		t.Fatal(err)
	}
	if buf.Phase() != PhaseLoading {
		t.Fatalf("phase = %v, want loading", buf.Phase())
	}

	buf.CompleteLoad([]byte("abcd"))
	if buf.Phase() != PhaseReady {
		t.Fatalf("phase = %v, want ready", buf.Phase())
	}
	if buf.Size() != 4 {
		t.Errorf("size = %d, want 4", buf.Size())
	}
	path, size := buf.Snapshot()
	if path != "/tmp/a.img" || size != 4 {
		t.Errorf("snapshot = (%s, %d), want (/tmp/a.img, 4)", path, size)
	}
}

// A new load cycle always re-enters loading and clears the old bytes first.
func TestReloadClearsBytes(t *testing.T) {
	buf := New()
	buf.BeginLoad("/tmp/a.img")
	buf.CompleteLoad([]byte("abcd"))

	if err := buf.BeginLoad("/tmp/b.img"); err != nil {
		t.Fatal(err)
	}
	if buf.Phase() != PhaseLoading {
		t.Fatalf("phase = %v, want loading", buf.Phase())
	}
	if _, size := buf.Snapshot(); size != 0 {
		t.Errorf("size after reload = %d, want 0", size)
	}
}

func TestOverlappingLoadsRejected(t *testing.T) {
	buf := New()
	buf.BeginLoad("/tmp/a.img")

	err := buf.BeginLoad("/tmp/b.img")
	if !errors.Is(err, ErrLoadInProgress) {
		t.Fatalf("got %v, want ErrLoadInProgress", err)
	}

	// The first load still resolves normally.
	buf.CompleteLoad([]byte("x"))
	if path, _ := buf.Snapshot(); path != "/tmp/a.img" {
		t.Errorf("path = %s, want /tmp/a.img", path)
	}
}

func TestFailLoadInvalidates(t *testing.T) {
	buf := New()
	buf.BeginLoad("/tmp/a.img")
	buf.FailLoad()

	if buf.Phase() != PhaseInvalidated {
		t.Fatalf("phase = %v, want invalidated", buf.Phase())
	}

	// An invalidated buffer accepts a fresh load.
	if err := buf.BeginLoad("/tmp/b.img"); err != nil {
		t.Fatal(err)
	}
}

func TestCompleteLoadOutsideLoadPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("CompleteLoad outside a load must panic")
		}
	}()
	New().CompleteLoad([]byte("x"))
}

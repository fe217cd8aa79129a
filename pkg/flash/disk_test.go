package flash

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskWriterWriteAndVerify(t *testing.T) {
	target := filepath.Join(t.TempDir(), "device.img")
	if err := os.WriteFile(target, make([]byte, 16), 0o644); err != nil {
		t.Fatal(err)
	}

	image := []byte("0123456789abcdef")
	var progress []uint64
	finishCalls := 0

	w := &DiskWriter{ChunkSize: 4}
	err := w.Write(image, target, uint64(len(image)), true,
		func(n uint64) { progress = append(progress, n) },
		func() { finishCalls++ },
	)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if finishCalls != 1 {
		t.Errorf("onFinish called %d times, want 1", finishCalls)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress not monotone: %v", progress)
		}
	}
	if len(progress) == 0 || progress[len(progress)-1] != uint64(len(image)) {
		t.Errorf("final progress = %v, want %d", progress, len(image))
	}

	written, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(written) != string(image) {
		t.Errorf("target contents = %q, want %q", written, image)
	}
}

func TestDiskWriterOpenFailure(t *testing.T) {
	w := NewDiskWriter()
	finishCalls := 0

	err := w.Write([]byte("data"), filepath.Join(t.TempDir(), "missing"), 4, false, nil,
		func() { finishCalls++ })

	var we *WriteError
	if !errors.As(err, &we) || we.Reason != ReasonOpen {
		t.Fatalf("got %v, want WriteError with ReasonOpen", err)
	}
	if finishCalls != 1 {
		t.Errorf("onFinish called %d times, want 1 even on failure", finishCalls)
	}
}

func TestWriteErrorReasonStrings(t *testing.T) {
	tests := []struct {
		reason Reason
		want   string
	}{
		{ReasonOpen, "open failed"},
		{ReasonWrite, "write failed"},
		{ReasonShortWrite, "short write"},
		{ReasonSync, "sync failed"},
		{ReasonVerify, "verification mismatch"},
	}
	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("Reason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

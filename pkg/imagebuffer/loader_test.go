package imagebuffer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
)

type memSource struct {
	data    []byte
	openErr error
	readErr error
}

func (s *memSource) Open(ctx context.Context, path string) (uint64, io.ReadCloser, error) {
	if s.openErr != nil {
		return 0, nil, s.openErr
	}
	var r io.Reader = bytes.NewReader(s.data)
	if s.readErr != nil {
		r = io.MultiReader(bytes.NewReader(s.data), errReader{s.readErr})
	}
	return uint64(len(s.data)), io.NopCloser(r), nil
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestLoadSuccess(t *testing.T) {
	buf := New()
	src := &memSource{data: []byte("image contents")}

	var reported []uint64
	err := Load(context.Background(), buf, src, "/tmp/a.img", func(read, total uint64) {
		reported = append(reported, read)
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if buf.Phase() != PhaseReady {
		t.Fatalf("phase = %v, want ready", buf.Phase())
	}
	if string(buf.Bytes()) != "image contents" {
		t.Errorf("bytes = %q", buf.Bytes())
	}
	if len(reported) == 0 || reported[len(reported)-1] != uint64(len(src.data)) {
		t.Errorf("progress = %v, want final value %d", reported, len(src.data))
	}
}

func TestLoadOpenFailure(t *testing.T) {
	buf := New()
	src := &memSource{openErr: fmt.Errorf("no such object")}

	if err := Load(context.Background(), buf, src, "/tmp/a.img", nil); err == nil {
		t.Fatal("expected error")
	}
	if buf.Phase() != PhaseInvalidated {
		t.Errorf("phase = %v, want invalidated", buf.Phase())
	}
}

func TestLoadReadFailure(t *testing.T) {
	buf := New()
	src := &memSource{data: []byte("partial"), readErr: fmt.Errorf("device gone")}

	if err := Load(context.Background(), buf, src, "/tmp/a.img", nil); err == nil {
		t.Fatal("expected error")
	}
	if buf.Phase() != PhaseInvalidated {
		t.Errorf("phase = %v, want invalidated", buf.Phase())
	}
}

func TestLoadWhileLoadingRejected(t *testing.T) {
	buf := New()
	buf.BeginLoad("/tmp/a.img")

	err := Load(context.Background(), buf, &memSource{}, "/tmp/b.img", nil)
	if err != ErrLoadInProgress {
		t.Fatalf("got %v, want ErrLoadInProgress", err)
	}
}

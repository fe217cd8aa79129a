package flash

import (
	"bytes"
	"io"
	"log/slog"
	"os"
)

// defaultChunkSize is the write granularity; progress is reported after
// every chunk.
const defaultChunkSize = 4 * 1024 * 1024

// DiskWriter writes an image to a block device (or any writable path) in
// chunks, optionally reading it back to verify. It is the production Writer.
type DiskWriter struct {
	// ChunkSize overrides the write granularity when non-zero.
	ChunkSize int
}

// NewDiskWriter returns a DiskWriter with the default chunk size.
func NewDiskWriter() *DiskWriter {
	return &DiskWriter{}
}

func (w *DiskWriter) chunkSize() int {
	if w.ChunkSize > 0 {
		return w.ChunkSize
	}
	return defaultChunkSize
}

// Write implements Writer. onProgress receives cumulative totals after every
// chunk; onFinish runs exactly once before Write returns.
func (w *DiskWriter) Write(image []byte, targetPath string, total uint64, verify bool, onProgress ProgressFunc, onFinish func()) error {
	defer onFinish()

	f, err := os.OpenFile(targetPath, os.O_WRONLY, 0o644)
	if err != nil {
		return &WriteError{Reason: ReasonOpen, Err: err}
	}

	var written uint64
	chunk := w.chunkSize()
	for off := 0; off < len(image); off += chunk {
		end := off + chunk
		if end > len(image) {
			end = len(image)
		}
		n, err := f.Write(image[off:end])
		written += uint64(n)
		if err != nil {
			f.Close()
			return &WriteError{Reason: ReasonWrite, Err: err}
		}
		if n != end-off {
			f.Close()
			return &WriteError{Reason: ReasonShortWrite, Err: io.ErrShortWrite}
		}
		if onProgress != nil {
			onProgress(written)
		}
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return &WriteError{Reason: ReasonSync, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Reason: ReasonSync, Err: err}
	}

	if verify {
		if err := w.verify(image, targetPath); err != nil {
			return err
		}
	}

	slog.Info("disk_write_complete", "device", targetPath, "written", written, "verified", verify)
	return nil
}

// verify re-reads the written range and compares it chunk by chunk.
func (w *DiskWriter) verify(image []byte, targetPath string) error {
	f, err := os.Open(targetPath)
	if err != nil {
		return &WriteError{Reason: ReasonOpen, Err: err}
	}
	defer f.Close()

	chunk := w.chunkSize()
	readback := make([]byte, chunk)
	for off := 0; off < len(image); off += chunk {
		end := off + chunk
		if end > len(image) {
			end = len(image)
		}
		if _, err := io.ReadFull(f, readback[:end-off]); err != nil {
			return &WriteError{Reason: ReasonVerify, Err: err}
		}
		if !bytes.Equal(readback[:end-off], image[off:end]) {
			return &WriteError{Reason: ReasonVerify}
		}
	}
	return nil
}

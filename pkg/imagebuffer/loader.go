package imagebuffer

import (
	"context"
	"io"
	"log/slog"

	"github.com/driveforge/multiflash/pkg/errors"
)

// Opener is the image-source collaborator: it resolves a path to a total
// size and a byte stream. Implementations live in pkg/source.
type Opener interface {
	Open(ctx context.Context, path string) (uint64, io.ReadCloser, error)
}

// readChunk is how many bytes the loader pulls between progress reports.
const readChunk = 4 * 1024 * 1024

// Load drives one full load cycle on its own goroutine: BeginLoad, read the
// whole image while reporting progress, then CompleteLoad or FailLoad.
// onProgress may be nil; when set it receives (bytes read so far, total).
func Load(ctx context.Context, buf *Buffer, src Opener, path string, onProgress func(read, total uint64)) error {
	if err := buf.BeginLoad(path); err != nil {
		return err
	}

	total, rc, err := src.Open(ctx, path)
	if err != nil {
		slog.Error("image_open_failed", "path", path, "error", err)
		buf.FailLoad()
		return errors.Wrap(err, "failed to open image")
	}
	defer rc.Close()

	slog.Info("image_load_started", "path", path, "size", total)

	data := make([]byte, 0, total)
	chunk := make([]byte, readChunk)
	for {
		n, err := rc.Read(chunk)
		if n > 0 {
			data = append(data, chunk[:n]...)
			if onProgress != nil {
				onProgress(uint64(len(data)), total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("image_read_failed", "path", path, "read", len(data), "error", err)
			buf.FailLoad()
			return errors.Wrap(err, "failed to read image")
		}
	}

	buf.CompleteLoad(data)
	slog.Info("image_load_complete", "path", path, "size", len(data))
	return nil
}

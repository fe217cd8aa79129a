// Package source implements the image-source collaborators that feed the
// image buffer: local files and S3 objects.
package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/driveforge/multiflash/pkg/errors"
)

// File reads images from the local filesystem.
type File struct{}

// Open implements imagebuffer.Opener.
func (File) Open(ctx context.Context, path string) (uint64, io.ReadCloser, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to stat image")
	}
	if info.IsDir() {
		return 0, nil, fmt.Errorf("image path is a directory: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to open image")
	}
	return uint64(info.Size()), f, nil
}

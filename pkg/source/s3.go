package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/driveforge/multiflash/pkg/storage"
)

// s3Scheme prefixes remote image paths: s3://bucket/key.
const s3Scheme = "s3://"

// IsS3 reports whether a path names an S3 object.
func IsS3(path string) bool {
	return strings.HasPrefix(path, s3Scheme)
}

// S3 reads images from S3 objects addressed as s3://bucket/key.
type S3 struct {
	client *storage.Client
}

// NewS3 wraps a storage client as an image source.
func NewS3(client *storage.Client) *S3 {
	return &S3{client: client}
}

// Open implements imagebuffer.Opener.
func (s *S3) Open(ctx context.Context, path string) (uint64, io.ReadCloser, error) {
	bucket, key, err := splitS3Path(path)
	if err != nil {
		return 0, nil, err
	}
	return s.client.Open(ctx, bucket, key)
}

// Exists reports whether the addressed object is present, so a mistyped
// path can be rejected before any device work starts.
func (s *S3) Exists(ctx context.Context, path string) (bool, error) {
	bucket, key, err := splitS3Path(path)
	if err != nil {
		return false, err
	}
	return s.client.Exists(ctx, bucket, key)
}

func splitS3Path(path string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(path, s3Scheme)
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 image path (want s3://bucket/key): %s", path)
	}
	return bucket, key, nil
}

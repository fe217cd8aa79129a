// Package storage provides read-only S3 access for remote image sources.
package storage

import (
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/driveforge/multiflash/pkg/errors"
)

// Client wraps the S3 API for streaming image reads.
type Client struct {
	s3Client *s3.Client
}

// NewClient creates a new S3 client for anonymous access.
func NewClient(ctx context.Context, region string) (*Client, error) {
	slog.Info("s3_client_init", "region", region)

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		slog.Error("aws_config_load_failed", "error", err)
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &Client{s3Client: s3.NewFromConfig(cfg)}, nil
}

// Open returns the object's size and a stream over its contents. The caller
// owns closing the stream.
func (c *Client) Open(ctx context.Context, bucket, key string) (uint64, io.ReadCloser, error) {
	slog.Info("s3_open", "bucket", bucket, "key", key)

	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Error("s3_get_object_failed", "bucket", bucket, "key", key, "error", err)
		return 0, nil, errors.Wrap(err, "failed to get object from S3")
	}

	var size uint64
	if result.ContentLength != nil {
		size = uint64(*result.ContentLength)
	}

	return size, result.Body, nil
}

// Exists checks whether an object is present.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if err.Error() == "NotFound" {
			slog.Info("s3_object_not_found", "bucket", bucket, "key", key)
			return false, nil
		}
		slog.Error("s3_head_object_failed", "bucket", bucket, "key", key, "error", err)
		return false, errors.Wrap(err, "failed to check object existence")
	}
	return true, nil
}

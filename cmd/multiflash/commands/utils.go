package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driveforge/multiflash/internal/config"
	"github.com/driveforge/multiflash/pkg/errors"
	"github.com/driveforge/multiflash/pkg/imagebuffer"
	"github.com/driveforge/multiflash/pkg/source"
	"github.com/driveforge/multiflash/pkg/storage"
)

// ensureDirectories creates all necessary directories for the application
func ensureDirectories(sqlitePath, fsmDBPath string) error {
	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
		return errors.Wrap(err, "failed to create database directory")
	}

	// FSM database directory (only needed for the flash command)
	if fsmDBPath != "" {
		if err := os.MkdirAll(fsmDBPath, 0755); err != nil {
			return errors.Wrap(err, "failed to create FSM directory")
		}
	}

	return nil
}

// openSource picks the image source for a path: S3 for s3:// paths, the
// local filesystem otherwise.
func openSource(ctx context.Context, cfg *config.Config, imagePath string) (imagebuffer.Opener, error) {
	if !source.IsS3(imagePath) {
		return source.File{}, nil
	}
	client, err := storage.NewClient(ctx, cfg.S3Region)
	if err != nil {
		return nil, errors.Wrap(err, "S3 client failed")
	}
	return source.NewS3(client), nil
}

// confirm prints a y/N prompt and reads the answer from stdin.
func confirm() bool {
	fmt.Print("y/N: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "yes"
}

// formatSize renders a byte count for table output.
func formatSize(bytes uint64) string {
	switch {
	case bytes >= 1024*1024*1024:
		return fmt.Sprintf("%d GiB", bytes/(1024*1024*1024))
	case bytes >= 1024*1024:
		return fmt.Sprintf("%d MiB", bytes/(1024*1024))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

package commands

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/driveforge/multiflash/internal/config"
	"github.com/driveforge/multiflash/pkg/errors"
	"github.com/driveforge/multiflash/pkg/imagebuffer"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <image>",
	Short: "Print the checksum of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	hashCmd.Flags().String("algorithm", "sha256", "Checksum algorithm (sha256 or md5)")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	imagePath := args[0]
	algorithm, _ := cmd.Flags().GetString("algorithm")

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	src, err := openSource(ctx, cfg, imagePath)
	if err != nil {
		return err
	}

	buf := imagebuffer.New()
	if err := imagebuffer.Load(ctx, buf, src, imagePath, nil); err != nil {
		return err
	}

	data := buf.Bytes()
	var digest string
	switch algorithm {
	case "sha256":
		sum := sha256.Sum256(data)
		digest = hex.EncodeToString(sum[:])
	case "md5":
		sum := md5.Sum(data)
		digest = hex.EncodeToString(sum[:])
	default:
		return fmt.Errorf("unsupported algorithm: %s (want sha256 or md5)", algorithm)
	}

	fmt.Printf("%s  %s\n", digest, imagePath)
	return nil
}

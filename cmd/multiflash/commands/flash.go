package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/driveforge/multiflash/internal/config"
	"github.com/driveforge/multiflash/pkg/db"
	"github.com/driveforge/multiflash/pkg/device"
	"github.com/driveforge/multiflash/pkg/errors"
	"github.com/driveforge/multiflash/pkg/flash"
	"github.com/driveforge/multiflash/pkg/imagebuffer"
	"github.com/driveforge/multiflash/pkg/source"
	"github.com/driveforge/multiflash/pkg/workflow"
	"github.com/spf13/cobra"
	"github.com/superfly/fsm"
)

var flashCmd = &cobra.Command{
	Use:   "flash <image> [devices...]",
	Short: "Flash an image to one or more removable devices",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFlash,
}

func init() {
	flashCmd.Flags().BoolP("all", "a", false, "Flash all detected removable devices")
	flashCmd.Flags().BoolP("check", "c", false, "Verify written data matches the image")
	flashCmd.Flags().BoolP("unmount", "u", false, "Unmount mounted target devices before flashing")
	flashCmd.Flags().BoolP("yes", "y", false, "Continue without confirmation")
	rootCmd.AddCommand(flashCmd)
}

func runFlash(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	imagePath := args[0]

	all, _ := cmd.Flags().GetBool("all")
	check, _ := cmd.Flags().GetBool("check")
	unmount, _ := cmd.Flags().GetBool("unmount")
	yes, _ := cmd.Flags().GetBool("yes")

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config invalid")
	}
	if err := ensureDirectories(cfg.SQLitePath, cfg.FSMDBPath); err != nil {
		return err
	}

	enum, err := device.NewEnumerator()
	if err != nil {
		return errors.Wrap(err, "device enumerator failed")
	}
	detected, err := enum.ListTargets(ctx)
	if err != nil {
		return errors.Wrap(err, "device enumeration failed")
	}

	requested := args[1:]
	if all {
		requested = device.Paths(detected)
	}
	if len(requested) == 0 {
		return fmt.Errorf("no devices specified (pass device paths or --all)")
	}

	sourceDevice := ""
	if !source.IsS3(imagePath) {
		sourceDevice = enum.Backing(imagePath)
	}

	targets, err := device.Select(detected, requested, sourceDevice, unmount)
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cfg, imagePath)
	if err != nil {
		return err
	}
	if remote, ok := src.(*source.S3); ok {
		found, err := remote.Exists(ctx, imagePath)
		if err != nil {
			return errors.Wrap(err, "S3 image check failed")
		}
		if !found {
			return fmt.Errorf("image not found: %s", imagePath)
		}
	}

	if !yes {
		fmt.Printf("Are you sure you want to flash '%s' to the following drives?\n", imagePath)
		for _, t := range targets {
			fmt.Printf("  - %s\n", t.Display())
		}
		if !confirm() {
			return fmt.Errorf("exiting without flashing")
		}
	}

	if unmount {
		for _, t := range targets {
			if !t.Mounted() {
				continue
			}
			if err := enum.Unmount(ctx, t); err != nil {
				return err
			}
		}
	}

	repo, err := db.NewRepository(cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "db init failed")
	}
	defer repo.Close()

	manager, err := fsm.New(fsm.Config{DBPath: cfg.FSMDBPath})
	if err != nil {
		return errors.Wrap(err, "FSM manager failed")
	}
	defer manager.Shutdown(10 * time.Second)

	writer := &flash.DiskWriter{ChunkSize: cfg.ChunkSize}
	machine := workflow.NewMachine(
		imagebuffer.New(),
		src,
		writer,
		repo,
		renderReport,
		time.Duration(cfg.PollIntervalMS)*time.Millisecond,
		cfg.FSMMaxRetries,
	)
	start, _, err := machine.Register(ctx, manager)
	if err != nil {
		return errors.Wrap(err, "FSM register failed")
	}

	req := &workflow.FlashRequest{
		ImagePath: imagePath,
		Devices:   device.Paths(targets),
		Verify:    check,
	}
	resp := &workflow.FlashResponse{}

	jobKey := fmt.Sprintf("%s@%d", imagePath, time.Now().UnixNano())
	version, err := start(ctx, jobKey, fsm.NewRequest(req, resp))
	if err != nil {
		return errors.Wrap(err, "FSM start failed")
	}
	if err := manager.Wait(ctx, version); err != nil {
		return errors.Wrap(err, "FSM execution failed")
	}

	fmt.Println(resp.Summary)
	if len(resp.Failed) > 0 {
		for _, f := range resp.Failed {
			fmt.Printf("  %s: %s\n", f.DevicePath, f.Reason)
		}
		return fmt.Errorf("only %d of %d devices flashed successfully",
			resp.Succeeded(len(targets)), len(targets))
	}
	return nil
}

// renderReport draws one poll's worth of progress on a single line.
func renderReport(report flash.Report) {
	switch report.Status {
	case flash.StatusLoading:
		fmt.Print("\rLoading image...")
	case flash.StatusFlashing:
		var parts []string
		for _, t := range report.Tasks {
			parts = append(parts, fmt.Sprintf("%s %3.0f%% %s",
				t.DeviceID, t.Fraction*100, flash.FormatRate(t.Rate)))
		}
		fmt.Printf("\r%s", strings.Join(parts, " | "))
	case flash.StatusDone:
		fmt.Println()
	}
}

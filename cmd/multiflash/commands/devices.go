package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/driveforge/multiflash/pkg/device"
	"github.com/driveforge/multiflash/pkg/errors"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List removable devices that can be flashed",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	enum, err := device.NewEnumerator()
	if err != nil {
		return errors.Wrap(err, "device enumerator failed")
	}

	targets, err := enum.ListTargets(context.Background())
	if err != nil {
		return errors.Wrap(err, "device enumeration failed")
	}

	if len(targets) == 0 {
		fmt.Println("No removable devices found")
		return nil
	}

	fmt.Printf("%-15s %-30s %-10s %-30s\n", "DEVICE", "LABEL", "SIZE", "MOUNTED AT")
	fmt.Println("---------------------------------------------------------------------------------------")

	for _, t := range targets {
		label := t.Label
		if label == "" {
			label = "-"
		}
		mounted := "-"
		if t.Mounted() {
			mounted = strings.Join(t.MountPoints, ", ")
		}
		fmt.Printf("%-15s %-30s %-10s %-30s\n", t.Path, label, formatSize(t.Size), mounted)
	}

	return nil
}

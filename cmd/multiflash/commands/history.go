package commands

import (
	"fmt"

	"github.com/driveforge/multiflash/internal/config"
	"github.com/driveforge/multiflash/pkg/db"
	"github.com/driveforge/multiflash/pkg/errors"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded flash outcomes",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	if err := ensureDirectories(cfg.SQLitePath, ""); err != nil {
		return err
	}

	repo, err := db.NewRepository(cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "db init failed")
	}
	defer repo.Close()

	flashes, err := repo.List()
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	if len(flashes) == 0 {
		fmt.Println("No flashes recorded")
		return nil
	}

	fmt.Printf("%-15s %-35s %-10s %-20s %-30s\n", "DEVICE", "IMAGE", "STATUS", "STARTED", "ERROR")
	fmt.Println("--------------------------------------------------------------------------------------------------------------")

	for _, f := range flashes {
		errMsg := f.ErrorMessage
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Printf("%-15s %-35s %-10s %-20s %-30s\n",
			f.DevicePath, f.ImagePath, f.Status, f.StartedAt, errMsg)
	}

	return nil
}

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "multiflash",
	Short: "Flash disk images to multiple removable devices in parallel",
	Long:  `Writes a source image to any number of removable drives concurrently, with per-device progress, smoothed transfer rates, and a recorded history of outcomes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			slog.SetDefault(logger)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("sqlite-path", ".artifacts/multiflash.db", "SQLite history database path")
	rootCmd.PersistentFlags().String("fsm-db-path", ".artifacts/fsm.db", "FSM BoltDB path")
	rootCmd.PersistentFlags().String("s3-region", "us-east-1", "S3 region for s3:// image paths")
	rootCmd.PersistentFlags().Int("poll-interval-ms", 500, "Progress poll interval in milliseconds")
	rootCmd.PersistentFlags().Int("chunk-size", 4*1024*1024, "Device write chunk size in bytes")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable info-level logging")

	viper.BindPFlag("sqlite-path", rootCmd.PersistentFlags().Lookup("sqlite-path"))
	viper.BindPFlag("fsm-db-path", rootCmd.PersistentFlags().Lookup("fsm-db-path"))
	viper.BindPFlag("s3-region", rootCmd.PersistentFlags().Lookup("s3-region"))
	viper.BindPFlag("poll-interval-ms", rootCmd.PersistentFlags().Lookup("poll-interval-ms"))
	viper.BindPFlag("chunk-size", rootCmd.PersistentFlags().Lookup("chunk-size"))
}

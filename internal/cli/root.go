// Package cli implements the pickuppal command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pickuppal/pickuppal/internal/daemon"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pickuppal",
	Short: "PickupPal activity reward & progression engine",
	Long: `PickupPal turns logged food pickups and deliveries into points,
experience, level-ups and leaderboard positions, and lets the user spend
points on coupons, roulette spins and checkout discounts.

The engine runs as one in-memory session served over HTTP. Nothing is
persisted across restarts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.pickuppal/config.toml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return daemon.ConfigPath()
}

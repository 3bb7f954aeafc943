package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pickuppal/pickuppal/internal/daemon"
)

// ─── serve ──────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Override api.host")
	serveCmd.Flags().Int("port", 0, "Override api.port")
	serveCmd.Flags().String("policy", "", "Override engine.level_up_policy (single, loop)")
	serveCmd.Flags().String("delay", "", "Override transport.delay (e.g. 500ms, 0s)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engine and its HTTP API",
	Long: `Start one in-memory user session seeded with the mock roster and serve
it over HTTP until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.Load(resolvedConfigPath())
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.API.Host = v
	}
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.API.Port = v
	}
	if v, _ := cmd.Flags().GetString("policy"); v != "" {
		cfg.Engine.LevelUpPolicy = v
	}
	if v, _ := cmd.Flags().GetString("delay"); v != "" {
		cfg.Transport.Delay = v
	}

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "PickupPal listening on http://%s\n", cfg.Addr())
	return d.Serve(ctx)
}

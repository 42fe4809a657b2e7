package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the notification loop in the foreground",
	Long: `Poll the notification feed until interrupted, processing every unread
mention. Stops with a non-zero exit when GitHub rejects the token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b, _, err := newBot(ctx, appConfig)
		if err != nil {
			return err
		}
		return b.Run(ctx)
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Process pending mentions once and exit",
	Long:  `Run a single poll cycle. Suitable for cron or CI schedules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b, _, err := newBot(ctx, appConfig)
		if err != nil {
			return err
		}
		return b.RunCycle(ctx)
	},
}

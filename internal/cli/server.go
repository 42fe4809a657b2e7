package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alanmeadows/coabot/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the coabot daemon",
	Long:  `Start, stop, and manage the coabot background daemon.`,
}

var (
	foregroundFlag bool
	portFlag       int
)

func init() {
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStopCmd)
	serverCmd.AddCommand(serverStatusCmd)
	serverCmd.AddCommand(serverInstallCmd)

	serverStartCmd.Flags().BoolVar(&foregroundFlag, "foreground", false, "Run in foreground (don't daemonize)")
	serverStartCmd.Flags().IntVar(&portFlag, "port", -1, "Status API port (default from config, 0 disables)")
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the coabot daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := appConfig.Server.Port
		if portFlag >= 0 {
			port = portFlag
		}

		if !foregroundFlag {
			// Fail in the parent, not in a detached child's log file.
			if err := appConfig.Validate(); err != nil {
				return err
			}
		}

		opts := server.StartOptions{
			LogDir:     appConfig.Server.LogDir,
			Foreground: foregroundFlag,
			ConfigPath: configPath,
			Verbose:    verbose,
		}
		return server.StartDaemon(opts, func(ctx context.Context) error {
			b, ledger, err := newBot(ctx, appConfig)
			if err != nil {
				return err
			}
			// A nil *history.Ledger must not become a non-nil HistoryLister.
			if ledger == nil {
				return server.Serve(ctx, port, b, nil)
			}
			return server.Serve(ctx, port, b, ledger)
		})
	},
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the coabot daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := server.StopDaemon(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
		return nil
	},
}

var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		running, pid, uptime, err := server.DaemonStatus()
		if err != nil {
			return err
		}

		if running {
			fmt.Fprintf(cmd.OutOrStdout(), "daemon is running (PID %d, uptime %s)\n", pid, uptime.Round(time.Second))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "daemon is not running")
		}
		return nil
	},
}

var serverInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install as systemd user service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.InstallSystemdService()
	},
}

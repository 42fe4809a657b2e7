package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alanmeadows/coabot/internal/config"
	"github.com/alanmeadows/coabot/internal/logging"
)

var (
	verbose    bool
	configPath string
	appConfig  *config.Config

	rootCmd = &cobra.Command{
		Use:   "coabot",
		Short: "Opens coafile pull requests for repositories that mention the bot",
		Long: `coabot watches the GitHub notification feed of its account. When someone
@-mentions it on an issue, it clones the repository, runs coala-quickstart to
generate a .coafile, and opens a pull request with the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to an additional JSONC config file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose)
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg
		return nil
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

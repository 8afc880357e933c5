package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ananke/internal/log"
)

// NewRootCommand builds the ananke command tree.
func NewRootCommand() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "ananke",
		Short: "Link and run microfrontends locally",
		Long: `ananke bootstraps a local multi-repository development environment.
Given a list of component specifiers (group/name@version) it clones or updates
each component, installs its dependencies and starts every component together.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDefaultLogger(log.New(log.ConfigFrom(logLevel, logFormat, cmd.ErrOrStderr())))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(newLinkCommand())
	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newDoctorCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rminstall/rminstall/pkg/logging"
)

var verbosity int

// NewRootCmd builds the rminstall command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rminstall",
		Short: "A command-line skin package installer",
		Long: `rminstall installs packaged skin bundles (.rmskin) into a Rainmeter
compatible desktop theming host: plugins, layouts and skins are unpacked
and merged into the host's configuration directories while user
customizations are preserved and the host is restarted around the
install.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

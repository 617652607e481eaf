package main

import (
	"github.com/spf13/cobra"

	"github.com/rminstall/rminstall/pkg/config"
	"github.com/rminstall/rminstall/pkg/host"
	"github.com/rminstall/rminstall/pkg/installer"
	"github.com/rminstall/rminstall/pkg/logging"
	"github.com/rminstall/rminstall/pkg/paths"
)

func newInstallCmd() *cobra.Command {
	var keepVariables bool
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "install <package.rmskin>",
		Short: "Install a skin package into the host",
		Long: `Install unpacks the given package, installs its plugins, layouts and
skins into the host's directories, and restarts the host.

Skins already present are backed up before being replaced unless
--no-backup is given, or merged over when the package requests merging.
User-set values in declared variable files survive the install; on a
merging install, pass --keep-variables to request that explicitly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.install")
			logger.Info().
				Str("package", args[0]).
				Bool("keepVariables", keepVariables).
				Bool("noBackup", noBackup).
				Msg("Starting install")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			p, err := paths.New()
			if err != nil {
				return err
			}

			inst := installer.New(cfg, p, host.New(cfg, p))
			if err := inst.Run(cmd.Context(), args[0], installer.Options{
				KeepVariables: keepVariables,
				NoBackup:      noBackup,
			}); err != nil {
				return err
			}

			logger.Info().Msg("Install finished")
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepVariables, "keep-variables", false,
		"Keep existing variable values when merging skins")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false,
		"Do not back up skins before replacing them")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/fregataa/aami-check-runner/cmd/aami-check/internal/clierr"
	"github.com/fregataa/aami-check-runner/internal/config"
	"github.com/fregataa/aami-check-runner/internal/installer"
	"github.com/fregataa/aami-check-runner/internal/logging"
)

// NewInstallExporterCmd builds the `install-exporter` command: installs the
// all-smi accelerator metrics exporter as a systemd service. Requires root.
func NewInstallExporterCmd() *cobra.Command {
	icfg := installer.DefaultConfig()
	var configFile string

	cmd := &cobra.Command{
		Use:   "install-exporter",
		Short: "Install the all-smi accelerator metrics exporter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{ConfigFile: configFile})
			if err != nil {
				return err
			}
			log := logging.New(cfg.Logging)

			inst := installer.New(icfg, cmd.OutOrStdout(), log)
			if err := inst.Install(cmd.Context()); err != nil {
				return clierr.Wrap(1, "exporter install failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&icfg.Version, "version", "V", icfg.Version, "all-smi version to install")
	cmd.Flags().IntVarP(&icfg.Port, "port", "p", icfg.Port, "Exporter listen port")

	return cmd
}

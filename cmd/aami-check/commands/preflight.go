package commands

import (
	"github.com/spf13/cobra"

	"github.com/fregataa/aami-check-runner/cmd/aami-check/internal/clierr"
	"github.com/fregataa/aami-check-runner/internal/client"
	"github.com/fregataa/aami-check-runner/internal/config"
	"github.com/fregataa/aami-check-runner/internal/logging"
	"github.com/fregataa/aami-check-runner/internal/preflight"
)

// NewPreflightCmd builds the `preflight` command: node requirement checks
// run before installing the check runner.
func NewPreflightCmd() *cobra.Command {
	var (
		configFile   string
		configServer string
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Validate node requirements before install",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{ConfigFile: configFile})
			if err != nil {
				return err
			}
			if configServer != "" {
				cfg.Server.URL = configServer
			}

			log := logging.New(cfg.Logging)

			deps := &preflight.Deps{
				TextfileDir: cfg.Checks.TextfileDir,
				ScriptDir:   cfg.Checks.ScriptDir,
				Hostname:    cfg.Checks.Hostname,
			}
			if cfg.Server.URL != "" {
				httpc := client.NewHTTPClient(cfg.Server.URL, cfg.Server.Timeout, log)
				defer func() { _ = httpc.Close() }()
				deps.Pinger = httpc
			}

			report := preflight.Run(cmd.Context(), preflight.NodeChecks(), deps, log)

			if jsonOut {
				if err := report.RenderJSON(cmd.OutOrStdout()); err != nil {
					return err
				}
			} else {
				report.Render(cmd.OutOrStdout())
			}

			if !report.Passed {
				return clierr.New(1, "preflight failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&configServer, "config-server", "c", "", "Config-server URL")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output results in JSON")

	return cmd
}

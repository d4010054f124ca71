package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fregataa/aami-check-runner/cmd/aami-check/internal/clierr"
	"github.com/fregataa/aami-check-runner/internal/cache"
	"github.com/fregataa/aami-check-runner/internal/client"
	"github.com/fregataa/aami-check-runner/internal/config"
	"github.com/fregataa/aami-check-runner/internal/executor"
	"github.com/fregataa/aami-check-runner/internal/logging"
	"github.com/fregataa/aami-check-runner/internal/metrics"
	"github.com/fregataa/aami-check-runner/internal/runner"
)

// NewRunCmd builds the `run` command: one fetch-execute-publish cycle.
// Exit status is 0 when the fetch succeeded, regardless of individual check
// outcomes, and 1 when it failed.
func NewRunCmd() *cobra.Command {
	var (
		configFile   string
		configServer string
		hostname     string
		textfileDir  string
		scriptsDir   string
		timeout      time.Duration
		debug        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch and execute dynamic checks once",
		Long: `Fetches the effective checks for this host from the config-server,
executes each one sequentially and publishes the results as textfile
collector metrics. Intended to be invoked periodically by cron or a
systemd timer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{ConfigFile: configFile})
			if err != nil {
				return err
			}
			if configServer != "" {
				cfg.Server.URL = configServer
			}
			if hostname != "" {
				cfg.Checks.Hostname = hostname
			}
			if textfileDir != "" {
				cfg.Checks.TextfileDir = textfileDir
			}
			if scriptsDir != "" {
				cfg.Checks.ScriptDir = scriptsDir
			}
			if timeout > 0 {
				cfg.Checks.Timeout = timeout
			}
			if debug {
				cfg.Logging.Level = "debug"
			}

			log := logging.New(cfg.Logging)

			writer, err := metrics.NewWriter(cfg.Checks.TextfileDir, log)
			if err != nil {
				return clierr.Wrap(1, "preparing textfile directory", err)
			}

			if cfg.Server.URL == "" {
				log.Error().Msg("config-server URL not configured; set AAMI_CONFIG_SERVER_URL or --config-server")
				_ = writer.PublishSummary(metrics.RunSummary{Timestamp: time.Now().Unix()})
				return clierr.New(1, "config-server URL not configured")
			}

			httpc := client.NewHTTPClient(cfg.Server.URL, cfg.Server.Timeout, log)
			defer func() { _ = httpc.Close() }()

			coord := runner.New(
				httpc,
				cache.NewStore(cfg.Checks.ScriptDir, log),
				executor.NewRunner(log),
				writer,
				runner.Options{Hostname: cfg.Checks.Hostname, CheckTimeout: cfg.Checks.Timeout},
				log,
			)

			if err := coord.Run(cmd.Context()); err != nil {
				return clierr.Wrap(1, "check run failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&configServer, "config-server", "c", "", "Config-server URL")
	cmd.Flags().StringVar(&hostname, "hostname", "", "Override hostname used for check targeting")
	cmd.Flags().StringVar(&textfileDir, "textfile-dir", "", "Textfile collector directory")
	cmd.Flags().StringVar(&scriptsDir, "check-scripts-dir", "", "Check script cache directory")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-check execution timeout")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

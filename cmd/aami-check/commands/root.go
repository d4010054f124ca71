// Package commands wires the aami-check CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the aami-check root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("AAMI_CHECK_VERSION")
	if version == "" {
		version = "1.0.0"
	}

	cmd := &cobra.Command{
		Use:           "aami-check",
		Short:         "AAMI node-side dynamic check runner",
		Long:          "aami-check fetches effective checks from the AAMI config-server, executes them and publishes results to the node_exporter textfile collector.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of aami-check",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "aami-check version %s\n", version)
		},
	})

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewPreflightCmd())
	cmd.AddCommand(NewInstallExporterCmd())

	return cmd
}

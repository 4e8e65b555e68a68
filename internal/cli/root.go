// Package cli wires the taskboard commands.
package cli

import (
	"github.com/spf13/cobra"
)

const serviceName = "taskboard"

// NewRootCmd creates the taskboard command. Run without a subcommand it
// behaves like "serve".
func NewRootCmd(version string) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Taskboard API server",
		Long:          `Taskboard serves the task tracking API: accounts, sessions, password resets and tasks.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts, version)
		},
	}
	addServeFlags(cmd, opts)

	cmd.AddCommand(NewServeCmd(version))
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewPruneResetsCmd())

	return cmd
}

// Package cli builds the boost command tree, mirroring the teacher's own
// cmd/nebo package shape (a SetupRootCmd(cfg) entry point plus one file per
// subcommand).
package cli

import (
	"github.com/spf13/cobra"

	"github.com/harborlabs/boost/internal/config"
)

// SetupRootCmd configures the root command with its subcommands. Running
// the binary with no subcommand is equivalent to `boost serve`.
func SetupRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "boost",
		Short: "harbor-boost - an OpenAI-compatible inference proxy gateway",
		Long: `boost sits between an OpenAI-compatible client and one or more upstream
chat-completions backends, applying a named module (a reasoning/tool-use
strategy) selected via the requested model id's "<module>-<backend-id>"
synthetic form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cfg)
		},
	}

	root.AddCommand(ServeCmd(cfg))
	root.AddCommand(VersionCmd())

	return root
}

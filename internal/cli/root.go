// Package cli contains the promptly command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the promptly command with its subcommands.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "promptly",
		Short: "Authenticated text generation API",
		Long: `promptly serves an HTTP API where registered users send prompts to a
text generation provider and manage the stored prompt/response records.

Configuration is read from the environment and an optional .env file.

Examples:
  promptly serve      # start the HTTP server
  promptly migrate    # apply database migrations and exit`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

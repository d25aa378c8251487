// Package cli wires the tunelar command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand returns the tunelar command with its subcommands attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tunelar",
		Short:         "Tunelar web front-end",
		Long:          "Serves the Tunelar web shell: a navigation bar and the Home, Browse, Upload and Profile pages.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newRoutesCommand())

	return root
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tunelar/web/internal/routes"
)

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the page routes the server registers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRoutes(cmd.OutOrStdout())
		},
	}
}

func printRoutes(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tLABEL\tMATCH\tPATTERNS")
	for _, r := range routes.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Path, r.Label, r.Match(), strings.Join(r.Patterns(), " "))
	}
	return tw.Flush()
}

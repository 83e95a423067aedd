package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kode4food/surge/internal/marble"
)

// NewOperatorsCommand creates the operators command
func NewOperatorsCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "List the operators a scenario can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range marble.Operators() {
				desc, _ := marble.Describe(name)
				if _, err := fmt.Fprintf(w, "%s\t%s\n", name, desc); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
}

package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kode4food/surge/internal/marble"
)

// RunOptions holds flags for the run command
type RunOptions struct {
	Timeline bool
}

// NewRunCommand creates the run command
func NewRunCommand(_ *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run marble scenarios and print their traces",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := runScenario(cmd, path, opts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(
		&opts.Timeline, "timeline", "t", false, "prefix each line with its tick",
	)
	return cmd
}

func runScenario(cmd *cobra.Command, path string, opts *RunOptions) error {
	sc, err := marble.Load(path)
	if err != nil {
		return err
	}
	slog.Debug("running scenario",
		"name", sc.Name, "operator", sc.Operator.Name, "events", len(sc.Events))

	trace, err := marble.Run(cmd.Context(), sc)
	if err != nil {
		return fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "# %s\n", sc.Name); err != nil {
		return err
	}
	_, err = fmt.Fprint(out, trace.Format(opts.Timeline))
	return err
}

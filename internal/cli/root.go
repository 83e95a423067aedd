package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the surge CLI
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "surge",
		Short: "surge - push-based reactive streams",
		Long: "Plays timed marble scenarios through surge's stream operators " +
			"and prints what they emit.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})
			slog.SetDefault(slog.New(h))
		},
	}

	cmd.PersistentFlags().BoolVarP(
		&opts.Verbose, "verbose", "v", false, "log debug output to stderr",
	)

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewOperatorsCommand(opts))
	return cmd
}

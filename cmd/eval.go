package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vanha-creative/autonamer/internal/evalcmd"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Grouping accuracy evaluation tools",
		Long: `Evaluation tools for measuring how well clustering reproduces a
hand-labelled grouping of a creatives folder.

Supports sweeping the fingerprint threshold against a label file and
printing saved reports as text, JSON or CSV.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd(opts.load))
	cmd.AddCommand(evalcmd.NewReportCmd())

	return cmd
}

package evalcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanha-creative/autonamer/internal/config"
)

// ConfigLoader returns the application config for a command run.
type ConfigLoader func() (*config.Config, error)

// NewRunCmd creates the run command that scores clustering against labels
func NewRunCmd(load ConfigLoader) *cobra.Command {
	var labelsPath string
	var folder string
	var outputDir string
	var thresholds []float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score grouping accuracy against a hand-labelled folder",
		Long: `Analyze a labelled folder once, then cluster it at each hash threshold
and compare the groups with the labels using pairwise precision and recall.

The label file lists the expected groups by file name:

  folder: ./creatives/march
  groups:
    - [hero_story.mp4, hero_feed.mp4, hero_square.png]
    - [price_story.png]
  ungrouped: [logo.png]`,
		Example: `  # Score the configured threshold
  autonamer eval run --labels labels.yaml

  # Sweep thresholds and save the report under ./evals
  autonamer eval run --labels labels.yaml --threshold 15,20,25,30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(labelsPath); os.IsNotExist(err) {
				return fmt.Errorf("labels file not found: %s", labelsPath)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			return executeRun(cmd.Context(), cmd.OutOrStdout(), cfg, labelsPath, folder, outputDir, thresholds)
		},
	}

	cmd.Flags().StringVar(&labelsPath, "labels", "", "Path to the YAML label file (required)")
	cmd.Flags().StringVar(&folder, "folder", "", "Folder to analyze (defaults to the folder in the label file)")
	cmd.Flags().StringVar(&outputDir, "output", "evals", "Directory for the YAML report")
	cmd.Flags().Float64SliceVar(&thresholds, "threshold", nil, "Hash thresholds to try (defaults to the configured one)")

	_ = cmd.MarkFlagRequired("labels")

	return cmd
}

// NewReportCmd creates the report command for a saved evaluation
func NewReportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <report.yaml>",
		Short: "Print a saved evaluation report",
		Example: `  autonamer eval report evals/grouping-2024-01-15_09-00-00.yaml
  autonamer eval report evals/grouping-2024-01-15_09-00-00.yaml --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json or csv)")

	return cmd
}

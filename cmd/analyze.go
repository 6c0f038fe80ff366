package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/export"
	"github.com/vanha-creative/autonamer/internal/images"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/naming"
	"github.com/vanha-creative/autonamer/internal/pipeline"
	"github.com/vanha-creative/autonamer/internal/source"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		inputs   models.UserInputs
		output   string
		format   string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <folder | s3://bucket/prefix>",
		Short: "Group a folder of creatives and print or export the rename plan",
		Long: `Runs the full analysis over a folder without starting the server:
metadata, frame sampling, OCR, fingerprinting, clustering and field
inference. The groups are printed as a table; --output also writes the
rename plan as CSV or Parquet.`,
		Example: `  # Print the proposed groups for a local folder
  autonamer analyze ./creatives --client ClientA

  # Export a Parquet rename plan starting at ad 40
  autonamer analyze ./creatives --start 40 --output plan.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if inputs.StartNumber < 1 {
				return fmt.Errorf("--start must be at least 1")
			}
			if format == "" && output != "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
			}
			if output != "" && format != "csv" && format != "parquet" {
				return fmt.Errorf("unsupported output format %q (use csv or parquet)", format)
			}
			inputs.FolderPath = args[0]
			if inputs.Client == "" {
				inputs.Client = cfg.Session.Client
			}

			thumbs := images.NewThumbnailer(filepath.Join(cfg.Server.TempDir, "thumbs"), "file://"+filepath.Join(cfg.Server.TempDir, "thumbs")+"/")
			analyzer, err := pipeline.Build(cfg, thumbs)
			if err != nil {
				return err
			}
			src, err := source.Open(inputs.FolderPath, cfg.Bucket, cfg.Server.TempDir, thumbs)
			if err != nil {
				return err
			}

			if progress {
				var (
					mu  sync.Mutex
					bar *progressbar.ProgressBar
				)
				analyzer.SetProgress(func(done, total int) {
					mu.Lock()
					defer mu.Unlock()
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetWriter(os.Stderr),
							progressbar.OptionSetDescription("Analyzing"),
							progressbar.OptionShowCount(),
							progressbar.OptionClearOnFinish(),
						)
					}
					if done > int(bar.State().CurrentNum) {
						_ = bar.Set(done)
					}
				})
			}

			grouped, err := analyzer.Analyze(cmd.Context(), src, inputs)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderGroups(grouped))

			if output == "" {
				return nil
			}
			if err := writePlan(output, format, export.Rows(grouped.Groups)); err != nil {
				return err
			}
			slog.Info("Rename plan written", "path", output, "format", format)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputs.Client, "client", "", "Client name (defaults to config session.client)")
	cmd.Flags().StringVar(&inputs.Campaign, "campaign", "", "Campaign token (defaults to <Month>Ads)")
	cmd.Flags().StringVar(&inputs.Date, "date", "", "Date token YYYY.MM.DD (defaults to today)")
	cmd.Flags().IntVar(&inputs.StartNumber, "start", config.Default().Session.StartNumber, "First ad number")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the rename plan to this file")
	cmd.Flags().StringVar(&format, "format", "", "Output format (csv or parquet, default from --output extension)")
	cmd.Flags().BoolVar(&progress, "progress", true, "Show a progress bar")

	return cmd
}

func renderGroups(grouped *models.GroupedAssets) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Type", "Assets", "Size", "Product", "Angle", "Offer", "Conf", "New name"})

	for _, g := range grouped.Groups {
		var size int64
		for _, a := range g.Assets {
			size += a.Asset.Size
		}
		tw.AppendRow(table.Row{
			fmt.Sprintf("%03d", g.AdNumber),
			g.GroupType,
			len(g.Assets),
			humanize.Bytes(uint64(size)),
			g.Product,
			g.Angle,
			naming.YesNo(g.Offer),
			strconv.FormatFloat(g.Confidence.Group, 'f', 2, 64),
			naming.Filename(g),
		})
	}
	for _, a := range grouped.Ungrouped {
		tw.AppendRow(table.Row{"-", "ungrouped", 1, humanize.Bytes(uint64(a.Asset.Size)), "", "", "", "", a.Asset.Name})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	tw.SetCaption("%d groups, %d ungrouped", len(grouped.Groups), len(grouped.Ungrouped))
	return tw.Render()
}

func writePlan(path, format string, rows []models.ExportRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var write func(io.Writer, []models.ExportRow) error
	switch format {
	case "parquet":
		write = export.WriteParquet
	default:
		write = export.WriteCSV
	}
	return write(f, rows)
}

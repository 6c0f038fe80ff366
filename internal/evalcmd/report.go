package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vanha-creative/autonamer/internal/evaluation"
)

func executeReport(out io.Writer, path, format string) error {
	report, err := evaluation.LoadReport(path)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		return printTextReport(out, report)
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "csv":
		return printCSVReport(out, report)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(out io.Writer, report *evaluation.Report) error {
	fmt.Fprintf(out, "Grouping Evaluation Report (%s)\n", report.Config.Timestamp)
	fmt.Fprintf(out, "Folder: %s\n", report.Config.Folder)
	fmt.Fprintf(out, "Labels: %s\n", report.Config.Labels)
	fmt.Fprintf(out, "OCR:    %s\n\n", report.Config.OCRProvider)
	fmt.Fprintln(out, renderRuns(report))

	best, ok := report.Best()
	if !ok {
		return nil
	}
	if len(best.Metrics.Unlabelled) > 0 {
		fmt.Fprintf(out, "\nUnlabelled files: %s\n", strings.Join(best.Metrics.Unlabelled, ", "))
	}
	if len(best.Metrics.Unseen) > 0 {
		fmt.Fprintf(out, "Labelled but not found: %s\n", strings.Join(best.Metrics.Unseen, ", "))
	}

	fmt.Fprintf(out, "\nGroups at threshold %g:\n", best.HashThreshold)
	for i, g := range best.Groups {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, strings.Join(g, ", "))
	}
	if len(best.Ungrouped) > 0 {
		fmt.Fprintf(out, "  ungrouped: %s\n", strings.Join(best.Ungrouped, ", "))
	}
	return nil
}

func printCSVReport(out io.Writer, report *evaluation.Report) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	header := []string{"threshold", "precision", "recall", "f1", "true_pairs", "predicted_pairs", "expected_pairs", "exact_groups", "predicted_groups", "expected_groups"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, run := range report.Runs {
		m := run.Metrics
		row := []string{
			strconv.FormatFloat(run.HashThreshold, 'g', -1, 64),
			formatScore(m.Precision),
			formatScore(m.Recall),
			formatScore(m.F1),
			strconv.Itoa(m.TruePairs),
			strconv.Itoa(m.PredictedPairs),
			strconv.Itoa(m.ExpectedPairs),
			strconv.Itoa(m.ExactGroups),
			strconv.Itoa(m.PredictedGroups),
			strconv.Itoa(m.ExpectedGroups),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}

func renderRuns(report *evaluation.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Threshold", "Precision", "Recall", "F1", "Pairs (true/pred/exp)", "Exact groups", "Groups (pred/exp)"})
	for _, run := range report.Runs {
		m := run.Metrics
		tw.AppendRow(table.Row{
			strconv.FormatFloat(run.HashThreshold, 'g', -1, 64),
			formatScore(m.Precision),
			formatScore(m.Recall),
			formatScore(m.F1),
			fmt.Sprintf("%d/%d/%d", m.TruePairs, m.PredictedPairs, m.ExpectedPairs),
			fmt.Sprintf("%d/%d", m.ExactGroups, m.ExpectedGroups),
			fmt.Sprintf("%d/%d", m.PredictedGroups, m.ExpectedGroups),
		})
	}
	configs := make([]table.ColumnConfig, 0, 7)
	for i := 1; i <= 7; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

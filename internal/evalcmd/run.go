package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/evaluation"
	"github.com/vanha-creative/autonamer/internal/grouping"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/pipeline"
	"github.com/vanha-creative/autonamer/internal/source"
)

func executeRun(ctx context.Context, out io.Writer, cfg *config.Config, labelsPath, folder, outputDir string, thresholds []float64) error {
	labels, err := evaluation.LoadLabels(labelsPath)
	if err != nil {
		return err
	}
	if folder == "" {
		folder = labels.Folder
	}
	if folder == "" {
		return fmt.Errorf("no folder given and %s has none", labelsPath)
	}
	if len(thresholds) == 0 {
		thresholds = []float64{cfg.Grouping.HashThreshold}
	}

	slog.Info("Starting evaluation run", "labels", labelsPath, "folder", folder, "thresholds", thresholds)

	analyzer, err := pipeline.Build(cfg, nil)
	if err != nil {
		return err
	}
	src, err := source.Open(folder, cfg.Bucket, cfg.Server.TempDir, nil)
	if err != nil {
		return err
	}

	// Extraction is the slow part, so it runs once for every threshold.
	start := time.Now()
	processed, err := analyzer.Process(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", folder, err)
	}
	slog.Info("Assets processed", "count", len(processed), "elapsed", time.Since(start).Round(time.Millisecond))

	report := sweep(cfg, labels, processed, thresholds)
	report.Config.Folder = folder
	report.Config.Labels = labelsPath
	report.Config.OCRProvider = cfg.OCR.Provider

	path, err := evaluation.SaveYAML(report, outputDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, renderRuns(report))
	if best, ok := report.Best(); ok && len(report.Runs) > 1 {
		fmt.Fprintf(out, "\nBest hash threshold: %g (F1 %.3f)\n", best.HashThreshold, best.Metrics.F1)
	}
	fmt.Fprintf(out, "\nResults saved to: %s\n", path)
	return nil
}

// sweep clusters processed once per threshold and scores each result.
func sweep(cfg *config.Config, labels *evaluation.Labels, processed []*models.ProcessedAsset, thresholds []float64) *evaluation.Report {
	inputs := models.UserInputs{
		Client:      labels.Client,
		StartNumber: cfg.Session.StartNumber,
		FolderPath:  labels.Folder,
	}
	if inputs.Client == "" {
		inputs.Client = cfg.Session.Client
	}

	report := &evaluation.Report{
		Config: evaluation.RunConfig{
			HashThreshold:    cfg.Grouping.HashThreshold,
			OverlapThreshold: cfg.Grouping.OverlapThreshold,
		},
	}
	classifier := grouping.NewClassifier(cfg.Classifier)
	for _, threshold := range thresholds {
		g := cfg.Grouping
		g.HashThreshold = threshold
		grouped := grouping.NewEngine(g, classifier).Cluster(processed, inputs)

		run := evaluation.NewRun(threshold, labels, grouped)
		slog.Info("Scored threshold",
			"threshold", threshold,
			"precision", run.Metrics.Precision,
			"recall", run.Metrics.Recall,
			"f1", run.Metrics.F1)
		report.Runs = append(report.Runs, run)
	}
	return report
}

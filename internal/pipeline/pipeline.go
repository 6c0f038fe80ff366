// Package pipeline runs per-asset extraction over a source and turns the
// results into clustered, inferred ad groups.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/fingerprint"
	"github.com/vanha-creative/autonamer/internal/frames"
	"github.com/vanha-creative/autonamer/internal/grouping"
	"github.com/vanha-creative/autonamer/internal/images"
	"github.com/vanha-creative/autonamer/internal/inference"
	"github.com/vanha-creative/autonamer/internal/media"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/ocr"
	"github.com/vanha-creative/autonamer/internal/source"
)

// MetadataExtractor reads dimensions and duration.
type MetadataExtractor interface {
	Extract(ctx context.Context, asset models.Asset) models.AssetMetadata
}

// FrameSampler extracts still frames from videos.
type FrameSampler interface {
	Extract(ctx context.Context, asset models.Asset) ([]string, error)
}

// TextReader reads on-screen text.
type TextReader interface {
	Extract(ctx context.Context, asset models.Asset, frames []string) string
}

// Fingerprinter computes perceptual fingerprints.
type Fingerprinter interface {
	Compute(ctx context.Context, asset models.Asset, frames []string) models.Fingerprint
}

// Thumbnailer renders a thumbnail from an image file.
type Thumbnailer interface {
	Render(src, id string) (string, error)
}

// Deps are the per-asset collaborators. Thumbs may be nil.
type Deps struct {
	Metadata MetadataExtractor
	Frames   FrameSampler
	OCR      TextReader
	Hasher   Fingerprinter
	Thumbs   Thumbnailer
}

// Progress is called after each asset finishes processing.
type Progress func(done, total int)

// Analyzer turns a source into grouped assets.
type Analyzer struct {
	deps      Deps
	engine    *grouping.Engine
	inference *inference.Engine
	workers   int
	progress  Progress
}

// New creates an analyzer running at most workers extractions at once.
func New(deps Deps, engine *grouping.Engine, infer *inference.Engine, workers int) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{deps: deps, engine: engine, inference: infer, workers: workers}
}

// Build wires the production collaborators from configuration. Frames are
// cached under the server temp dir.
func Build(cfg *config.Config, thumbs *images.Thumbnailer) (*Analyzer, error) {
	ocrService, err := ocr.NewService(cfg.OCR)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR service: %w", err)
	}
	infer, err := inference.NewEngine(cfg.Inference)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference engine: %w", err)
	}

	deps := Deps{
		Metadata: media.NewExtractor(cfg.Media),
		Frames:   frames.NewSampler(cfg.Frames, filepath.Join(cfg.Server.TempDir, "frames")),
		OCR:      ocrService,
		Hasher:   fingerprint.NewHasher(),
	}
	if thumbs != nil {
		deps.Thumbs = thumbs
	}

	engine := grouping.NewEngine(cfg.Grouping, grouping.NewClassifier(cfg.Classifier))
	slog.Info("Analyzer ready", "ocr_provider", ocrService.Provider(), "workers", cfg.Pipeline.Workers)
	return New(deps, engine, infer, cfg.Pipeline.Workers), nil
}

// SetProgress registers fn to be called as assets complete. It may be called
// from several goroutines at once.
func (a *Analyzer) SetProgress(fn Progress) {
	a.progress = fn
}

// Classifier returns the group classifier used for clustering.
func (a *Analyzer) Classifier() *grouping.Classifier {
	return a.engine.Classifier()
}

// Inference returns the field inference engine.
func (a *Analyzer) Inference() *inference.Engine {
	return a.inference
}

// Analyze lists src, processes every asset, clusters them and infers the
// descriptive fields of each group.
func (a *Analyzer) Analyze(ctx context.Context, src source.Source, inputs models.UserInputs) (*models.GroupedAssets, error) {
	processed, err := a.Process(ctx, src)
	if err != nil {
		return nil, err
	}

	grouped := a.engine.Cluster(processed, inputs)
	a.inference.InferAll(grouped.Groups, inputs)
	return grouped, nil
}

// Process lists src and extracts every asset, preserving listing order.
// Per-asset failures degrade that asset and never abort the run.
func (a *Analyzer) Process(ctx context.Context, src source.Source) ([]*models.ProcessedAsset, error) {
	assets, err := src.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	if len(assets) == 0 {
		return nil, source.ErrEmptySource
	}

	start := time.Now()
	slog.Info("Processing assets", "count", len(assets), "concurrency", a.workers)

	results := make([]*models.ProcessedAsset, len(assets))
	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, asset := range assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slog.Debug("Processing asset", "asset", asset.Name, "progress", fmt.Sprintf("%d/%d", i+1, len(assets)))
			results[i] = a.processOne(gctx, src, asset)
			if a.progress != nil {
				a.progress(int(done.Add(1)), len(assets))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("Processed assets", "count", len(results), "elapsed", time.Since(start).Round(time.Millisecond))
	return results, nil
}

func (a *Analyzer) processOne(ctx context.Context, src source.Source, asset models.Asset) *models.ProcessedAsset {
	p := &models.ProcessedAsset{Asset: asset}
	p.Metadata = a.deps.Metadata.Extract(ctx, asset)
	p.Placement = a.engine.Classifier().Placement(p.Metadata.AspectRatio)

	if asset.Kind == models.AssetVideo {
		framePaths, err := a.deps.Frames.Extract(ctx, asset)
		if err != nil {
			slog.Warn("Frame extraction failed", "asset", asset.Name, "err", err)
		}
		p.FramePaths = framePaths
	}

	p.OCRText = a.deps.OCR.Extract(ctx, asset, p.FramePaths)
	p.Fingerprint = a.deps.Hasher.Compute(ctx, asset, p.FramePaths)
	p.ThumbnailURL = a.thumbnail(ctx, src, p)
	return p
}

// thumbnail asks the source first and falls back to rendering the first
// frame of a video.
func (a *Analyzer) thumbnail(ctx context.Context, src source.Source, p *models.ProcessedAsset) string {
	url, err := src.ThumbnailURL(ctx, p.ID())
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("Thumbnail lookup failed", "asset", p.Asset.Name, "err", err)
	}
	if url != "" || a.deps.Thumbs == nil || len(p.FramePaths) == 0 {
		return url
	}
	url, err = a.deps.Thumbs.Render(p.FramePaths[0], p.ID())
	if err != nil {
		slog.Warn("Failed to render video thumbnail", "asset", p.Asset.Name, "err", err)
		return ""
	}
	return url
}

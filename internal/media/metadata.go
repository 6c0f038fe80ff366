// Package media extracts dimensions and duration from creative files.
//
// Images are read with the standard image decoders; videos are probed with
// ffprobe, with mdls as a second try on macOS. When every method fails the
// configured fallback (1080x1920, 15s by default) is returned with
// Degraded set, so classification downstream knows the values are guesses.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
)

// Extractor reads asset metadata.
type Extractor struct {
	cfg config.Media
}

// NewExtractor creates an extractor.
func NewExtractor(cfg config.Media) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract returns metadata for asset. It never fails; problems are logged and
// reported through the Degraded fields.
func (e *Extractor) Extract(ctx context.Context, asset models.Asset) models.AssetMetadata {
	var (
		meta models.AssetMetadata
		err  error
	)
	switch asset.Kind {
	case models.AssetVideo:
		meta, err = e.video(ctx, asset.Path)
	default:
		meta, err = imageMetadata(asset.Path)
	}
	if err != nil {
		slog.Warn("Metadata extraction failed, using fallback", "asset", asset.Name, "err", err)
		return e.fallback(asset.Kind, err)
	}
	return meta
}

func imageMetadata(path string) (models.AssetMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.AssetMetadata{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return models.AssetMetadata{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	return dimensions(cfg.Width, cfg.Height, nil)
}

func (e *Extractor) video(ctx context.Context, path string) (models.AssetMetadata, error) {
	timeout := config.Seconds(e.cfg.TimeoutSeconds)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := Inspect(ctx, e.cfg.FFprobeBinary, path)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) && runtime.GOOS == "darwin" {
			return mdls(ctx, path)
		}
		return models.AssetMetadata{}, err
	}

	stream, ok := result.VideoStream()
	if !ok {
		return models.AssetMetadata{}, errors.New("no video stream found")
	}
	var duration *float64
	if d, ok := result.DurationSeconds(); ok {
		duration = &d
	}
	return dimensions(stream.Width, stream.Height, duration)
}

// mdls reads Spotlight metadata, available on macOS without ffprobe.
func mdls(ctx context.Context, path string) (models.AssetMetadata, error) {
	cmd := exec.CommandContext(ctx, "mdls",
		"-name", "kMDItemPixelWidth",
		"-name", "kMDItemPixelHeight",
		"-name", "kMDItemDurationSeconds",
		path)
	output, err := cmd.Output()
	if err != nil {
		return models.AssetMetadata{}, fmt.Errorf("mdls: %w", err)
	}
	return parseMDLS(string(output))
}

func parseMDLS(output string) (models.AssetMetadata, error) {
	var width, height int
	var duration *float64

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if value == "(null)" {
			continue
		}
		switch key {
		case "kMDItemPixelWidth":
			width, _ = strconv.Atoi(value)
		case "kMDItemPixelHeight":
			height, _ = strconv.Atoi(value)
		case "kMDItemDurationSeconds":
			if d, err := strconv.ParseFloat(value, 64); err == nil {
				duration = &d
			}
		}
	}
	return dimensions(width, height, duration)
}

func dimensions(width, height int, duration *float64) (models.AssetMetadata, error) {
	if width <= 0 || height <= 0 {
		return models.AssetMetadata{}, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	return models.AssetMetadata{
		Width:       width,
		Height:      height,
		AspectRatio: float64(width) / float64(height),
		Duration:    duration,
	}, nil
}

func (e *Extractor) fallback(kind models.AssetKind, cause error) models.AssetMetadata {
	meta := models.AssetMetadata{
		Width:          e.cfg.FallbackWidth,
		Height:         e.cfg.FallbackHeight,
		Degraded:       true,
		DegradedReason: cause.Error(),
	}
	if meta.Height > 0 {
		meta.AspectRatio = float64(meta.Width) / float64(meta.Height)
	}
	if kind == models.AssetVideo {
		d := e.cfg.FallbackDuration
		meta.Duration = &d
	}
	return meta
}

// Package fingerprint computes perceptual fingerprints for creatives and
// answers pairwise distance queries between them.
//
// A fingerprint has Slots perceptual hashes. Images repeat their single hash
// in every slot; videos use the first, middle and last sampled frame. The
// distance is the mean Hamming distance over slots, which keeps it a metric
// (symmetric and triangle-respecting) on the 0..64 scale of a 64-bit pHash.
package fingerprint

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/corona10/goimagehash"

	"github.com/vanha-creative/autonamer/internal/models"
)

// Slots is the number of hashes in every fingerprint.
const Slots = 3

// Hasher produces fingerprints from asset files and sampled frames.
type Hasher struct{}

// NewHasher creates a new hasher
func NewHasher() *Hasher {
	return &Hasher{}
}

// Compute fingerprints an asset. Failures are logged and produce an empty
// (unreliable) fingerprint rather than an error.
func (h *Hasher) Compute(ctx context.Context, asset models.Asset, frames []string) models.Fingerprint {
	var paths []string
	switch asset.Kind {
	case models.AssetVideo:
		paths = representativeFrames(frames)
	default:
		paths = []string{asset.Path}
	}

	if len(paths) == 0 {
		slog.Warn("No frames available for fingerprint", "asset", asset.Name)
		return models.Fingerprint{}
	}

	hashes := make([]uint64, 0, Slots)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return models.Fingerprint{}
		}
		hash, err := hashFile(p)
		if err != nil {
			slog.Warn("Failed to fingerprint", "asset", asset.Name, "path", p, "err", err)
			return models.Fingerprint{}
		}
		hashes = append(hashes, hash)
	}

	for len(hashes) < Slots {
		hashes = append(hashes, hashes[len(hashes)-1])
	}
	return models.Fingerprint{Hashes: hashes}
}

// representativeFrames picks first, middle and last frame.
func representativeFrames(frames []string) []string {
	switch n := len(frames); {
	case n == 0:
		return nil
	case n < Slots:
		return frames
	default:
		return []string{frames[0], frames[n/2], frames[n-1]}
	}
}

func hashFile(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return HashImage(img)
}

// HashImage returns the 64-bit perceptual hash of img.
func HashImage(img image.Image) (uint64, error) {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, fmt.Errorf("failed to compute perceptual hash: %w", err)
	}
	return hash.GetHash(), nil
}

// Distance returns the mean per-slot Hamming distance between a and b.
// ok is false when either fingerprint is unreliable or the slot counts differ.
func Distance(a, b models.Fingerprint) (float64, bool) {
	if !a.Reliable() || !b.Reliable() || len(a.Hashes) != len(b.Hashes) {
		return 0, false
	}
	total := 0
	for i := range a.Hashes {
		d, err := goimagehash.NewImageHash(a.Hashes[i], goimagehash.PHash).
			Distance(goimagehash.NewImageHash(b.Hashes[i], goimagehash.PHash))
		if err != nil {
			return 0, false
		}
		total += d
	}
	return float64(total) / float64(len(a.Hashes)), true
}

// Package source lists raw creative files and resolves their thumbnails.
package source

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/images"
	"github.com/vanha-creative/autonamer/internal/models"
)

// ErrEmptySource is returned when a folder or prefix holds no creatives.
var ErrEmptySource = errors.New("no assets found")

// Source lists assets and resolves thumbnail URLs for them.
type Source interface {
	ListAssets(ctx context.Context) ([]models.Asset, error)
	ThumbnailURL(ctx context.Context, assetID string) (string, error)
}

var assetNamespace = uuid.MustParse("9b0d6d2e-1f43-4c4b-8f5e-2a7c1c3d5e60")

var kinds = map[string]models.AssetKind{
	".jpg":  models.AssetImage,
	".jpeg": models.AssetImage,
	".png":  models.AssetImage,
	".gif":  models.AssetImage,
	".mp4":  models.AssetVideo,
	".mov":  models.AssetVideo,
	".m4v":  models.AssetVideo,
	".webm": models.AssetVideo,
	".avi":  models.AssetVideo,
	".mkv":  models.AssetVideo,
}

// KindOf returns the asset kind for a file name. ok is false for
// unsupported extensions.
func KindOf(name string) (models.AssetKind, bool) {
	kind, ok := kinds[strings.ToLower(filepath.Ext(name))]
	return kind, ok
}

// AssetID derives a stable id from a key. Sources build the key from the
// file location and its version, so the same file always yields the same id.
func AssetID(key string) string {
	return uuid.NewSHA1(assetNamespace, []byte(key)).String()
}

// Open returns the source for location. Locations of the form
// s3://bucket/prefix use the bucket settings in cfg; anything else is a local
// folder.
func Open(location string, cfg config.Bucket, tempDir string, thumbs *images.Thumbnailer) (Source, error) {
	if rest, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket != "" {
			cfg.Name = bucket
		}
		b, err := NewBucket(cfg, prefix, filepath.Join(tempDir, "bucket"))
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	l, err := NewLocalFolder(location, thumbs)
	if err != nil {
		return nil, err
	}
	return l, nil
}

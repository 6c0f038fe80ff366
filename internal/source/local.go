package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vanha-creative/autonamer/internal/images"
	"github.com/vanha-creative/autonamer/internal/models"
)

// LocalFolder lists creatives in a single directory, non-recursively.
type LocalFolder struct {
	dir    string
	thumbs *images.Thumbnailer

	mu     sync.RWMutex
	assets map[string]models.Asset
}

// NewLocalFolder validates that dir is a readable directory.
func NewLocalFolder(dir string, thumbs *images.Thumbnailer) (*LocalFolder, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("folder %s: %w", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &LocalFolder{
		dir:    dir,
		thumbs: thumbs,
		assets: make(map[string]models.Asset),
	}, nil
}

// ListAssets returns supported files sorted by name.
func (l *LocalFolder) ListAssets(ctx context.Context) ([]models.Asset, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", l.dir, err)
	}

	var assets []models.Asset
	for _, entry := range entries {
		if entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		kind, ok := KindOf(entry.Name())
		if !ok {
			slog.Debug("Skipping unsupported file", "name", entry.Name())
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("Failed to stat file", "name", entry.Name(), "err", err)
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		assets = append(assets, models.Asset{
			ID:   AssetID(fileVersion(path, info)),
			Name: entry.Name(),
			Path: path,
			Kind: kind,
			Size: info.Size(),
		})
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("folder %s: %w", l.dir, ErrEmptySource)
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Name < assets[j].Name
	})

	l.mu.Lock()
	for _, a := range assets {
		l.assets[a.ID] = a
	}
	l.mu.Unlock()

	slog.Info("Listed local assets", "folder", l.dir, "count", len(assets))
	return assets, nil
}

// ThumbnailURL renders a thumbnail for an image asset. Videos have no
// thumbnail here and return an empty URL.
func (l *LocalFolder) ThumbnailURL(ctx context.Context, assetID string) (string, error) {
	l.mu.RLock()
	asset, ok := l.assets[assetID]
	l.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown asset %s", assetID)
	}
	if asset.Kind != models.AssetImage || l.thumbs == nil {
		return "", nil
	}
	return l.thumbs.Render(asset.Path, asset.ID)
}

// fileVersion identifies one version of a file. Frame and thumbnail caches
// are keyed by asset id, so a file with the same name in another folder, or
// a re-export in place, must not share an id.
func fileVersion(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

package images

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ThumbnailWidth is the width of rendered thumbnails.
const ThumbnailWidth = 320

// Thumbnailer renders JPEG thumbnails into a directory served under a URL
// prefix.
type Thumbnailer struct {
	dir       string
	urlPrefix string
	width     int
}

// NewThumbnailer creates a thumbnailer writing into dir. URLs are urlPrefix
// followed by the file name.
func NewThumbnailer(dir, urlPrefix string) *Thumbnailer {
	return &Thumbnailer{
		dir:       dir,
		urlPrefix: urlPrefix,
		width:     ThumbnailWidth,
	}
}

// Render writes a thumbnail of the image at src and returns its URL. An
// existing thumbnail for id is reused.
func (t *Thumbnailer) Render(src, id string) (string, error) {
	name := id + ".jpg"
	dst := filepath.Join(t.dir, name)
	url := t.urlPrefix + name

	if _, err := os.Stat(dst); err == nil {
		return url, nil
	}
	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail dir: %w", err)
	}

	data, err := ResizeFile(src, t.width)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}

	slog.Debug("Rendered thumbnail", "src", src, "dst", dst)
	return url, nil
}

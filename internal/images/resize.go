package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
)

// DefaultQuality is the JPEG quality used for thumbnails and OCR uploads.
const DefaultQuality = 85

// ResizeJPEG decodes data and re-encodes it as JPEG no wider than maxWidth,
// keeping the aspect ratio. A maxWidth of 0 only re-encodes.
func ResizeJPEG(data []byte, maxWidth, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, maxWidth), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode to jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ResizeFile reads the image at path and returns it as a resized JPEG.
func ResizeFile(path string, maxWidth int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return ResizeJPEG(data, maxWidth, DefaultQuality)
}

func fit(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}
	ratio := float64(bounds.Dy()) / float64(bounds.Dx())
	height := uint(float64(maxWidth) * ratio)
	if height == 0 {
		height = 1
	}
	return resize.Resize(uint(maxWidth), height, img, resize.Lanczos3)
}

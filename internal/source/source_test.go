package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/images"
	"github.com/vanha-creative/autonamer/internal/models"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		kind models.AssetKind
		ok   bool
	}{
		{"a.PNG", models.AssetImage, true},
		{"b.jpeg", models.AssetImage, true},
		{"c.MOV", models.AssetVideo, true},
		{"d.mp4", models.AssetVideo, true},
		{"notes.txt", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		kind, ok := KindOf(tt.name)
		if kind != tt.kind || ok != tt.ok {
			t.Errorf("KindOf(%q) = (%q, %v), want (%q, %v)", tt.name, kind, ok, tt.kind, tt.ok)
		}
	}
}

func TestAssetIDStable(t *testing.T) {
	if AssetID("a.png") != AssetID("a.png") {
		t.Error("AssetID should be deterministic")
	}
	if AssetID("a.png") == AssetID("b.png") {
		t.Error("different keys should give different ids")
	}
}

func TestLocalFolderListAssets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_square.png", pngBytes(t))
	writeFile(t, dir, "a_story.mp4", []byte("not really a video"))
	writeFile(t, dir, "readme.txt", []byte("skip"))
	writeFile(t, dir, ".hidden.png", pngBytes(t))
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0755); err != nil {
		t.Fatal(err)
	}

	src, err := NewLocalFolder(dir, nil)
	if err != nil {
		t.Fatalf("NewLocalFolder: %v", err)
	}
	assets, err := src.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d: %+v", len(assets), assets)
	}
	if assets[0].Name != "a_story.mp4" || assets[0].Kind != models.AssetVideo {
		t.Errorf("first asset = %+v", assets[0])
	}
	if assets[1].Name != "b_square.png" || assets[1].Kind != models.AssetImage {
		t.Errorf("second asset = %+v", assets[1])
	}
	if assets[1].Path != filepath.Join(dir, "b_square.png") || assets[1].Size == 0 {
		t.Errorf("unexpected path or size: %+v", assets[1])
	}

	again, _ := src.ListAssets(context.Background())
	if again[0].ID != assets[0].ID {
		t.Error("ids should be stable across listings")
	}
}

func TestLocalFolderEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", []byte("x"))

	src, err := NewLocalFolder(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.ListAssets(context.Background()); !errors.Is(err, ErrEmptySource) {
		t.Errorf("expected ErrEmptySource, got %v", err)
	}
}

func TestNewLocalFolderErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.png", pngBytes(t))

	if _, err := NewLocalFolder(filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("expected error for missing folder")
	}
	if _, err := NewLocalFolder(filepath.Join(dir, "file.png"), nil); err == nil {
		t.Error("expected error for a file path")
	}
}

func TestLocalFolderThumbnailURL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "still.png", pngBytes(t))
	writeFile(t, dir, "clip.mp4", []byte("x"))

	thumbs := images.NewThumbnailer(filepath.Join(t.TempDir(), "thumbs"), "/temp/thumbs/")
	src, err := NewLocalFolder(dir, thumbs)
	if err != nil {
		t.Fatal(err)
	}
	assets, err := src.ListAssets(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, a := range assets {
		url, err := src.ThumbnailURL(ctx, a.ID)
		if err != nil {
			t.Fatalf("ThumbnailURL(%s): %v", a.Name, err)
		}
		switch a.Kind {
		case models.AssetImage:
			if url != "/temp/thumbs/"+a.ID+".jpg" {
				t.Errorf("image thumbnail url = %q", url)
			}
		case models.AssetVideo:
			if url != "" {
				t.Errorf("video thumbnail url = %q, want empty", url)
			}
		}
	}

	if _, err := src.ThumbnailURL(ctx, "unknown"); err == nil {
		t.Error("expected error for unknown asset")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	src, err := Open(dir, config.Bucket{}, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open local: %v", err)
	}
	if _, ok := src.(*LocalFolder); !ok {
		t.Errorf("expected *LocalFolder, got %T", src)
	}

	if _, err := Open("s3://creatives/jan", config.Bucket{}, t.TempDir(), nil); err == nil {
		t.Error("expected error without an endpoint")
	}

	cfg := config.Bucket{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", PresignSeconds: 60}
	src, err = Open("s3://creatives/jan", cfg, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open bucket: %v", err)
	}
	b, ok := src.(*Bucket)
	if !ok {
		t.Fatalf("expected *Bucket, got %T", src)
	}
	if b.bucket != "creatives" || b.prefix != "jan/" {
		t.Errorf("bucket = %q prefix = %q", b.bucket, b.prefix)
	}
	if _, err := b.ThumbnailURL(context.Background(), "unknown"); err == nil {
		t.Error("expected error for unknown asset")
	}
}

func TestLocalFolderIDsFollowFileVersion(t *testing.T) {
	clientA, clientB := t.TempDir(), t.TempDir()
	writeFile(t, clientA, "ad1.mp4", []byte("client a video"))
	writeFile(t, clientB, "ad1.mp4", []byte("client b video"))

	list := func(dir string) models.Asset {
		t.Helper()
		src, err := NewLocalFolder(dir, nil)
		if err != nil {
			t.Fatal(err)
		}
		assets, err := src.ListAssets(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return assets[0]
	}

	a, b := list(clientA), list(clientB)
	if a.ID == b.ID {
		t.Fatalf("same file name in two folders shares id %s", a.ID)
	}

	writeFile(t, clientA, "ad1.mp4", []byte("client a video, re-exported longer"))
	if again := list(clientA); again.ID == a.ID {
		t.Error("re-exported file should get a new id")
	}
}

func TestNewLocalFolderRelativePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", pngBytes(t))
	t.Chdir(dir)

	src, err := NewLocalFolder(".", nil)
	if err != nil {
		t.Fatal(err)
	}
	assets, err := src.ListAssets(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(assets[0].Path) {
		t.Errorf("path %q should be absolute", assets[0].Path)
	}
}

package frames

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/source"
)

// fakeFFmpeg writes a script that creates its output file (two files for a
// numbered pattern) and records each call in a log.
func fakeFFmpeg(t *testing.T, fail bool) (binary, log string) {
	t.Helper()
	dir := t.TempDir()
	binary = filepath.Join(dir, "ffmpeg")
	log = filepath.Join(dir, "calls.log")

	script := "#!/bin/sh\necho run >> '" + log + "'\n"
	if fail {
		script += "echo 'invalid data found' >&2\nexit 1\n"
	} else {
		script += `for out; do :; done
case "$out" in
  *%04d*) d=$(dirname "$out"); echo x > "$d/frame_0002.jpg"; echo x > "$d/frame_0001.jpg";;
  *) echo x > "$out";;
esac
`
	}
	if err := os.WriteFile(binary, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return binary, log
}

func calls(t *testing.T, log string) int {
	t.Helper()
	data, err := os.ReadFile(log)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Count(string(data), "run")
}

func video(t *testing.T) models.Asset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}
	return models.Asset{ID: "asset-1", Name: "clip.mp4", Path: path, Kind: models.AssetVideo}
}

func TestExtractOrdersFrames(t *testing.T) {
	binary, log := fakeFFmpeg(t, false)
	dir := t.TempDir()
	s := NewSampler(config.Frames{FFmpegBinary: binary, FPS: 1, FirstLast: true}, dir)

	paths, err := s.Extract(context.Background(), video(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	want := []string{"first.jpg", "frame_0001.jpg", "frame_0002.jpg", "last.jpg"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("frames = %v, want %v", names, want)
	}
	if got := calls(t, log); got != 3 {
		t.Errorf("ffmpeg calls = %d, want 3", got)
	}
}

func TestExtractUsesCache(t *testing.T) {
	binary, log := fakeFFmpeg(t, false)
	s := NewSampler(config.Frames{FFmpegBinary: binary, FirstLast: false}, t.TempDir())
	asset := video(t)

	first, err := s.Extract(context.Background(), asset)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Extract(context.Background(), asset)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("frame counts = %d, %d", len(first), len(second))
	}
	if got := calls(t, log); got != 1 {
		t.Errorf("ffmpeg calls = %d, want 1", got)
	}
}

func TestExtractFailureCleansUp(t *testing.T) {
	binary, _ := fakeFFmpeg(t, true)
	dir := t.TempDir()
	s := NewSampler(config.Frames{FFmpegBinary: binary}, dir)
	asset := video(t)

	_, err := s.Extract(context.Background(), asset)
	if err == nil || !strings.Contains(err.Error(), "invalid data found") {
		t.Fatalf("expected ffmpeg error with output, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, asset.ID)); !os.IsNotExist(err) {
		t.Error("frame directory should be removed after a failure")
	}
}

func TestExtractSkipsImagesAndMissingFiles(t *testing.T) {
	s := NewSampler(config.Frames{}, t.TempDir())

	paths, err := s.Extract(context.Background(), models.Asset{ID: "i", Kind: models.AssetImage, Path: "/x.png"})
	if err != nil || paths != nil {
		t.Errorf("image Extract = (%v, %v), want (nil, nil)", paths, err)
	}

	if _, err := s.Extract(context.Background(), models.Asset{ID: "v", Kind: models.AssetVideo, Path: "/missing.mp4"}); err == nil {
		t.Error("expected error for missing video")
	}
}

// echoFFmpeg writes the input path into every frame it creates.
func echoFFmpeg(t *testing.T) string {
	t.Helper()
	binary := filepath.Join(t.TempDir(), "ffmpeg")
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  if [ "$1" = "-i" ]; then in="$2"; fi
  out="$1"
  shift
done
case "$out" in
  *%04d*) echo "$in" > "$(dirname "$out")/frame_0001.jpg";;
  *) echo "$in" > "$out";;
esac
`
	if err := os.WriteFile(binary, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return binary
}

func TestExtractKeepsSameNamedVideosApart(t *testing.T) {
	s := NewSampler(config.Frames{FFmpegBinary: echoFFmpeg(t)}, t.TempDir())

	for _, client := range []string{"clientA", "clientB"} {
		dir := filepath.Join(t.TempDir(), client)
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "ad1.mp4"), []byte(client), 0644); err != nil {
			t.Fatal(err)
		}
		src, err := source.NewLocalFolder(dir, nil)
		if err != nil {
			t.Fatal(err)
		}
		assets, err := src.ListAssets(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		paths, err := s.Extract(context.Background(), assets[0])
		if err != nil {
			t.Fatalf("Extract %s: %v", client, err)
		}
		data, err := os.ReadFile(paths[0])
		if err != nil {
			t.Fatal(err)
		}
		if got := strings.TrimSpace(string(data)); got != assets[0].Path {
			t.Errorf("%s frame came from %q, want %q", client, got, assets[0].Path)
		}
	}
}

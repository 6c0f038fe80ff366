package ocr

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/providers"
)

type fakeProvider struct {
	text  string
	err   error
	calls []providers.Config
}

func (f *fakeProvider) ExtractText(_ context.Context, cfg providers.Config) (string, error) {
	f.calls = append(f.calls, cfg)
	return f.text, f.err
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() config.OCR {
	cfg := config.Default().OCR
	cfg.Provider = "ollama"
	cfg.RequestsPerSecond = 100
	return cfg
}

func TestExtractImage(t *testing.T) {
	path := writePNG(t, t.TempDir(), "still.png", 2000, 1000)
	fake := &fakeProvider{text: "  SALE 50% OFF \n\n Shop now  \n"}
	s := NewServiceWithProvider(testConfig(), fake)

	got := s.Extract(context.Background(), models.Asset{Name: "still.png", Path: path, Kind: models.AssetImage}, nil)
	if got != "SALE 50% OFF\nShop now" {
		t.Errorf("Extract() = %q", got)
	}
	if len(fake.calls) != 1 || len(fake.calls[0].Images) != 1 {
		t.Fatalf("unexpected provider calls %+v", fake.calls)
	}
	call := fake.calls[0]
	if call.Model != "mistral-small3.2:24b" || call.Temperature != 0 || !strings.Contains(call.Prompt, "OCR") {
		t.Errorf("unexpected request %+v", call)
	}

	img, _, err := image.DecodeConfig(strings.NewReader(string(call.Images[0])))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 1024 || img.Height != 512 {
		t.Errorf("uploaded image is %dx%d, want 1024x512", img.Width, img.Height)
	}
}

func TestExtractVideoFrames(t *testing.T) {
	dir := t.TempDir()
	var frames []string
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png"} {
		frames = append(frames, writePNG(t, dir, name, 8, 8))
	}
	fake := &fakeProvider{text: "hello"}
	s := NewServiceWithProvider(testConfig(), fake)

	got := s.Extract(context.Background(), models.Asset{Name: "v.mp4", Kind: models.AssetVideo}, frames)
	if got != "hello" {
		t.Errorf("Extract() = %q", got)
	}
	if n := len(fake.calls[0].Images); n != 3 {
		t.Errorf("sent %d frames, want 3", n)
	}
}

func TestExtractDegrades(t *testing.T) {
	path := writePNG(t, t.TempDir(), "still.png", 8, 8)
	asset := models.Asset{Name: "still.png", Path: path, Kind: models.AssetImage}

	tests := []struct {
		name     string
		provider *fakeProvider
		asset    models.Asset
		frames   []string
	}{
		{"provider error", &fakeProvider{err: errors.New("boom")}, asset, nil},
		{"no text answer", &fakeProvider{text: "NO TEXT."}, asset, nil},
		{"unreadable file", &fakeProvider{text: "x"}, models.Asset{Path: "/missing.png", Kind: models.AssetImage}, nil},
		{"video without frames", &fakeProvider{text: "x"}, models.Asset{Kind: models.AssetVideo}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServiceWithProvider(testConfig(), tt.provider)
			if got := s.Extract(context.Background(), tt.asset, tt.frames); got != "" {
				t.Errorf("Extract() = %q, want empty", got)
			}
		})
	}
}

func TestNewServiceProviders(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.OCR
		enabled bool
		wantErr bool
	}{
		{"none", config.OCR{Provider: "none", RequestsPerSecond: 1}, false, false},
		{"ollama", config.OCR{Provider: "ollama", RequestsPerSecond: 1}, true, false},
		{"openai without key", config.OCR{Provider: "openai", RequestsPerSecond: 1}, false, true},
		{"openai", config.OCR{Provider: "openai", OpenAIKey: "sk-test", RequestsPerSecond: 1}, true, false},
		{"gemini without key", config.OCR{Provider: "gemini", RequestsPerSecond: 1}, false, true},
		{"unknown", config.OCR{Provider: "tesseract", RequestsPerSecond: 1}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewService(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewService() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", s.Enabled(), tt.enabled)
			}
		})
	}
}

func TestDisabledServiceReturnsEmpty(t *testing.T) {
	s, err := NewService(config.OCR{Provider: "none", RequestsPerSecond: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Extract(context.Background(), models.Asset{Path: "/x.png"}, nil); got != "" {
		t.Errorf("Extract() = %q", got)
	}
	if s.Provider() != ProviderNone {
		t.Errorf("Provider() = %q", s.Provider())
	}
}

func TestSpread(t *testing.T) {
	frames := []string{"0", "1", "2", "3", "4", "5", "6"}
	tests := []struct {
		n    int
		want string
	}{
		{0, "0123456"},
		{1, "0"},
		{2, "06"},
		{3, "036"},
		{10, "0123456"},
	}
	for _, tt := range tests {
		if got := strings.Join(spread(frames, tt.n), ""); got != tt.want {
			t.Errorf("spread(n=%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Grouping.HashThreshold != 25 {
		t.Errorf("HashThreshold = %v, want 25", cfg.Grouping.HashThreshold)
	}
	if cfg.Grouping.OverlapThreshold != 0.5 {
		t.Errorf("OverlapThreshold = %v, want 0.5", cfg.Grouping.OverlapThreshold)
	}
	if cfg.OCR.Provider != "none" {
		t.Errorf("OCR provider = %q, want none", cfg.OCR.Provider)
	}
	if len(cfg.Inference.AngleOptions) != len(AngleOptions) {
		t.Errorf("expected %d angle options, got %d", len(AngleOptions), len(cfg.Inference.AngleOptions))
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Session.StartNumber != 1 {
		t.Errorf("StartNumber = %d, want 1", cfg.Session.StartNumber)
	}
}

func TestLoadYAMLOverridesAndMergesTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autonamer.yaml")
	content := `
grouping:
  hash_threshold: 18
classifier:
  format_tokens:
    story: Reels
inference:
  angle_options: [Offer, Brand]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Grouping.HashThreshold != 18 {
		t.Errorf("HashThreshold = %v, want 18", cfg.Grouping.HashThreshold)
	}
	if cfg.Grouping.OverlapThreshold != 0.5 {
		t.Errorf("OverlapThreshold should keep default, got %v", cfg.Grouping.OverlapThreshold)
	}
	if got := cfg.Classifier.FormatTokens["story"]; got != "Reels" {
		t.Errorf("story token = %q, want Reels", got)
	}
	if got := cfg.Classifier.FormatTokens["feed"]; got != "Feed" {
		t.Errorf("feed token = %q, want default Feed", got)
	}
	if len(cfg.Inference.AngleOptions) != 2 {
		t.Errorf("angle options = %v, want 2 entries", cfg.Inference.AngleOptions)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTONAMER_HASH_THRESHOLD", "30")
	t.Setenv("OCR_PROVIDER", "Ollama")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Grouping.HashThreshold != 30 {
		t.Errorf("HashThreshold = %v, want 30", cfg.Grouping.HashThreshold)
	}
	if cfg.OCR.Provider != "ollama" {
		t.Errorf("OCR provider = %q, want ollama", cfg.OCR.Provider)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero threshold", func(c *Config) { c.Grouping.HashThreshold = 0 }},
		{"overlap above one", func(c *Config) { c.Grouping.OverlapThreshold = 1.5 }},
		{"guard below one", func(c *Config) { c.Grouping.GuardMultiple = 0.5 }},
		{"unknown provider", func(c *Config) { c.OCR.Provider = "tesseract" }},
		{"missing format token", func(c *Config) { delete(c.Classifier.FormatTokens, "feed") }},
		{"bad offer marker", func(c *Config) { c.Inference.OfferMarkers = []string{"("} }},
		{"no workers", func(c *Config) { c.Pipeline.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDefaultCampaignAndDate(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	if got := DefaultCampaign(now); got != "JanAds" {
		t.Errorf("DefaultCampaign = %q, want JanAds", got)
	}
	if got := DefaultDate(now); got != "2024.01.15" {
		t.Errorf("DefaultDate = %q, want 2024.01.15", got)
	}
	dec := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	if got := DefaultCampaign(dec); got != "DecAds" {
		t.Errorf("DefaultCampaign = %q, want DecAds", got)
	}
}

// Package ocr reads on-screen text from creatives with an LLM vision model.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/gemini"
	"github.com/vanha-creative/autonamer/internal/images"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/ollama"
	"github.com/vanha-creative/autonamer/internal/openai"
	"github.com/vanha-creative/autonamer/internal/providers"
)

// ProviderNone disables OCR.
const ProviderNone = "none"

// Service handles OCR extraction from images and video frames
type Service struct {
	provider providers.Provider
	name     string
	model    string
	cfg      config.OCR
	limiter  *rate.Limiter
}

// NewService creates the service for the configured provider. Provider
// "none" yields a service whose Extract always returns "".
func NewService(cfg config.OCR) (*Service, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewServiceWithProvider(cfg, provider), nil
}

// NewServiceWithProvider creates a service around an existing provider.
func NewServiceWithProvider(cfg config.OCR, provider providers.Provider) *Service {
	name := cfg.Provider
	if provider == nil {
		name = ProviderNone
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel(name)
	}
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Service{
		provider: provider,
		name:     name,
		model:    model,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

func newProvider(cfg config.OCR) (providers.Provider, error) {
	switch cfg.Provider {
	case "", ProviderNone:
		return nil, nil
	case "ollama":
		return ollama.New(cfg.OllamaURL), nil
	case "openai":
		p, err := openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "gemini":
		p, err := gemini.New(cfg.GeminiKey)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported OCR provider: %s", cfg.Provider)
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "mistral-small3.2:24b"
	case "gemini":
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Provider returns the provider name.
func (s *Service) Provider() string {
	return s.name
}

// Extract returns the text visible in an asset, using the file itself for
// images and up to MaxFrames sampled frames for videos. Failures are logged
// and produce "".
func (s *Service) Extract(ctx context.Context, asset models.Asset, frames []string) string {
	if s.provider == nil {
		return ""
	}

	paths := []string{asset.Path}
	if asset.Kind == models.AssetVideo {
		paths = spread(frames, s.cfg.MaxFrames)
	}
	if len(paths) == 0 {
		return ""
	}

	imgs := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := images.ResizeFile(p, s.cfg.MaxWidth)
		if err != nil {
			slog.Warn("Failed to prepare image for OCR", "asset", asset.Name, "path", p, "err", err)
			continue
		}
		imgs = append(imgs, data)
	}
	if len(imgs) == 0 {
		return ""
	}

	text, err := s.extract(ctx, imgs)
	if err != nil {
		slog.Warn("OCR failed", "asset", asset.Name, "provider", s.name, "err", err)
		return ""
	}
	slog.Debug("Extracted OCR text", "asset", asset.Name, "provider", s.name, "length", len(text))
	return text
}

func (s *Service) extract(ctx context.Context, imgs [][]byte) (string, error) {
	if timeout := config.Seconds(s.cfg.TimeoutSeconds); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	text, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: 0,
		Prompt:      prompt,
		Images:      imgs,
	})
	if err != nil {
		return "", err
	}
	return clean(text), nil
}

// clean drops blank lines and the "no text" answers models give for
// imagery without copy.
func clean(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	out := strings.Join(lines, "\n")
	switch strings.ToUpper(strings.Trim(out, ".")) {
	case "NO TEXT", "NONE", "[NO TEXT]":
		return ""
	}
	return out
}

// spread picks up to n frames evenly across frames, always keeping the
// first and last.
func spread(frames []string, n int) []string {
	if n <= 0 || len(frames) <= n {
		return frames
	}
	if n == 1 {
		return frames[:1]
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, frames[i*(len(frames)-1)/(n-1)])
	}
	return out
}

const prompt = `You are performing OCR on frames from a social media advertisement.

Extract ALL visible overlay text exactly as it appears, preserving:
- Line breaks
- Capitalization
- Punctuation, prices and percentages

INSTRUCTIONS:
1. Read each image from top to bottom
2. When several frames repeat the same text, transcribe it once
3. Do not describe the imagery, add commentary or explanations
4. If there is no text at all, answer exactly: NO TEXT

OUTPUT FORMAT:
Provide ONLY the extracted text.`

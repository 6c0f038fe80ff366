package config

import (
	"fmt"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGrouping(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateInference(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if c.Server.TempDir == "" {
		return fmt.Errorf("server.temp_dir must not be empty")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Frames.FPS < 1 {
		return fmt.Errorf("frames.fps must be at least 1, got %d", c.Frames.FPS)
	}
	return nil
}

func (c *Config) validateGrouping() error {
	g := c.Grouping
	if g.HashThreshold <= 0 {
		return fmt.Errorf("grouping.hash_threshold must be positive, got %v", g.HashThreshold)
	}
	if g.OverlapThreshold <= 0 || g.OverlapThreshold > 1 {
		return fmt.Errorf("grouping.ocr_overlap_threshold must be in (0,1], got %v", g.OverlapThreshold)
	}
	if g.GuardMultiple < 1 {
		return fmt.Errorf("grouping.guard_multiple must be >= 1, got %v", g.GuardMultiple)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	cl := c.Classifier
	if cl.CarouselMinAspect <= 0 || cl.CarouselMaxAspect < cl.CarouselMinAspect {
		return fmt.Errorf("classifier carousel aspect bounds invalid: [%v, %v]", cl.CarouselMinAspect, cl.CarouselMaxAspect)
	}
	if cl.CarouselMinCount < 3 {
		return fmt.Errorf("classifier.carousel_min_count must be >= 3, got %d", cl.CarouselMinCount)
	}
	if len(cl.Placements) == 0 {
		return fmt.Errorf("classifier.placements must not be empty")
	}
	for i, rule := range cl.Placements {
		if rule.Placement == "" {
			return fmt.Errorf("classifier.placements[%d] has no placement", i)
		}
		if _, ok := cl.FormatTokens[rule.Placement]; !ok {
			return fmt.Errorf("classifier.format_tokens has no token for placement %q", rule.Placement)
		}
	}
	return nil
}

func (c *Config) validateInference() error {
	in := c.Inference
	if in.FuzzyThreshold <= 0 || in.FuzzyThreshold > 1 {
		return fmt.Errorf("inference.fuzzy_threshold must be in (0,1], got %v", in.FuzzyThreshold)
	}
	for _, pattern := range in.OfferMarkers {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("inference.offer_markers: invalid pattern %q: %w", pattern, err)
		}
	}
	for name, v := range map[string]float64{
		"filename_exact": in.Scores.FilenameExact,
		"ocr_exact":      in.Scores.OCRExact,
		"keyword":        in.Scores.Keyword,
		"fuzzy_weight":   in.Scores.FuzzyWeight,
		"offer_filename": in.Scores.OfferFilename,
		"offer_ocr":      in.Scores.OfferOCR,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("inference.scores.%s must be in [0,1], got %v", name, v)
		}
	}
	return nil
}

func (c *Config) validateOCR() error {
	switch c.OCR.Provider {
	case "none", "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("unsupported OCR provider: %s", c.OCR.Provider)
	}
	if c.OCR.RequestsPerSecond <= 0 {
		return fmt.Errorf("ocr.requests_per_second must be positive, got %v", c.OCR.RequestsPerSecond)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Server contains HTTP and scratch directory settings.
type Server struct {
	Addr    string `yaml:"addr"`
	TempDir string `yaml:"temp_dir"`
}

// Grouping tunes the clustering engine. Thresholds are empirical.
type Grouping struct {
	// HashThreshold is the largest fingerprint distance still treated as the same concept.
	HashThreshold float64 `yaml:"hash_threshold"`
	// OverlapThreshold is the OCR token overlap needed to rescue a near miss.
	OverlapThreshold float64 `yaml:"ocr_overlap_threshold"`
	// GuardMultiple bounds OCR rescue to distances under GuardMultiple*HashThreshold.
	GuardMultiple float64 `yaml:"guard_multiple"`
}

// PlacementRule maps an aspect ratio range to a placement. Rules are checked
// in order and the first rule whose MaxAspect is >= the ratio wins. A zero
// MaxAspect matches everything.
type PlacementRule struct {
	Placement string  `yaml:"placement"`
	MaxAspect float64 `yaml:"max_aspect"`
}

// Classifier configures group typing and format tokens.
type Classifier struct {
	CarouselMinAspect float64           `yaml:"carousel_min_aspect"`
	CarouselMaxAspect float64           `yaml:"carousel_max_aspect"`
	CarouselMinCount  int               `yaml:"carousel_min_count"`
	CarouselToken     string            `yaml:"carousel_token"`
	Placements        []PlacementRule   `yaml:"placements"`
	FormatTokens      map[string]string `yaml:"format_tokens"`
}

// Scores is the confidence assigned to each kind of inference signal.
type Scores struct {
	FilenameExact float64 `yaml:"filename_exact"`
	OCRExact      float64 `yaml:"ocr_exact"`
	Keyword       float64 `yaml:"keyword"`
	FuzzyWeight   float64 `yaml:"fuzzy_weight"`
	OfferFilename float64 `yaml:"offer_filename"`
	OfferOCR      float64 `yaml:"offer_ocr"`
}

// Inference holds the vocabularies used to fill descriptive fields.
type Inference struct {
	AngleOptions   []string            `yaml:"angle_options"`
	ClientOptions  []string            `yaml:"client_options"`
	Products       map[string][]string `yaml:"products"`
	AngleKeywords  map[string][]string `yaml:"angle_keywords"`
	OfferMarkers   []string            `yaml:"offer_markers"`
	FuzzyThreshold float64             `yaml:"fuzzy_threshold"`
	HookMaxLength  int                 `yaml:"hook_max_length"`
	Scores         Scores              `yaml:"scores"`
}

// Media configures metadata probing and its fallback values.
type Media struct {
	FFprobeBinary    string  `yaml:"ffprobe_binary"`
	FallbackWidth    int     `yaml:"fallback_width"`
	FallbackHeight   int     `yaml:"fallback_height"`
	FallbackDuration float64 `yaml:"fallback_duration"`
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
}

// Frames configures video frame sampling.
type Frames struct {
	FFmpegBinary   string `yaml:"ffmpeg_binary"`
	FPS            int    `yaml:"fps"`
	FirstLast      bool   `yaml:"first_last"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// OCR configures the vision OCR provider.
type OCR struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	MaxFrames         int     `yaml:"max_frames"`
	MaxWidth          int     `yaml:"max_width"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	OllamaURL         string  `yaml:"ollama_url"`
	OpenAIBaseURL     string  `yaml:"openai_base_url"`

	// API keys come from the environment only.
	OpenAIKey string `yaml:"-"`
	GeminiKey string `yaml:"-"`
}

// Pipeline configures per-asset extraction concurrency.
type Pipeline struct {
	Workers int `yaml:"workers"`
}

// Bucket holds S3/MinIO credentials for bucket sources.
type Bucket struct {
	Endpoint       string `yaml:"endpoint"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	Region         string `yaml:"region"`
	Name           string `yaml:"bucket"`
	UseSSL         bool   `yaml:"use_ssl"`
	PresignSeconds int    `yaml:"presign_seconds"`
}

// Session holds fallback user inputs.
type Session struct {
	Client      string `yaml:"client"`
	StartNumber int    `yaml:"start_number"`
}

// Config is the full application configuration.
type Config struct {
	Server     Server     `yaml:"server"`
	Session    Session    `yaml:"session"`
	Grouping   Grouping   `yaml:"grouping"`
	Classifier Classifier `yaml:"classifier"`
	Inference  Inference  `yaml:"inference"`
	Media      Media      `yaml:"media"`
	Frames     Frames     `yaml:"frames"`
	OCR        OCR        `yaml:"ocr"`
	Pipeline   Pipeline   `yaml:"pipeline"`
	Bucket     Bucket     `yaml:"bucket"`
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path or a missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AUTONAMER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("AUTONAMER_TEMP_DIR"); v != "" {
		c.Server.TempDir = v
	}
	if v := os.Getenv("AUTONAMER_HASH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Grouping.HashThreshold = f
		}
	}
	if v := os.Getenv("OCR_PROVIDER"); v != "" {
		c.OCR.Provider = v
	}
	if v := os.Getenv("OCR_MODEL"); v != "" {
		c.OCR.Model = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.OCR.OllamaURL = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OCR.OpenAIBaseURL = v
	}
	c.OCR.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OCR.GeminiKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		c.Bucket.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		c.Bucket.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		c.Bucket.SecretKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		c.Bucket.Name = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		c.Bucket.Region = v
	}
	if v := os.Getenv("S3_USE_SSL"); v != "" {
		c.Bucket.UseSSL = strings.EqualFold(v, "true") || v == "1"
	}
}

func (c *Config) normalize() {
	c.OCR.Provider = strings.ToLower(strings.TrimSpace(c.OCR.Provider))
	c.Server.TempDir = strings.TrimSpace(c.Server.TempDir)
	if c.Session.StartNumber <= 0 {
		c.Session.StartNumber = defaultStartNumber
	}
}

var monthTokens = [12]string{
	"JanAds", "FebAds", "MarAds", "AprAds", "MayAds", "JunAds",
	"JulAds", "AugAds", "SepAds", "OctAds", "NovAds", "DecAds",
}

// DefaultCampaign returns the campaign token for the month of now.
func DefaultCampaign(now time.Time) string {
	return monthTokens[now.Month()-1]
}

// DefaultDate formats now as YYYY.MM.DD.
func DefaultDate(now time.Time) string {
	return now.Format("2006.01.02")
}

// Seconds converts a configured seconds value into a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

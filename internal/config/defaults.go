package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	defaultAddr             = ":8888"
	defaultStartNumber      = 1
	defaultClient           = "Client"
	defaultHashThreshold    = 25
	defaultOverlapThreshold = 0.5
	defaultGuardMultiple    = 1.5
	defaultCarouselMin      = 0.95
	defaultCarouselMax      = 1.05
	defaultCarouselCount    = 3
	defaultFuzzyThreshold   = 0.8
	defaultHookMaxLength    = 60
	defaultFFprobe          = "ffprobe"
	defaultFFmpeg           = "ffmpeg"
	defaultFallbackWidth    = 1080
	defaultFallbackHeight   = 1920
	defaultFallbackDuration = 15.0
	defaultProbeTimeout     = 30
	defaultFramesFPS        = 1
	defaultFramesTimeout    = 120
	defaultOCRProvider      = "none"
	defaultOCRMaxFrames     = 3
	defaultOCRMaxWidth      = 1024
	defaultOCRRate          = 2
	defaultOCRTimeout       = 60
	defaultPresignSeconds   = 3600
)

// AngleOptions is the default angle vocabulary.
var AngleOptions = []string{
	"ProductFocus",
	"Offer",
	"Price",
	"SocialProof",
	"Education",
	"BehindTheScenes",
	"Founder",
	"Brand",
	"Newness",
}

// ClientOptions is the default client list.
var ClientOptions = []string{
	"ClientA",
	"ClientB",
	"ClientC",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:    defaultAddr,
			TempDir: filepath.Join(os.TempDir(), "autonamer"),
		},
		Session: Session{
			Client:      defaultClient,
			StartNumber: defaultStartNumber,
		},
		Grouping: Grouping{
			HashThreshold:    defaultHashThreshold,
			OverlapThreshold: defaultOverlapThreshold,
			GuardMultiple:    defaultGuardMultiple,
		},
		Classifier: Classifier{
			CarouselMinAspect: defaultCarouselMin,
			CarouselMaxAspect: defaultCarouselMax,
			CarouselMinCount:  defaultCarouselCount,
			CarouselToken:     "Carousel",
			Placements: []PlacementRule{
				{Placement: "story", MaxAspect: 0.65},
				{Placement: "feed", MaxAspect: 0.95},
				{Placement: "square", MaxAspect: 1.05},
				{Placement: "landscape"},
			},
			FormatTokens: map[string]string{
				"story":     "Story",
				"feed":      "Feed",
				"square":    "Square",
				"landscape": "Landscape",
			},
		},
		Inference: Inference{
			AngleOptions:  append([]string(nil), AngleOptions...),
			ClientOptions: append([]string(nil), ClientOptions...),
			Products:      map[string][]string{},
			AngleKeywords: map[string][]string{
				"Offer":           {"sale", "discount", "deal", "promo", "coupon", "bogo"},
				"Price":           {"price", "only", "under"},
				"SocialProof":     {"review", "reviews", "rated", "stars", "customers", "loved"},
				"Education":       {"how", "tips", "learn", "guide", "why"},
				"BehindTheScenes": {"bts", "behind", "making"},
				"Founder":         {"founder", "ceo", "story"},
				"Newness":         {"new", "launch", "introducing", "just"},
			},
			OfferMarkers: []string{
				`\$\s?\d`,
				`\d+\s?%`,
				`(?i)\b(sale|off|discount|deal|promo|coupon|bogo|save|free shipping)\b`,
			},
			FuzzyThreshold: defaultFuzzyThreshold,
			HookMaxLength:  defaultHookMaxLength,
			Scores: Scores{
				FilenameExact: 0.95,
				OCRExact:      0.8,
				Keyword:       0.6,
				FuzzyWeight:   0.6,
				OfferFilename: 0.9,
				OfferOCR:      0.8,
			},
		},
		Media: Media{
			FFprobeBinary:    defaultFFprobe,
			FallbackWidth:    defaultFallbackWidth,
			FallbackHeight:   defaultFallbackHeight,
			FallbackDuration: defaultFallbackDuration,
			TimeoutSeconds:   defaultProbeTimeout,
		},
		Frames: Frames{
			FFmpegBinary:   defaultFFmpeg,
			FPS:            defaultFramesFPS,
			FirstLast:      true,
			TimeoutSeconds: defaultFramesTimeout,
		},
		OCR: OCR{
			Provider:          defaultOCRProvider,
			MaxFrames:         defaultOCRMaxFrames,
			MaxWidth:          defaultOCRMaxWidth,
			RequestsPerSecond: defaultOCRRate,
			TimeoutSeconds:    defaultOCRTimeout,
		},
		Pipeline: Pipeline{
			Workers: runtime.NumCPU(),
		},
		Bucket: Bucket{
			PresignSeconds: defaultPresignSeconds,
		},
	}
}

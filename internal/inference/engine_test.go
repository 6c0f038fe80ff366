package inference

import (
	"strings"
	"testing"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default().Inference
	cfg.Products = map[string][]string{"Acme": {"Widget", "GlowSerum"}}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func group(members ...[2]string) *models.AdGroup {
	g := &models.AdGroup{ID: "g1"}
	for _, m := range members {
		g.Assets = append(g.Assets, &models.ProcessedAsset{
			Asset:   models.Asset{ID: m[0], Name: m[0]},
			OCRText: m[1],
		})
	}
	return g
}

func TestInfer(t *testing.T) {
	inputs := models.UserInputs{Client: "Acme"}

	tests := []struct {
		name        string
		group       *models.AdGroup
		product     string
		productConf float64
		angle       string
		angleConf   float64
		offer       bool
		offerConf   float64
		creator     string
	}{
		{
			name:        "exact filename tokens",
			group:       group([2]string{"Widget_SocialProof_v1.mp4", ""}),
			product:     "Widget",
			productConf: 0.95,
			angle:       "SocialProof",
			angleConf:   0.95,
		},
		{
			name:        "ocr token and keyword hint",
			group:       group([2]string{"clip01.mp4", "Glow Serum loved by 10,000 customers"}),
			product:     "GlowSerum",
			productConf: 0.8,
			angle:       "SocialProof",
			angleConf:   0.6,
		},
		{
			name:        "offer and creator in filename",
			group:       group([2]string{"Widget_50off_ugc-jane.mp4", ""}),
			product:     "Widget",
			productConf: 0.95,
			offer:       true,
			offerConf:   0.9,
			creator:     "jane",
		},
		{
			name:      "offer in ocr",
			group:     group([2]string{"clip.mp4", "SAVE 20% today"}),
			offer:     true,
			offerConf: 0.8,
		},
		{
			name:        "fuzzy product",
			group:       group([2]string{"Widgett_promo.png", ""}),
			product:     "Widget",
			productConf: 0.514,
			angle:       "Offer",
			angleConf:   0.6,
			offer:       true,
			offerConf:   0.9,
		},
		{
			name:  "no signal",
			group: group([2]string{"a.png", ""}),
		},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.group
			e.Infer(g, inputs)
			if g.Product != tt.product || g.Confidence.Product != tt.productConf {
				t.Errorf("product = (%q, %v), want (%q, %v)", g.Product, g.Confidence.Product, tt.product, tt.productConf)
			}
			if g.Angle != tt.angle || g.Confidence.Angle != tt.angleConf {
				t.Errorf("angle = (%q, %v), want (%q, %v)", g.Angle, g.Confidence.Angle, tt.angle, tt.angleConf)
			}
			if g.Offer != tt.offer || g.Confidence.Offer != tt.offerConf {
				t.Errorf("offer = (%v, %v), want (%v, %v)", g.Offer, g.Confidence.Offer, tt.offer, tt.offerConf)
			}
			if g.Creator != tt.creator {
				t.Errorf("creator = %q, want %q", g.Creator, tt.creator)
			}
		})
	}
}

func TestInferProductFromClientOptions(t *testing.T) {
	e := newTestEngine(t)
	g := group([2]string{"ClientB_teaser.mp4", ""})
	e.Infer(g, models.UserInputs{Client: "Unknown"})
	if g.Product != "ClientB" {
		t.Errorf("product = %q, want ClientB", g.Product)
	}
}

func TestInferHook(t *testing.T) {
	e := newTestEngine(t)
	long := "First   line of text that goes on and on well beyond the sixty character limit"
	g := group(
		[2]string{"a.png", ""},
		[2]string{"b.png", "\n  " + long + "\nsecond line"},
	)
	e.Infer(g, models.UserInputs{})

	if !strings.HasPrefix(g.Hook, "First line of text") {
		t.Errorf("hook = %q", g.Hook)
	}
	if n := len([]rune(g.Hook)); n > 60 {
		t.Errorf("hook length %d exceeds limit", n)
	}
}

func TestInferCreatorHandle(t *testing.T) {
	e := newTestEngine(t)
	g := group([2]string{"clip.mp4", "@glow.by.jane love this"})
	e.Infer(g, models.UserInputs{})
	if g.Creator != "glow.by.jane" {
		t.Errorf("creator = %q", g.Creator)
	}
}

func TestInferKeepsGroupConfidence(t *testing.T) {
	e := newTestEngine(t)
	g := group([2]string{"Widget.png", ""})
	g.Confidence.Group = 0.73
	e.InferAll([]*models.AdGroup{g}, models.UserInputs{Client: "Acme"})
	if g.Confidence.Group != 0.73 {
		t.Errorf("group confidence changed to %v", g.Confidence.Group)
	}
}

func TestNewEngineRejectsBadMarker(t *testing.T) {
	cfg := config.Default().Inference
	cfg.OfferMarkers = []string{"("}
	if _, err := NewEngine(cfg); err == nil {
		t.Error("expected error for invalid offer marker")
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/grouping"
	"github.com/vanha-creative/autonamer/internal/inference"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/source"
)

type fakeSource struct {
	assets []models.Asset
	err    error
	thumbs map[string]string
}

func (f *fakeSource) ListAssets(context.Context) ([]models.Asset, error) {
	return f.assets, f.err
}

func (f *fakeSource) ThumbnailURL(_ context.Context, id string) (string, error) {
	return f.thumbs[id], nil
}

// fakeDeps serves canned values keyed by asset name and counts concurrency.
type fakeDeps struct {
	aspect map[string]float64
	hash   map[string]uint64
	text   map[string]string

	mu       sync.Mutex
	inFlight int32
	peak     int32
	rendered []string
}

func (f *fakeDeps) enter() func() {
	n := atomic.AddInt32(&f.inFlight, 1)
	f.mu.Lock()
	if n > f.peak {
		f.peak = n
	}
	f.mu.Unlock()
	return func() { atomic.AddInt32(&f.inFlight, -1) }
}

type metadataFunc func(context.Context, models.Asset) models.AssetMetadata

func (fn metadataFunc) Extract(ctx context.Context, a models.Asset) models.AssetMetadata {
	return fn(ctx, a)
}

type framesFunc func(context.Context, models.Asset) ([]string, error)

func (fn framesFunc) Extract(ctx context.Context, a models.Asset) ([]string, error) {
	return fn(ctx, a)
}

type ocrFunc func(context.Context, models.Asset, []string) string

func (fn ocrFunc) Extract(ctx context.Context, a models.Asset, frames []string) string {
	return fn(ctx, a, frames)
}

type hashFunc func(context.Context, models.Asset, []string) models.Fingerprint

func (fn hashFunc) Compute(ctx context.Context, a models.Asset, frames []string) models.Fingerprint {
	return fn(ctx, a, frames)
}

type renderFunc func(src, id string) (string, error)

func (fn renderFunc) Render(src, id string) (string, error) {
	return fn(src, id)
}

func (f *fakeDeps) deps() Deps {
	return Deps{
		Metadata: metadataFunc(func(_ context.Context, a models.Asset) models.AssetMetadata {
			defer f.enter()()
			return models.AssetMetadata{Width: 1080, Height: 1080, AspectRatio: f.aspect[a.Name]}
		}),
		Frames: framesFunc(func(_ context.Context, a models.Asset) ([]string, error) {
			if a.Name == "broken.mp4" {
				return nil, errors.New("ffmpeg failed")
			}
			return []string{"/frames/" + a.ID + "/first.jpg"}, nil
		}),
		OCR: ocrFunc(func(_ context.Context, a models.Asset, _ []string) string {
			return f.text[a.Name]
		}),
		Hasher: hashFunc(func(_ context.Context, a models.Asset, frames []string) models.Fingerprint {
			h, ok := f.hash[a.Name]
			if !ok {
				return models.Fingerprint{}
			}
			return models.Fingerprint{Hashes: []uint64{h, h, h}}
		}),
		Thumbs: renderFunc(func(src, id string) (string, error) {
			f.mu.Lock()
			f.rendered = append(f.rendered, src)
			f.mu.Unlock()
			return "/temp/thumbs/" + id + ".jpg", nil
		}),
	}
}

func newAnalyzer(t *testing.T, deps Deps, workers int) *Analyzer {
	t.Helper()
	cfg := config.Default()
	cfg.Inference.Products = map[string][]string{"ClientA": {"Widget"}}
	infer, err := inference.NewEngine(cfg.Inference)
	if err != nil {
		t.Fatal(err)
	}
	engine := grouping.NewEngine(cfg.Grouping, grouping.NewClassifier(cfg.Classifier))
	return New(deps, engine, infer, workers)
}

func asset(name string, kind models.AssetKind) models.Asset {
	return models.Asset{ID: "id-" + name, Name: name, Path: "/src/" + name, Kind: kind}
}

func TestAnalyze(t *testing.T) {
	src := &fakeSource{
		assets: []models.Asset{
			asset("widget_story.mp4", models.AssetVideo),
			asset("widget_square.png", models.AssetImage),
			asset("other.png", models.AssetImage),
		},
		thumbs: map[string]string{"id-widget_square.png": "/temp/thumbs/sq.jpg"},
	}
	fake := &fakeDeps{
		aspect: map[string]float64{"widget_story.mp4": 0.5625, "widget_square.png": 1.0, "other.png": 1.91},
		hash:   map[string]uint64{"widget_story.mp4": 0, "widget_square.png": 0x7, "other.png": 0x5555555555555555},
		text:   map[string]string{"widget_square.png": "Summer SALE"},
	}

	got, err := newAnalyzer(t, fake.deps(), 2).Analyze(context.Background(), src, models.UserInputs{Client: "ClientA", StartNumber: 1})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got.Groups))
	}

	first := got.Groups[0]
	if len(first.Assets) != 2 || first.AdNumber != 1 {
		t.Fatalf("unexpected first group %+v", first)
	}
	if first.Product != "Widget" || first.Confidence.Product != 0.95 {
		t.Errorf("product = %q (%v)", first.Product, first.Confidence.Product)
	}
	if first.Angle != "Offer" {
		t.Errorf("angle = %q", first.Angle)
	}

	video, image := first.Assets[0], first.Assets[1]
	if video.Placement != models.PlacementStory || image.Placement != models.PlacementSquare {
		t.Errorf("placements = %s, %s", video.Placement, image.Placement)
	}
	if len(video.FramePaths) != 1 || video.ThumbnailURL != "/temp/thumbs/id-widget_story.mp4.jpg" {
		t.Errorf("video frames %v thumbnail %q", video.FramePaths, video.ThumbnailURL)
	}
	if image.ThumbnailURL != "/temp/thumbs/sq.jpg" {
		t.Errorf("image thumbnail = %q", image.ThumbnailURL)
	}
	if len(fake.rendered) != 1 {
		t.Errorf("expected one rendered thumbnail, got %v", fake.rendered)
	}
}

func TestProcessPreservesOrderAndBoundsConcurrency(t *testing.T) {
	var assets []models.Asset
	for i := 0; i < 20; i++ {
		assets = append(assets, asset(fmt.Sprintf("a%02d.png", i), models.AssetImage))
	}
	fake := &fakeDeps{}

	got, err := newAnalyzer(t, fake.deps(), 3).Process(context.Background(), &fakeSource{assets: assets})
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range got {
		if p.Asset.Name != assets[i].Name {
			t.Fatalf("position %d holds %s, want %s", i, p.Asset.Name, assets[i].Name)
		}
	}
	if fake.peak > 3 {
		t.Errorf("peak concurrency %d exceeds 3 workers", fake.peak)
	}
}

func TestProcessDegradesFrameFailure(t *testing.T) {
	fake := &fakeDeps{}
	got, err := newAnalyzer(t, fake.deps(), 1).Process(context.Background(), &fakeSource{
		assets: []models.Asset{asset("broken.mp4", models.AssetVideo)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].FramePaths != nil || got[0].Fingerprint.Reliable() {
		t.Errorf("unexpected processed asset %+v", got[0])
	}
}

func TestProcessErrors(t *testing.T) {
	listErr := errors.New("permission denied")
	tests := []struct {
		name string
		src  *fakeSource
		want error
	}{
		{"empty", &fakeSource{}, source.ErrEmptySource},
		{"list error", &fakeSource{err: listErr}, listErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAnalyzer(t, (&fakeDeps{}).deps(), 1).Process(context.Background(), tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Process() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAnalyzer(t, (&fakeDeps{}).deps(), 2).Process(ctx, &fakeSource{
		assets: []models.Asset{asset("a.png", models.AssetImage)},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProgress(t *testing.T) {
	assets := []models.Asset{asset("a.png", models.AssetImage), asset("b.png", models.AssetImage), asset("c.png", models.AssetImage)}
	a := newAnalyzer(t, (&fakeDeps{}).deps(), 2)

	var calls, last atomic.Int32
	a.SetProgress(func(done, total int) {
		calls.Add(1)
		if total != 3 {
			t.Errorf("total = %d", total)
		}
		if done == total {
			last.Store(int32(done))
		}
	})
	if _, err := a.Process(context.Background(), &fakeSource{assets: assets}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 || last.Load() != 3 {
		t.Errorf("progress calls = %d, final = %d", calls.Load(), last.Load())
	}
}

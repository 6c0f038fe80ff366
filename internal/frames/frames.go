// Package frames samples still frames from video creatives with ffmpeg.
package frames

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
)

const (
	firstFrame  = "first.jpg"
	lastFrame   = "last.jpg"
	framePrefix = "frame_"
)

// Sampler extracts frames into a per-asset directory and reuses them on
// later calls.
type Sampler struct {
	cfg config.Frames
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSampler creates a sampler writing under dir.
func NewSampler(cfg config.Frames, dir string) *Sampler {
	if cfg.FPS <= 0 {
		cfg.FPS = 1
	}
	if strings.TrimSpace(cfg.FFmpegBinary) == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	return &Sampler{cfg: cfg, dir: dir, locks: make(map[string]*sync.Mutex)}
}

// Dir returns the root frame directory.
func (s *Sampler) Dir() string {
	return s.dir
}

// Extract returns the frame paths for a video asset ordered first frame,
// sampled frames, last frame. Images have no frames and return nil.
func (s *Sampler) Extract(ctx context.Context, asset models.Asset) ([]string, error) {
	if asset.Kind != models.AssetVideo {
		return nil, nil
	}
	if _, err := os.Stat(asset.Path); err != nil {
		return nil, fmt.Errorf("video file does not exist at path %q: %w", asset.Path, err)
	}

	lock := s.assetLock(asset.ID)
	lock.Lock()
	defer lock.Unlock()

	frameDir := filepath.Join(s.dir, asset.ID)
	if cached, err := collect(frameDir); err == nil && len(cached) > 0 {
		slog.Debug("Frames already extracted", "asset", asset.Name, "count", len(cached))
		return cached, nil
	}

	if err := os.MkdirAll(frameDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory %q: %w", frameDir, err)
	}

	timeout := config.Seconds(s.cfg.TimeoutSeconds)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	passes := [][]string{
		{"-i", asset.Path, "-vf", fmt.Sprintf("fps=%d", s.cfg.FPS), "-q:v", "2", filepath.Join(frameDir, framePrefix+"%04d.jpg")},
	}
	if s.cfg.FirstLast {
		passes = append(passes,
			[]string{"-i", asset.Path, "-frames:v", "1", "-q:v", "2", filepath.Join(frameDir, firstFrame)},
			[]string{"-sseof", "-1", "-i", asset.Path, "-update", "1", "-q:v", "2", filepath.Join(frameDir, lastFrame)},
		)
	}

	for _, args := range passes {
		if err := s.run(ctx, args); err != nil {
			os.RemoveAll(frameDir)
			return nil, err
		}
	}

	paths, err := collect(frameDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frames for %s", asset.Name)
	}
	slog.Debug("Extracted frames", "asset", asset.Name, "count", len(paths))
	return paths, nil
}

func (s *Sampler) run(ctx context.Context, args []string) error {
	full := append([]string{"-v", "error", "-y"}, args...)
	cmd := exec.CommandContext(ctx, s.cfg.FFmpegBinary, full...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (s *Sampler) assetLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// collect lists the jpg frames in dir in playback order.
func collect(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var first, last string
	var sampled []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".jpg") {
			continue
		}
		switch {
		case name == firstFrame:
			first = filepath.Join(dir, name)
		case name == lastFrame:
			last = filepath.Join(dir, name)
		case strings.HasPrefix(name, framePrefix):
			sampled = append(sampled, filepath.Join(dir, name))
		}
	}
	sort.Strings(sampled)

	paths := make([]string, 0, len(sampled)+2)
	if first != "" {
		paths = append(paths, first)
	}
	paths = append(paths, sampled...)
	if last != "" {
		paths = append(paths, last)
	}
	return paths, nil
}

// Package grouping turns a flat list of processed assets into ad groups.
//
// Clustering is a single greedy pass in input order. An asset joins the
// cluster holding its closest fingerprint match within the hash threshold; if
// none matches, OCR text overlap can rescue a near miss. Clusters made of one
// asset with no usable fingerprint are reported as ungrouped.
package grouping

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/fingerprint"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/textutil"
)

// groupNamespace seeds deterministic group ids derived from the founding asset.
var groupNamespace = uuid.MustParse("3f1c2a8e-6a55-4f0e-9d1b-8c7e52b7a4d0")

// Engine runs the clustering pass.
type Engine struct {
	cfg        config.Grouping
	classifier *Classifier
	now        func() time.Time
}

// NewEngine creates a clustering engine.
func NewEngine(cfg config.Grouping, classifier *Classifier) *Engine {
	return &Engine{
		cfg:        cfg,
		classifier: classifier,
		now:        time.Now,
	}
}

// Classifier returns the classifier used to type new groups.
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}

type cluster struct {
	members    []*models.ProcessedAsset
	ocrText    string
	confidence float64
}

func (c *cluster) add(asset *models.ProcessedAsset, confidence float64) {
	c.members = append(c.members, asset)
	if c.ocrText == "" {
		c.ocrText = asset.OCRText
	}
	if len(c.members) > 1 && confidence < c.confidence {
		c.confidence = confidence
	}
}

// Cluster groups assets. The result is identical for identical input.
func (e *Engine) Cluster(assets []*models.ProcessedAsset, inputs models.UserInputs) *models.GroupedAssets {
	idx := fingerprint.NewIndex(assets)
	var clusters []*cluster

	for _, asset := range assets {
		if best, d := e.matchFingerprint(idx, clusters, asset); best != nil {
			best.add(asset, e.fingerprintConfidence(d))
			continue
		}
		if best, overlap := e.matchOCR(idx, clusters, asset); best != nil {
			slog.Debug("OCR rescue", "asset", asset.Asset.Name, "overlap", overlap)
			best.add(asset, e.overlapConfidence(overlap))
			continue
		}
		c := &cluster{confidence: 1}
		c.add(asset, 1)
		clusters = append(clusters, c)
	}

	return e.emit(idx, clusters, inputs)
}

// nearest returns the smallest distance between asset and any reliable
// member of c.
func nearest(idx *fingerprint.Index, c *cluster, asset *models.ProcessedAsset) (float64, bool) {
	best, found := 0.0, false
	for _, m := range c.members {
		d, ok := idx.Distance(asset.ID(), m.ID())
		if !ok {
			continue
		}
		if !found || d < best {
			best, found = d, true
		}
	}
	return best, found
}

// matchFingerprint picks the cluster with a member within the threshold.
// Ties go to the larger cluster, then the earlier one.
func (e *Engine) matchFingerprint(idx *fingerprint.Index, clusters []*cluster, asset *models.ProcessedAsset) (*cluster, float64) {
	var best *cluster
	var bestDist float64
	for _, c := range clusters {
		d, ok := nearest(idx, c, asset)
		if !ok || d > e.cfg.HashThreshold {
			continue
		}
		if best == nil || len(c.members) > len(best.members) {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// matchOCR applies the OCR rescue. A cluster is eligible only when its
// fingerprint distance is unknown or within the guard band.
func (e *Engine) matchOCR(idx *fingerprint.Index, clusters []*cluster, asset *models.ProcessedAsset) (*cluster, float64) {
	if asset.OCRText == "" {
		return nil, 0
	}
	guard := e.cfg.GuardMultiple * e.cfg.HashThreshold

	var best *cluster
	var bestOverlap float64
	for _, c := range clusters {
		if c.ocrText == "" {
			continue
		}
		if d, ok := nearest(idx, c, asset); ok && d > guard {
			continue
		}
		overlap := textutil.Overlap(asset.OCRText, c.ocrText)
		if overlap < e.cfg.OverlapThreshold {
			continue
		}
		if best == nil || len(c.members) > len(best.members) {
			best, bestOverlap = c, overlap
		}
	}
	return best, bestOverlap
}

// fingerprintConfidence maps a join distance onto [0.5, 1].
func (e *Engine) fingerprintConfidence(d float64) float64 {
	return clamp(0.5 + 0.5*(1-d/e.cfg.HashThreshold))
}

// overlapConfidence maps a rescue overlap onto [0.4, 0.8].
func (e *Engine) overlapConfidence(overlap float64) float64 {
	span := 1 - e.cfg.OverlapThreshold
	if span <= 0 {
		return 0.8
	}
	return clamp(0.4 + 0.4*(overlap-e.cfg.OverlapThreshold)/span)
}

func (e *Engine) emit(idx *fingerprint.Index, clusters []*cluster, inputs models.UserInputs) *models.GroupedAssets {
	now := e.now()
	campaign := inputs.Campaign
	if campaign == "" {
		campaign = config.DefaultCampaign(now)
	}
	date := inputs.Date
	if date == "" {
		date = config.DefaultDate(now)
	}
	number := inputs.StartNumber
	if number <= 0 {
		number = 1
	}

	result := &models.GroupedAssets{
		Groups:    []*models.AdGroup{},
		Ungrouped: []*models.ProcessedAsset{},
	}
	for _, c := range clusters {
		if len(c.members) == 1 && !idx.Reliable(c.members[0].ID()) {
			result.Ungrouped = append(result.Ungrouped, c.members[0])
			continue
		}
		g := &models.AdGroup{
			ID:       uuid.NewSHA1(groupNamespace, []byte(c.members[0].ID())).String(),
			Assets:   c.members,
			AdNumber: number,
			Campaign: campaign,
			Date:     date,
		}
		g.Confidence.Group = round(c.confidence)
		e.classifier.Apply(g)
		result.Groups = append(result.Groups, g)
		number++
	}

	slog.Info("Clustering complete",
		"assets", idx.Len(),
		"groups", len(result.Groups),
		"ungrouped", len(result.Ungrouped))
	return result
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

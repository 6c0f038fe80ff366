package grouping

import (
	"strings"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
)

// Classifier derives group type and format token from group membership.
// It holds no state beyond its configuration, so it can be re-run after
// every membership change.
type Classifier struct {
	cfg config.Classifier
}

// NewClassifier creates a classifier over the given table.
func NewClassifier(cfg config.Classifier) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify returns the group type and format token for members.
func (c *Classifier) Classify(members []*models.ProcessedAsset) (models.GroupType, string) {
	groupType := c.groupType(members)
	if groupType == models.GroupCarousel && c.cfg.CarouselToken != "" {
		return groupType, c.cfg.CarouselToken
	}
	return groupType, c.formatToken(c.dominantPlacement(members))
}

// Apply reclassifies g in place.
func (c *Classifier) Apply(g *models.AdGroup) {
	g.GroupType, g.FormatToken = c.Classify(g.Assets)
}

// Placement maps an aspect ratio to a placement using the configured rules.
func (c *Classifier) Placement(aspect float64) models.Placement {
	for _, rule := range c.cfg.Placements {
		if rule.MaxAspect == 0 || aspect <= rule.MaxAspect {
			return models.Placement(rule.Placement)
		}
	}
	if len(c.cfg.Placements) == 0 {
		return ""
	}
	return models.Placement(c.cfg.Placements[len(c.cfg.Placements)-1].Placement)
}

func (c *Classifier) groupType(members []*models.ProcessedAsset) models.GroupType {
	switch n := len(members); {
	case n <= 1:
		return models.GroupSingle
	case n < c.cfg.CarouselMinCount:
		return models.GroupStandard
	}
	for _, m := range members {
		ar := m.Metadata.AspectRatio
		if ar < c.cfg.CarouselMinAspect || ar > c.cfg.CarouselMaxAspect {
			return models.GroupStandard
		}
	}
	return models.GroupCarousel
}

// dominantPlacement returns the most common placement; ties go to the
// placement seen first in member order.
func (c *Classifier) dominantPlacement(members []*models.ProcessedAsset) models.Placement {
	counts := make(map[models.Placement]int, len(members))
	var order []models.Placement
	for _, m := range members {
		p := m.Placement
		if p == "" {
			p = c.Placement(m.Metadata.AspectRatio)
		}
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}

	var best models.Placement
	for _, p := range order {
		if best == "" || counts[p] > counts[best] {
			best = p
		}
	}
	return best
}

func (c *Classifier) formatToken(p models.Placement) string {
	if p == "" {
		return ""
	}
	if token, ok := c.cfg.FormatTokens[string(p)]; ok {
		return token
	}
	name := string(p)
	return strings.ToUpper(name[:1]) + name[1:]
}

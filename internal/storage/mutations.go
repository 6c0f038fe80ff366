package storage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/vanha-creative/autonamer/internal/models"
)

// Bulk-editable group fields.
const (
	FieldProduct  = "product"
	FieldAngle    = "angle"
	FieldHook     = "hook"
	FieldCreator  = "creator"
	FieldCampaign = "campaign"
	FieldDate     = "date"
	FieldOffer    = "offer"
)

var textFields = map[string]func(*models.AdGroup) *string{
	FieldProduct:  func(g *models.AdGroup) *string { return &g.Product },
	FieldAngle:    func(g *models.AdGroup) *string { return &g.Angle },
	FieldHook:     func(g *models.AdGroup) *string { return &g.Hook },
	FieldCreator:  func(g *models.AdGroup) *string { return &g.Creator },
	FieldCampaign: func(g *models.AdGroup) *string { return &g.Campaign },
	FieldDate:     func(g *models.AdGroup) *string { return &g.Date },
}

// ParseBool accepts only "yes", "true" and "1" (any case) as true.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

func validateField(field string) error {
	if _, ok := textFields[field]; ok || field == FieldOffer {
		return nil
	}
	return fmt.Errorf("unknown field %q: %w", field, ErrInvalidInput)
}

// Regroup moves an asset into targetGroupID, or into a new single-asset group
// when targetGroupID is empty. Moving an asset to the group it is already in
// is a no-op. The source group is reclassified or removed when emptied, the
// target is reclassified and all groups are renumbered.
func (s *GroupStore) Regroup(assetID, targetGroupID string) error {
	if !s.ready {
		return ErrNotReady
	}
	loc, ok := s.locate(assetID)
	if !ok {
		return fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
	}
	var target *models.AdGroup
	if targetGroupID != "" {
		ti := s.groupIndex(targetGroupID)
		if ti < 0 {
			return fmt.Errorf("target group %s: %w", targetGroupID, ErrNotFound)
		}
		if ti == loc.group {
			return nil
		}
		target = s.groups[ti]
	}

	var asset *models.ProcessedAsset
	var source *models.AdGroup
	if loc.group >= 0 {
		source = s.groups[loc.group]
		asset = source.Assets[loc.index]
		source.Assets = slices.Delete(source.Assets, loc.index, loc.index+1)
	} else {
		asset = s.ungrouped[loc.index]
		s.ungrouped = slices.Delete(s.ungrouped, loc.index, loc.index+1)
	}

	if target == nil {
		target = s.newGroup(source)
		s.groups = append(s.groups, target)
	}
	target.Assets = append(target.Assets, asset)

	if source != nil {
		if len(source.Assets) == 0 {
			s.groups = slices.DeleteFunc(s.groups, func(g *models.AdGroup) bool { return g == source })
		} else {
			s.classifier.Apply(source)
		}
	}
	s.classifier.Apply(target)

	s.renumber(s.regroupStart())
	return nil
}

// newGroup creates an empty group pending renumber. Campaign and date come
// from the group the asset leaves, or the session inputs.
func (s *GroupStore) newGroup(from *models.AdGroup) *models.AdGroup {
	g := &models.AdGroup{
		ID:        uuid.NewString(),
		GroupType: models.GroupSingle,
		Campaign:  s.inputs.Campaign,
		Date:      s.inputs.Date,
	}
	if from != nil {
		g.Campaign = from.Campaign
		g.Date = from.Date
	}
	g.Confidence.Group = 1
	return g
}

// regroupStart is the smallest positive ad number in use, falling back to the
// session start number.
func (s *GroupStore) regroupStart() int {
	start := 0
	for _, g := range s.groups {
		if g.AdNumber > 0 && (start == 0 || g.AdNumber < start) {
			start = g.AdNumber
		}
	}
	if start > 0 {
		return start
	}
	if s.inputs.StartNumber > 0 {
		return s.inputs.StartNumber
	}
	return 1
}

// Renumber assigns start, start+1, ... to the groups in list order.
func (s *GroupStore) Renumber(start int) error {
	if !s.ready {
		return ErrNotReady
	}
	if start < 1 {
		return fmt.Errorf("start number must be positive, got %d: %w", start, ErrInvalidInput)
	}
	s.renumber(start)
	return nil
}

func (s *GroupStore) renumber(start int) {
	for i, g := range s.groups {
		g.AdNumber = start + i
	}
}

// BulkReplace sets field to value on every group whose current value equals
// find. It returns the number of groups changed.
func (s *GroupStore) BulkReplace(field, find, value string) (int, error) {
	if !s.ready {
		return 0, ErrNotReady
	}
	if err := validateField(field); err != nil {
		return 0, err
	}

	changed := 0
	if field == FieldOffer {
		from, to := ParseBool(find), ParseBool(value)
		for _, g := range s.groups {
			if g.Offer == from {
				g.Offer = to
				changed++
			}
		}
		return changed, nil
	}

	get := textFields[field]
	for _, g := range s.groups {
		if v := get(g); *v == find {
			*v = value
			changed++
		}
	}
	return changed, nil
}

// BulkApply sets field to value on every listed group. Unknown ids are
// ignored. It returns the number of groups changed.
func (s *GroupStore) BulkApply(groupIDs []string, field, value string) (int, error) {
	if !s.ready {
		return 0, ErrNotReady
	}
	if err := validateField(field); err != nil {
		return 0, err
	}

	selected := make(map[string]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		selected[id] = struct{}{}
	}

	changed := 0
	for _, g := range s.groups {
		if _, ok := selected[g.ID]; !ok {
			continue
		}
		if field == FieldOffer {
			g.Offer = ParseBool(value)
		} else {
			*textFields[field](g) = value
		}
		changed++
	}
	return changed, nil
}

// GroupPatch holds the group fields to overwrite. Nil fields are left alone.
type GroupPatch struct {
	Product           *string `json:"product,omitempty"`
	Angle             *string `json:"angle,omitempty"`
	Hook              *string `json:"hook,omitempty"`
	Creator           *string `json:"creator,omitempty"`
	Offer             *bool   `json:"offer,omitempty"`
	Campaign          *string `json:"campaign,omitempty"`
	Date              *string `json:"date,omitempty"`
	PrimaryText       *string `json:"primary_text,omitempty"`
	Headline          *string `json:"headline,omitempty"`
	Description       *string `json:"description,omitempty"`
	CTA               *string `json:"cta,omitempty"`
	URL               *string `json:"url,omitempty"`
	CommentMediaBuyer *string `json:"comment_media_buyer,omitempty"`
	CommentClient     *string `json:"comment_client,omitempty"`
}

// UpdateGroup merges patch into the group with the given id.
func (s *GroupStore) UpdateGroup(id string, patch GroupPatch) (*models.AdGroup, error) {
	g, err := s.Group(id)
	if err != nil {
		return nil, err
	}

	setString(&g.Product, patch.Product)
	setString(&g.Angle, patch.Angle)
	setString(&g.Hook, patch.Hook)
	setString(&g.Creator, patch.Creator)
	setString(&g.Campaign, patch.Campaign)
	setString(&g.Date, patch.Date)
	setString(&g.PrimaryText, patch.PrimaryText)
	setString(&g.Headline, patch.Headline)
	setString(&g.Description, patch.Description)
	setString(&g.CTA, patch.CTA)
	setString(&g.URL, patch.URL)
	setString(&g.CommentMediaBuyer, patch.CommentMediaBuyer)
	setString(&g.CommentClient, patch.CommentClient)
	if patch.Offer != nil {
		g.Offer = *patch.Offer
	}
	return g, nil
}

// AssetPatch holds the per-card copy to overwrite on a group member.
type AssetPatch struct {
	Headline    *string `json:"headline,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateAsset merges patch into an asset of the given group.
func (s *GroupStore) UpdateAsset(groupID, assetID string, patch AssetPatch) (*models.ProcessedAsset, error) {
	g, err := s.Group(groupID)
	if err != nil {
		return nil, err
	}
	i := g.AssetIndex(assetID)
	if i < 0 {
		return nil, fmt.Errorf("asset %s in group %s: %w", assetID, groupID, ErrNotFound)
	}

	a := g.Assets[i]
	setString(&a.Headline, patch.Headline)
	setString(&a.Description, patch.Description)
	return a, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

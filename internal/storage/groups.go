package storage

import (
	"fmt"
	"time"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
)

// Classifier recomputes a group's type and format token from its members.
type Classifier interface {
	Apply(g *models.AdGroup)
}

// GroupStore is the editable set of ad groups for one session.
//
// It has no internal locking. Callers serialize access, see Session.Do.
// Every mutation validates its arguments before touching state, so a failed
// call leaves the store unchanged.
type GroupStore struct {
	classifier Classifier
	inputs     models.UserInputs
	groups     []*models.AdGroup
	ungrouped  []*models.ProcessedAsset
	ready      bool
}

// NewGroupStore creates an empty store. inputs supplies the start number and
// the campaign and date given to groups created by Regroup; an empty campaign
// or date gets the same default clustering uses.
func NewGroupStore(classifier Classifier, inputs models.UserInputs) *GroupStore {
	return &GroupStore{
		classifier: classifier,
		inputs:     WithDefaults(inputs, time.Now()),
	}
}

// WithDefaults fills an empty campaign and date from now.
func WithDefaults(inputs models.UserInputs, now time.Time) models.UserInputs {
	if inputs.Campaign == "" {
		inputs.Campaign = config.DefaultCampaign(now)
	}
	if inputs.Date == "" {
		inputs.Date = config.DefaultDate(now)
	}
	return inputs
}

// Load replaces the store contents with a clustering result.
func (s *GroupStore) Load(grouped *models.GroupedAssets) {
	s.groups = nil
	s.ungrouped = nil
	if grouped != nil {
		s.groups = append(s.groups, grouped.Groups...)
		s.ungrouped = append(s.ungrouped, grouped.Ungrouped...)
	}
	s.ready = true
}

// Ready reports whether a clustering result has been loaded.
func (s *GroupStore) Ready() bool {
	return s.ready
}

// Inputs returns the session inputs the store was created with.
func (s *GroupStore) Inputs() models.UserInputs {
	return s.inputs
}

// Groups returns the groups in list order. The slice is a copy; the groups
// are shared.
func (s *GroupStore) Groups() []*models.AdGroup {
	return append([]*models.AdGroup(nil), s.groups...)
}

// Ungrouped returns the assets that belong to no group.
func (s *GroupStore) Ungrouped() []*models.ProcessedAsset {
	return append([]*models.ProcessedAsset(nil), s.ungrouped...)
}

// Snapshot returns the current grouping.
func (s *GroupStore) Snapshot() (*models.GroupedAssets, error) {
	if !s.ready {
		return nil, ErrNotReady
	}
	grouped := &models.GroupedAssets{
		Groups:    make([]*models.AdGroup, 0, len(s.groups)),
		Ungrouped: make([]*models.ProcessedAsset, 0, len(s.ungrouped)),
	}
	grouped.Groups = append(grouped.Groups, s.groups...)
	grouped.Ungrouped = append(grouped.Ungrouped, s.ungrouped...)
	return grouped, nil
}

// Group returns the group with the given id.
func (s *GroupStore) Group(id string) (*models.AdGroup, error) {
	if !s.ready {
		return nil, ErrNotReady
	}
	i := s.groupIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	return s.groups[i], nil
}

func (s *GroupStore) groupIndex(id string) int {
	for i, g := range s.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// assetLocation is where an asset currently lives. group is -1 for an
// ungrouped asset.
type assetLocation struct {
	group int
	index int
}

func (s *GroupStore) locate(assetID string) (assetLocation, bool) {
	for gi, g := range s.groups {
		if ai := g.AssetIndex(assetID); ai >= 0 {
			return assetLocation{group: gi, index: ai}, true
		}
	}
	for ui, a := range s.ungrouped {
		if a.ID() == assetID {
			return assetLocation{group: -1, index: ui}, true
		}
	}
	return assetLocation{}, false
}

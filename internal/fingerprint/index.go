package fingerprint

import "github.com/vanha-creative/autonamer/internal/models"

// Index holds the fingerprint of every asset in a session.
type Index struct {
	entries map[string]models.Fingerprint
}

// NewIndex builds an index over the given assets.
func NewIndex(assets []*models.ProcessedAsset) *Index {
	idx := &Index{entries: make(map[string]models.Fingerprint, len(assets))}
	for _, a := range assets {
		idx.Add(a.ID(), a.Fingerprint)
	}
	return idx
}

// Add registers or replaces the fingerprint for an asset id.
func (i *Index) Add(id string, fp models.Fingerprint) {
	i.entries[id] = fp
}

// Get returns the fingerprint for id.
func (i *Index) Get(id string) (models.Fingerprint, bool) {
	fp, ok := i.entries[id]
	return fp, ok
}

// Len returns the number of indexed assets.
func (i *Index) Len() int {
	return len(i.entries)
}

// Reliable reports whether id has a usable fingerprint.
func (i *Index) Reliable(id string) bool {
	fp, ok := i.entries[id]
	return ok && fp.Reliable()
}

// Distance returns the distance between two indexed assets. ok is false when
// either id is unknown or unreliable.
func (i *Index) Distance(a, b string) (float64, bool) {
	fa, okA := i.entries[a]
	fb, okB := i.entries[b]
	if !okA || !okB {
		return 0, false
	}
	return Distance(fa, fb)
}

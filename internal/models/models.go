package models

// AssetKind distinguishes still images from videos
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
)

// Placement is the ad surface an asset was most likely exported for
type Placement string

const (
	PlacementStory     Placement = "story"
	PlacementFeed      Placement = "feed"
	PlacementSquare    Placement = "square"
	PlacementLandscape Placement = "landscape"
)

// Asset represents one raw creative file returned by a source
type Asset struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Path string    `json:"path"`
	Kind AssetKind `json:"asset_type"`
	Size int64     `json:"size"`
}

// AssetMetadata holds dimensions and duration of an asset.
// Degraded is set when the values are placeholders.
type AssetMetadata struct {
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	AspectRatio    float64  `json:"aspect_ratio"`
	Duration       *float64 `json:"duration,omitempty"`
	Degraded       bool     `json:"degraded,omitempty"`
	DegradedReason string   `json:"degraded_reason,omitempty"`
}

// Fingerprint is an opaque perceptual fingerprint. An empty fingerprint
// means extraction failed and the asset cannot be compared visually.
type Fingerprint struct {
	Hashes []uint64 `json:"hashes,omitempty"`
}

// Reliable reports whether the fingerprint can be used for distance queries
func (f Fingerprint) Reliable() bool {
	return len(f.Hashes) > 0
}

// ProcessedAsset is an asset plus everything derived from it during analysis
type ProcessedAsset struct {
	Asset        Asset         `json:"asset"`
	Metadata     AssetMetadata `json:"metadata"`
	Placement    Placement     `json:"placement"`
	OCRText      string        `json:"ocr_text"`
	Fingerprint  Fingerprint   `json:"fingerprint"`
	FramePaths   []string      `json:"frame_paths,omitempty"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`

	// Per-card copy, only meaningful for carousel members
	Headline    string `json:"headline,omitempty"`
	Description string `json:"description,omitempty"`
}

// ID is shorthand for the underlying asset id
func (p *ProcessedAsset) ID() string {
	return p.Asset.ID
}

// UserInputs are the per-session parameters that seed default field values
type UserInputs struct {
	Client      string `json:"client"`
	Campaign    string `json:"campaign,omitempty"`
	StartNumber int    `json:"start_number"`
	Date        string `json:"date,omitempty"`
	FolderPath  string `json:"folder_path"`
}

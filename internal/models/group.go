package models

// GroupType is the ad format implied by a group's membership
type GroupType string

const (
	GroupSingle   GroupType = "single"
	GroupStandard GroupType = "standard"
	GroupCarousel GroupType = "carousel"
)

// ConfidenceScores holds one advisory score in [0,1] per inferred field
type ConfidenceScores struct {
	Group   float64 `json:"group"`
	Product float64 `json:"product"`
	Angle   float64 `json:"angle"`
	Offer   float64 `json:"offer"`
}

// AdGroup is a cluster of assets representing one ad concept
type AdGroup struct {
	ID          string            `json:"id"`
	Assets      []*ProcessedAsset `json:"assets"`
	GroupType   GroupType         `json:"group_type"`
	AdNumber    int               `json:"ad_number"`
	FormatToken string            `json:"format_token"`

	Campaign string `json:"campaign"`
	Date     string `json:"date"`
	Product  string `json:"product"`
	Angle    string `json:"angle"`
	Hook     string `json:"hook"`
	Creator  string `json:"creator"`
	Offer    bool   `json:"offer"`

	Confidence ConfidenceScores `json:"confidence"`

	// Copy fields are entered by people and never inferred
	PrimaryText       string `json:"primary_text"`
	Headline          string `json:"headline"`
	Description       string `json:"description"`
	CTA               string `json:"cta"`
	URL               string `json:"url"`
	CommentMediaBuyer string `json:"comment_media_buyer"`
	CommentClient     string `json:"comment_client"`
}

// AssetIndex returns the position of an asset in the group, or -1
func (g *AdGroup) AssetIndex(assetID string) int {
	for i, a := range g.Assets {
		if a.ID() == assetID {
			return i
		}
	}
	return -1
}

// GroupedAssets is the session-level clustering result
type GroupedAssets struct {
	Groups    []*AdGroup        `json:"groups"`
	Ungrouped []*ProcessedAsset `json:"ungrouped"`
}

// ExportRow is one line of the export projection, one per member asset
type ExportRow struct {
	FileID            string  `json:"file_id" parquet:"file_id"`
	OldName           string  `json:"old_name" parquet:"old_name"`
	NewName           string  `json:"new_name" parquet:"new_name"`
	GroupID           string  `json:"group_id" parquet:"group_id"`
	GroupType         string  `json:"group_type" parquet:"group_type"`
	PlacementInferred string  `json:"placement_inferred" parquet:"placement_inferred"`
	ConfidenceGroup   float64 `json:"confidence_group" parquet:"confidence_group"`
	ConfidenceProduct float64 `json:"confidence_product" parquet:"confidence_product"`
	ConfidenceAngle   float64 `json:"confidence_angle" parquet:"confidence_angle"`
	ConfidenceOffer   float64 `json:"confidence_offer" parquet:"confidence_offer"`
}

package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vanha-creative/autonamer/internal/models"
)

func testGroups() []*models.AdGroup {
	return []*models.AdGroup{
		{
			ID:          "g1",
			AdNumber:    3,
			GroupType:   models.GroupStandard,
			FormatToken: "Feed",
			Campaign:    "JanAds",
			Product:     "Widget",
			Angle:       "Offer",
			Offer:       true,
			Date:        "2024.01.15",
			Confidence:  models.ConfidenceScores{Group: 0.81234, Product: 0.95, Angle: 0.51428, Offer: 0.9},
			Assets: []*models.ProcessedAsset{
				{Asset: models.Asset{ID: "a1", Name: "promo_9x16.mp4"}, Placement: models.PlacementStory},
				{Asset: models.Asset{ID: "a2", Name: "promo_4x5.mp4"}, Placement: models.PlacementFeed},
			},
		},
		{
			ID:          "g2",
			AdNumber:    4,
			GroupType:   models.GroupSingle,
			FormatToken: "Square",
			Campaign:    "JanAds",
			Date:        "2024.01.15",
			Confidence:  models.ConfidenceScores{Group: 1},
			Assets: []*models.ProcessedAsset{
				{Asset: models.Asset{ID: "b1", Name: "still.png"}, Placement: models.PlacementSquare},
			},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(testGroups())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	want := models.ExportRow{
		FileID:            "a2",
		OldName:           "promo_4x5.mp4",
		NewName:           "003_JanAds_Widget_Feed_Offer_Yes_2024.01.15",
		GroupID:           "g1",
		GroupType:         "standard",
		PlacementInferred: "feed",
		ConfidenceGroup:   0.812,
		ConfidenceProduct: 0.95,
		ConfidenceAngle:   0.514,
		ConfidenceOffer:   0.9,
	}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row = %+v\nwant %+v", rows[1], want)
	}
	if rows[0].NewName != rows[1].NewName {
		t.Error("members of one group should share the new name")
	}
	if rows[2].NewName != "004_JanAds__Square__No_2024.01.15" {
		t.Errorf("unexpected name %q", rows[2].NewName)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Rows(testGroups())); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0], Header) {
		t.Errorf("header = %v", records[0])
	}
	wantFirst := []string{"a1", "promo_9x16.mp4", "003_JanAds_Widget_Feed_Offer_Yes_2024.01.15", "g1", "standard", "story", "0.812", "0.95", "0.514", "0.9"}
	if !reflect.DeepEqual(records[1], wantFirst) {
		t.Errorf("first row = %v", records[1])
	}
	if records[3][6] != "1" || records[3][7] != "0" {
		t.Errorf("single group scores = %v", records[3][6:])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 1 {
		t.Errorf("expected header only, got %d records", len(records))
	}
}

func TestParquetRoundTrip(t *testing.T) {
	rows := Rows(testGroups())
	path := filepath.Join(t.TempDir(), "names.parquet")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteParquet(f, rows); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rows)
	}
}

func TestReadParquetMissingFile(t *testing.T) {
	if _, err := ReadParquet(filepath.Join(t.TempDir(), "nope.parquet")); err == nil {
		t.Error("expected error for missing file")
	}
}

// Package export projects ad groups into per-asset rename rows and writes
// them as CSV or Parquet.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/naming"
)

// Header is the CSV column order.
var Header = []string{
	"file_id",
	"old_name",
	"new_name",
	"group_id",
	"group_type",
	"placement_inferred",
	"confidence_group",
	"confidence_product",
	"confidence_angle",
	"confidence_offer",
}

// Rows returns one row per member asset, in group then member order.
func Rows(groups []*models.AdGroup) []models.ExportRow {
	var rows []models.ExportRow
	for _, g := range groups {
		newName := naming.Filename(g)
		for _, a := range g.Assets {
			rows = append(rows, models.ExportRow{
				FileID:            a.Asset.ID,
				OldName:           a.Asset.Name,
				NewName:           newName,
				GroupID:           g.ID,
				GroupType:         string(g.GroupType),
				PlacementInferred: string(a.Placement),
				ConfidenceGroup:   round3(g.Confidence.Group),
				ConfidenceProduct: round3(g.Confidence.Product),
				ConfidenceAngle:   round3(g.Confidence.Angle),
				ConfidenceOffer:   round3(g.Confidence.Offer),
			})
		}
	}
	return rows
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.FileID,
			r.OldName,
			r.NewName,
			r.GroupID,
			r.GroupType,
			r.PlacementInferred,
			formatScore(r.ConfidenceGroup),
			formatScore(r.ConfidenceProduct),
			formatScore(r.ConfidenceAngle),
			formatScore(r.ConfidenceOffer),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", r.FileID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteParquet writes rows as a single Parquet file.
func WriteParquet(w io.Writer, rows []models.ExportRow) error {
	writer := parquet.NewGenericWriter[models.ExportRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet loads export rows back from a Parquet file.
func ReadParquet(path string) ([]models.ExportRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[models.ExportRow](pf)
	defer reader.Close()

	var records []models.ExportRow
	batch := make([]models.ExportRow, 128)
	for {
		n, err := reader.Read(batch)
		records = append(records, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Read export rows", "path", path, "rows", len(records))
	return records, nil
}

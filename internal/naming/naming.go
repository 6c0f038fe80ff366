// Package naming renders the standardized ad filename.
package naming

import (
	"fmt"

	"github.com/vanha-creative/autonamer/internal/models"
)

// Filename returns the name for g in the form
// {AdNumber:000}_{Campaign}_{Product}_{Format}_{Angle}_{Yes|No}_{Date}.
func Filename(g *models.AdGroup) string {
	return fmt.Sprintf("%03d_%s_%s_%s_%s_%s_%s",
		g.AdNumber, g.Campaign, g.Product, g.FormatToken, g.Angle, YesNo(g.Offer), g.Date)
}

// YesNo is the offer token.
func YesNo(offer bool) string {
	if offer {
		return "Yes"
	}
	return "No"
}

// Filenames maps each group id to its filename.
func Filenames(groups []*models.AdGroup) map[string]string {
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = Filename(g)
	}
	return names
}

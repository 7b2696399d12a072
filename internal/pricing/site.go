package pricing

import (
	"strings"

	"pazaryeri/internal/models"
)

// SiteAverage averages the prices of listings whose titles share a keyword
// with title. With no similar listing it averages all of them.
func SiteAverage(title string, listings []models.Listing) (float64, int) {
	priced := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Price != nil {
			priced = append(priced, l)
		}
	}
	if len(priced) == 0 {
		return 0, 0
	}

	keywords := strings.Fields(Fold(title))
	var similar []models.Listing
	for _, l := range priced {
		lt := Fold(l.Title)
		for _, k := range keywords {
			if strings.Contains(lt, k) {
				similar = append(similar, l)
				break
			}
		}
	}
	if len(similar) == 0 {
		similar = priced
	}

	var total float64
	for _, l := range similar {
		total += *l.Price
	}
	return total / float64(len(similar)), len(similar)
}

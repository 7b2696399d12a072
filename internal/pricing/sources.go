package pricing

import (
	"strings"

	"pazaryeri/internal/config"
	"pazaryeri/internal/models"
)

const fallbackSourceName = "Web"

// SearchHit is one page a search answer was grounded on.
type SearchHit struct {
	URL  string
	Date string
}

// WebAnswer is the raw reply of a search-augmented completion.
type WebAnswer struct {
	Text string
	Hits []SearchHit
	Raw  string
}

// ClassifySources names each hit after the first site whose fragment appears in its URL.
func ClassifySources(hits []SearchHit, sites []config.SourceSite) []models.SnapshotSource {
	out := make([]models.SnapshotSource, 0, len(hits))
	for _, h := range hits {
		name := fallbackSourceName
		lower := strings.ToLower(h.URL)
		for _, s := range sites {
			if s.Match != "" && strings.Contains(lower, strings.ToLower(s.Match)) {
				name = s.Name
				break
			}
		}
		out = append(out, models.SnapshotSource{Name: name, URL: h.URL, Date: h.Date})
	}
	return out
}

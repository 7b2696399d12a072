package models

import "time"

// SnapshotSource is one provenance record of a cached market price.
type SnapshotSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Date string `json:"date,omitempty"`
}

// MarketPriceSnapshot caches a web-searched price range per product key.
// A snapshot is fresh while now < ExpiresAt.
type MarketPriceSnapshot struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	ProductKey    string           `json:"product_key" gorm:"uniqueIndex;size:255;not null"`
	OriginalTitle string           `json:"original_title" gorm:"size:255"`
	Category      string           `json:"category" gorm:"index;size:100"`
	Condition     string           `json:"condition" gorm:"size:50"`
	MinPrice      float64          `json:"min_price" gorm:"default:0"`
	MaxPrice      float64          `json:"max_price" gorm:"default:0"`
	AvgPrice      float64          `json:"avg_price" gorm:"default:0"`
	Confidence    float64          `json:"confidence" gorm:"default:0"`
	Sources       []SnapshotSource `json:"sources" gorm:"serializer:json;type:text"`
	QueryCount    int64            `json:"query_count" gorm:"index;default:0"`
	ExpiresAt     time.Time        `json:"expires_at" gorm:"index"`
	LastUpdatedAt *time.Time       `json:"last_updated_at"`
	RawResponse   string           `json:"-" gorm:"type:text"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (s *MarketPriceSnapshot) IsFresh(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// HasPrice reports whether the snapshot carries a usable range.
func (s *MarketPriceSnapshot) HasPrice() bool {
	return s.AvgPrice > 0
}

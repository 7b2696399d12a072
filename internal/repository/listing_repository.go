package repository

import (
	"context"
	"strings"
	"time"

	"pazaryeri/internal/models"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

const (
	DefaultListingLimit = 20
	MaxListingLimit     = 100
)

// ListingFilter narrows the active listing feed. Zero values mean "no filter".
type ListingFilter struct {
	Categories  []string
	MinPrice    *float64
	MaxPrice    *float64
	Location    string
	Conditions  []string
	PremiumOnly bool
	Since       *time.Time
	Search      string
	Limit       int
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// GetFiltered returns active listings matching f, newest first.
func (r *ListingRepository) GetFiltered(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	q := r.db.WithContext(ctx).Where("status = ?", models.ListingStatusActive)

	if cats := nonEmpty(f.Categories, "all"); len(cats) > 0 {
		q = q.Where(map[string]any{"category": cats})
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("LOWER(location) LIKE ?", likePattern(loc))
	}
	if conds := nonEmpty(f.Conditions, ""); len(conds) > 0 {
		q = q.Where(map[string]any{"condition": conds})
	}
	if f.PremiumOnly {
		q = q.Where("is_premium = ?", true)
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", *f.Since)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", p, p)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListingLimit
	}
	if limit > MaxListingLimit {
		limit = MaxListingLimit
	}

	var listings []models.Listing
	if err := q.Order("created_at DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, eris.Wrap(err, "query listings")
	}
	return listings, nil
}

// GetByID returns an active listing.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	var l models.Listing
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.ListingStatusActive).
		First(&l).Error
	if err != nil {
		return nil, notFound(err, "get listing "+id)
	}
	return &l, nil
}

// PricedInCategory returns active listings of a category that carry a price.
func (r *ListingRepository) PricedInCategory(ctx context.Context, category string) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Select("id", "title", "price", "condition").
		Where("category = ? AND status = ? AND price IS NOT NULL", category, models.ListingStatusActive).
		Find(&listings).Error
	if err != nil {
		return nil, eris.Wrapf(err, "priced listings in %s", category)
	}
	return listings, nil
}

// SinceFor maps the feed's date range names to a lower bound on created_at.
func SinceFor(dateRange string, now time.Time) *time.Time {
	var t time.Time
	switch dateRange {
	case "today":
		y, m, d := now.Date()
		t = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "week":
		t = now.AddDate(0, 0, -7)
	case "month":
		t = now.AddDate(0, -1, 0)
	default:
		return nil
	}
	return &t
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func nonEmpty(values []string, skip string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && v != skip {
			out = append(out, v)
		}
	}
	return out
}

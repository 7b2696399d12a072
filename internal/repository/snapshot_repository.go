package repository

import (
	"context"
	"time"

	"pazaryeri/internal/models"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotSeed identifies a product the first time it is priced.
type SnapshotSeed struct {
	ProductKey string
	Title      string
	Category   string
	Condition  string
}

// SnapshotUpdate is the result of a successful web-search lookup.
type SnapshotUpdate struct {
	MinPrice    float64
	MaxPrice    float64
	AvgPrice    float64
	Confidence  float64
	Sources     []models.SnapshotSource
	ExpiresAt   time.Time
	UpdatedAt   time.Time
	RawResponse string
}

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Touch records a lookup of seed.ProductKey and returns the current row.
// Unknown keys are created as already-expired placeholders so the refresher
// picks them up even if the live lookup fails.
func (r *SnapshotRepository) Touch(ctx context.Context, seed SnapshotSeed, now time.Time) (*models.MarketPriceSnapshot, error) {
	var snap models.MarketPriceSnapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placeholder := models.MarketPriceSnapshot{
			ProductKey:    seed.ProductKey,
			OriginalTitle: seed.Title,
			Category:      seed.Category,
			Condition:     seed.Condition,
			ExpiresAt:     now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_key"}},
			DoNothing: true,
		}).Create(&placeholder).Error; err != nil {
			return eris.Wrap(err, "create placeholder")
		}

		if err := tx.Model(&models.MarketPriceSnapshot{}).
			Where("product_key = ?", seed.ProductKey).
			UpdateColumn("query_count", gorm.Expr("query_count + ?", 1)).Error; err != nil {
			return eris.Wrap(err, "increment query_count")
		}

		return tx.Where("product_key = ?", seed.ProductKey).First(&snap).Error
	})
	if err != nil {
		return nil, notFound(err, "touch snapshot "+seed.ProductKey)
	}
	return &snap, nil
}

// FindByKey returns the snapshot without counting a lookup.
func (r *SnapshotRepository) FindByKey(ctx context.Context, key string) (*models.MarketPriceSnapshot, error) {
	var snap models.MarketPriceSnapshot
	if err := r.db.WithContext(ctx).Where("product_key = ?", key).First(&snap).Error; err != nil {
		return nil, notFound(err, "find snapshot "+key)
	}
	return &snap, nil
}

// ApplyRefresh overwrites the price fields of key. Concurrent writers race;
// the last one wins.
func (r *SnapshotRepository) ApplyRefresh(ctx context.Context, key string, u SnapshotUpdate) error {
	updatedAt := u.UpdatedAt
	res := r.db.WithContext(ctx).Model(&models.MarketPriceSnapshot{}).
		Where("product_key = ?", key).
		Select("min_price", "max_price", "avg_price", "confidence", "sources", "expires_at", "last_updated_at", "raw_response").
		Updates(&models.MarketPriceSnapshot{
			MinPrice:      u.MinPrice,
			MaxPrice:      u.MaxPrice,
			AvgPrice:      u.AvgPrice,
			Confidence:    u.Confidence,
			Sources:       u.Sources,
			ExpiresAt:     u.ExpiresAt,
			LastUpdatedAt: &updatedAt,
			RawResponse:   u.RawResponse,
		})
	if res.Error != nil {
		return eris.Wrapf(res.Error, "update snapshot %s", key)
	}
	if res.RowsAffected == 0 {
		return eris.Wrapf(ErrNotFound, "update snapshot %s", key)
	}
	return nil
}

// FindStale returns expired snapshots, most queried first.
func (r *SnapshotRepository) FindStale(ctx context.Context, now time.Time, limit int) ([]models.MarketPriceSnapshot, error) {
	var snaps []models.MarketPriceSnapshot
	err := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Order("query_count DESC").
		Limit(limit).
		Find(&snaps).Error
	if err != nil {
		return nil, eris.Wrap(err, "find stale snapshots")
	}
	return snaps, nil
}

// DeleteCold removes snapshots that expired before cutoff and were never queried.
func (r *SnapshotRepository) DeleteCold(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? AND query_count = ?", cutoff, 0).
		Delete(&models.MarketPriceSnapshot{})
	if res.Error != nil {
		return 0, eris.Wrap(res.Error, "delete cold snapshots")
	}
	return res.RowsAffected, nil
}

// All returns every snapshot ordered by popularity, for exports.
func (r *SnapshotRepository) All(ctx context.Context) ([]models.MarketPriceSnapshot, error) {
	var snaps []models.MarketPriceSnapshot
	if err := r.db.WithContext(ctx).Order("query_count DESC, product_key").Find(&snaps).Error; err != nil {
		return nil, eris.Wrap(err, "list snapshots")
	}
	return snaps, nil
}

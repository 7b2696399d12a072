package repository

import (
	"context"
	"errors"
	"time"

	"pazaryeri/internal/models"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

type RateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Hit counts one request for userID in a fixed window and returns
// ErrRateLimited once limit requests were already made in the window.
func (r *RateLimitRepository) Hit(ctx context.Context, userID string, limit int, window time.Duration, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rl models.RateLimit
		err := tx.Where("user_id = ?", userID).First(&rl).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rl = models.RateLimit{UserID: userID, WindowStart: now}
			if err := tx.Create(&rl).Error; err != nil {
				return eris.Wrap(err, "create rate limit")
			}
		} else if err != nil {
			return eris.Wrap(err, "load rate limit")
		}

		if now.Sub(rl.WindowStart) >= window {
			rl.RequestCount = 0
			rl.WindowStart = now
		}
		if rl.RequestCount >= limit {
			return eris.Wrapf(ErrRateLimited, "user %s: %d requests since %s", userID, rl.RequestCount, rl.WindowStart.Format(time.RFC3339))
		}

		rl.RequestCount++
		rl.LastRequestAt = now
		return eris.Wrap(tx.Save(&rl).Error, "save rate limit")
	})
}

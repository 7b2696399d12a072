package repository

import (
	"context"
	"time"

	"pazaryeri/internal/models"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithProfile inserts the user, its profile, security row and rate
// limit row atomically. A taken phone number yields ErrDuplicate.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile, sec *models.UserSecurity, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("phone = ?", user.Phone).Count(&count).Error; err != nil {
			return eris.Wrap(err, "check phone")
		}
		if count > 0 {
			return eris.Wrapf(ErrDuplicate, "phone %s", user.Phone)
		}

		if err := tx.Create(user).Error; err != nil {
			return eris.Wrap(err, "create user")
		}
		if err := tx.Create(profile).Error; err != nil {
			return eris.Wrap(err, "create profile")
		}
		if err := tx.Create(sec).Error; err != nil {
			return eris.Wrap(err, "create user security")
		}
		limit := models.RateLimit{UserID: user.ID, WindowStart: now, LastRequestAt: now}
		if err := tx.Create(&limit).Error; err != nil {
			return eris.Wrap(err, "create rate limit")
		}
		return nil
	})
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error; err != nil {
		return nil, notFound(err, "find user by phone")
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err, "find user "+id)
	}
	return &u, nil
}

func (r *UserRepository) Security(ctx context.Context, userID string) (*models.UserSecurity, error) {
	var s models.UserSecurity
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, notFound(err, "find security for "+userID)
	}
	return &s, nil
}

// RecordFailedAttempt bumps the failure counter and locks the account once it
// reaches maxAttempts. It returns the new counter and lock state.
func (r *UserRepository) RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int) (int, bool, error) {
	var sec models.UserSecurity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserSecurity{}).
			Where("user_id = ?", userID).
			UpdateColumn("failed_attempts", gorm.Expr("failed_attempts + ?", 1)).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).First(&sec).Error; err != nil {
			return err
		}
		if sec.FailedAttempts >= maxAttempts && !sec.IsLocked {
			sec.IsLocked = true
			return tx.Model(&models.UserSecurity{}).
				Where("user_id = ?", userID).
				Update("is_locked", true).Error
		}
		return nil
	})
	if err != nil {
		return 0, false, notFound(err, "record failed attempt")
	}
	return sec.FailedAttempts, sec.IsLocked, nil
}

// RecordLogin resets the failure counter and stores the new session id.
func (r *UserRepository) RecordLogin(ctx context.Context, userID, sessionID string, expiresAt, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.UserSecurity{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"failed_attempts":    0,
			"last_login_at":      now,
			"session_token":      sessionID,
			"session_expires_at": expiresAt,
		}).Error
	return eris.Wrap(err, "record login")
}

// ClearSession drops the stored session id so outstanding tokens stop verifying.
func (r *UserRepository) ClearSession(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Model(&models.UserSecurity{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"session_token": "", "session_expires_at": nil}).Error
	return eris.Wrap(err, "clear session")
}

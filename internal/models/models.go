package models

import (
	"time"
)

// User represents a registered marketplace member
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Phone     string    `json:"phone" gorm:"uniqueIndex;size:20;not null"`
	Email     string    `json:"email" gorm:"size:255"`
	Name      string    `json:"name" gorm:"size:255"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the public face of a user
type Profile struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"` // same as users.id
	Phone       string    `json:"phone" gorm:"size:20"`
	Email       string    `json:"email" gorm:"size:255"`
	FullName    string    `json:"full_name" gorm:"size:255"`
	DisplayName string    `json:"display_name" gorm:"size:255"`
	UserRole    string    `json:"user_role" gorm:"size:20;default:'buyer'"` // buyer, seller, admin
	IsVerified  bool      `json:"is_verified"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserSecurity stores the hashed PIN, lockout state and the current session id
type UserSecurity struct {
	UserID           string     `json:"user_id" gorm:"primaryKey;size:36"`
	PinHash          string     `json:"-" gorm:"size:100;not null"`
	FailedAttempts   int        `json:"failed_attempts" gorm:"default:0"`
	IsLocked         bool       `json:"is_locked" gorm:"default:false"`
	LastLoginAt      *time.Time `json:"last_login_at"`
	SessionToken     string     `json:"-" gorm:"size:36;index"` // jti of the active session
	SessionExpiresAt *time.Time `json:"session_expires_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (UserSecurity) TableName() string {
	return "user_security"
}

// RateLimit is a fixed-window request counter per user
type RateLimit struct {
	UserID        string    `json:"user_id" gorm:"primaryKey;size:36"`
	RequestCount  int       `json:"request_count" gorm:"default:0"`
	WindowStart   time.Time `json:"window_start"`
	LastRequestAt time.Time `json:"last_request_at"`
}

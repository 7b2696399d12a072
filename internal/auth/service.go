// Package auth implements phone + PIN accounts and JWT sessions.
package auth

import (
	"context"
	"strings"
	"time"

	"pazaryeri/internal/models"
	"pazaryeri/internal/repository"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MaxFailedAttempts locks an account on the fifth wrong PIN.
const MaxFailedAttempts = 5

type UserStore interface {
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile, sec *models.UserSecurity, now time.Time) error
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Security(ctx context.Context, userID string) (*models.UserSecurity, error)
	RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int) (int, bool, error)
	RecordLogin(ctx context.Context, userID, sessionID string, expiresAt, now time.Time) error
	ClearSession(ctx context.Context, userID string) error
}

type RegisterInput struct {
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`
	Name  string `json:"name" binding:"required"`
	PIN   string `json:"pin" binding:"required"`
}

type UserView struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	users    UserStore
	sessions *Sessions
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(users UserStore, sessions *Sessions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, sessions: sessions, logger: logger, now: time.Now}
}

// Register creates the account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*UserView, *Session, error) {
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, ErrNameRequired
	}
	hash, err := HashPIN(in.PIN)
	if err != nil {
		return nil, nil, err
	}

	id := uuid.NewString()
	email := strings.TrimSpace(in.Email)
	user := &models.User{ID: id, Phone: phone, Email: email, Name: name, IsActive: true}
	profile := &models.Profile{
		ID:          id,
		Phone:       phone,
		Email:       email,
		FullName:    name,
		DisplayName: name,
		UserRole:    "buyer",
		IsActive:    true,
	}
	sec := &models.UserSecurity{UserID: id, PinHash: hash}

	if err := s.users.CreateWithProfile(ctx, user, profile, sec, s.now()); err != nil {
		if eris.Is(err, repository.ErrDuplicate) {
			return nil, nil, eris.Wrap(ErrPhoneTaken, phone)
		}
		s.logger.Error("register failed", zap.String("action", "register"), zap.Error(err))
		return nil, nil, eris.Wrap(err, "register")
	}
	s.logger.Info("user registered", zap.String("user_id", id))

	session, err := s.startSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return view(user), session, nil
}

// Login checks the PIN. Wrong PINs count towards the lock; the fifth one
// locks the account and later attempts fail with ErrLocked.
func (s *Service) Login(ctx context.Context, rawPhone, pin string) (*UserView, *Session, error) {
	log := s.logger.With(zap.String("action", "login"))

	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if eris.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	log = log.With(zap.String("user_id", user.ID))

	sec, err := s.users.Security(ctx, user.ID)
	if err != nil {
		if eris.Is(err, repository.ErrNotFound) {
			log.Error("security record missing")
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	if sec.IsLocked {
		return nil, nil, ErrLocked
	}

	if !CheckPIN(sec.PinHash, pin) {
		attempts, locked, err := s.users.RecordFailedAttempt(ctx, user.ID, MaxFailedAttempts)
		if err != nil {
			return nil, nil, err
		}
		log.Warn("wrong pin", zap.Int("failed_attempts", attempts), zap.Bool("locked", locked))
		remaining := MaxFailedAttempts - attempts
		if locked || remaining < 0 {
			remaining = 0
		}
		return nil, nil, &InvalidPINError{Remaining: remaining}
	}

	session, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	log.Info("login succeeded")
	return view(user), session, nil
}

// Verify resolves a session token to its user. The token must match the
// session stored for the user and the user must be active.
func (s *Service) Verify(ctx context.Context, token string) (*UserView, error) {
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, err
	}

	sec, err := s.users.Security(ctx, claims.Subject)
	if err != nil {
		return nil, eris.Wrap(ErrInvalidSession, "no security record")
	}
	if sec.IsLocked {
		return nil, ErrLocked
	}
	if sec.SessionToken != claims.ID {
		return nil, eris.Wrap(ErrInvalidSession, "session replaced")
	}
	if sec.SessionExpiresAt != nil && !s.now().Before(*sec.SessionExpiresAt) {
		return nil, eris.Wrap(ErrInvalidSession, "session expired")
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil || !user.IsActive {
		return nil, eris.Wrap(ErrInvalidSession, "user inactive")
	}
	return view(user), nil
}

// Logout ends the user's current session.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.users.ClearSession(ctx, userID)
}

func (s *Service) startSession(ctx context.Context, userID string) (*Session, error) {
	token, sessionID, expiresAt, err := s.sessions.Issue(userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.RecordLogin(ctx, userID, sessionID, expiresAt, s.now()); err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

func view(u *models.User) *UserView {
	return &UserView{ID: u.ID, Phone: u.Phone, Name: u.Name, Email: u.Email}
}

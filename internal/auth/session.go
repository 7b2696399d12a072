package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Claims carry the user id in sub and the session id in jti.
type Claims struct {
	jwt.RegisteredClaims
}

// Sessions issues and parses HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a new token for userID and returns it with its session id and expiry.
func (s *Sessions) Issue(userID string) (token, sessionID string, expiresAt time.Time, err error) {
	now := s.now()
	sessionID = uuid.NewString()
	expiresAt = now.Add(s.ttl)

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", time.Time{}, eris.Wrap(err, "sign session token")
	}
	return token, sessionID, expiresAt, nil
}

// Parse checks signature, algorithm and expiry.
func (s *Sessions) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, eris.Wrap(ErrInvalidSession, "parse token")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, eris.Wrap(ErrInvalidSession, "token without subject or id")
	}
	return claims, nil
}

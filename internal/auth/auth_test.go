package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pazaryeri/internal/database"
	"pazaryeri/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	pinCost = bcrypt.MinCost
	gin.SetMode(gin.TestMode)
}

func TestNormalizePhone(t *testing.T) {
	valid := []string{
		"05321112233",
		"5321112233",
		"905321112233",
		"+905321112233",
		"+90 (532) 111-22-33",
		" 0532 111 22 33 ",
	}
	for _, in := range valid {
		got, err := NormalizePhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, "+905321112233", got, in)
	}

	for _, in := range []string{"", "12345", "02121112233", "+15551234567", "0532abc2233", "905321112233444"} {
		_, err := NormalizePhone(in)
		assert.True(t, eris.Is(err, ErrInvalidPhone), in)
	}
}

func TestPIN(t *testing.T) {
	for _, pin := range []string{"123", "1234567", "12a4", "", "12 34"} {
		assert.ErrorIs(t, ValidatePIN(pin), ErrInvalidPINFormat, pin)
	}
	for _, pin := range []string{"1234", "12345", "123456"} {
		assert.NoError(t, ValidatePIN(pin), pin)
	}

	hash, err := HashPIN("4821")
	require.NoError(t, err)
	assert.NotEqual(t, "4821", hash)
	assert.True(t, CheckPIN(hash, "4821"))
	assert.False(t, CheckPIN(hash, "4822"))

	_, err = HashPIN("12")
	assert.ErrorIs(t, err, ErrInvalidPINFormat)
}

func TestSessions(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s := NewSessions("secret", time.Hour)
	s.now = func() time.Time { return now }

	token, sid, exp, err := s.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, sid, claims.ID)

	other := NewSessions("other", time.Hour)
	other.now = s.now
	_, err = other.Parse(token)
	assert.True(t, eris.Is(err, ErrInvalidSession))

	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = s.Parse(token)
	assert.True(t, eris.Is(err, ErrInvalidSession))

	_, err = s.Parse("not-a-token")
	assert.True(t, eris.Is(err, ErrInvalidSession))
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	return NewService(repository.NewUserRepository(db), NewSessions("test-secret", time.Hour), nil)
}

func TestService_RegisterAndVerify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, session, err := svc.Register(ctx, RegisterInput{Phone: "0532 111 22 33", Name: " Ayşe ", Email: "ayse@example.com", PIN: "4821"})
	require.NoError(t, err)
	assert.Equal(t, "+905321112233", user.Phone)
	assert.Equal(t, "Ayşe", user.Name)
	require.NotEmpty(t, session.Token)

	got, err := svc.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, _, err = svc.Register(ctx, RegisterInput{Phone: "+905321112233", Name: "Başka", PIN: "1111"})
	assert.True(t, eris.Is(err, ErrPhoneTaken))

	_, _, err = svc.Register(ctx, RegisterInput{Phone: "5330000000", Name: "", PIN: "1111"})
	assert.True(t, eris.Is(err, ErrNameRequired))

	_, _, err = svc.Register(ctx, RegisterInput{Phone: "5330000000", Name: "Ali", PIN: "11"})
	assert.True(t, eris.Is(err, ErrInvalidPINFormat))
}

func TestService_LoginReplacesSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, first, err := svc.Register(ctx, RegisterInput{Phone: "5321112233", Name: "Ali", PIN: "123456"})
	require.NoError(t, err)

	user, second, err := svc.Login(ctx, "+90 532 111 22 33", "123456")
	require.NoError(t, err)
	assert.Equal(t, "Ali", user.Name)

	_, err = svc.Verify(ctx, first.Token)
	assert.True(t, eris.Is(err, ErrInvalidSession))
	_, err = svc.Verify(ctx, second.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))
	_, err = svc.Verify(ctx, second.Token)
	assert.True(t, eris.Is(err, ErrInvalidSession))
}

func TestService_LoginLockout(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Phone: "5321112233", Name: "Ali", PIN: "1234"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "5559998877", "1234")
	assert.ErrorIs(t, err, ErrUserNotFound)

	for want := 4; want >= 0; want-- {
		_, _, err := svc.Login(ctx, "5321112233", "0000")
		var pinErr *InvalidPINError
		require.True(t, errors.As(err, &pinErr), "got %v", err)
		assert.Equal(t, want, pinErr.Remaining)
		assert.ErrorIs(t, err, ErrInvalidPIN)
	}

	_, _, err = svc.Login(ctx, "5321112233", "1234")
	assert.ErrorIs(t, err, ErrLocked)
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token string) (*UserView, error) {
	if token == "good" {
		return &UserView{ID: "u1", Name: "Ali"}, nil
	}
	return nil, ErrInvalidSession
}

func TestMiddleware(t *testing.T) {
	r := gin.New()
	handler := func(c *gin.Context) {
		if u, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, u.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	}
	r.GET("/private", RequireAuth(fakeVerifier{}), handler)
	r.GET("/public", OptionalAuth(fakeVerifier{}), handler)

	tests := []struct {
		path   string
		header string
		code   int
		body   string
	}{
		{"/private", "", http.StatusUnauthorized, ""},
		{"/private", "Bearer bad", http.StatusUnauthorized, ""},
		{"/private", "Bearer good", http.StatusOK, "u1"},
		{"/public", "", http.StatusOK, "anonymous"},
		{"/public", "Bearer bad", http.StatusOK, "anonymous"},
		{"/public", "Bearer good", http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

package repository

import (
	"context"
	"testing"
	"time"

	"pazaryeri/internal/database"
	"pazaryeri/internal/models"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return testNow },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func price(v float64) *float64 { return &v }
func str(s string) *string     { return &s }

func seedListing(t *testing.T, db *gorm.DB, l models.Listing) models.Listing {
	t.Helper()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = models.ListingStatusActive
	}
	require.NoError(t, db.Create(&l).Error)
	return l
}

func TestListingRepository_GetFiltered(t *testing.T) {
	db := newTestDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	seedListing(t, db, models.Listing{Title: "iPhone 13 128GB", Category: "Elektronik", Price: price(30000), Condition: "Az Kullanılmış", Location: str("Kadikoy, Istanbul"), CreatedAt: testNow.Add(-time.Hour)})
	seedListing(t, db, models.Listing{Title: "Samsung TV", Category: "Elektronik", Price: price(12000), Condition: "Sıfır", IsPremium: true, CreatedAt: testNow.Add(-48 * time.Hour)})
	seedListing(t, db, models.Listing{Title: "Koltuk takimi", Category: "Mobilya", Price: price(8000), Description: str("temiz iphone sarj kablosu hediye"), CreatedAt: testNow.Add(-20 * 24 * time.Hour)})
	seedListing(t, db, models.Listing{Title: "Eski iPhone", Category: "Elektronik", Price: price(5000), Status: "sold", CreatedAt: testNow})

	t.Run("active only newest first", func(t *testing.T) {
		got, err := repo.GetFiltered(ctx, ListingFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "iPhone 13 128GB", got[0].Title)
		assert.Equal(t, "Koltuk takimi", got[2].Title)
	})

	t.Run("category all is ignored", func(t *testing.T) {
		got, err := repo.GetFiltered(ctx, ListingFilter{Categories: []string{"all"}})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("category and price range", func(t *testing.T) {
		got, err := repo.GetFiltered(ctx, ListingFilter{
			Categories: []string{"Elektronik"},
			MinPrice:   price(10000),
			MaxPrice:   price(20000),
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Samsung TV", got[0].Title)
	})

	t.Run("search matches title or description", func(t *testing.T) {
		got, err := repo.GetFiltered(ctx, ListingFilter{Search: "IPHONE"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("location condition premium", func(t *testing.T) {
		got, err := repo.GetFiltered(ctx, ListingFilter{Location: "istanbul"})
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = repo.GetFiltered(ctx, ListingFilter{Conditions: []string{"Sıfır"}})
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = repo.GetFiltered(ctx, ListingFilter{PremiumOnly: true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].IsPremium)
	})

	t.Run("date range and limit", func(t *testing.T) {
		got, err := repo.GetFiltered(ctx, ListingFilter{Since: SinceFor("week", testNow)})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = repo.GetFiltered(ctx, ListingFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestListingRepository_GetByIDAndPriced(t *testing.T) {
	db := newTestDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	active := seedListing(t, db, models.Listing{Title: "Bisiklet", Category: "Spor & Outdoor", Price: price(4000)})
	seedListing(t, db, models.Listing{Title: "Kamp çadırı", Category: "Spor & Outdoor"})
	sold := seedListing(t, db, models.Listing{Title: "Kayak", Category: "Spor & Outdoor", Price: price(9000), Status: "sold"})

	got, err := repo.GetByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bisiklet", got.Title)

	_, err = repo.GetByID(ctx, sold.ID)
	assert.True(t, eris.Is(err, ErrNotFound))

	priced, err := repo.PricedInCategory(ctx, "Spor & Outdoor")
	require.NoError(t, err)
	require.Len(t, priced, 1)
	assert.Equal(t, 4000.0, *priced[0].Price)
}

func TestSinceFor(t *testing.T) {
	assert.Nil(t, SinceFor("all", testNow))
	assert.Nil(t, SinceFor("", testNow))
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), *SinceFor("today", testNow))
	assert.Equal(t, testNow.AddDate(0, 0, -7), *SinceFor("week", testNow))
	assert.Equal(t, testNow.AddDate(0, -1, 0), *SinceFor("month", testNow))
}

func TestSnapshotRepository_TouchCreatesPlaceholderAndCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()
	seed := SnapshotSeed{ProductKey: "elektronik|iphone 13", Title: "iPhone 13", Category: "Elektronik", Condition: "Sıfır"}

	snap, err := repo.Touch(ctx, seed, testNow)
	require.NoError(t, err)
	assert.EqualValues(t, 1, snap.QueryCount)
	assert.False(t, snap.IsFresh(testNow))
	assert.False(t, snap.HasPrice())
	assert.Equal(t, "iPhone 13", snap.OriginalTitle)

	snap, err = repo.Touch(ctx, seed, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 2, snap.QueryCount)

	var rows int64
	require.NoError(t, db.Model(&models.MarketPriceSnapshot{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestSnapshotRepository_ApplyRefresh(t *testing.T) {
	db := newTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	_, err := repo.Touch(ctx, SnapshotSeed{ProductKey: "k1", Title: "t", Category: "Mobilya"}, testNow)
	require.NoError(t, err)

	err = repo.ApplyRefresh(ctx, "k1", SnapshotUpdate{
		MinPrice:   1000,
		MaxPrice:   3000,
		AvgPrice:   2000,
		Confidence: 0.5,
		Sources:    []models.SnapshotSource{{Name: "Sahibinden", URL: "https://www.sahibinden.com/x"}},
		ExpiresAt:  testNow.AddDate(0, 0, 21),
		UpdatedAt:  testNow,
	})
	require.NoError(t, err)

	snap, err := repo.FindByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, snap.AvgPrice)
	assert.True(t, snap.IsFresh(testNow))
	require.Len(t, snap.Sources, 1)
	assert.Equal(t, "Sahibinden", snap.Sources[0].Name)
	require.NotNil(t, snap.LastUpdatedAt)

	err = repo.ApplyRefresh(ctx, "missing", SnapshotUpdate{UpdatedAt: testNow})
	assert.True(t, eris.Is(err, ErrNotFound))
}

func seedSnapshot(t *testing.T, db *gorm.DB, key string, queries int64, expires time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.MarketPriceSnapshot{
		ProductKey: key,
		QueryCount: queries,
		ExpiresAt:  expires,
	}).Error)
}

func TestSnapshotRepository_FindStale(t *testing.T) {
	db := newTestDB(t)
	repo := NewSnapshotRepository(db)

	seedSnapshot(t, db, "fresh", 100, testNow.Add(time.Hour))
	seedSnapshot(t, db, "cold", 0, testNow.Add(-time.Hour))
	seedSnapshot(t, db, "hot", 9, testNow.Add(-48*time.Hour))
	seedSnapshot(t, db, "warm", 3, testNow.Add(-time.Minute))

	got, err := repo.FindStale(context.Background(), testNow, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hot", got[0].ProductKey)
	assert.Equal(t, "warm", got[1].ProductKey)
}

func TestSnapshotRepository_DeleteCold(t *testing.T) {
	db := newTestDB(t)
	repo := NewSnapshotRepository(db)
	cutoff := testNow.AddDate(0, 0, -30)

	seedSnapshot(t, db, "old-unused", 0, testNow.AddDate(0, 0, -40))
	seedSnapshot(t, db, "old-used", 1, testNow.AddDate(0, 0, -40))
	seedSnapshot(t, db, "recent-unused", 0, testNow.AddDate(0, 0, -10))

	deleted, err := repo.DeleteCold(context.Background(), cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	keys := make([]string, 0, len(all))
	for _, s := range all {
		keys = append(keys, s.ProductKey)
	}
	assert.ElementsMatch(t, []string{"old-used", "recent-unused"}, keys)
}

func newUser(phone string) (*models.User, *models.Profile, *models.UserSecurity) {
	id := uuid.NewString()
	return &models.User{ID: id, Phone: phone, Name: "Ayşe", IsActive: true},
		&models.Profile{ID: id, Phone: phone, FullName: "Ayşe", DisplayName: "Ayşe", UserRole: "buyer", IsActive: true},
		&models.UserSecurity{UserID: id, PinHash: "hash"}
}

func TestUserRepository_CreateAndLockout(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, p, s := newUser("+905321112233")
	require.NoError(t, repo.CreateWithProfile(ctx, u, p, s, testNow))

	u2, p2, s2 := newUser("+905321112233")
	err := repo.CreateWithProfile(ctx, u2, p2, s2, testNow)
	assert.True(t, eris.Is(err, ErrDuplicate))

	var limits int64
	require.NoError(t, db.Model(&models.RateLimit{}).Where("user_id = ?", u.ID).Count(&limits).Error)
	assert.EqualValues(t, 1, limits)

	found, err := repo.FindByPhone(ctx, "+905321112233")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByPhone(ctx, "+905000000000")
	assert.True(t, eris.Is(err, ErrNotFound))

	for i := 1; i <= 4; i++ {
		n, locked, err := repo.RecordFailedAttempt(ctx, u.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.False(t, locked)
	}
	n, locked, err := repo.RecordFailedAttempt(ctx, u.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, locked)

	sec, err := repo.Security(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, sec.IsLocked)
}

func TestUserRepository_RecordLoginAndClear(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, p, s := newUser("+905551234567")
	require.NoError(t, repo.CreateWithProfile(ctx, u, p, s, testNow))
	_, _, err := repo.RecordFailedAttempt(ctx, u.ID, 5)
	require.NoError(t, err)

	require.NoError(t, repo.RecordLogin(ctx, u.ID, "sess-1", testNow.Add(time.Hour), testNow))
	sec, err := repo.Security(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sec.FailedAttempts)
	assert.Equal(t, "sess-1", sec.SessionToken)
	require.NotNil(t, sec.SessionExpiresAt)

	require.NoError(t, repo.ClearSession(ctx, u.ID))
	sec, err = repo.Security(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, sec.SessionToken)
	assert.Nil(t, sec.SessionExpiresAt)
}

func TestRateLimitRepository_Hit(t *testing.T) {
	db := newTestDB(t)
	repo := NewRateLimitRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Hit(ctx, "u1", 3, time.Hour, testNow))
	}
	err := repo.Hit(ctx, "u1", 3, time.Hour, testNow.Add(time.Minute))
	assert.True(t, eris.Is(err, ErrRateLimited))

	// a new window resets the counter
	require.NoError(t, repo.Hit(ctx, "u1", 3, time.Hour, testNow.Add(2*time.Hour)))
}

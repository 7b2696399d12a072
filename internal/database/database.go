package database

import (
	"strings"
	"time"

	"pazaryeri/internal/models"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Initialize opens the store. postgres:// and postgresql:// URLs use the
// postgres dialector, anything else is treated as a MySQL DSN.
func Initialize(databaseURL string, logger *zap.Logger) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, eris.New("database url is empty")
	}

	db, err := gorm.Open(Dialector(databaseURL), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, eris.Wrap(err, "failed to get underlying sql.DB")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database initialized", zap.String("dialect", db.Dialector.Name()))
	return db, nil
}

func Dialector(databaseURL string) gorm.Dialector {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.Open(databaseURL)
	}
	return mysql.Open(databaseURL)
}

// Migrate creates or updates every table the service touches.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.UserSecurity{},
		&models.RateLimit{},
		&models.Listing{},
		&models.MarketPriceSnapshot{},
	); err != nil {
		return eris.Wrap(err, "auto migrate")
	}
	return nil
}

// internal/infrastructure/database/postgres/connection.go
package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps the GORM database handle
type DB struct {
	db *gorm.DB
}

// NewConnection opens and tunes a PostgreSQL connection pool
func NewConnection(cfg *config.Config) (*DB, error) {
	logLevel := gormlogger.Warn
	if cfg.App.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Println("✅ Database connection established successfully")

	return &DB{db: db}, nil
}

// GetDB returns the GORM handle
func (d *DB) GetDB() *gorm.DB {
	return d.db
}

// Health pings the database
func (d *DB) Health(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

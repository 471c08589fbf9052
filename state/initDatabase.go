package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/entity"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSqlite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// InitDatabase opens the relational store and optionally migrates the chat tables.
func InitDatabase(driver, dsn string, autoMigrate bool) (*gorm.DB, *sql.DB, error) {
	dialector, err := openDialector(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Error().Err(err).Str("driver", driver).Msg("failed to connect to database")
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if driver == DriverSqlite {
		// single writer; also keeps ":memory:" databases on one connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxIdleTime(300 * time.Second)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if autoMigrate {
		if err := db.AutoMigrate(entity.Models()...); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info().Msg("database schema migrated")
	}

	log.Info().Str("driver", driver).Msg("database connection established successfully")
	return db, sqlDB, nil
}

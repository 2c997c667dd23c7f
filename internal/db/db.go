package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/whm/internal/models"
)

// ErrStorageUnavailable is returned when the database cannot be created, opened or migrated
var ErrStorageUnavailable = errors.New("storage unavailable")

// Options controls how the database is opened
type Options struct {
	Path  string
	Debug bool // log every SQL statement
}

// Open opens the SQLite database at opts.Path, creating its directory and schema if needed
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	log := zerolog.Ctx(ctx)

	if opts.Path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrStorageUnavailable)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", ErrStorageUnavailable, err)
	}

	logLevel := logger.Silent // Quiet by default
	if opts.Debug {
		logLevel = logger.Info
	}

	dsn := opts.Path + "?_pragma=busy_timeout(5000)"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrStorageUnavailable, opts.Path, err)
	}

	if err := migrate(conn.WithContext(ctx)); err != nil {
		_ = CloseConn(conn)
		return nil, fmt.Errorf("%w: failed to run migrations on %s: %v", ErrStorageUnavailable, opts.Path, err)
	}

	log.Debug().Str("path", opts.Path).Msg("database ready")
	return conn, nil
}

// migrate creates/updates the database schema
func migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(&models.Session{})
}

// Reset drops every session and recreates the schema in one transaction, so a
// failure leaves the previous table in place
func Reset(ctx context.Context, conn *gorm.DB) error {
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(&models.Session{}); err != nil {
			return fmt.Errorf("failed to drop sessions: %w", err)
		}
		// AUTOINCREMENT counters live in sqlite_sequence and survive DROP TABLE
		if tx.Migrator().HasTable("sqlite_sequence") {
			if err := tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", models.Session{}.TableName()).Error; err != nil {
				return fmt.Errorf("failed to reset id sequence: %w", err)
			}
		}
		if err := migrate(tx); err != nil {
			return fmt.Errorf("failed to recreate sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Msg("session table recreated")
	return nil
}

// CloseConn closes a connection returned by Open
func CloseConn(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/firmsite-api/internal/models"
)

const sqliteScheme = "sqlite://"

// OpenArchive connects to the contact submission archive and migrates its schema.
// DSNs starting with sqlite:// open a local SQLite file; anything else is passed to PostgreSQL.
func OpenArchive(dsn string, verbose bool) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("archive dsn must not be empty")
	}

	dialector := postgres.Open(dsn)
	if strings.HasPrefix(dsn, sqliteScheme) {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqliteScheme))
	}

	logLevel := gormlogger.Silent
	if verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to archive: %w", err)
	}

	if err := db.AutoMigrate(&models.ContactSubmission{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}

	return db, nil
}

package database

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database/models"
)

// Pool carries the connection pool limits of the relational store.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New opens a gorm handle for the given driver ("postgres" or "sqlite").
func New(driver, dsn string, pool Pool, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(SQLiteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if isMemorySQLite(driver, dsn) {
		// each pooled connection to :memory: would open its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	return db, nil
}

// SQLiteDSN adds the connection parameters the relay needs under concurrent writers:
// a busy timeout so writers queue instead of failing with "database is locked", and
// BEGIN IMMEDIATE so a transaction takes the write lock before its first read.
// Parameters already present in dsn are left alone.
func SQLiteDSN(dsn string) string {
	params := []struct{ key, value string }{
		{"_busy_timeout", "5000"},
		{"_txlock", "immediate"},
	}
	if !isMemoryDSN(dsn) {
		params = append(params, struct{ key, value string }{"_journal_mode", "WAL"})
	}

	query := ""
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		query = dsn[i+1:]
	}
	existing, _ := url.ParseQuery(query)

	var extra []string
	for _, p := range params {
		if _, ok := existing[p.key]; ok {
			continue
		}
		extra = append(extra, p.key+"="+p.value)
	}
	if len(extra) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(extra, "&")
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func isMemorySQLite(driver, dsn string) bool {
	return (driver == "sqlite" || driver == "sqlite3") && isMemoryDSN(dsn)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Identity{},
		&models.Block{},
		&models.GlobalBan{},
		&models.Thread{},
		&models.PendingIntent{},
		&models.RatePair{},
	)
}

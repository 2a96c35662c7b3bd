package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/mbolis/wellness-hub/config"
)

// Open connects to the configured database and brings its schema up to date.
func Open(cfg config.Config) (db *sql.DB, err error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err = sql.Open("sqlite3", sqliteDSN(cfg.DBUrl))
	case config.DriverPostgres:
		db, err = sql.Open("pgx", cfg.DBUrl)
	default:
		err = errors.Errorf("unsupported driver %q", cfg.DBDriver)
	}
	if err != nil {
		return
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping")
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err = migrateDB(db, cfg.DBDriver); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	return
}

// sqliteDSN enables foreign keys on every pooled connection, and makes write
// transactions take the database lock at BEGIN.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

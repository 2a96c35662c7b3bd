package database

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/mbolis/wellness-hub/config"
)

//go:embed migrations
var dbMigrations embed.FS

func migrateDB(db *sql.DB, driver string) error {
	src, err := iofs.New(dbMigrations, "migrations/"+dialect(driver))
	if err != nil {
		return err
	}

	var dst database.Driver
	switch driver {
	case config.DriverPostgres:
		dst, err = pgx.WithInstance(db, &pgx.Config{})
	default:
		dst, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", src, driver, dst)
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		// db already up to date
		break
	case err != nil:
		return err
	}
	return nil
}

func dialect(driver string) string {
	if driver == config.DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

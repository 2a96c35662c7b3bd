package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/wellness-hub/assessment"
	"github.com/mbolis/wellness-hub/config"
	"github.com/mbolis/wellness-hub/users"
)

// App is what every handler is built from.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Assessments *assessment.Service
	Users       *users.Store
}

// New wires the services around an open, migrated database.
func New(db *sql.DB, cfg config.Config, bearerServer *oauth.BearerServer, us *users.Store) App {
	return App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,
		Assessments:  assessment.New(db, cfg.DBDriver),
		Users:        us,
	}
}

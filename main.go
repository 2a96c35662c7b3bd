package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/wellness-hub/app"
	"github.com/mbolis/wellness-hub/config"
	"github.com/mbolis/wellness-hub/database"
	"github.com/mbolis/wellness-hub/httpx"
	"github.com/mbolis/wellness-hub/log"
	"github.com/mbolis/wellness-hub/routes"
	"github.com/mbolis/wellness-hub/users"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	us := users.New(db)
	if cfg.AdminUser != "" {
		created, err := us.EnsureAdmin(context.Background(), cfg.AdminUser, cfg.AdminPass)
		if err != nil {
			log.Fatal("main.ensure_admin:", err)
		}
		if created {
			log.Infof("Created counselor account %q", cfg.AdminUser)
		}
	}

	bearerServer := httpx.NewBearerServer(db, us, cfg)
	handler := routes.Wire(app.New(db, cfg, bearerServer, us))

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error("main.server.shutdown:", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}

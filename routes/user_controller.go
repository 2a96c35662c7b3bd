package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/wellness-hub/app"
	"github.com/mbolis/wellness-hub/httpx"
	"github.com/mbolis/wellness-hub/log"
	"github.com/mbolis/wellness-hub/users"
)

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := users.RegisterInput{}
		if err := render.Decode(r, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		u, err := app.Users.Register(r.Context(), in)
		if err != nil {
			httpx.LogError(w, r, "register", err)
			return
		}

		log.WithFields(log.Fields{"user": u.ID}).Info("register: student created")
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, u)
	}
}

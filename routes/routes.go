package routes

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/mbolis/wellness-hub/app"
	"github.com/mbolis/wellness-hub/httpx"
	"github.com/mbolis/wellness-hub/model"
	"github.com/mbolis/wellness-hub/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if len(app.CORSOrigins) > 0 {
		root.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Authorize(app.TokenSecret), middlewares.PageRole(model.RoleAdmin)).
		Mount("/admin", servePrivateFiles(app, "admin"))
	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Authorize(app.TokenSecret), middlewares.PageRole(model.RoleStudent)).
		Mount("/student", servePrivateFiles(app, "student"))
	root.Mount("/", servePublicFiles(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))
	api.Post("/register", Register(app))
	api.Get("/health", Health(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Authorize(app.TokenSecret), middlewares.RequireRole(model.RoleAdmin))

		r.Get("/students", ListStudents(app))

		// CRUD assessment
		r.Post("/assessments", CreateAssessment(app))
		r.Get("/assessments", ListAssessments(app))
		r.Get(`/assessments/{id:^\d+$}`, GetAssessment(app))
		r.Put(`/assessments/{id:^\d+$}`, UpdateAssessment(app))
		r.Delete(`/assessments/{id:^\d+$}`, DeleteAssessment(app))

		r.Get(`/assessments/{id:^\d+$}/results`, GetAssessmentResults(app))
		r.Get("/results", ListResults(app))
		r.Get(`/results/{id:^\d+$}`, GetResult(app))
		r.Get("/assignments", ListAssignments(app))
	})

	api.Route("/student", func(r chi.Router) {
		r.Use(middlewares.Authorize(app.TokenSecret), middlewares.RequireRole(model.RoleStudent))

		// {id} is the assignment
		r.Get("/assessments", StudentListAssessments(app))
		r.Get(`/assessments/{id:^\d+$}`, StudentTakeAssessment(app))
		r.Post(`/assessments/{id:^\d+$}/submissions`, StudentSubmitAssessment(app))

		r.Get("/results", StudentListResults(app))
		r.Get(`/results/{id:^\d+$}`, GetResult(app))
	})

	return api
}

func Health(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.PingContext(r.Context()); err != nil {
			httpx.LogInternalError(w, "health.db_ping", err)
			return
		}
		render.JSON(w, r, map[string]any{"status": "ok"})
	}
}

func servePublicFiles(app app.App) http.Handler {
	return http.FileServer(http.Dir(filepath.Join(app.StaticDir, "public")))
}

func servePrivateFiles(app app.App, dir string) http.Handler {
	return http.StripPrefix("/"+dir, http.FileServer(http.Dir(filepath.Join(app.StaticDir, dir))))
}

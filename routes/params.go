package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mbolis/wellness-hub/httpx"
	"github.com/mbolis/wellness-hub/log"
	"github.com/mbolis/wellness-hub/model"
)

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return 0, false
	}
	return id, true
}

// queryID reads an optional numeric query parameter; absent means 0.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		httpx.LogValidation(w, r, "request.query."+name, []string{name + " must be a positive number."})
		return 0, false
	}
	return id, true
}

func queryDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, true
	}
	day, err := time.Parse(time.DateOnly, v)
	if err != nil {
		httpx.LogValidation(w, r, "request.query."+name, []string{name + " must be formatted as YYYY-MM-DD."})
		return time.Time{}, false
	}
	return day, true
}

func queryStatus(w http.ResponseWriter, r *http.Request) (model.AssignmentStatus, bool) {
	status := model.AssignmentStatus(r.URL.Query().Get("status"))
	switch status {
	case "", model.StatusPending, model.StatusCompleted:
		return status, true
	}
	httpx.LogValidation(w, r, "request.query.status", []string{"status must be pending or completed."})
	return "", false
}

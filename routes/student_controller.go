package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/mbolis/wellness-hub/app"
	"github.com/mbolis/wellness-hub/assessment"
	"github.com/mbolis/wellness-hub/httpx"
	"github.com/mbolis/wellness-hub/log"
	"github.com/mbolis/wellness-hub/model"
	"github.com/mbolis/wellness-hub/routes/middlewares"
)

func StudentListAssessments(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := queryStatus(w, r)
		if !ok {
			return
		}
		list, err := app.Assessments.ListAssignments(r.Context(), middlewares.Caller(r), assessment.Filter{Status: status})
		if err != nil {
			httpx.LogError(w, r, "student.list_assignments", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"assignments": list,
		})
	}
}

func StudentTakeAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		sheet, err := app.Assessments.LoadForTaking(r.Context(), middlewares.Caller(r), id)
		if err != nil {
			httpx.LogError(w, r, "student.take_assessment", err)
			return
		}
		render.JSON(w, r, sheet)
	}
}

type submission struct {
	Answers map[int64]model.Answer `json:"answers"`
}

func StudentSubmitAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		answers, err := decodeAnswers(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		caller := middlewares.Caller(r)
		if err := app.Assessments.SubmitResponses(r.Context(), caller, id, answers); err != nil {
			httpx.LogError(w, r, "student.submit_responses", err)
			return
		}

		log.WithFields(log.Fields{"assignment": id, "student": caller.UserID}).Info("submit_responses: completed")
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":     id,
			"status": model.StatusCompleted,
		})
	}
}

// decodeAnswers reads {"answers": {"<question id>": ...}} from JSON, or
// q_<question id> fields from a form, where repeated fields form a list.
func decodeAnswers(r *http.Request) (map[int64]model.Answer, error) {
	if render.GetRequestContentType(r) != render.ContentTypeForm {
		body := submission{}
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			return nil, err
		}
		return body.Answers, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	answers := map[int64]model.Answer{}
	for key, values := range r.PostForm {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, "q_"), 10, 64)
		if err != nil || !strings.HasPrefix(key, "q_") {
			continue
		}
		if len(values) == 1 {
			answers[id] = model.Single(values[0])
		} else {
			answers[id] = model.Multi(values...)
		}
	}
	return answers, nil
}

func StudentListResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middlewares.Caller(r)
		results, err := app.Assessments.ListCompletedForStudent(r.Context(), caller, caller.UserID)
		if err != nil {
			httpx.LogError(w, r, "student.list_results", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"results": results,
		})
	}
}

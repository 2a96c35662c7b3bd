package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/wellness-hub/app"
	"github.com/mbolis/wellness-hub/assessment"
	"github.com/mbolis/wellness-hub/httpx"
	"github.com/mbolis/wellness-hub/log"
	"github.com/mbolis/wellness-hub/routes/middlewares"
)

func ListStudents(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		students, err := app.Users.ListStudents(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.list_students", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"students": students,
		})
	}
}

func CreateAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := assessment.CreateInput{}
		err := render.Decode(r, &in)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		a, err := app.Assessments.CreateAssessment(r.Context(), middlewares.Caller(r), in)
		if err != nil {
			httpx.LogError(w, r, "create_assessment", err)
			return
		}

		log.WithFields(log.Fields{"assessment": a.ID, "students": len(in.StudentIDs)}).Info("create_assessment: created")
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, a)
	}
}

func ListAssessments(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := app.Assessments.ListAssessments(r.Context(), middlewares.Caller(r))
		if err != nil {
			httpx.LogError(w, r, "list_assessments", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"assessments": list,
		})
	}
}

func GetAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		a, err := app.Assessments.GetAssessment(r.Context(), middlewares.Caller(r), id)
		if err != nil {
			httpx.LogError(w, r, "get_assessment", err)
			return
		}
		render.JSON(w, r, a)
	}
}

type editAssessment struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

func UpdateAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		in := editAssessment{}
		if err := render.Decode(r, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err := app.Assessments.EditAssessment(r.Context(), middlewares.Caller(r), id, in.Title, in.Description)
		if err != nil {
			httpx.LogError(w, r, "edit_assessment", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := app.Assessments.DeleteAssessment(r.Context(), middlewares.Caller(r), id); err != nil {
			httpx.LogError(w, r, "delete_assessment", err)
			return
		}
		log.WithFields(log.Fields{"assessment": id}).Info("delete_assessment: deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetAssessmentResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		results, err := app.Assessments.ListCompletedForAssessment(r.Context(), middlewares.Caller(r), id)
		if err != nil {
			httpx.LogError(w, r, "assessment_results", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"results": results,
		})
	}
}

func ListResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := queryID(w, r, "student_id")
		if !ok {
			return
		}
		day, ok := queryDate(w, r, "date")
		if !ok {
			return
		}

		results, err := app.Assessments.ListCompleted(r.Context(), middlewares.Caller(r), studentID, day)
		if err != nil {
			httpx.LogError(w, r, "list_results", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"results": results,
		})
	}
}

func GetResult(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		res, err := app.Assessments.GetOneCompleted(r.Context(), middlewares.Caller(r), id)
		if err != nil {
			httpx.LogError(w, r, "get_result", err)
			return
		}
		render.JSON(w, r, res)
	}
}

func ListAssignments(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f assessment.Filter
		var ok bool
		if f.StudentID, ok = queryID(w, r, "student_id"); !ok {
			return
		}
		if f.AssessmentID, ok = queryID(w, r, "assessment_id"); !ok {
			return
		}
		if f.Status, ok = queryStatus(w, r); !ok {
			return
		}

		list, err := app.Assessments.ListAssignments(r.Context(), middlewares.Caller(r), f)
		if err != nil {
			httpx.LogError(w, r, "list_assignments", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"assignments": list,
		})
	}
}

package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/mbolis/wellness-hub/assessment"
	"github.com/mbolis/wellness-hub/log"
	"github.com/mbolis/wellness-hub/users"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// Problems is the body of a 422 response.
type Problems struct {
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// LogValidation sends the list of problems with status 422.
func LogValidation(w http.ResponseWriter, r *http.Request, code string, problems []string) {
	log.WithFields(log.Fields{"problems": problems}).Debug(code + ": invalid input")
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, Problems{
		Errors:  problems,
		Message: "Please correct the highlighted problems and try again.",
	})
}

// LogError maps a core error to its HTTP status. Storage details are logged,
// never sent.
func LogError(w http.ResponseWriter, r *http.Request, code string, err error) {
	var verr *assessment.ValidationError
	var fieldErrs validator.ValidationErrors
	var terr *assessment.TransactionError

	switch {
	case errors.As(err, &verr):
		LogValidation(w, r, code, verr.Problems())
	case errors.As(err, &fieldErrs):
		LogValidation(w, r, code, fieldProblems(fieldErrs))
	case errors.Is(err, assessment.ErrNotFoundOrAlreadyCompleted):
		LogStatusMsg(w, http.StatusNotFound, log.DebugLevel, code, "Assessment not found or already completed.")
	case errors.Is(err, assessment.ErrNotFound):
		LogNotFound(w, code, err)
	case errors.Is(err, assessment.ErrForbidden):
		LogStatus(w, http.StatusForbidden, log.WarnLevel, code)
	case errors.Is(err, users.ErrUsernameTaken):
		LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "Username already taken.")
	case errors.As(err, &terr):
		log.WithFields(log.Fields{"op": terr.Op}).Errorf("%s: %s", code, terr.Err)
		http.Error(w, assessment.TransactionFailedMessage, http.StatusInternalServerError)
	default:
		LogInternalError(w, code, err)
	}
}

func fieldProblems(errs validator.ValidationErrors) []string {
	problems := make([]string, len(errs))
	for i, fe := range errs {
		switch fe.Tag() {
		case "required":
			problems[i] = fmt.Sprintf("%s is required.", fe.Field())
		case "min":
			problems[i] = fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
		case "max":
			problems[i] = fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
		case "alphanum":
			problems[i] = fmt.Sprintf("%s may only contain letters and digits.", fe.Field())
		default:
			problems[i] = fmt.Sprintf("%s is not valid.", fe.Field())
		}
	}
	return problems
}

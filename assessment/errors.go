package assessment

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned for missing entities and for entities the
	// caller does not own, so existence never leaks.
	ErrNotFound = errors.New("not found")
	// ErrNotFoundOrAlreadyCompleted is returned when an assignment cannot be
	// taken: it does not exist, belongs to someone else, or was submitted.
	ErrNotFoundOrAlreadyCompleted = errors.New("assessment not found or already completed")
	// ErrForbidden is returned when the caller's role does not allow the operation.
	ErrForbidden = errors.New("forbidden")
)

// TransactionFailedMessage is the only text shown to users when a write fails.
const TransactionFailedMessage = "Something went wrong while saving. Please try again."

// ValidationError aggregates every rule an input violated.
type ValidationError struct {
	merr *multierror.Error
}

func (e *ValidationError) Error() string {
	return e.merr.Error()
}

// Problems lists the human readable violations, in the order they were found.
func (e *ValidationError) Problems() []string {
	problems := make([]string, len(e.merr.Errors))
	for i, err := range e.merr.Errors {
		problems[i] = err.Error()
	}
	return problems
}

func formatProblems(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, " ")
}

// TransactionError wraps any failure of a multi statement write. The
// transaction has been rolled back by the time it is returned.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

type problems struct {
	merr *multierror.Error
}

func (p *problems) add(format string, args ...any) {
	p.merr = multierror.Append(p.merr, fmt.Errorf(format, args...))
}

func (p *problems) err() error {
	if p.merr == nil {
		return nil
	}
	p.merr.ErrorFormat = formatProblems
	return &ValidationError{p.merr}
}

func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// Package assessment implements the assessment lifecycle: authoring,
// assignment, taking and results.
package assessment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mbolis/wellness-hub/config"
	"github.com/mbolis/wellness-hub/model"
)

type Service struct {
	db       *sql.DB
	driver   string
	validate *validator.Validate
	now      func() time.Time
}

func New(db *sql.DB, driver string) *Service {
	return &Service{
		db:       db,
		driver:   driver,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) txOptions() *sql.TxOptions {
	// go-sqlite3 serializes writers itself, see database.sqliteDSN
	if s.driver == config.DriverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return nil
}

// inTx runs fn in a transaction. Validation and lookup errors pass through
// unchanged; anything else becomes a TransactionError. The transaction is
// always rolled back unless fn and the commit both succeed.
func (s *Service) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, s.txOptions())
	if err != nil {
		return &TransactionError{op + ".begin", err}
	}
	defer tx.Rollback()

	if err = fn(tx); err != nil {
		if IsValidation(err) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotFoundOrAlreadyCompleted) {
			return err
		}
		return &TransactionError{op, err}
	}

	if err = tx.Commit(); err != nil {
		return &TransactionError{op + ".commit", err}
	}
	return nil
}

func requireAdmin(caller model.Caller) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func requireStudent(caller model.Caller) error {
	if !caller.IsStudent() {
		return ErrForbidden
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadQuestions(ctx context.Context, q queryer, assessmentID int64) ([]model.Question, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, assessment_id, position, question_text, question_type, options
		FROM questions
		WHERE assessment_id = $1
		ORDER BY position`,
		assessmentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "load questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var qu model.Question
		var opts sql.NullString
		err = rows.Scan(&qu.ID, &qu.AssessmentID, &qu.Position, &qu.Text, &qu.Type, &opts)
		if err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		if qu.Options, err = decodeOptions(opts); err != nil {
			return nil, errors.Wrapf(err, "question %d options", qu.ID)
		}
		questions = append(questions, qu)
	}
	return questions, errors.Wrap(rows.Err(), "load questions")
}

// placeholders returns "$from, ..., $(from+n-1)".
func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

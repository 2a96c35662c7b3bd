package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mbolis/wellness-hub/model"
)

// Sheet is what a student sees while taking an assessment.
type Sheet struct {
	Assignment model.Assignment `json:"assignment"`
	Questions  []model.Question `json:"questions"`
}

// LoadForTaking returns the assessment behind a pending assignment owned by
// the caller. Anything else is ErrNotFoundOrAlreadyCompleted.
func (s *Service) LoadForTaking(ctx context.Context, caller model.Caller, assignmentID int64) (Sheet, error) {
	if err := requireStudent(caller); err != nil {
		return Sheet{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT
			sa.id, sa.student_id, COALESCE(NULLIF(u.full_name, ''), u.username),
			sa.assessment_id, a.title, a.description,
			sa.status, sa.submitted_at
		FROM student_assessments sa
		INNER JOIN assessments a ON (a.id = sa.assessment_id)
		INNER JOIN users u ON (u.id = sa.student_id)
		WHERE sa.id = $1
			AND sa.student_id = $2
			AND sa.status = 'pending'`,
		assignmentID,
		caller.UserID,
	)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Sheet{}, ErrNotFoundOrAlreadyCompleted
	}
	if err != nil {
		return Sheet{}, err
	}

	questions, err := loadQuestions(ctx, s.db, a.AssessmentID)
	if err != nil {
		return Sheet{}, err
	}
	return Sheet{Assignment: a, Questions: questions}, nil
}

// SubmitResponses completes a pending assignment with one answer per
// question. The pending check, the status flip and the response inserts
// share one transaction.
func (s *Service) SubmitResponses(ctx context.Context, caller model.Caller, assignmentID int64, answers map[int64]model.Answer) error {
	if err := requireStudent(caller); err != nil {
		return err
	}

	return s.inTx(ctx, "submit_responses", func(tx *sql.Tx) error {
		var assessmentID int64
		err := tx.QueryRowContext(ctx, `
			SELECT assessment_id FROM student_assessments
			WHERE id = $1
				AND student_id = $2
				AND status = 'pending'`,
			assignmentID,
			caller.UserID,
		).Scan(&assessmentID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFoundOrAlreadyCompleted
		}
		if err != nil {
			return errors.Wrap(err, "check assignment")
		}

		questions, err := loadQuestions(ctx, tx, assessmentID)
		if err != nil {
			return err
		}
		if err := checkAnswers(questions, answers); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE student_assessments
			SET status = 'completed', submitted_at = $1
			WHERE id = $2
				AND status = 'pending'`,
			s.now(),
			assignmentID,
		)
		if err != nil {
			return errors.Wrap(err, "complete assignment")
		}
		if n, err := res.RowsAffected(); err != nil {
			return errors.Wrap(err, "complete assignment")
		} else if n != 1 {
			// lost the race against a concurrent submission
			return ErrNotFoundOrAlreadyCompleted
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO responses (student_assessment_id, question_id, response_text, response_values)
			VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return errors.Wrap(err, "prepare responses")
		}
		defer stmt.Close()

		for _, q := range questions {
			answer := answers[q.ID]
			values, err := encodeAnswer(answer)
			if err != nil {
				return err
			}
			_, err = stmt.ExecContext(ctx, assignmentID, q.ID, strings.TrimSpace(answer.Text()), values)
			if err != nil {
				return errors.Wrapf(err, "insert response %d", q.ID)
			}
		}
		return nil
	})
}

// checkAnswers requires exactly one usable answer per question.
func checkAnswers(questions []model.Question, answers map[int64]model.Answer) error {
	var p problems

	known := make(map[int64]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
		n := q.Position + 1

		answer, ok := answers[q.ID]
		if !ok || answer.Empty() {
			p.add("Question %d is not answered.", n)
			continue
		}

		switch q.Type {
		case model.QuestionScale:
			v, err := strconv.Atoi(strings.TrimSpace(answer.Text()))
			if answer.IsMulti() || err != nil || v < 1 || v > 10 {
				p.add("Question %d: answer must be a whole number from 1 to 10.", n)
			}
		case model.QuestionMultipleChoice:
			if len(q.Options) == 0 {
				break
			}
			for _, v := range answer.Values() {
				if !contains(q.Options, v) {
					p.add("Question %d: %q is not one of the choices.", n, v)
				}
			}
		}
	}

	var unknown []int64
	for id := range answers {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, id := range unknown {
		p.add("Answer given for unknown question %d.", id)
	}

	return p.err()
}

func encodeAnswer(a model.Answer) (sql.NullString, error) {
	if !a.IsMulti() {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(a.Values())
	if err != nil {
		return sql.NullString{}, errors.Wrap(err, "encode answer")
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeAnswer(text string, values sql.NullString) model.Answer {
	if values.Valid {
		var vs []string
		if err := json.Unmarshal([]byte(values.String), &vs); err == nil {
			return model.Multi(vs...)
		}
	}
	return model.Single(text)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

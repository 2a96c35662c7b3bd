package assessment

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/wellness-hub/model"
)

const (
	TierLow  = "low"
	TierMid  = "mid"
	TierHigh = "high"
)

// ScaleTier classifies a 1-10 scale answer: up to 3 is low, up to 6 is mid.
func ScaleTier(v int) string {
	switch {
	case v <= 3:
		return TierLow
	case v <= 6:
		return TierMid
	default:
		return TierHigh
	}
}

// ReadScale interprets a stored scale response. Non numeric text reads as 0.
func ReadScale(text string) model.ScaleReading {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		v = 0
	}
	pct := v * 10
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	return model.ScaleReading{Value: v, Percent: pct, Tier: ScaleTier(v)}
}

func (s *Service) ListCompletedForStudent(ctx context.Context, caller model.Caller, studentID int64) ([]model.Assignment, error) {
	if caller.IsStudent() && caller.UserID != studentID {
		return nil, ErrForbidden
	}
	if !caller.IsStudent() && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.listAssignments(ctx, Filter{StudentID: studentID, Status: model.StatusCompleted})
}

// ListCompletedForAssessment fails with ErrNotFound once the assessment is gone.
func (s *Service) ListCompletedForAssessment(ctx context.Context, caller model.Caller, assessmentID int64) ([]model.Assignment, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM assessments WHERE id = $1`, assessmentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "check assessment")
	}

	return s.listAssignments(ctx, Filter{AssessmentID: assessmentID, Status: model.StatusCompleted})
}

// ListCompleted is the counselor's index of submissions, optionally narrowed
// to one student and one submission day.
func (s *Service) ListCompleted(ctx context.Context, caller model.Caller, studentID int64, day time.Time) ([]model.Assignment, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.listAssignments(ctx, Filter{StudentID: studentID, Status: model.StatusCompleted, SubmittedOn: day})
}

// GetOneCompleted returns a submitted assignment with its answers in
// authoring order. Students may only read their own.
func (s *Service) GetOneCompleted(ctx context.Context, caller model.Caller, assignmentID int64) (model.Result, error) {
	if !caller.IsStudent() && !caller.IsAdmin() {
		return model.Result{}, ErrForbidden
	}

	var res model.Result
	row := s.db.QueryRowContext(ctx, `
		SELECT
			sa.id, sa.student_id, COALESCE(NULLIF(st.full_name, ''), st.username),
			sa.assessment_id, a.title, a.description,
			sa.status, sa.submitted_at,
			COALESCE(NULLIF(cr.full_name, ''), cr.username, '')
		FROM student_assessments sa
		INNER JOIN assessments a ON (a.id = sa.assessment_id)
		INNER JOIN users st ON (st.id = sa.student_id)
		LEFT OUTER JOIN users cr ON (cr.id = a.created_by)
		WHERE sa.id = $1
			AND sa.status = 'completed'`,
		assignmentID,
	)
	a, err := scanAssignment(row, &res.CreatorName)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Result{}, ErrNotFound
	}
	if err != nil {
		return model.Result{}, err
	}
	if caller.IsStudent() && a.StudentID != caller.UserID {
		return model.Result{}, ErrNotFound
	}
	res.Assignment = a

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			q.id, q.assessment_id, q.position, q.question_text, q.question_type, q.options,
			r.id, r.response_text, r.response_values
		FROM responses r
		INNER JOIN questions q ON (q.id = r.question_id)
		WHERE r.student_assessment_id = $1
		ORDER BY q.position`,
		assignmentID,
	)
	if err != nil {
		return model.Result{}, errors.Wrap(err, "load responses")
	}
	defer rows.Close()

	res.Items = []model.ResultItem{}
	for rows.Next() {
		var item model.ResultItem
		var opts, values sql.NullString
		var text string
		err = rows.Scan(
			&item.Question.ID, &item.Question.AssessmentID, &item.Question.Position,
			&item.Question.Text, &item.Question.Type, &opts,
			&item.Response.ID, &text, &values,
		)
		if err != nil {
			return model.Result{}, errors.Wrap(err, "scan response")
		}
		if item.Question.Options, err = decodeOptions(opts); err != nil {
			return model.Result{}, errors.Wrapf(err, "question %d options", item.Question.ID)
		}

		item.Response.AssignmentID = assignmentID
		item.Response.QuestionID = item.Question.ID
		item.Response.Answer = decodeAnswer(text, values)
		item.Text = text
		if item.Question.Type == model.QuestionScale {
			reading := ReadScale(text)
			item.Scale = &reading
		}
		res.Items = append(res.Items, item)
	}
	return res, errors.Wrap(rows.Err(), "load responses")
}

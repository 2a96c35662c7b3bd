package assessment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/wellness-hub/model"
)

// Filter narrows an assignment listing. Zero fields match everything.
type Filter struct {
	StudentID    int64
	AssessmentID int64
	Status       model.AssignmentStatus
	// SubmittedOn matches assignments submitted during that UTC day.
	SubmittedOn time.Time
}

// ListAssignments lists assignments pending first, then most recently
// submitted. Students only ever see their own.
func (s *Service) ListAssignments(ctx context.Context, caller model.Caller, f Filter) ([]model.Assignment, error) {
	switch {
	case caller.IsStudent():
		f.StudentID = caller.UserID
	case !caller.IsAdmin():
		return nil, ErrForbidden
	}
	return s.listAssignments(ctx, f)
}

func (s *Service) listAssignments(ctx context.Context, f Filter) ([]model.Assignment, error) {
	var where []string
	var args []any
	cond := func(expr string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(expr, len(args)))
	}

	if f.StudentID != 0 {
		cond("sa.student_id = $%d", f.StudentID)
	}
	if f.AssessmentID != 0 {
		cond("sa.assessment_id = $%d", f.AssessmentID)
	}
	if f.Status != "" {
		cond("sa.status = $%d", string(f.Status))
	}
	if !f.SubmittedOn.IsZero() {
		day := f.SubmittedOn.UTC().Truncate(24 * time.Hour)
		cond("sa.submitted_at >= $%d", day)
		cond("sa.submitted_at < $%d", day.Add(24*time.Hour))
	}

	query := `
		SELECT
			sa.id, sa.student_id, COALESCE(NULLIF(u.full_name, ''), u.username),
			sa.assessment_id, a.title, a.description,
			sa.status, sa.submitted_at
		FROM student_assessments sa
		INNER JOIN assessments a ON (a.id = sa.assessment_id)
		INNER JOIN users u ON (u.id = sa.student_id)`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += `
		ORDER BY
			CASE sa.status WHEN 'pending' THEN 0 ELSE 1 END,
			sa.submitted_at DESC,
			sa.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list assignments")
	}
	defer rows.Close()

	list := []model.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, errors.Wrap(rows.Err(), "list assignments")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row scanner, extra ...any) (model.Assignment, error) {
	var a model.Assignment
	var submittedAt sql.NullTime
	dest := append([]any{
		&a.ID, &a.StudentID, &a.StudentName,
		&a.AssessmentID, &a.AssessmentTitle, &a.AssessmentDescription,
		&a.Status, &submittedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Assignment{}, errors.Wrap(err, "scan assignment")
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		a.SubmittedAt = &t
	}
	return a, nil
}

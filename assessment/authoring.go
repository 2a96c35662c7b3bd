package assessment

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mbolis/wellness-hub/model"
)

type QuestionInput struct {
	Text string             `json:"text" form:"text" validate:"required"`
	Type model.QuestionType `json:"type" form:"type" validate:"oneof=text multiple_choice scale"`
	// newline separated, only read for multiple choice questions
	OptionsRaw string `json:"options" form:"options"`
}

type CreateInput struct {
	Title       string          `json:"title" form:"title"`
	Description string          `json:"description" form:"description"`
	Questions   []QuestionInput `json:"questions" form:"questions"`
	StudentIDs  []int64         `json:"student_ids" form:"student_ids"`
}

// CreateAssessment writes the assessment, its questions and one pending
// assignment per selected student, all or nothing.
func (s *Service) CreateAssessment(ctx context.Context, caller model.Caller, in CreateInput) (model.Assessment, error) {
	if err := requireAdmin(caller); err != nil {
		return model.Assessment{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	studentIDs := distinct(in.StudentIDs)

	var p problems
	if in.Title == "" {
		p.add("Assessment title is required.")
	}
	if len(in.Questions) == 0 {
		p.add("At least one question is required.")
	}
	if len(studentIDs) == 0 {
		p.add("At least one student must be selected.")
	}

	questions := make([]model.Question, len(in.Questions))
	for i, qi := range in.Questions {
		qi.Text = strings.TrimSpace(qi.Text)
		questions[i] = model.Question{Position: i, Text: qi.Text, Type: qi.Type}

		if err := s.validate.Struct(qi); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				return model.Assessment{}, err
			}
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "Text":
					p.add("Question %d: question text is required.", i+1)
				case "Type":
					p.add("Question %d: unknown question type %q.", i+1, qi.Type)
				}
			}
		}

		if qi.Type == model.QuestionMultipleChoice {
			questions[i].Options = ParseOptions(qi.OptionsRaw)
			if len(questions[i].Options) == 0 {
				p.add("Question %d: multiple choice questions need at least one option.", i+1)
			}
		}
	}

	if len(studentIDs) > 0 {
		unknown, err := s.unknownStudents(ctx, studentIDs)
		if err != nil {
			return model.Assessment{}, err
		}
		for _, id := range unknown {
			p.add("Student %d does not exist.", id)
		}
	}

	if err := p.err(); err != nil {
		return model.Assessment{}, err
	}

	a := model.Assessment{
		Title:       in.Title,
		Description: in.Description,
		CreatedBy:   caller.UserID,
		CreatedAt:   s.now(),
	}

	err := s.inTx(ctx, "create_assessment", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO assessments (title, description, created_by, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			a.Title,
			a.Description,
			a.CreatedBy,
			a.CreatedAt,
		).Scan(&a.ID)
		if err != nil {
			return errors.Wrap(err, "insert assessment")
		}

		qstmt, err := tx.PrepareContext(ctx, `
			INSERT INTO questions (assessment_id, position, question_text, question_type, options)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`)
		if err != nil {
			return errors.Wrap(err, "prepare questions")
		}
		defer qstmt.Close()

		for i := range questions {
			q := &questions[i]
			q.AssessmentID = a.ID
			opts, err := encodeOptions(q.Options)
			if err != nil {
				return errors.Wrap(err, "encode options")
			}
			err = qstmt.QueryRowContext(ctx, a.ID, q.Position, q.Text, string(q.Type), opts).Scan(&q.ID)
			if err != nil {
				return errors.Wrapf(err, "insert question %d", i+1)
			}
		}

		astmt, err := tx.PrepareContext(ctx, `
			INSERT INTO student_assessments (student_id, assessment_id, status)
			VALUES ($1, $2, $3)`)
		if err != nil {
			return errors.Wrap(err, "prepare assignments")
		}
		defer astmt.Close()

		for _, id := range studentIDs {
			if _, err := astmt.ExecContext(ctx, id, a.ID, string(model.StatusPending)); err != nil {
				return errors.Wrapf(err, "assign student %d", id)
			}
		}
		return nil
	})
	if err != nil {
		return model.Assessment{}, err
	}

	a.Questions = questions
	return a, nil
}

// EditAssessment changes title and description only; questions and
// assignments are left as authored.
func (s *Service) EditAssessment(ctx context.Context, caller model.Caller, id int64, title, description string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	title = strings.TrimSpace(title)
	var p problems
	if title == "" {
		p.add("Assessment title is required.")
	}
	if err := p.err(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE assessments
		SET title = $1, description = $2
		WHERE id = $3`,
		title,
		strings.TrimSpace(description),
		id,
	)
	if err != nil {
		return errors.Wrap(err, "update assessment")
	}
	return expectOne(res)
}

// DeleteAssessment removes the assessment; questions, assignments and
// responses go with it through ON DELETE CASCADE.
func (s *Service) DeleteAssessment(ctx context.Context, caller model.Caller, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete assessment")
	}
	return expectOne(res)
}

func (s *Service) ListAssessments(ctx context.Context, caller model.Caller) ([]model.AssessmentSummary, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			a.id, a.title, a.description, a.created_by, a.created_at,
			COALESCE(NULLIF(u.full_name, ''), u.username, ''),
			(SELECT COUNT(*) FROM questions q WHERE q.assessment_id = a.id),
			(SELECT COUNT(*) FROM student_assessments sa WHERE sa.assessment_id = a.id),
			(SELECT COUNT(*) FROM student_assessments sa WHERE sa.assessment_id = a.id AND sa.status = 'completed')
		FROM assessments a
		LEFT OUTER JOIN users u ON (u.id = a.created_by)
		ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list assessments")
	}
	defer rows.Close()

	list := []model.AssessmentSummary{}
	for rows.Next() {
		var a model.AssessmentSummary
		err = rows.Scan(
			&a.ID, &a.Title, &a.Description, &a.CreatedBy, &a.CreatedAt,
			&a.CreatorName,
			&a.QuestionCount, &a.AssignedCount, &a.CompletedCount,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan assessment")
		}
		list = append(list, a)
	}
	return list, errors.Wrap(rows.Err(), "list assessments")
}

// GetAssessment returns the header and ordered questions, for the edit form.
func (s *Service) GetAssessment(ctx context.Context, caller model.Caller, id int64) (model.Assessment, error) {
	if err := requireAdmin(caller); err != nil {
		return model.Assessment{}, err
	}

	var a model.Assessment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_by, created_at
		FROM assessments
		WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Title, &a.Description, &a.CreatedBy, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Assessment{}, ErrNotFound
	}
	if err != nil {
		return model.Assessment{}, errors.Wrap(err, "get assessment")
	}

	a.Questions, err = loadQuestions(ctx, s.db, id)
	return a, err
}

// unknownStudents returns the ids that do not belong to a student account.
func (s *Service) unknownStudents(ctx context.Context, ids []int64) ([]int64, error) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM users
		WHERE role = 'student' AND id IN (`+placeholders(1, len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "check students")
	}
	defer rows.Close()

	found := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan student")
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "check students")
	}

	var unknown []int64
	for _, id := range ids {
		if !found[id] {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

package assessment

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/mbolis/wellness-hub/config"
	"github.com/mbolis/wellness-hub/database"
	"github.com/mbolis/wellness-hub/model"
)

var ctx = context.Background()

type fixture struct {
	t     *testing.T
	db    *sql.DB
	svc   *Service
	clock time.Time

	admin, alice, bob model.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.Config{
		DBDriver: config.DriverSQLite,
		DBUrl:    filepath.Join(t.TempDir(), "test.sqlite"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		t:     t,
		db:    db,
		svc:   New(db, config.DriverSQLite),
		clock: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.clock }

	f.admin = model.Caller{UserID: f.user("counselor", "Dana Counselor", model.RoleAdmin), Role: model.RoleAdmin}
	f.alice = model.Caller{UserID: f.user("alice", "Alice", model.RoleStudent), Role: model.RoleStudent}
	f.bob = model.Caller{UserID: f.user("bob", "", model.RoleStudent), Role: model.RoleStudent}
	return f
}

func (f *fixture) user(username, fullName string, role model.Role) (id int64) {
	f.t.Helper()
	err := f.db.QueryRow(`
		INSERT INTO users (username, password_hash, full_name, role)
		VALUES ($1, 'x', $2, $3)
		RETURNING id`,
		username, fullName, string(role),
	).Scan(&id)
	if err != nil {
		f.t.Fatal(err)
	}
	return
}

func (f *fixture) exec(query string) {
	f.t.Helper()
	if _, err := f.db.Exec(query); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) count(table string) (n int) {
	f.t.Helper()
	if err := f.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		f.t.Fatal(err)
	}
	return
}

// checkIn is a scale question followed by a multiple choice one.
func checkIn(students ...int64) CreateInput {
	return CreateInput{
		Title:       "Weekly check-in",
		Description: "How are you doing?",
		Questions: []QuestionInput{
			{Text: "How stressed do you feel?", Type: model.QuestionScale},
			{Text: "Which activities helped?", Type: model.QuestionMultipleChoice, OptionsRaw: "A\nB\nC"},
		},
		StudentIDs: students,
	}
}

func (f *fixture) create(in CreateInput) model.Assessment {
	f.t.Helper()
	a, err := f.svc.CreateAssessment(ctx, f.admin, in)
	if err != nil {
		f.t.Fatal(err)
	}
	return a
}

func (f *fixture) assignmentOf(assessmentID, studentID int64) (id int64) {
	f.t.Helper()
	err := f.db.QueryRow(`
		SELECT id FROM student_assessments
		WHERE assessment_id = $1 AND student_id = $2`,
		assessmentID, studentID,
	).Scan(&id)
	if err != nil {
		f.t.Fatal(err)
	}
	return
}

func (f *fixture) status(assignmentID int64) (status string, submittedAt sql.NullTime) {
	f.t.Helper()
	err := f.db.QueryRow(`
		SELECT status, submitted_at FROM student_assessments WHERE id = $1`,
		assignmentID,
	).Scan(&status, &submittedAt)
	if err != nil {
		f.t.Fatal(err)
	}
	return
}

// answerAll answers a checkIn assessment.
func answerAll(a model.Assessment) map[int64]model.Answer {
	return map[int64]model.Answer{
		a.Questions[0].ID: model.Single("5"),
		a.Questions[1].ID: model.Multi("A", "B"),
	}
}

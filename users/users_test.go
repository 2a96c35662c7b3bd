package users

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/wellness-hub/config"
	"github.com/mbolis/wellness-hub/database"
	"github.com/mbolis/wellness-hub/model"
)

var ctx = context.Background()

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(config.Config{
		DBDriver: config.DriverSQLite,
		DBUrl:    filepath.Join(t.TempDir(), "users.sqlite"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestRegister(t *testing.T) {
	s := newStore(t)

	u, err := s.Register(ctx, RegisterInput{Username: " alice ", Password: "correct horse", FullName: "Alice Liddell"})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == 0 || u.Username != "alice" || u.Role != model.RoleStudent {
		t.Errorf("user = %+v", u)
	}

	if err := s.CheckPassword(ctx, "alice", "correct horse"); err != nil {
		t.Errorf("good password: %v", err)
	}
	if err := s.CheckPassword(ctx, "alice", "wrong"); !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.Errorf("bad password: %v", err)
	}
	if err := s.CheckPassword(ctx, "nobody", "x"); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("unknown user: %v", err)
	}

	_, err = s.Register(ctx, RegisterInput{Username: "alice", Password: "another one"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newStore(t)

	_, err := s.Register(ctx, RegisterInput{Username: "a!", Password: "short"})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v", err)
	}
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	if fields["Username"] != "alphanum" || fields["Password"] != "min" {
		t.Errorf("failed fields = %v", fields)
	}
}

func TestEnsureAdmin(t *testing.T) {
	s := newStore(t)

	created, err := s.EnsureAdmin(ctx, "counselor", "s3cret-pass")
	if err != nil || !created {
		t.Fatalf("first call: %v %v", created, err)
	}
	created, err = s.EnsureAdmin(ctx, "counselor", "ignored")
	if err != nil || created {
		t.Fatalf("second call: %v %v", created, err)
	}

	c, err := s.Lookup(ctx, "counselor")
	if err != nil || !c.IsAdmin() {
		t.Errorf("lookup = %+v, %v", c, err)
	}
	if err := s.CheckPassword(ctx, "counselor", "s3cret-pass"); err != nil {
		t.Errorf("password was overwritten: %v", err)
	}
	if _, err := s.Lookup(ctx, "nobody"); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("unknown: %v", err)
	}
}

func TestListStudents(t *testing.T) {
	s := newStore(t)
	if _, err := s.EnsureAdmin(ctx, "counselor", "s3cret-pass"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"zoe", "bob"} {
		if _, err := s.Register(ctx, RegisterInput{Username: name, Password: "password1"}); err != nil {
			t.Fatal(err)
		}
	}

	students, err := s.ListStudents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(students) != 2 || students[0].Username != "bob" || students[1].Username != "zoe" {
		t.Errorf("students = %+v", students)
	}
}

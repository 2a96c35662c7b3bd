package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/wellness-hub/model"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrUnknownUser   = errors.New("unknown user")
)

type Store struct {
	db       *sql.DB
	validate *validator.Validate
}

func New(db *sql.DB) *Store {
	return &Store{db, validator.New(validator.WithRequiredStructEnabled())}
}

// RegisterInput is a student self registration.
type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required,alphanum,min=3,max=32"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" form:"full_name" validate:"max=100"`
}

// Register creates a student account. Validation failures are returned as
// validator.ValidationErrors.
func (s *Store) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validate.Struct(in); err != nil {
		return model.User{}, err
	}
	return s.create(ctx, in.Username, in.Password, in.FullName, model.RoleStudent)
}

// EnsureAdmin creates the counselor account unless the username exists.
func (s *Store) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	_, err = s.create(ctx, username, password, "", model.RoleAdmin)
	if errors.Is(err, ErrUsernameTaken) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) create(ctx context.Context, username, password, fullName string, role model.Role) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "hash password")
	}

	u := model.User{
		Username:  username,
		FullName:  fullName,
		Role:      role,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, full_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		username,
		string(hash),
		fullName,
		string(role),
		u.CreatedAt,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return model.User{}, ErrUsernameTaken
	}
	if err != nil {
		return model.User{}, errors.Wrap(err, "insert user")
	}
	return u, nil
}

// ListStudents is the targeting list for new assessments.
func (s *Store) ListStudents(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, full_name, role, created_at
		FROM users
		WHERE role = 'student'
		ORDER BY username`)
	if err != nil {
		return nil, errors.Wrap(err, "list students")
	}
	defer rows.Close()

	students := []model.User{}
	for rows.Next() {
		var u model.User
		if err = rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan student")
		}
		students = append(students, u)
	}
	return students, errors.Wrap(rows.Err(), "list students")
}

// Lookup resolves a username to the identity carried by its tokens.
func (s *Store) Lookup(ctx context.Context, username string) (model.Caller, error) {
	var c model.Caller
	err := s.db.QueryRowContext(ctx,
		`SELECT id, role FROM users WHERE username = $1`,
		username,
	).Scan(&c.UserID, &c.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Caller{}, ErrUnknownUser
	}
	return c, errors.Wrap(err, "lookup user")
}

// CheckPassword fails with ErrUnknownUser or bcrypt.ErrMismatchedHashAndPassword.
func (s *Store) CheckPassword(ctx context.Context, username, password string) error {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownUser
	}
	if err != nil {
		return errors.Wrap(err, "lookup password")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

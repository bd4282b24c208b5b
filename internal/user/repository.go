package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"abc-retailers/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, phone_number,
	address, role, is_active, date_registered, last_login, created_at, updated_at`

const uniqueViolation = "23505"

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.Address, &u.Role, &u.IsActive, &u.DateRegistered, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// mapUniqueViolation turns a unique-constraint failure on users into the
// matching sentinel.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case "users_email_key", "users_email_lower_key":
		return ErrEmailExists
	case "users_username_key":
		return ErrUsernameExists
	}
	return err
}

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, phone_number, address, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING is_active, date_registered, created_at, updated_at`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.PhoneNumber, u.Address, u.Role,
	).Scan(&u.IsActive, &u.DateRegistered, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		mapped := mapUniqueViolation(err)
		if mapped == err {
			log.Error("db: failed to insert user", zap.String("email", u.Email), zap.Error(err))
		}
		return mapped
	}
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

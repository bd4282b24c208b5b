package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"abc-retailers/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateProfile writes the editable profile fields of u.
func (r *repository) UpdateProfile(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProfile"),
		zap.String("user_id", u.ID.String()),
	)

	query := `
		UPDATE users
		SET username = $2,
			first_name = $3,
			last_name = $4,
			phone_number = $5,
			address = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		u.ID, u.Username, u.FirstName, u.LastName, u.PhoneNumber, u.Address,
	).Scan(&u.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		log.Info("profile not found")
		return ErrUserNotFound
	}
	if err != nil {
		mapped := mapUniqueViolation(err)
		if mapped == err {
			log.Error("failed to update profile", zap.Error(err))
		}
		return mapped
	}

	log.Info("profile updated successfully")
	return nil
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to record last login",
			zap.String("layer", "repository"),
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
	}
	return err
}

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"abc-retailers/internal/logger"
	"abc-retailers/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Generate(userID uuid.UUID, email, role string) (string, error)
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*User, error)
}

type service struct {
	repo     Repository
	tokens   TokenIssuer
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{
		repo:     repo,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// emails are stored lower-case; users_email_lower_key enforces it in SQL.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, input RegisterInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	input.Email = normalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	if err := s.validate.Struct(input); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashed,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  utils.NilIfEmpty(input.PhoneNumber),
		Address:      utils.NilIfEmpty(input.Address),
		Role:         utils.RoleCustomer,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) || errors.Is(err, ErrUsernameExists) {
			log.Info("registration rejected", zap.Error(err))
			return "", nil, err
		}
		log.Error("failed to create user", zap.String("email", u.Email), zap.Error(err))
		return "", nil, err
	}

	token, err := s.tokens.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID.String()), zap.Error(err))
		return "", nil, err
	}

	log.Info("register service completed", zap.String("user_id", u.ID.String()))
	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("email not found")
			return "", nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user", zap.Error(err))
		return "", nil, err
	}

	if !CheckPasswordHash(password, u.PasswordHash) {
		log.Info("password not match", zap.String("user_id", u.ID.String()))
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrInactiveAccount
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err == nil {
		u.LastLogin = &now
	}

	token, err := s.tokens.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		log.Error("failed to generate jwt", zap.Error(err))
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.Username = input.Username
	u.FirstName = input.FirstName
	u.LastName = input.LastName
	u.PhoneNumber = utils.NilIfEmpty(input.PhoneNumber)
	u.Address = utils.NilIfEmpty(input.Address)

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

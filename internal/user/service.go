package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

const minPasswordLength = 8

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(userID uint, email, role string) (string, error)
}

type Service interface {
	Register(ctx context.Context, email, password, name string) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	CheckActive(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	SetStatus(ctx context.Context, id uint, blocked, suspended bool) (*User, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return email, nil
}

func (s *service) Register(ctx context.Context, email, password, name string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	email, err := normalizeEmail(email)
	if err != nil {
		return "", nil, err
	}
	if len(password) < minPasswordLength {
		return "", nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	u, err := s.repo.Create(ctx, &User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashed,
		Role:         RoleUser,
	})
	if err != nil {
		log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return "", nil, err
	}

	token, err := s.tokens.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}

	log.Info("register service completed",
		zap.Uint("user_id", u.ID),
		zap.String("email", email),
	)

	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login failed: email not found")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !CheckPasswordHash(password, u.PasswordHash) {
		log.Info("login failed: password mismatch", zap.Uint("user_id", u.ID))
		return "", nil, ErrInvalidCredentials
	}

	if err := statusError(u); err != nil {
		log.Warn("login rejected", zap.Uint("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}

	token, err := s.tokens.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func statusError(u *User) error {
	switch u.Status() {
	case StatusBlocked:
		return ErrUserBlocked
	case StatusSuspended:
		return ErrUserSuspended
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CheckActive(ctx context.Context, id uint) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return statusError(u)
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.Page, filter.Limit, _ = utils.Pagination(filter.Page, filter.Limit, 20, 100)

	switch filter.Status {
	case "", StatusActive, StatusBlocked, StatusSuspended:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list users", zap.Error(err))
		return nil, err
	}

	return &ListResult{Items: users, Page: filter.Page, Limit: filter.Limit, TotalCount: total}, nil
}

func (s *service) SetStatus(ctx context.Context, id uint, blocked, suspended bool) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetUserStatus"),
		zap.Uint("user_id", id),
	)

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role == RoleAdmin && (blocked || suspended) {
		return nil, ErrAdminStatus
	}

	u, err := s.repo.SetStatus(ctx, id, blocked, suspended)
	if err != nil {
		return nil, err
	}

	log.Info("user status updated", zap.Bool("blocked", blocked), zap.Bool("suspended", suspended))
	return u, nil
}

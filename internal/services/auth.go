package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/monocle-dev/bugtracker/internal/apperr"
	"github.com/monocle-dev/bugtracker/internal/auth"
	"github.com/monocle-dev/bugtracker/internal/models"
	"github.com/monocle-dev/bugtracker/internal/repository"
	"github.com/rs/zerolog"
)

type TokenIssuer interface {
	Generate(userID uint, email string) (string, error)
}

type AuthService struct {
	users  UserRepository
	tokens TokenIssuer
}

func NewAuthService(users UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	if !validEmail(email) {
		return nil, apperr.Validation("Email is not a valid address")
	}

	if len(password) > auth.MaxPasswordBytes {
		return nil, apperr.Validation("Password must be at most 72 bytes")
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict("Email already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("failed to check existing user", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{Email: email, PasswordHash: hash}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	zerolog.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user registered")

	return user, nil
}

// Login returns a signed bearer token for valid credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)

	if email == "" || password == "" {
		return "", apperr.Validation("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return "", apperr.Internal("failed to load user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", apperr.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return "", apperr.Internal("failed to generate token", err)
	}

	return token, nil
}

// Package service implements account registration and token issuance.
package service

import (
	"context"
	"errors"
	"time"

	"carmantra_backend/internal/auth/repository"
	"carmantra_backend/internal/auth/transport"
	"carmantra_backend/platform/apperr"
	"carmantra_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultRole = "staff"

// UserStore is the persistence surface the service needs.
type UserStore interface {
	Create(ctx context.Context, params repository.CreateUserParams) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type Service struct {
	repo UserStore
	cfg  config.AuthServiceConfig
}

func New(repo UserStore, cfg config.AuthServiceConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Register creates a new account. The first account ever created becomes an
// admin regardless of the requested role, so a fresh deployment can bootstrap
// itself without seed data.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (transport.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = defaultRole
	}
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return transport.UserResponse{}, err
	}
	if count == 0 {
		role = "admin"
	}

	user, err := s.repo.Create(ctx, repository.CreateUserParams{
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return transport.UserResponse{}, apperr.Conflict("email already registered")
		}
		return transport.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
		}
		return transport.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}

	token, expiresAt, err := s.issueAccessToken(user)
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	return transport.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        toUserResponse(user),
	}, nil
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.UserResponse{}, apperr.NotFound("user not found")
		}
		return transport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *Service) issueAccessToken(user repository.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"roles": []string{user.Role},
		"type":  "access",
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carmantra_backend/internal/auth/repository"
	"carmantra_backend/internal/auth/transport"
	"carmantra_backend/platform/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeUserStore struct {
	users map[string]repository.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]repository.User)}
}

func (s *fakeUserStore) Create(_ context.Context, params repository.CreateUserParams) (repository.User, error) {
	if _, exists := s.users[params.Email]; exists {
		return repository.User{}, repository.ErrEmailTaken
	}
	user := repository.User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		DisplayName:  params.DisplayName,
		Role:         params.Role,
		CreatedAt:    time.Now(),
	}
	s.users[params.Email] = user
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	user, ok := s.users[email]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) CountUsers(_ context.Context) (int, error) {
	return len(s.users), nil
}

type testAuthConfig struct{}

func (testAuthConfig) GetJWTAccessSecret() string       { return "test-secret" }
func (testAuthConfig) GetAccessTokenTTL() time.Duration { return 15 * time.Minute }

func register(t *testing.T, svc *Service, email, password, role string) transport.UserResponse {
	t.Helper()
	user, err := svc.Register(context.Background(), transport.RegisterRequest{
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return user
}

func TestFirstRegisteredUserBecomesAdmin(t *testing.T) {
	svc := New(newFakeUserStore(), testAuthConfig{})

	first := register(t, svc, "first@example.com", "password123", "staff")
	second := register(t, svc, "second@example.com", "password123", "")

	if first.Role != "admin" {
		t.Errorf("first user role = %q, want admin", first.Role)
	}
	if second.Role != "staff" {
		t.Errorf("second user role = %q, want staff", second.Role)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := New(newFakeUserStore(), testAuthConfig{})
	register(t, svc, "dup@example.com", "password123", "")

	_, err := svc.Register(context.Background(), transport.RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
	})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestLoginIssuesValidAccessToken(t *testing.T) {
	svc := New(newFakeUserStore(), testAuthConfig{})
	user := register(t, svc, "ravi@example.com", "password123", "")

	resp, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "ravi@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	parsed, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not parse as valid: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if sub, _ := claims["sub"].(string); sub != user.ID.String() {
		t.Errorf("sub claim = %q, want %q", sub, user.ID)
	}
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		t.Errorf("type claim = %q, want access", tokenType)
	}
	roles, _ := claims["roles"].([]interface{})
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("roles claim = %v, want [admin]", roles)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := New(newFakeUserStore(), testAuthConfig{})
	register(t, svc, "ravi@example.com", "password123", "")

	for _, attempt := range []transport.LoginRequest{
		{Email: "ravi@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "password123"},
	} {
		_, err := svc.Login(context.Background(), attempt)
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUnauthorized {
			t.Errorf("Login(%s) error = %v, want unauthorized", attempt.Email, err)
		}
	}
}

func TestMeReturnsProfile(t *testing.T) {
	svc := New(newFakeUserStore(), testAuthConfig{})
	created := register(t, svc, "ravi@example.com", "password123", "")

	got, err := svc.Me(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if got.Email != "ravi@example.com" {
		t.Errorf("email = %q, want ravi@example.com", got.Email)
	}

	if _, err := svc.Me(context.Background(), uuid.New()); err == nil {
		t.Error("expected not found error for unknown id")
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carforsales_backend/internal/auth/repository"
	"carforsales_backend/internal/auth/transport"
	"carforsales_backend/internal/events"
	"carforsales_backend/platform/apperr"
	"carforsales_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeStore struct {
	byEmail map[string]*repository.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]*repository.User)}
}

func (f *fakeStore) CreateUser(_ context.Context, email, passwordHash, name, role string) (*repository.User, error) {
	if _, exists := f.byEmail[email]; exists {
		return nil, apperr.Conflict("email already registered")
	}
	user := &repository.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	f.byEmail[email] = user
	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*repository.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*repository.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeStore) SetRole(_ context.Context, id uuid.UUID, role string) error {
	for _, user := range f.byEmail {
		if user.ID == id {
			user.Role = role
			return nil
		}
	}
	return apperr.NotFound("user not found")
}

type testConfig struct{}

func (testConfig) GetJWTSecret() string             { return "test-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration { return time.Hour }

func newService(store *fakeStore) *Service {
	log := logger.New("development")
	return New(store, testConfig{}, events.NewInMemoryBus(log), log)
}

func TestSignUp_AlwaysStartsAsCustomer(t *testing.T) {
	svc := newService(newFakeStore())

	resp, err := svc.SignUp(context.Background(), transport.SignUpRequest{
		Email:    "Alex@Example.com",
		Password: "hunter2hunter2",
		Name:     "Alex Doe",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if resp.User.Role != "customer" {
		t.Fatalf("role = %q, want customer", resp.User.Role)
	}
	if resp.User.Email != "alex@example.com" {
		t.Fatalf("email not lowercased: %q", resp.User.Email)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected a signed access token")
	}
}

func TestSignUp_TokenCarriesSubjectAndRole(t *testing.T) {
	svc := newService(newFakeStore())

	resp, err := svc.SignUp(context.Background(), transport.SignUpRequest{
		Email:    "alex@example.com",
		Password: "hunter2hunter2",
		Name:     "Alex Doe",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims["sub"] != resp.User.ID.String() {
		t.Fatalf("sub = %v, want %s", claims["sub"], resp.User.ID)
	}
	if claims["role"] != "customer" {
		t.Fatalf("role claim = %v, want customer", claims["role"])
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)

	if _, err := svc.SignUp(context.Background(), transport.SignUpRequest{
		Email:    "alex@example.com",
		Password: "hunter2hunter2",
		Name:     "Alex Doe",
	}); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	_, err := svc.SignIn(context.Background(), transport.SignInRequest{
		Email:    "alex@example.com",
		Password: "not-the-password",
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSignIn_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc := newService(newFakeStore())

	_, err := svc.SignIn(context.Background(), transport.SignInRequest{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if appErr.Message != "invalid credentials" {
		t.Fatalf("message = %q, should not leak account existence", appErr.Message)
	}
}

func TestSignIn_RoundTrip(t *testing.T) {
	svc := newService(newFakeStore())

	if _, err := svc.SignUp(context.Background(), transport.SignUpRequest{
		Email:    "alex@example.com",
		Password: "hunter2hunter2",
		Name:     "Alex Doe",
	}); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	resp, err := svc.SignIn(context.Background(), transport.SignInRequest{
		Email:    "ALEX@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected a signed access token")
	}
}

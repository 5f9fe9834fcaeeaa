// Package service contains the auth business logic: password hashing and
// access token issuance.
package service

import (
	"context"
	"strings"
	"time"

	"carforsales_backend/internal/auth/repository"
	"carforsales_backend/internal/auth/transport"
	"carforsales_backend/internal/events"
	"carforsales_backend/platform/apperr"
	"carforsales_backend/platform/config"
	"carforsales_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Store is the persistence surface the service needs.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash, name, role string) (*repository.User, error)
	GetUserByEmail(ctx context.Context, email string) (*repository.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*repository.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role string) error
}

// Service implements account registration and sign-in.
type Service struct {
	store Store
	cfg   config.AuthServiceConfig
	bus   events.Bus
	log   *logger.Logger
}

// New creates the auth service.
func New(store Store, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, bus: bus, log: log}
}

// SignUp registers a new account. New accounts always start as customers;
// role elevation is an admin operation.
func (s *Service) SignUp(ctx context.Context, req transport.SignUpRequest) (*transport.TokenResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.store.CreateUser(ctx, email, string(hash), req.Name, "customer")
	if err != nil {
		s.log.AuthEvent("signup", email, false, err.Error())
		return nil, err
	}

	s.log.AuthEvent("signup", email, true, "")
	s.bus.Publish(ctx, events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
	})

	return s.issueToken(user)
}

// SignIn exchanges credentials for an access token.
func (s *Service) SignIn(ctx context.Context, req transport.SignInRequest) (*transport.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("signin", email, false, "unknown email")
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("signin", email, false, "wrong password")
		return nil, apperr.Unauthorized("invalid credentials")
	}

	s.log.AuthEvent("signin", email, true, "")
	return s.issueToken(user)
}

// Me returns the account behind an access token.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*transport.UserResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// SetRole changes a user's role.
func (s *Service) SetRole(ctx context.Context, userID uuid.UUID, role string) error {
	return s.store.SetRole(ctx, userID, role)
}

func (s *Service) issueToken(user *repository.User) (*transport.TokenResponse, error) {
	expiresAt := time.Now().Add(s.cfg.GetAccessTokenTTL())
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.GetJWTSecret()))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	return &transport.TokenResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		User:        toUserResponse(user),
	}, nil
}

func toUserResponse(u *repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

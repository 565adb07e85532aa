package auth

import (
	"context"
	"errors"
	"fmt"

	"reelhouse/internal/core"
	"reelhouse/internal/models"
	"reelhouse/internal/store"
)

// UserStore is the part of the catalog the auth service needs
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, in models.UserCreate) (models.User, error)
}

// Common authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Service provides authentication functionality
type Service struct {
	users    UserStore
	password Password
	logger   *core.Logger
}

// NewService creates a new authentication service
func NewService(users UserStore, password Password, logger *core.Logger) *Service {
	return &Service{
		users:    users,
		password: password,
		logger:   logger,
	}
}

// Resolve looks up username. A missing user is not an error: the returned pointer is nil.
func (s *Service) Resolve(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthenticateUser verifies a username and password pair
func (s *Service) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	match, err := s.password.Matches(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CreateUser hashes password and stores a new user
func (s *Service) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	hash, err := s.password.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, models.UserCreate{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created user", "user_id", user.ID, "username", user.Username, "admin", user.IsAdmin)
	return &user, nil
}

// EnsureAdmin creates the administrator account unless the username already exists
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*models.User, error) {
	existing, err := s.Resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.CreateUser(ctx, username, password, true)
}

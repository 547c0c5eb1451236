package service

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive/taskhive-go/internal/crypto"
	"github.com/taskhive/taskhive-go/internal/model"
	"github.com/taskhive/taskhive-go/internal/repository"
)

// Sentinel messages are the exact strings the API returns to clients.
var (
	ErrMissingFields       = errors.New("All fields are required")
	ErrCredentialsRequired = errors.New("Email and password are required")
	ErrEmailTaken          = errors.New("Email already in use")
	ErrInvalidCredentials  = errors.New("Invalid email or password")
	ErrUserNotFound        = errors.New("User not found")
)

// UserStore is the credential store consumed by AuthService.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthService handles registration, login and profile lookup.
type AuthService struct {
	store     UserStore
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account and returns a session token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return model.AuthResponse{}, ErrMissingFields
	}

	// Fast-path existence check for a friendlier error; the store's unique
	// constraint remains the correctness guarantee under concurrent registration.
	if _, err := s.store.GetByEmail(ctx, req.Email); err == nil {
		return model.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}
	user.CreatedAt = time.Now().UTC()

	token, err := crypto.GenerateToken(user.ID, user.Username, user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Message: "User registered successfully",
		User:    userToResponse(user),
		Token:   token,
	}, nil
}

// Login authenticates a user and returns a session token.
// Unknown email and wrong password produce the same error so callers
// cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return model.AuthResponse{}, ErrCredentialsRequired
	}

	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(user.ID, user.Username, user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Message: "Login successful",
		User:    userToResponse(user),
		Token:   token,
	}, nil
}

// GetProfile retrieves a user by ID and returns the public view.
// The ID must come from verified token claims, never from client input.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return userToResponse(user), nil
}

// userToResponse converts a User to its public API view.
func userToResponse(u *model.User) model.UserResponse {
	return model.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id string, name, email, passwordHash *string, role *Role) (*User, error)
	Delete(ctx context.Context, id string) error
}

// Service handles user management and credential checks.
type Service struct {
	store      Store
	bcryptCost int
}

// NewService creates a service backed by a store.
func NewService(store Store, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, bcryptCost: bcryptCost}
}

// Create registers a new user with a hashed credential.
func (s *Service) Create(ctx context.Context, name, email, password string, role Role) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return User{}, ErrMissingFields
	}
	if !ValidEmail(email) {
		return User{}, ErrInvalidEmail
	}
	if role != RoleAdmin {
		role = RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.store.Create(ctx, User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         role,
	})
}

// Authenticate verifies an email/password pair and returns the user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// UpdateInput carries optional field changes for Update.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}

// Update applies the provided changes, re-hashing the password when present.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*User, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return nil, ErrMissingFields
		}
		in.Name = &trimmed
	}
	if in.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*in.Email))
		if !ValidEmail(trimmed) {
			return nil, ErrInvalidEmail
		}
		in.Email = &trimmed
	}
	var hash *string
	if in.Password != nil && *in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hs := string(h)
		hash = &hs
	}
	return s.store.Update(ctx, id, in.Name, in.Email, hash, in.Role)
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

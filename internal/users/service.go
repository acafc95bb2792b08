package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// Service contains account business logic.
type Service struct {
	Repo Repo
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login verifies the credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrBadCredentials
		}
		return User{}, err
	}
	if u.PasswordHash == "" {
		// Google-only account; no password login.
		return User{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

// EnsureGoogleUser returns the account for a Google login, creating it on
// first sight. Google accounts carry no password hash.
func (s *Service) EnsureGoogleUser(ctx context.Context, email, name string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	u := User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return s.Repo.GetByEmail(ctx, email)
		}
		return User{}, err
	}
	return u, nil
}

// Package service holds the account and payment workflows that sit between
// the HTTP handlers and storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/payment-gateway/internal/auth"
	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

// PasswordHasher hashes and verifies user secrets.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer mints session tokens for a subject.
type TokenIssuer interface {
	Generate(subject string) (string, error)
	TTL() time.Duration
}

// Session is the result of a successful signin.
type Session struct {
	Token     string
	ExpiresIn time.Duration
}

// AccountService implements signup, signin and profile operations.
type AccountService struct {
	users  storage.UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	log    logging.Logger

	decoyOnce sync.Once
	decoyHash string
}

// NewAccountService wires the account workflows.
func NewAccountService(users storage.UserStore, hasher PasswordHasher, tokens TokenIssuer, log logging.Logger) *AccountService {
	return &AccountService{users: users, hasher: hasher, tokens: tokens, log: log}
}

// NormalizeEmail is the single email comparison policy: surrounding space is
// dropped and the address is lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new user and returns the stored record.
func (s *AccountService) Signup(ctx context.Context, email, fullName, password string) (models.User, error) {
	email = NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" {
		return models.User{}, validationErr("email and full_name are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) || errors.Is(err, auth.ErrPasswordTooLong) {
			return models.User{}, validationErr("%v", err)
		}
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, models.User{Email: email, FullName: fullName, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	s.log.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Signin checks credentials and issues a session token.
func (s *AccountService) Signin(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return Session{}, fmt.Errorf("lookup user: %w", err)
		}
		// Spend the same bcrypt work as a real check.
		s.hasher.Verify(password, s.decoy())
		return Session{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, ExpiresIn: s.tokens.TTL()}, nil
}

// Profile returns the user named by an authenticated identity.
func (s *AccountService) Profile(ctx context.Context, email string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes mutable profile fields of the authenticated user.
func (s *AccountService) UpdateProfile(ctx context.Context, email string, update models.UserUpdate) (models.User, error) {
	if update.FullName != nil {
		trimmed := strings.TrimSpace(*update.FullName)
		if trimmed == "" {
			return models.User{}, validationErr("full_name must not be empty")
		}
		update.FullName = &trimmed
	}

	user, err := s.Profile(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if update.Empty() {
		return user, nil
	}

	updated, err := s.users.UpdateUser(ctx, user.ID, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func (s *AccountService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-for-unknown-users")
		if err != nil {
			s.log.Warn(context.Background(), "decoy hash unavailable", "error", err)
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

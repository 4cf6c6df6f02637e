// Package service — account business logic.
//
// UserService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	UserHandler (HTTP) → UserService (rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//	                   ↘ TokenService (JWT)
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/masterlist/internal/apperror"
	"github.com/sakif/masterlist/internal/auth"
	"github.com/sakif/masterlist/internal/model"
	"github.com/sakif/masterlist/internal/repository"
)

// UserService handles registration, login, and account maintenance.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account.
//
// The duplicate check is a lookup-then-insert rather than insert-and-catch:
// the friendlier path for the common case. A concurrent registration racing
// past the lookup still conflicts on the UNIQUE constraint and comes back as
// the same ErrConflict.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("username",
			"Username and password are required")
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, apperror.Conflict("Username already exists")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking username %s: %w", username, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", username))

	return user, nil
}

// Login verifies credentials and issues a 1-hour access token.
//
// SYMMETRIC FAILURE:
// Unknown username and wrong password both answer with the exact same
// message. A distinguishable reply would let an attacker enumerate which
// usernames exist.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperror.ValidationFailed("username",
			"Username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized("Invalid username or password")
		}
		return "", fmt.Errorf("looking up user %s: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", apperror.Unauthorized("Invalid username or password")
	}

	token, err := s.tokens.Generate(username)
	if err != nil {
		return "", fmt.Errorf("generating token for %s: %w", username, err)
	}

	s.logger.Info("user logged in", slog.String("username", username))

	return token, nil
}

// Get returns the account record for username. Callers may only read their
// own account.
func (s *UserService) Get(ctx context.Context, caller, username string) (*model.User, error) {
	if err := s.requireSelf(caller, username, "access"); err != nil {
		return nil, err
	}
	return s.users.GetUserByUsername(ctx, username)
}

// UpdatePassword replaces the caller's password.
func (s *UserService) UpdatePassword(ctx context.Context, caller, username, password string) error {
	if err := s.requireSelf(caller, username, "update"); err != nil {
		return err
	}
	if password == "" {
		return apperror.ValidationFailed("password", "Password is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return apperror.ValidationFailed("password", err.Error())
	}

	if err := s.users.UpdatePassword(ctx, username, hash); err != nil {
		return err
	}

	s.logger.Info("password updated", slog.String("username", username))
	return nil
}

// Delete removes the caller's account. Their lists are left in place — they
// become unreachable, since list access is keyed on the (now retired)
// username and usernames of deleted accounts can be re-registered.
func (s *UserService) Delete(ctx context.Context, caller, username string) error {
	if err := s.requireSelf(caller, username, "delete"); err != nil {
		return err
	}

	if err := s.users.DeleteUser(ctx, username); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("username", username))
	return nil
}

// requireSelf enforces that account routes only ever touch the caller's own
// record.
func (s *UserService) requireSelf(caller, username, action string) error {
	if caller == "" {
		return errNotAuthenticated()
	}
	if caller != username {
		return apperror.Unauthorized(fmt.Sprintf(
			"User %s is not authorized to %s user %s", caller, action, username))
	}
	return nil
}

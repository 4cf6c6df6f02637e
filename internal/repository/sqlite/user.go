package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/masterlist/internal/apperror"
	"github.com/sakif/masterlist/internal/model"
	"github.com/sakif/masterlist/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new account.
//
// ID GENERATION WITH xid:
// xid generates globally unique IDs that are 20 chars, URL-safe, and sortable
// by creation time. Users aren't addressed by id over the API (the username
// is the public identity), so there's no length contract to honour here.
//
// DUPLICATE USERNAMES:
// The UNIQUE constraint on username is the source of truth. The service layer
// pre-checks for a friendlier flow, but a concurrent registration race still
// lands here — we translate the constraint violation into ErrConflict so the
// handler answers 409 either way.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Username already exists")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// GetUserByUsername retrieves an account by username.
// Returns apperror.ErrNotFound if no user exists with that username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMessage(
				fmt.Sprintf("User with username %s not found", username))
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}

	return &u, nil
}

// UpdatePassword replaces the stored password hash for the user.
// The username itself is immutable — it's the identity lists are keyed on.
func (db *DB) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE username = ?`,
		passwordHash,
		username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for %s: %w", username, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMessage(
			fmt.Sprintf("User with username %s not found", username))
	}

	return nil
}

// DeleteUser removes an account by username.
func (db *DB) DeleteUser(ctx context.Context, username string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM users WHERE username = ?`,
		username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", username, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMessage(
			fmt.Sprintf("User with username %s not found", username))
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint error.
// modernc.org/sqlite doesn't export a typed error for this, so we match the
// stable message prefix the engine produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

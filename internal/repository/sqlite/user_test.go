package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/masterlist/internal/apperror"
	"github.com/sakif/masterlist/internal/model"
)

// createTestUser inserts a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$fakehashfortestingonly..............",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE USER TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "testuser")

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "testuser")

	// Second registration with the same username must conflict —
	// the UNIQUE constraint is the source of truth.
	dup := &model.User{Username: "testuser", PasswordHash: "other-hash"}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() duplicate error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// GET USER TESTS
// =========================================================================

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "testuser")

	found, err := db.GetUserByUsername(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.PasswordHash != created.PasswordHash {
		t.Error("PasswordHash did not round-trip")
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByUsername() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE PASSWORD TESTS
// =========================================================================

func TestUpdatePassword(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "testuser")

	if err := db.UpdatePassword(context.Background(), "testuser", "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	found, err := db.GetUserByUsername(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if found.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, "new-hash")
	}
}

func TestUpdatePassword_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdatePassword(context.Background(), "nobody", "new-hash")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePassword() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE USER TESTS
// =========================================================================

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "testuser")

	if err := db.DeleteUser(context.Background(), "testuser"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	_, err := db.GetUserByUsername(context.Background(), "testuser")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByUsername() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteUser(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrNotFound", err)
	}
}

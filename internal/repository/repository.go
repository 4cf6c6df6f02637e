// Package repository defines the persistence interfaces the service layer
// programs against. Concrete implementations live in subpackages (sqlite).
//
// The store is treated as a document collection: whole records go in and out
// by id, and Replace swaps an entire document rather than patching fields.
package repository

import (
	"context"

	"github.com/sakif/masterlist/internal/model"
)

// ListRepository persists master lists.
type ListRepository interface {
	// Insert stores a new list and assigns its 24-character id.
	Insert(ctx context.Context, list *model.MasterList) error
	// FindByID returns the list with the given id, or apperror.ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.MasterList, error)
	// FindByUsername returns every list owned by the given user,
	// newest first. No pagination — the owner filter bounds the result.
	FindByUsername(ctx context.Context, username string) ([]model.MasterList, error)
	// Replace overwrites the stored document that matches list.ID with the
	// given document. Returns apperror.ErrNotFound if the id vanished.
	Replace(ctx context.Context, list *model.MasterList) error
	// Delete removes the list by id. Returns apperror.ErrNotFound when no
	// document matches, which makes a second delete of the same id safe.
	Delete(ctx context.Context, id string) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	// CreateUser stores a new user and assigns its id.
	// Returns apperror.ErrConflict when the username is taken.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByUsername returns the user, or apperror.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdatePassword replaces the stored password hash for the user.
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	// DeleteUser removes the account. Returns apperror.ErrNotFound when no
	// user matches.
	DeleteUser(ctx context.Context, username string) error
}

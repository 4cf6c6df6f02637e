package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/masterlist/internal/apperror"
	"github.com/sakif/masterlist/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Benefits:
// - Fast: no disk I/O
// - Isolated: each test gets its own database
// - Clean: automatically destroyed when the connection closes
//
// newTestDB is a "test helper" — a function used only in tests to reduce boilerplate.
// The `t.Helper()` call tells Go's test framework to report errors at the CALLER's
// line number, not inside this function. This makes test failure output much clearer.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	// t.Cleanup registers a function to run when the test finishes.
	// This is like defer, but scoped to the test — even works in subtests.
	t.Cleanup(func() { db.Close() })
	return db
}

// insertTestList is another helper — inserts a list and fails the test if it errors.
func insertTestList(t *testing.T, db *DB, username, name string, items ...string) *model.MasterList {
	t.Helper()
	list := &model.MasterList{
		Name:         name,
		Username:     username,
		CreatedDate:  time.Now(),
		ModifiedDate: time.Now(),
	}
	for _, item := range items {
		list.Items = append(list.Items, model.MasterListItem{Name: item})
	}
	if err := db.Insert(context.Background(), list); err != nil {
		t.Fatalf("failed to insert test list: %v", err)
	}
	return list
}

// =========================================================================
// INSERT TESTS
// =========================================================================

func TestInsert(t *testing.T) {
	db := newTestDB(t)

	list := &model.MasterList{
		Name:         "groceries",
		Username:     "testuser",
		CreatedDate:  time.Now(),
		ModifiedDate: time.Now(),
		Items: []model.MasterListItem{
			{Name: "cheese", Favorite: true},
		},
	}

	err := db.Insert(context.Background(), list)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// Verify the list was modified in-place (pointer receiver!)
	if list.ID == "" {
		t.Fatal("Insert() did not set list.ID")
	}
	// The id length is part of the API contract — routes validate it
	// before any store access.
	if len(list.ID) != 24 {
		t.Errorf("Insert() id length = %d, want 24 (%q)", len(list.ID), list.ID)
	}
}

func TestInsert_IDsAreUnique(t *testing.T) {
	db := newTestDB(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		list := insertTestList(t, db, "testuser", "list")
		if seen[list.ID] {
			t.Fatalf("Insert() generated duplicate id %q", list.ID)
		}
		seen[list.ID] = true
	}
}

func TestInsert_VerifyPersistence(t *testing.T) {
	db := newTestDB(t)

	original := insertTestList(t, db, "testuser", "groceries", "cheese", "carrots")

	found, err := db.FindByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}

	if found.Name != original.Name {
		t.Errorf("Name = %q, want %q", found.Name, original.Name)
	}
	if found.Username != original.Username {
		t.Errorf("Username = %q, want %q", found.Username, original.Username)
	}
	if len(found.Items) != 2 || found.Items[0].Name != "cheese" || found.Items[1].Name != "carrots" {
		t.Errorf("Items = %+v, want cheese, carrots", found.Items)
	}
}

func TestInsert_NilItemsStoredAsEmptyArray(t *testing.T) {
	db := newTestDB(t)

	list := insertTestList(t, db, "testuser", "empty")

	found, err := db.FindByID(context.Background(), list.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Items == nil {
		t.Error("Items should round-trip as an empty slice, not nil")
	}
	if len(found.Items) != 0 {
		t.Errorf("Items = %+v, want empty", found.Items)
	}
}

// =========================================================================
// FIND TESTS
// =========================================================================

func TestFindByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.FindByID(context.Background(), "000000000000000000000000")
	if err == nil {
		t.Fatal("FindByID() should return an error for a missing id")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindByID() error = %v, want ErrNotFound", err)
	}
}

func TestFindByUsername_FiltersByOwner(t *testing.T) {
	db := newTestDB(t)

	insertTestList(t, db, "alice", "alice list 1")
	insertTestList(t, db, "alice", "alice list 2")
	insertTestList(t, db, "bob", "bob list")

	lists, err := db.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}

	if len(lists) != 2 {
		t.Fatalf("FindByUsername() returned %d lists, want 2", len(lists))
	}
	for _, list := range lists {
		if list.Username != "alice" {
			t.Errorf("FindByUsername() returned list owned by %q", list.Username)
		}
	}
}

func TestFindByUsername_NoLists(t *testing.T) {
	db := newTestDB(t)

	lists, err := db.FindByUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if lists == nil {
		t.Error("FindByUsername() should return an empty slice, not nil")
	}
	if len(lists) != 0 {
		t.Errorf("FindByUsername() returned %d lists, want 0", len(lists))
	}
}

// =========================================================================
// REPLACE TESTS
// =========================================================================

func TestReplace(t *testing.T) {
	db := newTestDB(t)

	list := insertTestList(t, db, "testuser", "groceries", "cheese")

	list.Name = "weekly groceries"
	list.Pinned = true
	list.Suggestions = "Here are some suggested items for your list: bread, cereal, and milk"
	list.Items = append(list.Items, model.MasterListItem{Name: "bread"})
	list.ModifiedDate = time.Now().Add(time.Minute)

	if err := db.Replace(context.Background(), list); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	found, err := db.FindByID(context.Background(), list.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Name != "weekly groceries" {
		t.Errorf("Name = %q, want %q", found.Name, "weekly groceries")
	}
	if !found.Pinned {
		t.Error("Pinned was not persisted")
	}
	if found.Suggestions == "" {
		t.Error("Suggestions were not persisted")
	}
	if len(found.Items) != 2 {
		t.Errorf("Items = %+v, want 2 items", found.Items)
	}
}

func TestReplace_NotFound(t *testing.T) {
	db := newTestDB(t)

	list := &model.MasterList{
		ID:           "000000000000000000000000",
		Name:         "ghost",
		Username:     "testuser",
		CreatedDate:  time.Now(),
		ModifiedDate: time.Now(),
	}

	err := db.Replace(context.Background(), list)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Replace() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete(t *testing.T) {
	db := newTestDB(t)

	list := insertTestList(t, db, "testuser", "groceries")

	if err := db.Delete(context.Background(), list.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.FindByID(context.Background(), list.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDelete_Twice(t *testing.T) {
	db := newTestDB(t)

	list := insertTestList(t, db, "testuser", "groceries")

	if err := db.Delete(context.Background(), list.ID); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}

	// Deleting twice is safe — the second call reports NotFound.
	err := db.Delete(context.Background(), list.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

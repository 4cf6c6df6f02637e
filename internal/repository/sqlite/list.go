package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sakif/masterlist/internal/apperror"
	"github.com/sakif/masterlist/internal/model"
	"github.com/sakif/masterlist/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// This line verifies AT COMPILE TIME that *DB implements repository.ListRepository.
//
// How it works:
//   - `var _ X = (*Y)(nil)` creates a nil pointer of type *Y
//   - It assigns it to a variable of type X (the interface)
//   - If *Y doesn't implement X, the compiler errors immediately
//   - The `_` means we don't actually use the variable — it's just a check
var _ repository.ListRepository = (*DB)(nil)

// newListID generates a 24-character lowercase-hex document id: a 4-byte
// big-endian unix timestamp followed by 8 random bytes.
//
// The 24-character length is part of the API contract — every id-taking route
// rejects ids that aren't exactly 24 characters before touching the store —
// so list ids can't reuse the 20-character xid format the users table uses.
// Leading with the timestamp keeps ids roughly sortable by creation time,
// the same property xid gives us elsewhere.
func newListID() string {
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(raw[4:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken,
		// at which point nothing in this process can be trusted.
		panic(fmt.Sprintf("sqlite: reading random bytes: %v", err))
	}
	return hex.EncodeToString(raw[:])
}

// Insert stores a new list and assigns its id.
//
// POINTER RECEIVER (*model.MasterList):
// We take a pointer so we can MODIFY the original struct — after Insert(),
// the caller's list carries the generated ID.
//
// PARAMETERIZED QUERIES (the ? placeholders):
// NEVER build SQL strings with fmt.Sprintf or string concatenation!
// The driver fills the placeholders and escapes the values, which is what
// prevents SQL injection.
func (db *DB) Insert(ctx context.Context, list *model.MasterList) error {
	list.ID = newListID()

	items, err := json.Marshal(itemsOrEmpty(list.Items))
	if err != nil {
		return fmt.Errorf("sqlite: encoding items for list %s: %w", list.ID, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO lists (id, username, name, items, suggestions, pinned, created_date, modified_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		list.ID,
		list.Username,
		list.Name,
		string(items),
		list.Suggestions,
		list.Pinned,
		list.CreatedDate,
		list.ModifiedDate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting list %s: %w", list.ID, err)
	}

	return nil
}

// FindByID retrieves a single list by its id.
//
// sql.ErrNoRows is NOT really an error — it just means "no matching row
// exists". We translate it to the app's NotFound error so the handler knows
// to answer 404. Translating database errors into domain errors at this
// boundary keeps everything above it store-agnostic.
func (db *DB) FindByID(ctx context.Context, id string) (*model.MasterList, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, username, name, items, suggestions, pinned, created_date, modified_date
		 FROM lists
		 WHERE id = ?`,
		id,
	)

	list, err := scanList(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(id)
		}
		return nil, fmt.Errorf("sqlite: getting list %s: %w", id, err)
	}

	return list, nil
}

// FindByUsername retrieves every list owned by the given user, newest first.
//
// defer rows.Close() — ABSOLUTELY CRITICAL:
// sql.Rows holds a database connection from the pool. If you forget to
// Close(), that connection is never returned, and after enough leaks the
// app runs out and hangs forever.
func (db *DB) FindByUsername(ctx context.Context, username string) ([]model.MasterList, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, name, items, suggestions, pinned, created_date, modified_date
		 FROM lists
		 WHERE username = ?
		 ORDER BY created_date DESC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing lists for %s: %w", username, err)
	}
	defer rows.Close()

	lists := []model.MasterList{}
	for rows.Next() {
		list, err := scanList(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning list row: %w", err)
		}
		lists = append(lists, *list)
	}

	// rows.Err() catches errors that happened DURING iteration
	// (e.g. the connection dropping mid-scan).
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating lists: %w", err)
	}

	return lists, nil
}

// Replace overwrites the entire stored document for list.ID.
//
// Every mutable column is written — this is document-replace semantics, not a
// field patch. RowsAffected() == 0 means the id vanished (e.g. a concurrent
// delete won the race), which surfaces as NotFound.
func (db *DB) Replace(ctx context.Context, list *model.MasterList) error {
	items, err := json.Marshal(itemsOrEmpty(list.Items))
	if err != nil {
		return fmt.Errorf("sqlite: encoding items for list %s: %w", list.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE lists
		 SET username = ?, name = ?, items = ?, suggestions = ?, pinned = ?, created_date = ?, modified_date = ?
		 WHERE id = ?`,
		list.Username,
		list.Name,
		string(items),
		list.Suggestions,
		list.Pinned,
		list.CreatedDate,
		list.ModifiedDate,
		list.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: replacing list %s: %w", list.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(list.ID)
	}

	return nil
}

// Delete removes a list by id.
//
// Same pattern as Replace — check RowsAffected to detect "not found", which
// also makes deleting twice safe: the second call reports NotFound.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM lists WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting list %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(id)
	}

	return nil
}

// scanList reads one lists row into a model.MasterList.
// Taking the Scan function as a parameter lets the same code serve both
// *sql.Row and *sql.Rows.
func scanList(scan func(dest ...any) error) (*model.MasterList, error) {
	var list model.MasterList
	var items string

	if err := scan(
		&list.ID,
		&list.Username,
		&list.Name,
		&items,
		&list.Suggestions,
		&list.Pinned,
		&list.CreatedDate,
		&list.ModifiedDate,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
		return nil, fmt.Errorf("decoding items for list %s: %w", list.ID, err)
	}

	return &list, nil
}

// itemsOrEmpty normalizes a nil item slice to an empty one, so the stored
// JSON (and everything read back) is always an array, never null.
func itemsOrEmpty(items []model.MasterListItem) []model.MasterListItem {
	if items == nil {
		return []model.MasterListItem{}
	}
	return items
}

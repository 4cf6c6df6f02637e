// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// Usernames are unique and immutable — they are the identity other records
// (lists) reference, so changing one would orphan everything the user owns.
// We still generate an internal string ID (xid) so primary keys don't carry
// user-visible meaning.
//
// WHY `json:"-"` ON PasswordHash?
// The hash must never leave the server. Tagging the field with "-" means
// encoding/json skips it entirely, so even a handler that naively encodes a
// *User cannot leak it.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

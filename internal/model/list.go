// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// MasterList is a named, user-owned collection of items.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON. The wire names match what the frontend expects.
//
// OWNERSHIP:
// Username is stamped from the authenticated caller when the list is created,
// and re-stamped on every update — a client cannot hand a list to another user
// by embedding a different username in an update body.
//
// SUGGESTIONS:
// A free-text blurb produced by the text-generation service. It is recomputed
// only when the sequence of item names changes; otherwise whatever the stored
// or submitted document carries is kept as-is.
type MasterList struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	CreatedDate  time.Time        `json:"createdDate"`
	ModifiedDate time.Time        `json:"modifiedDate"`
	Items        []MasterListItem `json:"items"`
	Username     string           `json:"username"`
	Suggestions  string           `json:"suggestions,omitempty"`
	Pinned       bool             `json:"pinned"`
}

// MasterListItem is a single entry in a list. Items have no identity of their
// own — they are addressed by position within the owning list.
type MasterListItem struct {
	Name     string `json:"name"`
	Favorite bool   `json:"favorite"`
}

// ItemNames returns the item names in list order.
// Used for prompt construction and for the "did the items change" comparison.
func (l *MasterList) ItemNames() []string {
	names := make([]string, len(l.Items))
	for i, item := range l.Items {
		names[i] = item.Name
	}
	return names
}

// SameItemNames reports whether two lists carry the same item-name sequence:
// same length and the same name at every index. Favorite flags and any other
// item state are deliberately ignored.
func (l *MasterList) SameItemNames(other *MasterList) bool {
	if len(l.Items) != len(other.Items) {
		return false
	}
	for i := range l.Items {
		if l.Items[i].Name != other.Items[i].Name {
			return false
		}
	}
	return true
}

// StoryMood flavours a generated story.
type StoryMood string

const (
	MoodHappy StoryMood = "happy"
	MoodSad   StoryMood = "sad"
	MoodScary StoryMood = "scary"
)

// StoryMoods lists every accepted mood, in the order they are reported
// back to the client when an invalid value is submitted.
func StoryMoods() []StoryMood {
	return []StoryMood{MoodHappy, MoodSad, MoodScary}
}

// ValidMood reports whether s is one of the accepted story moods.
func ValidMood(s string) bool {
	for _, m := range StoryMoods() {
		if s == string(m) {
			return true
		}
	}
	return false
}

// Package generator defines the text-generation collaborator used to enrich
// lists with item suggestions and to spin short stories out of their items.
//
// Enrichment is strictly best-effort: callers are expected to swallow any
// error from a Generator and substitute a fallback string. A flaky or absent
// generation service must never fail a CRUD operation.
package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sakif/masterlist/internal/model"
)

// Generator produces free text from a list's contents.
//
// Both operations are one-shot calls with no retries; the context bounds how
// long the caller is willing to wait.
type Generator interface {
	// SuggestItems returns a short blurb suggesting three new items for the
	// list, in the fixed reply format
	// "Here are some suggested items for your list: {a}, {b}, {c}".
	SuggestItems(ctx context.Context, list *model.MasterList) (string, error)

	// TellStory returns a mood-flavoured story of at most len(list.Items)
	// sentences that weaves in every item name.
	TellStory(ctx context.Context, list *model.MasterList, mood model.StoryMood) (string, error)
}

// System prompts. Kept here with the user-prompt builders so the whole prompt
// surface is reviewable in one place.
const (
	SuggestionsSystemPrompt = "You are a helpful assistant that provides suggestions for list items."
	StorySystemPrompt       = "You are a helpful assistant that creates stories from a list of words."
)

// SuggestionsPrompt builds the user prompt for item suggestions.
//
// The reply-format instruction is load-bearing: the frontend displays the
// blurb verbatim, so the model is pinned to a single sentence shape.
func SuggestionsPrompt(list *model.MasterList) string {
	names, _ := json.Marshal(list.ItemNames())
	return fmt.Sprintf(
		"Your task is to generate three suggestions of NEW items that could be added to a list called %s "+
			"that already contains the following items: %s. "+
			"If the list does not already contain any items, you will need to base your suggestions off the name of the list. "+
			"The response should ALWAYS be in this format: Here are some suggested items for your list: {item1}, {item2}, {item3}. "+
			`Example response for a list with name "food" that already contains "cheese" and "carrots": `+
			"Here are some suggested items for your list: bread, cereal, and milk",
		list.Name, names,
	)
}

// StoryPrompt builds the user prompt for a story.
// The sentence budget equals the item count, so longer lists earn longer stories.
func StoryPrompt(list *model.MasterList, mood model.StoryMood) string {
	names, _ := json.Marshal(list.ItemNames())
	return fmt.Sprintf(
		"Your task is to generate a %s story that is at most %d sentences long and incorporates the following words: %s.",
		mood, len(list.Items), names,
	)
}

// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// The service layer is where every access decision for lists lives: id shape
// checks, the owner-only rule, and the "regenerate suggestions only when the
// items changed" rule. Handlers stay HTTP-only; repositories stay SQL-only.
//
// DEPENDENCY INJECTION:
// ListService takes repository.ListRepository and generator.Generator
// (interfaces), not concrete types. Tests swap in an in-memory repository and
// a scripted generator; production wires sqlite and the OpenAI client.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/masterlist/internal/apperror"
	"github.com/sakif/masterlist/internal/generator"
	"github.com/sakif/masterlist/internal/model"
	"github.com/sakif/masterlist/internal/repository"
)

// IDLength is the exact length of a stored list id. Every id-taking
// operation rejects other lengths before touching the store.
const IDLength = 24

// Enrichment fallbacks. Generation failures are never surfaced as errors —
// the CRUD operation proceeds and the client sees one of these strings.
const (
	NoSuggestionsFallback  = "No suggestions could be generated."
	SuggestionsErrFallback = "Error generating suggestions"
	NoStoryFallback        = "No story could be generated."
	StoryErrFallback       = "Error generating story"
)

// errNotAuthenticated is returned whenever an operation runs without an
// authenticated caller. The middleware normally prevents this, but the
// service doesn't trust its callers to have run it.
func errNotAuthenticated() *apperror.AppError {
	return apperror.Forbidden("Forbidden: request must come from an authenticated user")
}

// ListService handles business logic for master lists.
type ListService struct {
	lists  repository.ListRepository
	gen    generator.Generator // nil when enrichment is disabled
	logger *slog.Logger
}

// NewListService creates a ListService.
//
// gen may be nil — the server runs fine without a text-generation backend,
// and every enrichment call just takes the error fallback.
func NewListService(lists repository.ListRepository, gen generator.Generator, logger *slog.Logger) *ListService {
	return &ListService{
		lists:  lists,
		gen:    gen,
		logger: logger,
	}
}

// Create stores a new list owned by username.
//
// The caller supplies only name and items; everything else is stamped here:
// both dates to now, pinned off, ownership to the authenticated caller, and
// an initial round of item suggestions from the generator.
func (s *ListService) Create(ctx context.Context, username, name string, items []model.MasterListItem) (*model.MasterList, error) {
	if username == "" {
		return nil, errNotAuthenticated()
	}

	now := time.Now()
	list := &model.MasterList{
		Name:         name,
		Items:        items,
		Username:     username,
		CreatedDate:  now,
		ModifiedDate: now,
		Pinned:       false,
	}
	list.Suggestions = s.suggestionsFor(ctx, list)

	if err := s.lists.Insert(ctx, list); err != nil {
		s.logger.Error("failed to create list",
			slog.String("name", name),
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating list: %w", err)
	}

	s.logger.Info("list created",
		slog.String("id", list.ID),
		slog.String("username", username),
	)

	return list, nil
}

// Get returns the list with the given id, if it belongs to username.
func (s *ListService) Get(ctx context.Context, username, id string) (*model.MasterList, error) {
	return s.fetchOwned(ctx, username, id, "retrieve")
}

// GetAll returns every list owned by username. The ownership filter is
// applied store-side; no pagination.
func (s *ListService) GetAll(ctx context.Context, username string) ([]model.MasterList, error) {
	if username == "" {
		return nil, errNotAuthenticated()
	}

	lists, err := s.lists.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Error("failed to list lists",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing lists: %w", err)
	}

	return lists, nil
}

// Update replaces the stored document with the incoming one.
//
// FULL-DOCUMENT REPLACE:
// Whatever the client sends becomes the new document — with three fields it
// doesn't control: the id comes from the URL, the owner is re-stamped from
// the authenticated caller (a client cannot hand a list to someone else by
// embedding a different username), and modifiedDate is set to now.
//
// SUGGESTIONS:
// Recomputed only when the incoming item-name sequence differs from the
// stored one (index-wise compare). When the names are unchanged, the
// incoming document's own suggestions field is stored as-is.
//
// The ownership check reads the document, then a separate replace executes;
// a concurrent delete between the two steps surfaces as NotFound from the
// replace, reported like any other missing id.
func (s *ListService) Update(ctx context.Context, username, id string, incoming *model.MasterList) (*model.MasterList, error) {
	existing, err := s.fetchOwned(ctx, username, id, "retrieve")
	if err != nil {
		return nil, err
	}

	replacement := *incoming
	replacement.ID = id
	replacement.Username = username
	replacement.ModifiedDate = time.Now()

	if !existing.SameItemNames(&replacement) {
		replacement.Suggestions = s.suggestionsFor(ctx, &replacement)
	}

	if err := s.lists.Replace(ctx, &replacement); err != nil {
		return nil, err
	}

	s.logger.Info("list updated",
		slog.String("id", id),
		slog.String("username", username),
	)

	return &replacement, nil
}

// Delete removes the list with the given id, if it belongs to username.
// Deleting an already-deleted id reports NotFound, so repeats are harmless.
func (s *ListService) Delete(ctx context.Context, username, id string) error {
	if _, err := s.fetchOwned(ctx, username, id, "delete"); err != nil {
		return err
	}

	if err := s.lists.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("list deleted",
		slog.String("id", id),
		slog.String("username", username),
	)
	return nil
}

// Story generates a mood-flavoured story from the list's items.
// The story is returned, never persisted.
//
// The mood is validated after the id/ownership checks, so a caller probing
// someone else's list gets the same answers whether or not they remembered
// the mood parameter.
func (s *ListService) Story(ctx context.Context, username, id, mood string) (string, error) {
	list, err := s.fetchOwned(ctx, username, id, "retrieve")
	if err != nil {
		return "", err
	}

	if mood == "" {
		return "", apperror.ValidationFailed("mood",
			"You must provide a mood value to get a story from a list")
	}
	if !model.ValidMood(mood) {
		return "", apperror.ValidationFailed("mood",
			fmt.Sprintf("Invalid mood value provided. Valid options include: %s", moodOptions()))
	}

	return s.storyFor(ctx, list, model.StoryMood(mood)), nil
}

// fetchOwned runs the shared access checks for all id-addressed operations:
// authenticated caller, 24-character id, document exists, caller owns it.
// action ("retrieve" or "delete") only flavours the unauthorized message.
func (s *ListService) fetchOwned(ctx context.Context, username, id, action string) (*model.MasterList, error) {
	if username == "" {
		return nil, errNotAuthenticated()
	}
	if len(id) != IDLength {
		return nil, apperror.ValidationFailed("id",
			"The id provided must be a string with 24 characters")
	}

	list, err := s.lists.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if list.Username != username {
		return nil, apperror.Unauthorized(fmt.Sprintf(
			"User %s is not authorized to %s object with id %s", username, action, id))
	}

	return list, nil
}

// suggestionsFor asks the generator for item suggestions, downgrading any
// failure to a fallback string. Enrichment must never fail the surrounding
// CRUD operation.
func (s *ListService) suggestionsFor(ctx context.Context, list *model.MasterList) string {
	if s.gen == nil {
		return SuggestionsErrFallback
	}

	text, err := s.gen.SuggestItems(ctx, list)
	if err != nil {
		s.logger.Warn("suggestion generation failed",
			slog.String("list", list.Name),
			slog.String("error", err.Error()),
		)
		return SuggestionsErrFallback
	}
	if text == "" {
		return NoSuggestionsFallback
	}
	return text
}

// storyFor mirrors suggestionsFor for stories.
func (s *ListService) storyFor(ctx context.Context, list *model.MasterList, mood model.StoryMood) string {
	if s.gen == nil {
		return StoryErrFallback
	}

	text, err := s.gen.TellStory(ctx, list, mood)
	if err != nil {
		s.logger.Warn("story generation failed",
			slog.String("list", list.Name),
			slog.String("mood", string(mood)),
			slog.String("error", err.Error()),
		)
		return StoryErrFallback
	}
	if text == "" {
		return NoStoryFallback
	}
	return text
}

// moodOptions renders the accepted moods for the invalid-mood message.
func moodOptions() string {
	moods := model.StoryMoods()
	parts := make([]string, len(moods))
	for i, m := range moods {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}

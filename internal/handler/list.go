package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/masterlist/internal/apperror"
	"github.com/sakif/masterlist/internal/auth"
	"github.com/sakif/masterlist/internal/model"
	"github.com/sakif/masterlist/internal/service"
)

// ListHandler manages CRUD operations for master lists, plus the story
// endpoint (stories are a read on a list, so the route lives here).
//
// WHY A SEPARATE HANDLER?
// Separating list logic from account logic follows the Single Responsibility
// Principle. Each handler struct "owns" one area of functionality. This makes
// code easier to:
// - Test (mock dependencies independently)
// - Understand (find all list logic in one place)
// - Modify (change list storage without touching account handling)
//
// Every route here sits behind the auth middleware, so the caller's username
// is read from the request context rather than the body — the body is never
// trusted for identity.
type ListHandler struct {
	service *service.ListService
	logger  *slog.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(svc *service.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		service: svc,
		logger:  logger,
	}
}

// listBody is the decode target for create and update requests.
//
// POINTER FIELDS FOR PRESENCE DETECTION:
// With plain `string` and `[]MasterListItem` fields there is no way to tell
// "field absent" from "field set to its zero value" after decoding. Pointer
// fields stay nil when the JSON key is missing, which is exactly the check
// the shape validation needs.
type listBody struct {
	Name        *string                 `json:"name"`
	Items       *[]model.MasterListItem `json:"items"`
	Suggestions string                  `json:"suggestions"`
	Pinned      bool                    `json:"pinned"`
	CreatedDate time.Time               `json:"createdDate"`
}

// decodeListBody decodes and shape-checks a list request body. Malformed
// JSON and a missing name or items field all collapse to the same 400 —
// the client message names the required fields either way.
func (h *ListHandler) decodeListBody(w http.ResponseWriter, r *http.Request) (*listBody, bool) {
	var body listBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("invalid list JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body",
			"Bad request: body must contain fields 'name' and 'items'"))
		return nil, false
	}
	if body.Name == nil || body.Items == nil {
		writeError(w, apperror.ValidationFailed("body",
			"Bad request: body must contain fields 'name' and 'items'"))
		return nil, false
	}
	return &body, true
}

// caller extracts the authenticated username placed in the context by the
// auth middleware. Behind the middleware this never fails; the guard covers
// a route wired outside it by mistake.
func (h *ListHandler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok || username == "" {
		writeError(w, apperror.Forbidden(
			"Forbidden: request must come from an authenticated user"))
		return "", false
	}
	return username, true
}

// HandleCreate creates a new list owned by the caller.
//
// HTTP: POST /list
// REQUEST BODY: {"name": "groceries", "items": [{"name": "cheese", "favorite": false}]}
//
// The server assigns the id, the dates, the owner, and the suggestions
// blurb — anything the client sent for those fields is ignored.
func (h *ListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	username, ok := h.caller(w, r)
	if !ok {
		return
	}

	body, ok := h.decodeListBody(w, r)
	if !ok {
		return
	}

	list, err := h.service.Create(r.Context(), username, *body.Name, *body.Items)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

// HandleGetAll returns every list owned by the caller.
//
// HTTP: GET /list
func (h *ListHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	username, ok := h.caller(w, r)
	if !ok {
		return
	}

	lists, err := h.service.GetAll(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}

// HandleGet returns a single list by id.
//
// HTTP: GET /list/{id}
//
// URL PARAMETERS:
// Chi provides r.PathValue("id") to extract URL parameters.
// For a request to GET /list/abc123, PathValue("id") returns "abc123".
func (h *ListHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username, ok := h.caller(w, r)
	if !ok {
		return
	}

	list, err := h.service.Get(r.Context(), username, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleUpdate replaces a list wholesale.
//
// HTTP: PATCH /list/{id}
//
// FULL-DOCUMENT SEMANTICS:
// Despite the PATCH verb, the submitted body replaces the stored document —
// there is no field-level merge. Clients fetch, modify, and send the whole
// list back. The id, the owner, and the modified date are re-stamped
// server-side; suggestions are regenerated only if the item names changed.
func (h *ListHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	username, ok := h.caller(w, r)
	if !ok {
		return
	}

	body, ok := h.decodeListBody(w, r)
	if !ok {
		return
	}

	incoming := &model.MasterList{
		Name:        *body.Name,
		Items:       *body.Items,
		Suggestions: body.Suggestions,
		Pinned:      body.Pinned,
		CreatedDate: body.CreatedDate,
	}

	list, err := h.service.Update(r.Context(), username, r.PathValue("id"), incoming)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleDelete removes a list.
//
// HTTP: DELETE /list/{id}
//
// Answers 200 with a plain-text confirmation rather than 204 — the frontend
// displays the body.
func (h *ListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username, ok := h.caller(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), username, id); err != nil {
		writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("Deleted object with id: %s", id))
}

// HandleStory generates a short story from a list's items.
//
// HTTP: GET /story/{id}?mood=happy
//
// The mood query parameter is required and must be one of the accepted
// values; the service validates it after the ownership check, so an invalid
// mood on someone else's list still reads as unauthorized.
func (h *ListHandler) HandleStory(w http.ResponseWriter, r *http.Request) {
	username, ok := h.caller(w, r)
	if !ok {
		return
	}

	story, err := h.service.Story(r.Context(), username, r.PathValue("id"), r.URL.Query().Get("mood"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, story)
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/masterlist/internal/auth"
	"github.com/sakif/masterlist/internal/handler"
	"github.com/sakif/masterlist/internal/model"
	sqliteRepo "github.com/sakif/masterlist/internal/repository/sqlite"
	"github.com/sakif/masterlist/internal/service"
)

// stubGenerator returns canned text so handler tests never touch the network.
type stubGenerator struct {
	suggestions string
	story       string
	err         error
}

func (g *stubGenerator) SuggestItems(_ context.Context, _ *model.MasterList) (string, error) {
	return g.suggestions, g.err
}

func (g *stubGenerator) TellStory(_ context.Context, _ *model.MasterList, _ model.StoryMood) (string, error) {
	return g.story, g.err
}

// testEnv wires real services over an in-memory database — handlers are
// exercised against the same stack production runs, minus the network and
// the generation backend.
type testEnv struct {
	lists *handler.ListHandler
	users *handler.UserHandler
	gen   *stubGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqliteRepo.New(":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-123")
	assert.NoError(t, err)

	gen := &stubGenerator{
		suggestions: "Here are some suggested items for your list: bread, cereal, and milk",
		story:       "Once upon a time there was cheese.",
	}

	listService := service.NewListService(db, gen, logger)
	userService := service.NewUserService(db, tokens, auth.NewPasswordServiceForTest(4), logger)

	return &testEnv{
		lists: handler.NewListHandler(listService, logger),
		users: handler.NewUserHandler(userService, logger),
		gen:   gen,
	}
}

// authedRequest builds a request carrying an authenticated username, the way
// the auth middleware would after validating a token.
func authedRequest(method, target, username, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if username != "" {
		req = req.WithContext(auth.ContextWithUsername(req.Context(), username))
	}
	return req
}

// createList drives HandleCreate and returns the created document.
func createList(t *testing.T, env *testEnv, username, body string) model.MasterList {
	t.Helper()

	req := authedRequest(http.MethodPost, "/list", username, body)
	rr := httptest.NewRecorder()
	env.lists.HandleCreate(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var list model.MasterList
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	return list
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestListHandler_HandleCreate(t *testing.T) {
	t.Run("valid create", func(t *testing.T) {
		env := newTestEnv(t)

		list := createList(t, env, "alice",
			`{"name":"groceries","items":[{"name":"cheese","favorite":true}]}`)

		assert.Len(t, list.ID, 24)
		assert.Equal(t, "groceries", list.Name)
		assert.Equal(t, "alice", list.Username)
		assert.False(t, list.Pinned)
		assert.Equal(t, env.gen.suggestions, list.Suggestions)
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		for _, body := range []string{
			`{}`,
			`{"name":"groceries"}`,
			`{"items":[]}`,
			`not json at all`,
		} {
			req := authedRequest(http.MethodPost, "/list", "alice", body)
			rr := httptest.NewRecorder()
			env.lists.HandleCreate(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
			assert.Equal(t,
				"Bad request: body must contain fields 'name' and 'items'",
				decodeErrorBody(t, rr).Message)
		}
	})

	t.Run("no authenticated user", func(t *testing.T) {
		env := newTestEnv(t)

		req := authedRequest(http.MethodPost, "/list", "", `{"name":"x","items":[]}`)
		rr := httptest.NewRecorder()
		env.lists.HandleCreate(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t,
			"Forbidden: request must come from an authenticated user",
			decodeErrorBody(t, rr).Message)
	})
}

func TestListHandler_HandleGet(t *testing.T) {
	env := newTestEnv(t)
	created := createList(t, env, "alice", `{"name":"groceries","items":[{"name":"cheese"}]}`)

	t.Run("owner retrieves", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/list/"+created.ID, "alice", "")
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleGet(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var list model.MasterList
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
		assert.Equal(t, created.ID, list.ID)
	})

	t.Run("bad id length", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/list/short", "alice", "")
		req.SetPathValue("id", "short")
		rr := httptest.NewRecorder()
		env.lists.HandleGet(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t,
			"The id provided must be a string with 24 characters",
			decodeErrorBody(t, rr).Message)
	})

	t.Run("someone else's list answers 401", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/list/"+created.ID, "mallory", "")
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleGet(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t,
			"User mallory is not authorized to retrieve object with id "+created.ID,
			decodeErrorBody(t, rr).Message)
	})

	t.Run("unknown id answers 404", func(t *testing.T) {
		missing := strings.Repeat("f", 24)
		req := authedRequest(http.MethodGet, "/list/"+missing, "alice", "")
		req.SetPathValue("id", missing)
		rr := httptest.NewRecorder()
		env.lists.HandleGet(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Object with id "+missing+" not found", decodeErrorBody(t, rr).Message)
	})
}

func TestListHandler_HandleGetAll(t *testing.T) {
	env := newTestEnv(t)

	createList(t, env, "alice", `{"name":"one","items":[]}`)
	createList(t, env, "alice", `{"name":"two","items":[]}`)
	createList(t, env, "bob", `{"name":"theirs","items":[]}`)

	req := authedRequest(http.MethodGet, "/list", "alice", "")
	rr := httptest.NewRecorder()
	env.lists.HandleGetAll(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var lists []model.MasterList
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&lists))
	assert.Len(t, lists, 2)
	for _, list := range lists {
		assert.Equal(t, "alice", list.Username)
	}
}

func TestListHandler_HandleUpdate(t *testing.T) {
	t.Run("replaces the document", func(t *testing.T) {
		env := newTestEnv(t)
		created := createList(t, env, "alice", `{"name":"groceries","items":[{"name":"cheese"}]}`)

		body := `{"name":"weekend groceries","items":[{"name":"cheese","favorite":true}],"pinned":true,"suggestions":"` + env.gen.suggestions + `"}`
		req := authedRequest(http.MethodPatch, "/list/"+created.ID, "alice", body)
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated model.MasterList
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "weekend groceries", updated.Name)
		assert.True(t, updated.Pinned)
		assert.Equal(t, "alice", updated.Username, "owner must be re-stamped server-side")
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)
		created := createList(t, env, "alice", `{"name":"groceries","items":[]}`)

		req := authedRequest(http.MethodPatch, "/list/"+created.ID, "alice", `{"pinned":true}`)
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("someone else's list answers 401", func(t *testing.T) {
		env := newTestEnv(t)
		created := createList(t, env, "alice", `{"name":"groceries","items":[]}`)

		req := authedRequest(http.MethodPatch, "/list/"+created.ID, "mallory", `{"name":"mine now","items":[]}`)
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestListHandler_HandleDelete(t *testing.T) {
	t.Run("delete confirmation is plain text", func(t *testing.T) {
		env := newTestEnv(t)
		created := createList(t, env, "alice", `{"name":"groceries","items":[]}`)

		req := authedRequest(http.MethodDelete, "/list/"+created.ID, "alice", "")
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleDelete(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Deleted object with id: "+created.ID, rr.Body.String())
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("delete wording in the 401", func(t *testing.T) {
		env := newTestEnv(t)
		created := createList(t, env, "alice", `{"name":"groceries","items":[]}`)

		req := authedRequest(http.MethodDelete, "/list/"+created.ID, "mallory", "")
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleDelete(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t,
			"User mallory is not authorized to delete object with id "+created.ID,
			decodeErrorBody(t, rr).Message)
	})
}

func TestListHandler_HandleStory(t *testing.T) {
	env := newTestEnv(t)
	created := createList(t, env, "alice", `{"name":"groceries","items":[{"name":"cheese"}]}`)

	t.Run("valid mood", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/story/"+created.ID+"?mood=happy", "alice", "")
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleStory(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, env.gen.story, rr.Body.String())
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("missing mood", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/story/"+created.ID, "alice", "")
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleStory(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t,
			"You must provide a mood value to get a story from a list",
			decodeErrorBody(t, rr).Message)
	})

	t.Run("invalid mood", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/story/"+created.ID+"?mood=grumpy", "alice", "")
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		env.lists.HandleStory(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t,
			"Invalid mood value provided. Valid options include: happy, sad, scary",
			decodeErrorBody(t, rr).Message)
	})
}

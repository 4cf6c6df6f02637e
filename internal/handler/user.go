package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/masterlist/internal/apperror"
	"github.com/sakif/masterlist/internal/auth"
	"github.com/sakif/masterlist/internal/service"
)

// UserHandler manages account routes: registration, login, and the
// self-service profile endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger,
	}
}

// credentials is the decode target for register and login bodies.
// Empty-field validation happens in the service, so a missing key and an
// empty string behave the same here.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (credentials, bool) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		logger.Warn("invalid credentials JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body",
			"Username and password are required"))
		return credentials{}, false
	}
	return creds, true
}

// HandleRegister creates a new account.
//
// HTTP: POST /users
// REQUEST BODY: {"username": "alice", "password": "secret123"}
// RESPONSE: 201 {"username": "alice"}
//
// The response deliberately echoes only the username — never the id and
// certainly never anything password-derived.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"username": user.Username,
	})
}

// HandleLogin verifies credentials and returns a bearer token.
//
// HTTP: POST /login
// REQUEST BODY: {"username": "alice", "password": "secret123"}
// RESPONSE: 200 {"token": "eyJhbGci..."}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r, h.logger)
	if !ok {
		return
	}

	token, err := h.service.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
	})
}

// HandleGet returns the caller's own account record.
//
// HTTP: GET /users/{username}
//
// The path names the account, but the service only honours it when it
// matches the authenticated caller. An empty caller (route wired outside
// the middleware) fails the service's self-check, so no guard is needed here.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UsernameFromContext(r.Context())

	user, err := h.service.Get(r.Context(), caller, r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate replaces the caller's password.
//
// HTTP: PATCH /users/{username}
// REQUEST BODY: {"password": "new-secret"}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UsernameFromContext(r.Context())
	username := r.PathValue("username")

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("invalid password JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("password", "Password is required"))
		return
	}

	if err := h.service.UpdatePassword(r.Context(), caller, username, body.Password); err != nil {
		writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("Updated password for user: %s", username))
}

// HandleDelete removes the caller's account.
//
// HTTP: DELETE /users/{username}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UsernameFromContext(r.Context())
	username := r.PathValue("username")

	if err := h.service.Delete(r.Context(), caller, username); err != nil {
		writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("Deleted user: %s", username))
}

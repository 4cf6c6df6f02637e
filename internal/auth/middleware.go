package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "username", name), ANY package that knows the string
// "username" can read or shadow your value. Using a package-private type
// prevents collisions: only THIS package can create a key of type contextKey,
// so only this package can read or write username values in the context.
type contextKey string

const usernameKey contextKey = "username"

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the JWT from the Authorization header ("Bearer <token>"), validates
// it, and stores the username in the request context.
//
// STATUS CODE ASYMMETRY (part of the API contract):
//   - No token at all            → 401 "Access token is missing or invalid"
//   - Token present but invalid  → 403 "Invalid token"
//
// The client distinguishes these: 401 means "please log in", while the literal
// message "Invalid token" triggers its logout-and-re-authenticate flow.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler. The new handler "wraps" the original:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	        // ... do stuff after the handler ...
//	    })
//	}
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized",
					"Access token is missing or invalid")
				return
			}

			username, err := tokens.Validate(tokenStr)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Invalid token")
				return
			}

			// Store the username in context so handlers can read it
			next.ServeHTTP(w, r.WithContext(ContextWithUsername(r.Context(), username)))
		})
	}
}

// UsernameFromContext retrieves the authenticated caller's username from the
// request context.
//
// Returns ("", false) if the request carries no authenticated identity.
//
// Usage in handlers:
//
//	username, ok := auth.UsernameFromContext(r.Context())
//	if !ok {
//	    // no authenticated user
//	}
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameKey).(string)
	return name, ok && name != ""
}

// ContextWithUsername returns a context carrying username as the
// authenticated caller. The middleware uses it after token validation;
// tests use it to exercise handlers without minting a token.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// writeAuthError emits the same {"error","message"} JSON shape the handler
// package uses. Duplicated here rather than imported — handler depends on
// auth for UsernameFromContext, so the reverse import would be a cycle.
func writeAuthError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q,"message":%q}`, errType, message)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" when the header is absent or not in bearer form.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Package middleware resolves the caller identity injected by the
// authenticating reverse proxy. This service performs no authentication of
// its own; a request without the identity header is anonymous.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

// identityHeader is set by the Authentik outpost in front of this service.
// net/http canonicalizes header keys, so the lowercase variant the proxy
// sends is matched too.
const identityHeader = "X-Authentik-Username"

type contextKey string

const ownerContextKey contextKey = "owner"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Identity stores the proxy-resolved username in the request context. It
// never rejects; handlers that need an identity use RequireIdentity.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(identityHeader)
		ctx := context.WithValue(r.Context(), ownerContextKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity rejects anonymous requests before any handler logic runs.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := GetOwner(r)
		if owner == "" || owner == "anonymous" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetOwner returns the resolved identity, or "" when anonymous.
func GetOwner(r *http.Request) string {
	owner, _ := r.Context().Value(ownerContextKey).(string)
	return owner
}

// WithOwner returns a copy of the request carrying the given identity.
// Test helper.
func WithOwner(r *http.Request, owner string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ownerContextKey, owner))
}

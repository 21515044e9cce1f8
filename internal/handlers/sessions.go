package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hilsamlabs/workspaces-api/internal/config"
	"github.com/hilsamlabs/workspaces-api/internal/logutil"
	"github.com/hilsamlabs/workspaces-api/internal/middleware"
	"github.com/hilsamlabs/workspaces-api/internal/session"
)

// Sessions is the session manager, wired in main.
var Sessions *session.Manager

// StartSession provisions a new workspace container for the caller.
// GET /api/start/{image}?ttl=N. A ttl of 0 or omitted means never expire.
func StartSession(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	image := chi.URLParam(r, "image")
	log.Printf("[START] User %s requested image: %s", logutil.SanitizeForLog(owner), logutil.SanitizeForLog(image))

	var ttlSeconds int64
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid ttl")
			return
		}
		ttlSeconds = n
	}

	result, err := Sessions.Provision(r.Context(), owner, image, ttlSeconds)
	if err != nil {
		var provErr *session.ProvisionError
		switch {
		case errors.Is(err, session.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		case errors.As(err, &provErr):
			log.Printf("[START] %s failed: %v", provErr.Stage, provErr.Err)
			writeError(w, http.StatusInternalServerError, provErr.Error())
		default:
			log.Printf("[START] Provision failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to provision session")
		}
		return
	}

	log.Printf("[START] SUCCESS: %s for %s", result.Name, logutil.SanitizeForLog(owner))
	writeJSON(w, http.StatusOK, result)
}

// ListSessions returns the caller's sessions with computed lease fields.
func ListSessions(w http.ResponseWriter, r *http.Request) {
	views, err := Sessions.List(middleware.GetOwner(r))
	if err != nil {
		if errors.Is(err, session.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"containers": views})
}

// StopSession stops one container and removes its session record.
func StopSession(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	name := chi.URLParam(r, "name")

	if err := Sessions.Stop(r.Context(), owner, name); err != nil {
		switch {
		case errors.Is(err, session.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "Container not found or unauthorized")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to stop session")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type toggleRequest struct {
	Infinite *bool `json:"infinite"`
}

// ToggleAutokill switches a session between infinite and finite mode.
// POST /api/toggle-autokill/{name} with body {"infinite": bool}.
func ToggleAutokill(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	name := chi.URLParam(r, "name")

	var body toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	infinite := true
	if body.Infinite != nil {
		infinite = *body.Infinite
	}

	status, err := Sessions.ToggleAutokill(owner, name, infinite)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "Container not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update session")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": status})
}

// ExtendSession adds time to a finite lease.
// GET /api/extend/{name}?ttl=N. N defaults to the configured lease.
func ExtendSession(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	name := chi.URLParam(r, "name")

	addSeconds := config.Cfg.DefaultLeaseSeconds
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid ttl")
			return
		}
		addSeconds = n
	}

	result, err := Sessions.Extend(owner, name, addSeconds)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "Container not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to extend session")
		}
		return
	}

	if result.AlreadyInfinite {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"status":  "infinite",
			"message": "Container is already infinite",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"old_remaining": result.OldRemaining,
		"added":         result.Added,
		"new_ttl":       result.NewTTL,
	})
}

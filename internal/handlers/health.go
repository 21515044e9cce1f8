package handlers

import (
	"net/http"

	"github.com/hilsamlabs/workspaces-api/internal/middleware"
)

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetOwner(r)
	if user == "" {
		user = "anonymous"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "user": user})
}

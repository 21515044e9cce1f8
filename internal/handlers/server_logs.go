package handlers

import (
	"net/http"
	"strconv"

	"github.com/hilsamlabs/workspaces-api/internal/logging"
)

// GetServerLogs returns the tail of the service log file.
// GET /api/logs?lines=N (default 100, capped at 1000).
func GetServerLogs(w http.ResponseWriter, r *http.Request) {
	lines := 100
	if raw := r.URL.Query().Get("lines"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid lines")
			return
		}
		if n > 1000 {
			n = 1000
		}
		lines = n
	}

	tail, err := logging.ReadTail(lines)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"logs": tail})
}

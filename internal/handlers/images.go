package handlers

import (
	"net/http"

	"github.com/hilsamlabs/workspaces-api/internal/catalog"
)

// Catalog is the image catalog client, wired in main.
var Catalog *catalog.Client

// GetImages lists the launchable workspace images. Upstream catalog
// failures are absorbed by the client's fallback, so this always succeeds.
func GetImages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Catalog.Images(r.Context()))
}

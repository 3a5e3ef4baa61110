package httpapi

import (
	"net/http"

	"alias_gateway/internal/utils"
)

// handleAliases serves the public alias catalog. Only public records cross
// this boundary; private resolutions have no serialization path here.
func (d *Dependencies) handleAliases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"aliases": d.Catalog.ListPublicAliases(),
	})
}

package httpapi

import (
	"encoding/json"
	"net/http"

	"alias_gateway/internal/auth"
	"alias_gateway/internal/config"
	"alias_gateway/internal/redaction"
	"alias_gateway/internal/utils"
)

// AdminAuthHandler exchanges admin credentials for a session JWT.
type AdminAuthHandler struct {
	cfg *config.Config
}

func NewAdminAuthHandler(cfg *config.Config) *AdminAuthHandler {
	return &AdminAuthHandler{cfg: cfg}
}

type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Login verifies the configured admin credentials and issues a token.
// Failures are uniformly 401; the response never says which part was wrong.
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.User != h.cfg.Admin.User || !auth.CheckPassword(h.cfg.Admin.PasswordHash, req.Password) {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, exp, err := auth.GenerateAdminJWT(req.User, h.cfg)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"exp":   exp,
	})
}

// handleAdminCatalog returns the public catalog plus a resolution summary.
// The summary passes through the redaction engine, so every reference field
// comes back as the sentinel; the endpoint exists to confirm which aliases
// are routable, not to reveal where they route.
func (d *Dependencies) handleAdminCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	public := d.Catalog.ListPublicAliases()
	resolutions := make([]interface{}, 0, len(public))
	for _, rec := range public {
		res, ok := d.Catalog.ResolvePrivateAlias(rec.AliasID)
		if !ok {
			resolutions = append(resolutions, map[string]interface{}{
				"alias_id": rec.AliasID,
				"resolved": false,
			})
			continue
		}
		resolutions = append(resolutions, redaction.Value(map[string]interface{}{
			"alias_id":     rec.AliasID,
			"resolved":     true,
			"provider_id":  res.ProviderID,
			"endpoint_ref": res.EndpointRef,
			"key_ref":      res.KeyRef,
			"routes":       len(res.RoutingPolicy.Fallbacks) + 1,
		}))
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"aliases":     public,
		"resolutions": resolutions,
	})
}

type retryRequest struct {
	ID string `json:"id"`
}

// handleAdminDeadLetter inspects the telemetry DLQ and re-enqueues batches.
func (d *Dependencies) handleAdminDeadLetter(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := d.Worker.GetDeadLetterItems(r.Context(), 100)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to list dead letter items")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"items": items,
		})

	case http.MethodPost:
		var req retryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "missing dead letter id")
			return
		}
		if err := d.Worker.RetryDeadLetterItem(r.Context(), req.ID); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "dead letter item not found")
			return
		}
		utils.RespondNoContent(w)

	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

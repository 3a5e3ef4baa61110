package httpapi

import (
	"fmt"
	"net/http"

	"alias_gateway/internal/config"
	"alias_gateway/internal/errclass"
	"alias_gateway/internal/models"
	"alias_gateway/internal/utils"
)

// liveURL resolves the live-session URL clients should connect to: explicit
// override first, then a wss URL derived from the public deployment host,
// then the same-origin path.
func liveURL(cfg *config.Config) string {
	if cfg.Live.URLOverride != "" {
		return cfg.Live.URLOverride
	}
	if cfg.Live.PublicHost != "" {
		return fmt.Sprintf("wss://%s/v1/live", cfg.Live.PublicHost)
	}
	return "/v1/live"
}

// handleLiveConfig resolves an alias to its public record plus the live
// session URL. The private resolution is consulted to confirm the alias is
// routable and to pick the URL; none of its fields reach the response.
func (d *Dependencies) handleLiveConfig(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		aliasID := r.URL.Query().Get("alias_id")
		if aliasID == "" {
			aliasID = cfg.Live.DefaultAliasID
		}

		pub, okPub := d.Catalog.GetPublicAlias(aliasID)
		_, okPriv := d.Catalog.ResolvePrivateAlias(aliasID)
		if !okPub || !okPriv {
			d.Sink.Emit(models.TelemetryEvent{
				Alias:      aliasID,
				TaskType:   models.TaskChat,
				ErrorClass: string(errclass.Classify("unknown_alias")),
			})
			utils.RespondWithJSON(w, http.StatusNotFound, map[string]interface{}{
				"alias_id": aliasID,
				"error":    errclass.ToUserMessage("orbit", "unknown_alias"),
			})
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"alias_id":            pub.AliasID,
			"alias_name":          pub.AliasName,
			"alias_version":       pub.AliasVersion,
			"capabilities":        pub.Capabilities,
			"limits":              pub.Limits,
			"status":              pub.Status,
			"default_temperature": pub.DefaultTemperature,
			"live_url":            liveURL(cfg),
		})
	}
}

// handleLiveProbe confirms the live channel route is reachable. The actual
// realtime session runs over a different transport; a non-GET here means
// the caller expected that transport, hence 426.
func (d *Dependencies) handleLiveProbe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithJSON(w, http.StatusUpgradeRequired, map[string]interface{}{
			"error": errclass.UserMessage("echo", errclass.ServiceUnavailable),
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "live channel reachable",
	})
}

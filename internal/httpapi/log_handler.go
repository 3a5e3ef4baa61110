package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"alias_gateway/internal/utils"
)

// handleLog ingests client-originated telemetry. The body is arbitrary JSON,
// tolerating a JSON-string-encoded object (some clients double-encode);
// anything unparseable becomes an empty event. Ingestion never fails the
// client: the only non-204 outcomes are a wrong method or the rate limiter.
func (d *Dependencies) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload := parseLogBody(r.Body)
	d.Sink.EmitRaw(payload)

	utils.RespondNoContent(w)
}

func parseLogBody(body io.Reader) map[string]interface{} {
	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return map[string]interface{}{}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err == nil && payload != nil {
		return payload
	}

	// A JSON string holding an encoded object
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &payload); err == nil && payload != nil {
			return payload
		}
	}

	return map[string]interface{}{}
}

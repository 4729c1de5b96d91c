package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/theremin/internal/tone"
)

// Toggler exposes the enabled flag and the most recent pulse.
type Toggler interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
	LastPulse() (tone.Pulse, bool)
}

// StatusHandler handles GET and PUT on /api/status.
type StatusHandler struct {
	toggler Toggler
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(t Toggler) *StatusHandler {
	return &StatusHandler{toggler: t}
}

type statusRequest struct {
	Enabled *bool `json:"enabled"`
}

type statusResponse struct {
	Enabled   bool        `json:"enabled"`
	LastPulse *tone.Pulse `json:"last_pulse,omitempty"`
}

// ServeHTTP implements the http.Handler interface.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.toggler.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statusResponse{Enabled: h.toggler.IsEnabled()}
	if p, ok := h.toggler.LastPulse(); ok {
		resp.LastPulse = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/theremin/internal/app"
	"github.com/ayusman/theremin/internal/gesture"
	"github.com/ayusman/theremin/internal/store"
)

// PresetApplier installs a preset into the running frame processor.
type PresetApplier interface {
	ApplyPreset(p *store.Preset) error
}

// PresetHandler handles HTTP requests for preset resources.
type PresetHandler struct {
	store   *store.Store
	applier PresetApplier
}

// NewPresetHandler creates a new PresetHandler. applier may be nil, in which
// case activation only records the selection.
func NewPresetHandler(s *store.Store, applier PresetApplier) *PresetHandler {
	return &PresetHandler{store: s, applier: applier}
}

// ServeHTTP routes /api/presets, /api/presets/{id} and /api/presets/{id}/activate.
func (h *PresetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/presets")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/activate"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// presetRequest is shared by create and update. Omitted numbers keep their
// current value, or the default on create.
type presetRequest struct {
	Name           string   `json:"name"`
	Threshold      *float64 `json:"threshold"`
	MinFrequency   *float64 `json:"min_frequency"`
	MaxFrequency   *float64 `json:"max_frequency"`
	MinGain        *float64 `json:"min_gain"`
	MaxGain        *float64 `json:"max_gain"`
	DebounceFrames *int     `json:"debounce_frames"`
}

func (req *presetRequest) applyTo(p *store.Preset) {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Threshold != nil {
		p.Threshold = *req.Threshold
	}
	if req.MinFrequency != nil {
		p.MinFrequency = *req.MinFrequency
	}
	if req.MaxFrequency != nil {
		p.MaxFrequency = *req.MaxFrequency
	}
	if req.MinGain != nil {
		p.MinGain = *req.MinGain
	}
	if req.MaxGain != nil {
		p.MaxGain = *req.MaxGain
	}
	if req.DebounceFrames != nil {
		p.DebounceFrames = *req.DebounceFrames
	}
}

type presetResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Threshold      float64 `json:"threshold"`
	MinFrequency   float64 `json:"min_frequency"`
	MaxFrequency   float64 `json:"max_frequency"`
	MinGain        float64 `json:"min_gain"`
	MaxGain        float64 `json:"max_gain"`
	DebounceFrames int     `json:"debounce_frames"`
	Active         bool    `json:"active"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type listPresetsResponse struct {
	Presets []presetResponse `json:"presets"`
}

func toResponse(p *store.Preset, activeID string) presetResponse {
	return presetResponse{
		ID:             p.ID,
		Name:           p.Name,
		Threshold:      p.Threshold,
		MinFrequency:   p.MinFrequency,
		MaxFrequency:   p.MaxFrequency,
		MinGain:        p.MinGain,
		MaxGain:        p.MaxGain,
		DebounceFrames: p.DebounceFrames,
		Active:         p.ID == activeID,
		CreatedAt:      p.CreatedAt.Format(timeFormat),
		UpdatedAt:      p.UpdatedAt.Format(timeFormat),
	}
}

// activeID returns the selected preset ID, or "" when none is selected.
func (h *PresetHandler) activeID() string {
	id, err := h.store.Settings().Get(store.KeyActivePreset)
	if err != nil {
		return ""
	}
	return id
}

// list handles GET /api/presets.
func (h *PresetHandler) list(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.Presets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}

	active := h.activeID()
	response := listPresetsResponse{
		Presets: make([]presetResponse, 0, len(presets)),
	}
	for _, p := range presets {
		response.Presets = append(response.Presets, toResponse(p, active))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/presets/{id}.
func (h *PresetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p, h.activeID()))
}

// create handles POST /api/presets.
func (h *PresetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	p := &store.Preset{
		ID:           uuid.New().String(),
		Threshold:    gesture.DefaultPinchThreshold,
		MinFrequency: gesture.DefaultMinFrequency,
		MaxFrequency: gesture.DefaultMaxFrequency,
		MinGain:      gesture.DefaultMinGain,
		MaxGain:      gesture.DefaultMaxGain,
	}
	req.applyTo(p)

	if err := app.SettingsFromPreset(p).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Presets().Create(p); err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "Preset name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create preset")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(p, ""))
}

// update handles PUT /api/presets/{id}. Updating the active preset
// re-applies it.
func (h *PresetHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.applyTo(p)

	if err := app.SettingsFromPreset(p).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Presets().Update(p); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Preset not found")
		case errors.Is(err, store.ErrDuplicateName):
			writeError(w, http.StatusConflict, "Preset name already exists")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update preset")
		}
		return
	}

	active := h.activeID()
	if p.ID == active && h.applier != nil {
		if err := h.applier.ApplyPreset(p); err != nil {
			log.Printf("Failed to re-apply preset %q: %v", p.Name, err)
		}
	}

	writeJSON(w, http.StatusOK, toResponse(p, active))
}

// delete handles DELETE /api/presets/{id}. The running processor keeps its
// settings until another preset is activated.
func (h *PresetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Presets().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// activate handles POST /api/presets/{id}/activate.
func (h *PresetHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	if h.applier != nil {
		if err := h.applier.ApplyPreset(p); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.store.SetActivePreset(p.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to activate preset")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p, p.ID))
}

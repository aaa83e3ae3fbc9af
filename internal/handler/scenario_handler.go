package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/Mousewarriors/SEIM-Project/pkg/errors"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/scenario"
)

// maxImportBytes bounds a scenario pack upload.
const maxImportBytes = 4 << 20

// ScenarioHandler handles scenario catalog requests.
type ScenarioHandler struct {
	store *scenario.Store
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(store *scenario.Store) *ScenarioHandler {
	return &ScenarioHandler{store: store}
}

// RegisterRoutes registers scenario catalog routes.
func (h *ScenarioHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/scenarios", h.CreateScenario).Methods("POST")
	r.HandleFunc("/scenarios", h.ListScenarios).Methods("GET")
	r.HandleFunc("/scenarios/import", h.ImportScenarios).Methods("POST")
	r.HandleFunc("/scenarios/export", h.ExportScenarios).Methods("GET")
	r.HandleFunc("/scenarios/{id}", h.GetScenario).Methods("GET")
	r.HandleFunc("/scenarios/{id}", h.DeleteScenario).Methods("DELETE")
}

// CreateScenario registers a single scenario from a JSON body.
func (h *ScenarioHandler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var scn model.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scn); err != nil {
		respondError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	if err := h.store.Create(&scn); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, scn)
}

// ListScenarios returns the catalog sorted by id.
func (h *ScenarioHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": h.store.List(),
		"count":     h.store.Len(),
	})
}

// GetScenario returns one scenario by id.
func (h *ScenarioHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	scn, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, scn)
}

// DeleteScenario removes a scenario from the catalog.
func (h *ScenarioHandler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportScenarios registers every scenario in a YAML pack. Multi-document
// packs are accepted; import stops at the first failing document and
// earlier documents stay registered.
func (h *ScenarioHandler) ImportScenarios(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondError(w, apperrors.BadRequest("failed to read request body"))
		return
	}

	imported, err := h.store.Import(data)
	if err != nil {
		respondError(w, err)
		return
	}

	ids := make([]string, 0, len(imported))
	for _, scn := range imported {
		ids = append(ids, scn.Scenario.ID)
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"imported": ids,
		"count":    len(ids),
	})
}

// ExportScenarios streams the whole catalog as a multi-document YAML pack.
func (h *ScenarioHandler) ExportScenarios(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Export()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

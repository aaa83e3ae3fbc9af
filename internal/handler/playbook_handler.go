package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/Mousewarriors/SEIM-Project/pkg/errors"

	"github.com/Mousewarriors/SEIM-Project/internal/playbook"
	"github.com/Mousewarriors/SEIM-Project/internal/store"
)

// PlaybookHandler handles active playbook requests. Every mutation is
// persisted best-effort; the in-memory tracker stays authoritative.
type PlaybookHandler struct {
	tracker *playbook.Tracker
	store   store.StateStore
	logger  *slog.Logger
}

// NewPlaybookHandler creates a new playbook handler.
func NewPlaybookHandler(tracker *playbook.Tracker, st store.StateStore, logger *slog.Logger) *PlaybookHandler {
	return &PlaybookHandler{
		tracker: tracker,
		store:   st,
		logger:  logger.With("component", "playbook-handler"),
	}
}

// RegisterRoutes registers active playbook routes.
func (h *PlaybookHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/playbook", h.GetPlaybook).Methods("GET")
	r.HandleFunc("/playbook", h.ClearPlaybook).Methods("DELETE")
	r.HandleFunc("/playbook/steps/{index}/toggle", h.ToggleStep).Methods("POST")
	r.HandleFunc("/playbook/steps/{index}/answer", h.SetAnswer).Methods("PUT")
	r.HandleFunc("/playbook/containment", h.ToggleContainment).Methods("POST")
}

// GetPlaybook returns the active playbook state and its completion signals.
func (h *PlaybookHandler) GetPlaybook(w http.ResponseWriter, r *http.Request) {
	state := h.tracker.Snapshot()
	if state == nil {
		respondError(w, apperrors.NotFound("active playbook"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"playbook":        state,
		"verdict_correct": h.tracker.VerdictCorrect(),
		"steps_complete":  h.tracker.StepsComplete(),
		"case_complete":   h.tracker.CaseComplete(),
	})
}

// ClearPlaybook deactivates the playbook and resets its state.
func (h *PlaybookHandler) ClearPlaybook(w http.ResponseWriter, r *http.Request) {
	h.tracker.Clear()
	h.persist(r)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleStep flips the completion flag of one step.
func (h *PlaybookHandler) ToggleStep(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, apperrors.BadRequest("step index must be an integer"))
		return
	}

	if !h.tracker.ToggleStep(index) {
		respondError(w, apperrors.BadRequest("step index out of range").WithDetail("index", index))
		return
	}
	h.persist(r)
	respondJSON(w, http.StatusOK, h.tracker.Snapshot())
}

// SetAnswer records the analyst's note for one step.
func (h *PlaybookHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, apperrors.BadRequest("step index must be an integer"))
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	if !h.tracker.SetAnswer(index, req.Text) {
		respondError(w, apperrors.BadRequest("step index out of range").WithDetail("index", index))
		return
	}
	h.persist(r)
	respondJSON(w, http.StatusOK, h.tracker.Snapshot())
}

// ToggleContainment flips a host in and out of the contained set. A no-op
// without an active playbook.
func (h *PlaybookHandler) ToggleContainment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Host string `json:"host"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Host == "" {
		respondError(w, apperrors.BadRequest("host is required"))
		return
	}

	h.tracker.ToggleContainment(req.Host)
	h.persist(r)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"host":      req.Host,
		"contained": h.tracker.IsHostContained(req.Host),
	})
}

func (h *PlaybookHandler) persist(r *http.Request) {
	rec := store.PlaybookRecord{
		State:          h.tracker.Snapshot(),
		VerdictCorrect: h.tracker.VerdictCorrect(),
	}
	if err := h.store.SavePlaybook(r.Context(), rec); err != nil {
		h.logger.Warn("failed to persist playbook state", "error", err)
	}
}

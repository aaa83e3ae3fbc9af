package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/Mousewarriors/SEIM-Project/pkg/errors"

	"github.com/Mousewarriors/SEIM-Project/internal/session"
)

// SessionHandler handles the investigation lifecycle.
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// RegisterRoutes registers investigation lifecycle routes.
func (h *SessionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/scenarios/{id}/open", h.OpenInvestigation).Methods("POST")
	r.HandleFunc("/scenarios/{id}/submit", h.SubmitInvestigation).Methods("POST")
	r.HandleFunc("/scenarios/{id}/reopen", h.ReopenInvestigation).Methods("POST")
	r.HandleFunc("/scenarios/{id}/attempts", h.ListAttempts).Methods("GET")
}

// OpenInvestigation starts or resumes an investigation: the scenario's
// playbook becomes active and an empty submission is opened.
func (h *SessionHandler) OpenInvestigation(w http.ResponseWriter, r *http.Request) {
	scn, sub, err := h.manager.Open(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenario":   scn,
		"submission": sub,
	})
}

// SubmitInvestigation finalizes and scores the open submission.
func (h *SessionHandler) SubmitInvestigation(w http.ResponseWriter, r *http.Request) {
	var req session.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	result, err := h.manager.Submit(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ReopenInvestigation opens a fresh submission after a finalized one.
func (h *SessionHandler) ReopenInvestigation(w http.ResponseWriter, r *http.Request) {
	sub, err := h.manager.Reopen(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

// ListAttempts returns the recorded attempts for a scenario, newest first.
func (h *SessionHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.manager.Attempts(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

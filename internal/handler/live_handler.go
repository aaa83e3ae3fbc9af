package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/Mousewarriors/SEIM-Project/pkg/errors"

	"github.com/Mousewarriors/SEIM-Project/internal/live"
	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/store"
)

// LiveHandler handles rule and alert requests for the live engine. Rule
// mutations are persisted best-effort so a restart restores them.
type LiveHandler struct {
	engine *live.Engine
	store  store.StateStore
	logger *slog.Logger
}

// NewLiveHandler creates a new live engine handler.
func NewLiveHandler(engine *live.Engine, st store.StateStore, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		engine: engine,
		store:  st,
		logger: logger.With("component", "live-handler"),
	}
}

// RegisterRoutes registers live engine routes.
func (h *LiveHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/rules", h.CreateRule).Methods("POST")
	r.HandleFunc("/rules", h.ListRules).Methods("GET")
	r.HandleFunc("/rules/{id}", h.DeleteRule).Methods("DELETE")
	r.HandleFunc("/alerts", h.ListAlerts).Methods("GET")
	r.HandleFunc("/alerts", h.ClearAlerts).Methods("DELETE")
	r.HandleFunc("/live/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/live/events", h.IngestEvents).Methods("POST")
}

// CreateRule adds a rule to the engine.
func (h *LiveHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule model.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	created, err := h.engine.AddRule(rule)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeValidation, "invalid rule"))
		return
	}

	h.persistRules(r)
	respondJSON(w, http.StatusCreated, created)
}

// ListRules returns every rule, enabled or not.
func (h *LiveHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.engine.Rules()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// DeleteRule removes a rule. Alerts it already emitted keep their rule id.
func (h *LiveHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.engine.DeleteRule(id) {
		respondError(w, apperrors.NotFound("rule").WithDetail("id", id))
		return
	}
	h.persistRules(r)
	w.WriteHeader(http.StatusNoContent)
}

// ListAlerts returns retained alerts, newest first.
func (h *LiveHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.engine.Alerts()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// ClearAlerts drops all retained alerts.
func (h *LiveHandler) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearAlerts()
	if err := h.store.SaveAlerts(r.Context(), nil); err != nil {
		h.logger.Warn("failed to persist cleared alerts", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats returns engine counters.
func (h *LiveHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Stats())
}

// IngestEvents evaluates a pushed batch, the same path the feed scheduler
// drives. Useful when no feed source is configured.
func (h *LiveHandler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Events []model.Event `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	emitted := h.engine.Evaluate(req.Events)
	if len(emitted) > 0 {
		if err := h.store.SaveAlerts(r.Context(), h.engine.Alerts()); err != nil {
			h.logger.Warn("failed to persist live alerts", "error", err)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"emitted": emitted,
		"count":   len(emitted),
	})
}

func (h *LiveHandler) persistRules(r *http.Request) {
	if err := h.store.SaveRules(r.Context(), h.engine.Rules()); err != nil {
		h.logger.Warn("failed to persist rules", "error", err)
	}
}

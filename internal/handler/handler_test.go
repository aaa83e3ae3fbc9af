package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mousewarriors/SEIM-Project/internal/handler"
	"github.com/Mousewarriors/SEIM-Project/internal/history"
	"github.com/Mousewarriors/SEIM-Project/internal/live"
	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/playbook"
	"github.com/Mousewarriors/SEIM-Project/internal/scenario"
	"github.com/Mousewarriors/SEIM-Project/internal/session"
	"github.com/Mousewarriors/SEIM-Project/internal/store"
)

type api struct {
	router  *mux.Router
	tracker *playbook.Tracker
	engine  *live.Engine
	store   *store.MemoryStore
}

func newAPI(t *testing.T) *api {
	t.Helper()

	scenarios := scenario.NewStore()
	tracker := playbook.NewTracker()
	recorder := history.NewMemoryRecorder()
	engine := live.NewEngine(live.DefaultConfig(), slog.Default())
	st := store.NewMemoryStore()
	manager := session.NewManager(scenarios, tracker, recorder, st, slog.Default())

	router := mux.NewRouter()
	handler.NewScenarioHandler(scenarios).RegisterRoutes(router)
	handler.NewSessionHandler(manager).RegisterRoutes(router)
	handler.NewPlaybookHandler(tracker, st, slog.Default()).RegisterRoutes(router)
	handler.NewLiveHandler(engine, st, slog.Default()).RegisterRoutes(router)

	return &api{router: router, tracker: tracker, engine: engine, store: st}
}

func (a *api) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func loginBurstScenario() model.Scenario {
	required := true
	return model.Scenario{
		Scenario: model.ScenarioMeta{ID: "SCN-001", Name: "Login Burst", Difficulty: "beginner"},
		Alert: model.ScenarioAlert{
			ID:       "SCN-001",
			Title:    "Suspicious Login Burst",
			Severity: model.SeverityHigh,
			Host:     "WS-042",
		},
		Playbook: model.PlaybookDef{Name: "Triage", Steps: []string{"review logons", "check host"}},
		Answer: &model.AnswerKey{
			Verdict:             model.VerdictTruePositive,
			Severity:            model.SeverityHigh,
			RecommendedAction:   model.ActionEscalate,
			ContainmentRequired: &required,
		},
	}
}

func TestScenarioCRUD(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, "POST", "/scenarios", loginBurstScenario())
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate id conflicts.
	rec = a.do(t, "POST", "/scenarios", loginBurstScenario())
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, "GET", "/scenarios/SCN-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Scenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Suspicious Login Burst", got.Alert.Title)

	rec = a.do(t, "GET", "/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = a.do(t, "DELETE", "/scenarios/SCN-001", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, "GET", "/scenarios/SCN-001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenarioCreateRejectsInvalid(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, "POST", "/scenarios", model.Scenario{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, "POST", "/scenarios", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenarioImportExportRoundTrip(t *testing.T) {
	a := newAPI(t)

	pack := `
scenario:
  id: SCN-010
  name: Beaconing Host
alert:
  id: SCN-010
  title: Periodic Outbound Beacon
  severity: medium
playbook:
  name: Triage
  steps:
    - review proxy logs
answer:
  verdict: true_positive
  severity: medium
  recommended_action: escalate
---
scenario:
  id: SCN-011
  name: Password Spray
alert:
  id: SCN-011
  title: Password Spray Attempt
  severity: high
`
	rec := a.do(t, "POST", "/scenarios/import", pack)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["count"])

	rec = a.do(t, "GET", "/scenarios/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SCN-010")
	assert.Contains(t, rec.Body.String(), "SCN-011")
}

func TestInvestigationLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/scenarios", loginBurstScenario()).Code)

	rec := a.do(t, "POST", "/scenarios/SCN-001/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Playbook became active.
	rec = a.do(t, "GET", "/playbook", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["case_complete"])

	// Contain the host, then submit correct answers.
	rec = a.do(t, "POST", "/playbook/containment", map[string]string{"host": "WS-042"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["contained"])

	rec = a.do(t, "POST", "/scenarios/SCN-001/submit", session.SubmitRequest{
		Verdict: "true_positive",
		Action:  "escalate",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, float64(100), result["score"])

	// Second submit on the finalized submission conflicts.
	rec = a.do(t, "POST", "/scenarios/SCN-001/submit", session.SubmitRequest{
		Verdict: "true_positive",
		Action:  "escalate",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Reopen and check the attempt history.
	rec = a.do(t, "POST", "/scenarios/SCN-001/reopen", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, "GET", "/scenarios/SCN-001/attempts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestSubmitValidation(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/scenarios", loginBurstScenario()).Code)
	require.Equal(t, http.StatusOK, a.do(t, "POST", "/scenarios/SCN-001/open", nil).Code)

	rec := a.do(t, "POST", "/scenarios/SCN-001/submit", session.SubmitRequest{Verdict: "true_positive"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, "POST", "/scenarios/SCN-001/submit", session.SubmitRequest{
		Verdict: "bogus",
		Action:  "escalate",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaybookStepRoutes(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/scenarios", loginBurstScenario()).Code)
	require.Equal(t, http.StatusOK, a.do(t, "POST", "/scenarios/SCN-001/open", nil).Code)

	rec := a.do(t, "POST", "/playbook/steps/0/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, "PUT", "/playbook/steps/0/answer", map[string]string{"text": "burst of 40 failures"})
	require.Equal(t, http.StatusOK, rec.Code)

	snap := a.tracker.Snapshot()
	require.NotNil(t, snap)
	assert.True(t, snap.CompletedSteps[0])
	assert.Equal(t, "burst of 40 failures", snap.Answers[0])

	rec = a.do(t, "POST", "/playbook/steps/zero/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Out-of-range indices are rejected, not stored as completed steps.
	rec = a.do(t, "POST", "/playbook/steps/7/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(t, "PUT", "/playbook/steps/-1/answer", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	snap = a.tracker.Snapshot()
	assert.Len(t, snap.CompletedSteps, 1)
	assert.Len(t, snap.Answers, 1)

	rec = a.do(t, "DELETE", "/playbook", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, a.tracker.Snapshot())

	rec = a.do(t, "GET", "/playbook", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRuleRoutes(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, "POST", "/rules", model.Rule{
		Name:     "Failed Logons",
		Severity: model.SeverityMedium,
		Field:    "event.action",
		Operator: model.OpContains,
		Value:    "fail",
		Enabled:  true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	// Rule mutations are persisted.
	persisted, err := a.store.LoadRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 1)

	rec = a.do(t, "POST", "/rules", model.Rule{Name: "no field"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, "GET", "/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = a.do(t, "DELETE", "/rules/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, "DELETE", "/rules/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventIngestAndAlertRoutes(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, "POST", "/rules", model.Rule{
		Name:     "Failed Logons",
		Severity: model.SeverityMedium,
		Field:    "event.action",
		Operator: model.OpContains,
		Value:    "fail",
		Enabled:  true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	events := map[string]interface{}{
		"events": []map[string]interface{}{
			{
				"@timestamp": "2026-01-01T00:00:00Z",
				"host":       map[string]interface{}{"name": "web-01"},
				"event":      map[string]interface{}{"action": "ssh_login_failed"},
			},
		},
	}
	rec = a.do(t, "POST", "/live/events", events)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	// Same batch again dedups.
	rec = a.do(t, "POST", "/live/events", events)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])

	rec = a.do(t, "GET", "/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = a.do(t, "GET", "/live/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, "DELETE", "/alerts", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, "GET", "/alerts", nil)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])
}

func TestAttemptsForUnknownScenario(t *testing.T) {
	a := newAPI(t)
	rec := a.do(t, "GET", fmt.Sprintf("/scenarios/%s/attempts", "missing"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])
}

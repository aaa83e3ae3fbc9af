// Package session drives the investigation lifecycle: open a scenario,
// collect a submission, score it against the answer key and record the
// attempt.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Mousewarriors/SEIM-Project/pkg/errors"

	"github.com/Mousewarriors/SEIM-Project/internal/history"
	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/playbook"
	"github.com/Mousewarriors/SEIM-Project/internal/scenario"
	"github.com/Mousewarriors/SEIM-Project/internal/scoring"
	"github.com/Mousewarriors/SEIM-Project/internal/store"
)

// SubmitRequest carries the analyst's verdict for scoring. Containment is
// not independently entered; it is derived from playbook state at submit
// time.
type SubmitRequest struct {
	Verdict      string `json:"verdict"`
	Action       string `json:"action"`
	FindingsText string `json:"findings_text"`
}

// SubmitResult is returned to the analyst after scoring.
type SubmitResult struct {
	Submission model.Submission `json:"submission"`
	Result     scoring.Result   `json:"result"`
	// Answer is revealed after submission for comparison rendering.
	Answer *model.AnswerKey `json:"answer"`
}

// Manager owns the open investigation sessions. One submission is active
// per scenario; submitting finalizes it and a reopen creates a fresh one.
type Manager struct {
	mu        sync.Mutex
	active    map[string]*model.Submission // scenario id -> open submission
	scenarios *scenario.Store
	tracker   *playbook.Tracker
	recorder  history.Recorder
	state     store.StateStore
	logger    *slog.Logger
}

// NewManager creates a session manager.
func NewManager(scenarios *scenario.Store, tracker *playbook.Tracker, recorder history.Recorder, state store.StateStore, logger *slog.Logger) *Manager {
	return &Manager{
		active:    make(map[string]*model.Submission),
		scenarios: scenarios,
		tracker:   tracker,
		recorder:  recorder,
		state:     state,
		logger:    logger.With("component", "session-manager"),
	}
}

// Open starts (or resumes) an investigation: the scenario's playbook is
// loaded into the tracker (a no-op when already active) and an empty
// submission is created if none is open.
func (m *Manager) Open(scenarioID string) (*model.Scenario, *model.Submission, error) {
	scn, err := m.scenarios.Get(scenarioID)
	if err != nil {
		return nil, nil, err
	}

	m.tracker.Load(scn.Scenario.ID, scn.Alert.Title, scn.Playbook.Steps, scn.Alert.Host)

	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.active[scenarioID]
	if !ok {
		sub = &model.Submission{
			ID:         uuid.NewString(),
			ScenarioID: scenarioID,
			CreatedAt:  time.Now().UTC(),
		}
		m.active[scenarioID] = sub
	}

	cp := *sub
	return scn, &cp, nil
}

// Submit finalizes the open submission and scores it. Verdict and action
// are required; a scenario without an answer key refuses to score.
func (m *Manager) Submit(ctx context.Context, scenarioID string, req SubmitRequest) (*SubmitResult, error) {
	if req.Verdict == "" || req.Action == "" {
		return nil, apperrors.Validation("verdict and action are required before submission")
	}
	verdict, err := model.ParseVerdict(req.Verdict)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid submission")
	}
	action, err := model.ParseAction(req.Action)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid submission")
	}

	scn, err := m.scenarios.Get(scenarioID)
	if err != nil {
		return nil, err
	}
	if scn.Answer == nil {
		// No ground truth: never call the scoring engine with a nil key.
		return nil, apperrors.Conflict("scenario has no answer key; scoring unavailable").WithDetail("id", scenarioID)
	}

	m.mu.Lock()
	sub, ok := m.active[scenarioID]
	if !ok || sub.Finalized {
		m.mu.Unlock()
		return nil, apperrors.Conflict("no open submission for scenario").WithDetail("id", scenarioID)
	}

	now := time.Now().UTC()
	sub.Verdict = verdict
	sub.Action = action
	sub.FindingsText = req.FindingsText
	sub.Finalized = true
	sub.SubmittedAt = now
	finalized := *sub
	m.mu.Unlock()

	hostContained := m.tracker.IsHostContained(scn.Alert.Host)
	result := scoring.Score(*scn.Answer, verdict, action, hostContained)

	correct := result.VerdictCorrect
	m.tracker.SetVerdictCorrect(&correct)

	// The flag is part of the persisted playbook record; without this write
	// a restart between submit and the next playbook mutation loses it.
	rec := store.PlaybookRecord{
		State:          m.tracker.Snapshot(),
		VerdictCorrect: m.tracker.VerdictCorrect(),
	}
	if err := m.state.SavePlaybook(ctx, rec); err != nil {
		m.logger.Warn("failed to persist playbook state", "scenario_id", scenarioID, "error", err)
	}

	attempt := history.Attempt{
		ID:                 finalized.ID,
		ScenarioID:         scenarioID,
		Verdict:            verdict,
		Action:             action,
		HostContained:      hostContained,
		FindingsText:       req.FindingsText,
		Score:              result.Score,
		VerdictCorrect:     result.VerdictCorrect,
		ActionCorrect:      result.ActionCorrect,
		ContainmentCorrect: result.ContainmentCorrect,
		SubmittedAt:        now,
	}
	if err := m.recorder.Record(ctx, attempt); err != nil {
		// Scoring succeeded; a failed history write degrades, not fails.
		m.logger.Warn("failed to record attempt", "scenario_id", scenarioID, "error", err)
	}

	m.logger.Info("submission scored",
		"scenario_id", scenarioID,
		"score", result.Score,
		"verdict_correct", result.VerdictCorrect,
	)

	return &SubmitResult{
		Submission: finalized,
		Result:     result,
		Answer:     scn.Answer,
	}, nil
}

// Reopen replaces a finalized submission with a fresh empty one so the
// analyst can continue investigating after seeing results. The finalized
// attempt stays in history.
func (m *Manager) Reopen(scenarioID string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.active[scenarioID]
	if !ok {
		return nil, apperrors.NotFound("session").WithDetail("id", scenarioID)
	}
	if !sub.Finalized {
		cp := *sub
		return &cp, nil
	}

	fresh := &model.Submission{
		ID:         uuid.NewString(),
		ScenarioID: scenarioID,
		CreatedAt:  time.Now().UTC(),
	}
	m.active[scenarioID] = fresh
	cp := *fresh
	return &cp, nil
}

// Attempts lists the recorded history for a scenario, newest first.
func (m *Manager) Attempts(ctx context.Context, scenarioID string) ([]history.Attempt, error) {
	return m.recorder.ListByScenario(ctx, scenarioID)
}

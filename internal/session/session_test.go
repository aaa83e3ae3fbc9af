package session_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mousewarriors/SEIM-Project/internal/history"
	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/playbook"
	"github.com/Mousewarriors/SEIM-Project/internal/scenario"
	"github.com/Mousewarriors/SEIM-Project/internal/session"
	"github.com/Mousewarriors/SEIM-Project/internal/store"
	apperrors "github.com/Mousewarriors/SEIM-Project/pkg/errors"
)

type fixture struct {
	scenarios *scenario.Store
	tracker   *playbook.Tracker
	recorder  *history.MemoryRecorder
	state     *store.MemoryStore
	manager   *session.Manager
}

func newFixture(t *testing.T, scn *model.Scenario) *fixture {
	t.Helper()

	f := &fixture{
		scenarios: scenario.NewStore(),
		tracker:   playbook.NewTracker(),
		recorder:  history.NewMemoryRecorder(),
		state:     store.NewMemoryStore(),
	}
	if scn != nil {
		require.NoError(t, f.scenarios.Create(scn))
	}
	f.manager = session.NewManager(f.scenarios, f.tracker, f.recorder, f.state, slog.Default())
	return f
}

func containmentScenario(required bool) *model.Scenario {
	return &model.Scenario{
		Scenario: model.ScenarioMeta{ID: "SCN-001", Name: "Login Burst"},
		Alert: model.ScenarioAlert{
			ID:       "SCN-001",
			Title:    "Suspicious Login Burst",
			Severity: model.SeverityHigh,
			Host:     "WS-042",
		},
		Playbook: model.PlaybookDef{Name: "Triage", Steps: []string{"a", "b"}},
		Answer: &model.AnswerKey{
			Verdict:             model.VerdictTruePositive,
			Severity:            model.SeverityHigh,
			RecommendedAction:   model.ActionEscalate,
			ContainmentRequired: &required,
		},
	}
}

func TestOpenCreatesEmptySubmissionAndLoadsPlaybook(t *testing.T) {
	f := newFixture(t, containmentScenario(true))

	scn, sub, err := f.manager.Open("SCN-001")
	require.NoError(t, err)
	assert.Equal(t, "Suspicious Login Burst", scn.Alert.Title)
	assert.False(t, sub.Finalized)
	assert.Empty(t, sub.Verdict)

	snap := f.tracker.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "SCN-001", snap.ID)

	// Re-opening resumes the same submission.
	_, again, err := f.manager.Open("SCN-001")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
}

func TestSubmitScoresWithContainmentFromPlaybook(t *testing.T) {
	f := newFixture(t, containmentScenario(true))
	_, _, err := f.manager.Open("SCN-001")
	require.NoError(t, err)

	// Host left uncontained: 40 + 30 + 0 = 70, not 100.
	res, err := f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{
		Verdict: "true_positive",
		Action:  "escalate",
	})
	require.NoError(t, err)
	assert.Equal(t, 70, res.Result.Score)
	assert.False(t, res.Result.ContainmentCorrect)
	require.NotNil(t, res.Answer)

	// Verdict-correct flag pushed into playbook state.
	correct := f.tracker.VerdictCorrect()
	require.NotNil(t, correct)
	assert.True(t, *correct)
}

func TestSubmitPersistsPlaybookRecord(t *testing.T) {
	f := newFixture(t, containmentScenario(true))
	_, _, err := f.manager.Open("SCN-001")
	require.NoError(t, err)

	_, err = f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{
		Verdict: "true_positive",
		Action:  "escalate",
	})
	require.NoError(t, err)

	// A restart restores the verdict flag from the persisted record, not
	// only from later playbook mutations.
	rec, err := f.state.LoadPlaybook(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec.State)
	assert.Equal(t, "SCN-001", rec.State.ID)
	require.NotNil(t, rec.VerdictCorrect)
	assert.True(t, *rec.VerdictCorrect)
}

func TestSubmitAllCorrectWithContainment(t *testing.T) {
	f := newFixture(t, containmentScenario(true))
	_, _, err := f.manager.Open("SCN-001")
	require.NoError(t, err)

	f.tracker.ToggleContainment("WS-042")

	res, err := f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{
		Verdict: "true_positive",
		Action:  "escalate",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Result.Score)
}

func TestSubmitRequiresVerdictAndAction(t *testing.T) {
	f := newFixture(t, containmentScenario(true))
	_, _, err := f.manager.Open("SCN-001")
	require.NoError(t, err)

	_, err = f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{Verdict: "true_positive"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{
		Verdict: "kinda_positive",
		Action:  "escalate",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestSubmitRefusesWithoutAnswerKey(t *testing.T) {
	scn := containmentScenario(true)
	scn.Answer = nil
	f := newFixture(t, scn)
	_, _, err := f.manager.Open("SCN-001")
	require.NoError(t, err)

	_, err = f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{
		Verdict: "true_positive",
		Action:  "escalate",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}

func TestSubmissionIsFinalizedOnce(t *testing.T) {
	f := newFixture(t, containmentScenario(true))
	_, _, err := f.manager.Open("SCN-001")
	require.NoError(t, err)

	req := session.SubmitRequest{Verdict: "true_positive", Action: "escalate"}
	_, err = f.manager.Submit(context.Background(), "SCN-001", req)
	require.NoError(t, err)

	_, err = f.manager.Submit(context.Background(), "SCN-001", req)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict), "finalized submission is immutable")
}

func TestReopenCreatesFreshSubmissionAndKeepsHistory(t *testing.T) {
	f := newFixture(t, containmentScenario(true))
	_, first, err := f.manager.Open("SCN-001")
	require.NoError(t, err)

	_, err = f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{
		Verdict: "benign",
		Action:  "close",
	})
	require.NoError(t, err)

	fresh, err := f.manager.Reopen("SCN-001")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID)
	assert.False(t, fresh.Finalized)

	// And a second attempt after reopening records separately.
	_, err = f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{
		Verdict: "true_positive",
		Action:  "escalate",
	})
	require.NoError(t, err)

	attempts, err := f.manager.Attempts(context.Background(), "SCN-001")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 70, attempts[0].Score, "newest first")
	assert.Equal(t, 0, attempts[1].Score)
}

func TestSubmitWithoutContainmentDimension(t *testing.T) {
	scn := containmentScenario(true)
	scn.Answer.ContainmentRequired = nil
	f := newFixture(t, scn)
	_, _, err := f.manager.Open("SCN-001")
	require.NoError(t, err)

	res, err := f.manager.Submit(context.Background(), "SCN-001", session.SubmitRequest{
		Verdict: "true_positive",
		Action:  "close",
	})
	require.NoError(t, err)
	assert.Equal(t, 60, res.Result.Score)
	assert.True(t, res.Result.ContainmentCorrect, "not scored, never penalizes")
}

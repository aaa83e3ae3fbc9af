package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/scoring"
)

func boolPtr(b bool) *bool { return &b }

func TestScoreWithoutContainment(t *testing.T) {
	key := model.AnswerKey{
		Verdict:           model.VerdictTruePositive,
		RecommendedAction: model.ActionEscalate,
	}

	tests := []struct {
		name      string
		verdict   model.Verdict
		action    model.Action
		wantScore int
	}{
		{"both correct", model.VerdictTruePositive, model.ActionEscalate, 100},
		{"verdict only", model.VerdictTruePositive, model.ActionClose, 60},
		{"action only", model.VerdictBenign, model.ActionEscalate, 30},
		{"neither", model.VerdictBenign, model.ActionClose, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scoring.Score(key, tt.verdict, tt.action, false)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.False(t, res.ContainmentScored)
			assert.True(t, res.ContainmentCorrect, "containment is vacuously satisfied")
		})
	}
}

func TestScoreWithContainment(t *testing.T) {
	key := model.AnswerKey{
		Verdict:             model.VerdictTruePositive,
		RecommendedAction:   model.ActionEscalate,
		ContainmentRequired: boolPtr(true),
	}

	tests := []struct {
		name      string
		verdict   model.Verdict
		action    model.Action
		contained bool
		wantScore int
	}{
		{"all correct", model.VerdictTruePositive, model.ActionEscalate, true, 100},
		{"verdict only", model.VerdictTruePositive, model.ActionClose, false, 40},
		{"action only", model.VerdictBenign, model.ActionEscalate, false, 30},
		{"containment only", model.VerdictBenign, model.ActionClose, true, 30},
		{"none correct", model.VerdictBenign, model.ActionClose, false, 0},
		{"verdict and action but host not contained", model.VerdictTruePositive, model.ActionEscalate, false, 70},
		{"verdict and containment", model.VerdictTruePositive, model.ActionClose, true, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scoring.Score(key, tt.verdict, tt.action, tt.contained)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.True(t, res.ContainmentScored)
		})
	}
}

func TestScoreContainmentNotRequired(t *testing.T) {
	// containment_required=false still scores containment: correct only
	// when the host was left alone.
	key := model.AnswerKey{
		Verdict:             model.VerdictFalsePositive,
		RecommendedAction:   model.ActionClose,
		ContainmentRequired: boolPtr(false),
	}

	res := scoring.Score(key, model.VerdictFalsePositive, model.ActionClose, false)
	assert.Equal(t, 100, res.Score)

	res = scoring.Score(key, model.VerdictFalsePositive, model.ActionClose, true)
	assert.Equal(t, 70, res.Score)
	assert.False(t, res.ContainmentCorrect)
}

func TestScoreCorrectnessFlags(t *testing.T) {
	key := model.AnswerKey{
		Verdict:           model.VerdictBenign,
		RecommendedAction: model.ActionMonitor,
	}

	res := scoring.Score(key, model.VerdictBenign, model.ActionClose, false)
	assert.True(t, res.VerdictCorrect)
	assert.False(t, res.ActionCorrect)
}

// Package scoring converts a finalized submission plus the scenario answer
// key into a numeric score with per-dimension correctness flags.
package scoring

import (
	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// Dimension weights for containment-scored scenarios.
const (
	verdictWeight     = 40
	actionWeight      = 30
	containmentWeight = 30
)

// Result is the outcome of scoring one submission.
type Result struct {
	Score              int  `json:"score"` // 0-100
	VerdictCorrect     bool `json:"verdict_correct"`
	ActionCorrect      bool `json:"action_correct"`
	ContainmentCorrect bool `json:"containment_correct"`
	// ContainmentScored reports whether the answer key defines
	// containment_required; when false ContainmentCorrect is vacuously true.
	ContainmentScored bool `json:"containment_scored"`
}

// Score evaluates a submission against an answer key. It is a total function
// over well-formed enum inputs and has no side effects; callers must not
// invoke it without an answer key.
//
// Two regimes apply. When the key defines containment_required, the
// all-three-correct case scores 100 via an explicit first branch, otherwise
// the dimensions contribute 40/30/30 with no partial credit within a
// dimension. When containment is not scored the scale is asymmetric:
// both correct 100, verdict only 60, action only 30, neither 0.
func Score(key model.AnswerKey, verdict model.Verdict, action model.Action, hostContained bool) Result {
	res := Result{
		VerdictCorrect:     verdict == key.Verdict,
		ActionCorrect:      action == key.RecommendedAction,
		ContainmentCorrect: true,
		ContainmentScored:  key.ContainmentRequired != nil,
	}

	if res.ContainmentScored {
		res.ContainmentCorrect = hostContained == *key.ContainmentRequired

		// The explicit branch is kept ahead of the weighted sum so the
		// all-correct case stays 100 even if the weights change later.
		if res.VerdictCorrect && res.ActionCorrect && res.ContainmentCorrect {
			res.Score = 100
			return res
		}
		if res.VerdictCorrect {
			res.Score += verdictWeight
		}
		if res.ActionCorrect {
			res.Score += actionWeight
		}
		if res.ContainmentCorrect {
			res.Score += containmentWeight
		}
		return res
	}

	switch {
	case res.VerdictCorrect && res.ActionCorrect:
		res.Score = 100
	case res.VerdictCorrect:
		res.Score = 60
	case res.ActionCorrect:
		res.Score = 30
	default:
		res.Score = 0
	}
	return res
}

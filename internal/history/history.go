// Package history records finalized submissions and their scores.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// Attempt is one finalized, scored submission.
type Attempt struct {
	ID                 string        `json:"id" db:"id"`
	ScenarioID         string        `json:"scenario_id" db:"scenario_id"`
	Verdict            model.Verdict `json:"verdict" db:"verdict"`
	Action             model.Action  `json:"action" db:"action"`
	HostContained      bool          `json:"host_contained" db:"host_contained"`
	FindingsText       string        `json:"findings_text" db:"findings_text"`
	Score              int           `json:"score" db:"score"`
	VerdictCorrect     bool          `json:"verdict_correct" db:"verdict_correct"`
	ActionCorrect      bool          `json:"action_correct" db:"action_correct"`
	ContainmentCorrect bool          `json:"containment_correct" db:"containment_correct"`
	SubmittedAt        time.Time     `json:"submitted_at" db:"submitted_at"`
}

// Recorder persists attempts.
type Recorder interface {
	Record(ctx context.Context, attempt Attempt) error
	ListByScenario(ctx context.Context, scenarioID string) ([]Attempt, error)
	Close() error
}

// MemoryRecorder keeps attempts in memory, newest first per scenario.
type MemoryRecorder struct {
	mu       sync.RWMutex
	attempts []Attempt
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) Record(_ context.Context, attempt Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *MemoryRecorder) ListByScenario(_ context.Context, scenarioID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Attempt
	for _, a := range m.attempts {
		if a.ScenarioID == scenarioID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *MemoryRecorder) Close() error { return nil }

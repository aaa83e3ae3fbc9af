// Package playbook tracks the active investigation checklist: step
// completion, per-step notes and the set of contained hosts.
package playbook

import (
	"sync"
)

// State is the persisted shape of the active playbook. One instance is
// active at a time; switching scenario id fully replaces it.
type State struct {
	ID             string          `json:"id"` // scenario id the playbook is bound to
	Title          string          `json:"title"`
	Steps          []string        `json:"steps"`
	CompletedSteps map[int]bool    `json:"completed_steps"`
	Answers        map[int]string  `json:"answers"`
	ContainedHosts map[string]bool `json:"contained_hosts"`
	Host           string          `json:"host,omitempty"`
}

// Tracker owns the active playbook state plus the verdict-correctness flag
// set at submission time. The two are independent pieces of state that the
// completion signal happens to read together.
type Tracker struct {
	mu             sync.RWMutex
	active         *State
	verdictCorrect *bool // nil until a submission has been scored
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Load activates the playbook for a scenario. Loading the same scenario id
// again is a no-op so re-opening an investigation never wipes in-progress
// checkbox or answer state.
func (t *Tracker) Load(id, title string, steps []string, host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil && t.active.ID == id {
		return
	}

	t.active = &State{
		ID:             id,
		Title:          title,
		Steps:          append([]string(nil), steps...),
		CompletedSteps: make(map[int]bool),
		Answers:        make(map[int]string),
		ContainedHosts: make(map[string]bool),
		Host:           host,
	}
	t.verdictCorrect = nil
}

// Restore replaces the tracker state wholesale, e.g. from the persisted
// store on startup.
func (t *Tracker) Restore(s *State, verdictCorrect *bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = s
	t.verdictCorrect = verdictCorrect
}

// ToggleStep flips completion for a step index. Returns false without an
// active playbook or for an index outside the step list; completion is
// counted by map size, so out-of-range indices must never be stored.
func (t *Tracker) ToggleStep(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil || index < 0 || index >= len(t.active.Steps) {
		return false
	}
	if t.active.CompletedSteps[index] {
		delete(t.active.CompletedSteps, index)
	} else {
		t.active.CompletedSteps[index] = true
	}
	return true
}

// SetAnswer upserts the free-text answer for a step. No length limit.
// Returns false without an active playbook or for an out-of-range index.
func (t *Tracker) SetAnswer(index int, text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil || index < 0 || index >= len(t.active.Steps) {
		return false
	}
	t.active.Answers[index] = text
	return true
}

// ToggleContainment flips membership of host in the contained set. No-op
// without an active playbook.
func (t *Tracker) ToggleContainment(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return
	}
	if t.active.ContainedHosts[host] {
		delete(t.active.ContainedHosts, host)
	} else {
		t.active.ContainedHosts[host] = true
	}
}

// IsHostContained reports whether host is currently marked contained.
func (t *Tracker) IsHostContained(host string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.active == nil {
		return false
	}
	return t.active.ContainedHosts[host]
}

// SetVerdictCorrect records the outcome of the most recent submission.
func (t *Tracker) SetVerdictCorrect(correct *bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.verdictCorrect = correct
}

// VerdictCorrect returns the tracked flag; nil means nothing submitted yet.
func (t *Tracker) VerdictCorrect() *bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.verdictCorrect == nil {
		return nil
	}
	v := *t.verdictCorrect
	return &v
}

// Clear drops the active playbook and resets correctness tracking.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = nil
	t.verdictCorrect = nil
}

// Snapshot returns a copy of the active state, or nil when none is active.
func (t *Tracker) Snapshot() *State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.active == nil {
		return nil
	}

	cp := &State{
		ID:             t.active.ID,
		Title:          t.active.Title,
		Steps:          append([]string(nil), t.active.Steps...),
		CompletedSteps: make(map[int]bool, len(t.active.CompletedSteps)),
		Answers:        make(map[int]string, len(t.active.Answers)),
		ContainedHosts: make(map[string]bool, len(t.active.ContainedHosts)),
		Host:           t.active.Host,
	}
	for k, v := range t.active.CompletedSteps {
		cp.CompletedSteps[k] = v
	}
	for k, v := range t.active.Answers {
		cp.Answers[k] = v
	}
	for k, v := range t.active.ContainedHosts {
		cp.ContainedHosts[k] = v
	}
	return cp
}

// StepsComplete reports whether every step has been checked off.
func (t *Tracker) StepsComplete() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.active == nil {
		return false
	}
	return len(t.active.CompletedSteps) == len(t.active.Steps)
}

// CaseComplete is the combined signal: all steps done and the last scored
// submission had the correct verdict.
func (t *Tracker) CaseComplete() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.active == nil || t.verdictCorrect == nil {
		return false
	}
	return len(t.active.CompletedSteps) == len(t.active.Steps) && *t.verdictCorrect
}

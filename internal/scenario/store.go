// Package scenario holds the in-memory scenario catalog: training cases
// with their playbooks and answer keys.
package scenario

import (
	"sort"
	"sync"

	apperrors "github.com/Mousewarriors/SEIM-Project/pkg/errors"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// Store is the scenario catalog. Answer keys are immutable once loaded:
// the store hands out deep copies and has no partial-update path.
type Store struct {
	mu        sync.RWMutex
	scenarios map[string]*model.Scenario
}

// NewStore creates an empty scenario store.
func NewStore() *Store {
	return &Store{scenarios: make(map[string]*model.Scenario)}
}

// Create registers a scenario. Re-registering an existing id is a conflict;
// delete first to replace, which also invalidates running sessions.
func (s *Store) Create(scn *model.Scenario) error {
	if err := scn.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeValidation, "invalid scenario")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := scn.Scenario.ID
	if _, exists := s.scenarios[id]; exists {
		return apperrors.Conflict("scenario already exists").WithDetail("id", id)
	}
	s.scenarios[id] = scn.Clone()
	return nil
}

// Get returns a deep copy of a scenario.
func (s *Store) Get(id string) (*model.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scn, ok := s.scenarios[id]
	if !ok {
		return nil, apperrors.NotFound("scenario").WithDetail("id", id)
	}
	return scn.Clone(), nil
}

// List returns all scenarios ordered by id.
func (s *Store) List() []*model.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Scenario, 0, len(s.scenarios))
	for _, scn := range s.scenarios {
		out = append(out, scn.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Scenario.ID < out[j].Scenario.ID
	})
	return out
}

// Delete removes a scenario by id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenarios[id]; !ok {
		return apperrors.NotFound("scenario").WithDetail("id", id)
	}
	delete(s.scenarios, id)
	return nil
}

// Len returns the number of registered scenarios.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenarios)
}

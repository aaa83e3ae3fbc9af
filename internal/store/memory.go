package store

import (
	"context"
	"sync"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// MemoryStore is a non-durable StateStore for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	rules    []model.Rule
	alerts   []model.LiveAlert
	playbook PlaybookRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveRules(_ context.Context, rules []model.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append([]model.Rule(nil), rules...)
	return nil
}

func (m *MemoryStore) LoadRules(_ context.Context) ([]model.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Rule(nil), m.rules...), nil
}

func (m *MemoryStore) SaveAlerts(_ context.Context, alerts []model.LiveAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append([]model.LiveAlert(nil), alerts...)
	return nil
}

func (m *MemoryStore) LoadAlerts(_ context.Context) ([]model.LiveAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.LiveAlert(nil), m.alerts...), nil
}

func (m *MemoryStore) SavePlaybook(_ context.Context, rec PlaybookRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playbook = rec
	return nil
}

func (m *MemoryStore) LoadPlaybook(_ context.Context) (PlaybookRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playbook, nil
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

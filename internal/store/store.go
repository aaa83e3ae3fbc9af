// Package store persists the mutable analyst state: detection rules, live
// alerts and the active playbook. Any durable keyed store suffices; writes
// are last-write-wins since there is one logical writer.
package store

import (
	"context"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/playbook"
)

// PlaybookRecord bundles the playbook state with the verdict-correctness
// flag so both survive a restart together.
type PlaybookRecord struct {
	State          *playbook.State `json:"state"`
	VerdictCorrect *bool           `json:"verdict_correct"`
}

// StateStore persists analyst state between sessions.
type StateStore interface {
	SaveRules(ctx context.Context, rules []model.Rule) error
	LoadRules(ctx context.Context) ([]model.Rule, error)

	SaveAlerts(ctx context.Context, alerts []model.LiveAlert) error
	LoadAlerts(ctx context.Context) ([]model.LiveAlert, error)

	SavePlaybook(ctx context.Context, rec PlaybookRecord) error
	LoadPlaybook(ctx context.Context) (PlaybookRecord, error)

	Ping(ctx context.Context) error
	Close() error
}

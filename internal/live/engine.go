// Package live implements the live rule engine: user-defined field-match
// rules evaluated against a continuously arriving event stream, with
// per-event dedup and bounded alert memory.
package live

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// maxAlerts bounds the retained alert list; the newest alert is kept at the
// head and the oldest dropped first.
const maxAlerts = 50

// Config holds engine configuration.
type Config struct {
	DedupMode DedupMode `json:"dedup_mode"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{DedupMode: DedupIdentity}
}

// Engine evaluates incoming events against the current set of enabled rules
// and emits alerts. A batch is processed in a single synchronous pass; rule
// mutations between batches take effect atomically for the next batch.
type Engine struct {
	mu     sync.RWMutex
	rules  []model.Rule
	alerts []model.LiveAlert // newest first
	seen   *seenCache

	config Config
	logger *slog.Logger

	// Metrics
	eventsSeen    atomic.Uint64
	eventsSkipped atomic.Uint64
	alertsEmitted atomic.Uint64
}

// NewEngine creates a live rule engine.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if cfg.DedupMode == "" {
		cfg.DedupMode = DedupIdentity
	}
	return &Engine{
		seen:   newSeenCache(),
		config: cfg,
		logger: logger.With("component", "live-engine"),
	}
}

// AddRule appends a new rule. Duplicate names are permitted; an empty id is
// assigned one.
func (e *Engine) AddRule(rule model.Rule) (model.Rule, error) {
	if err := rule.Validate(); err != nil {
		return model.Rule{}, err
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	e.mu.Lock()
	e.rules = append(e.rules, rule)
	e.mu.Unlock()

	e.logger.Info("rule added", "rule_id", rule.ID, "name", rule.Name)
	return rule, nil
}

// DeleteRule removes a rule by id. Already-emitted alerts keep their
// rule_id reference. Returns false when no rule matched.
func (e *Engine) DeleteRule(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, r := range e.rules {
		if r.ID == id {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Rules returns a copy of the current rule set.
func (e *Engine) Rules() []model.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.Rule(nil), e.rules...)
}

// ReplaceRules swaps the full rule set, e.g. when restoring persisted state.
func (e *Engine) ReplaceRules(rules []model.Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append([]model.Rule(nil), rules...)
}

// Alerts returns a copy of the retained alerts, newest first.
func (e *Engine) Alerts() []model.LiveAlert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.LiveAlert(nil), e.alerts...)
}

// ReplaceAlerts restores a persisted alert list, applying the bound.
func (e *Engine) ReplaceAlerts(alerts []model.LiveAlert) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(alerts) > maxAlerts {
		alerts = alerts[:maxAlerts]
	}
	e.alerts = append([]model.LiveAlert(nil), alerts...)
}

// ClearAlerts drops all retained alerts.
func (e *Engine) ClearAlerts() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alerts = nil
}

// Evaluate processes a batch of events and returns the alerts it emitted.
// An event whose identity key was already seen is skipped entirely: no rule
// evaluation and no re-alerting, so re-submitting a batch is idempotent.
func (e *Engine) Evaluate(events []model.Event) []model.LiveAlert {
	e.mu.Lock()
	defer e.mu.Unlock()

	var emitted []model.LiveAlert
	for _, evt := range events {
		e.eventsSeen.Add(1)

		key := dedupKey(evt, e.config.DedupMode)
		if e.seen.Has(key) {
			e.eventsSkipped.Add(1)
			continue
		}
		e.seen.Add(key)

		for _, rule := range e.rules {
			if !rule.Enabled {
				continue
			}
			if !matches(rule, evt) {
				continue
			}

			alert := model.LiveAlert{
				ID:          uuid.NewString(),
				RuleID:      rule.ID,
				Title:       rule.Name,
				Severity:    rule.Severity,
				Timestamp:   time.Now().UTC(),
				SourceEvent: evt,
			}
			emitted = append(emitted, alert)
			e.alertsEmitted.Add(1)

			e.alerts = append([]model.LiveAlert{alert}, e.alerts...)
			if len(e.alerts) > maxAlerts {
				e.alerts = e.alerts[:maxAlerts]
			}
		}
	}

	if len(emitted) > 0 {
		e.logger.Info("live alerts emitted", "count", len(emitted))
	}
	return emitted
}

// Stats returns engine counters for the API.
func (e *Engine) Stats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return map[string]interface{}{
		"events_seen":    e.eventsSeen.Load(),
		"events_skipped": e.eventsSkipped.Load(),
		"alerts_emitted": e.alertsEmitted.Load(),
		"rules_count":    len(e.rules),
		"alerts_kept":    len(e.alerts),
		"seen_keys":      e.seen.Len(),
		"dedup_mode":     string(e.config.DedupMode),
	}
}

// matches evaluates one rule against one event. A field path that does not
// resolve never matches, for any operator: an undefined field is not
// "not equal", it simply never evaluates.
func matches(rule model.Rule, evt model.Event) bool {
	raw, ok := evt.FieldString(rule.Field)
	if !ok {
		return false
	}

	val := strings.ToLower(raw)
	want := strings.ToLower(rule.Value)

	switch rule.Operator {
	case model.OpEquals:
		return val == want
	case model.OpContains:
		return strings.Contains(val, want)
	case model.OpNotEquals:
		return val != want
	default:
		return false
	}
}

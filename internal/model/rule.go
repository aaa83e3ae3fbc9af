package model

import (
	"fmt"
	"time"
)

// Operator is a field-match comparison. All comparisons are string-based
// and case-insensitive.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpContains  Operator = "contains"
	OpNotEquals Operator = "not_equals"
)

// ParseOperator validates and returns an Operator.
func ParseOperator(s string) (Operator, error) {
	switch v := Operator(s); v {
	case OpEquals, OpContains, OpNotEquals:
		return v, nil
	}
	return "", fmt.Errorf("invalid operator %q", s)
}

// Rule is a user-authored field-match detection rule evaluated against the
// live event stream. Rules are independent of each other; duplicate names
// are permitted.
type Rule struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Field       string   `json:"field"`    // dot-path, e.g. "event.action"
	Operator    Operator `json:"operator"` // equals | contains | not_equals
	Value       string   `json:"value"`
	Enabled     bool     `json:"enabled"`
}

// Validate checks the minimum the authoring form enforces: non-empty
// name, field and value, plus well-formed enums.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.Field == "" {
		return fmt.Errorf("rule field is required")
	}
	if r.Value == "" {
		return fmt.Errorf("rule value is required")
	}
	if _, err := ParseOperator(string(r.Operator)); err != nil {
		return err
	}
	if _, err := ParseSeverity(string(r.Severity)); err != nil {
		return err
	}
	return nil
}

// LiveAlert is emitted when an enabled rule matches an event. RuleID may
// dangle after the rule is deleted: the alert is a historical record, not
// a live join.
type LiveAlert struct {
	ID        string    `json:"id"`
	RuleID    string    `json:"rule_id"`
	Title     string    `json:"title"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"` // time of evaluation, not event time
	// SourceEvent is the triggering event, embedded by value.
	SourceEvent Event `json:"source_event"`
}

// Package model defines the core domain types for the training range.
package model

import (
	"fmt"
	"time"
)

// Verdict classifies an alert.
type Verdict string

const (
	VerdictTruePositive  Verdict = "true_positive"
	VerdictFalsePositive Verdict = "false_positive"
	VerdictBenign        Verdict = "benign"
)

// ParseVerdict validates and returns a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch v := Verdict(s); v {
	case VerdictTruePositive, VerdictFalsePositive, VerdictBenign:
		return v, nil
	}
	return "", fmt.Errorf("invalid verdict %q", s)
}

// Severity represents alert or rule severity.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates and returns a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch v := Severity(s); v {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return v, nil
	}
	return "", fmt.Errorf("invalid severity %q", s)
}

// Action is the analyst's recommended response action.
type Action string

const (
	ActionClose    Action = "close"
	ActionEscalate Action = "escalate"
	ActionMonitor  Action = "monitor"
)

// ParseAction validates and returns an Action.
func ParseAction(s string) (Action, error) {
	switch v := Action(s); v {
	case ActionClose, ActionEscalate, ActionMonitor:
		return v, nil
	}
	return "", fmt.Errorf("invalid action %q", s)
}

// AnswerKey is a scenario's authored ground truth. It is immutable for the
// lifetime of an investigation session; the store hands out copies.
type AnswerKey struct {
	Verdict           Verdict  `json:"verdict" yaml:"verdict"`
	Severity          Severity `json:"severity" yaml:"severity"`
	Summary           string   `json:"summary" yaml:"summary"`
	KeyFindings       []string `json:"key_findings" yaml:"key_findings"`
	RecommendedAction Action   `json:"recommended_action" yaml:"recommended_action"`
	// ContainmentRequired is optional; nil means containment is not scored
	// for this scenario.
	ContainmentRequired *bool `json:"containment_required,omitempty" yaml:"containment_required,omitempty"`
}

// ScenarioAlert is the simulated alert a scenario presents to the analyst.
type ScenarioAlert struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Category    string   `json:"category" yaml:"category"`
	CreatedAt   string   `json:"created_at" yaml:"created_at"`
	Host        string   `json:"host,omitempty" yaml:"host,omitempty"`
	User        string   `json:"user,omitempty" yaml:"user,omitempty"`
	Description string   `json:"description" yaml:"description"`
}

// IOCSet holds indicators of compromise shown for correlation. Not scored.
type IOCSet struct {
	IPs     []string `json:"ips,omitempty" yaml:"ips,omitempty"`
	Domains []string `json:"domains,omitempty" yaml:"domains,omitempty"`
	URLs    []string `json:"urls,omitempty" yaml:"urls,omitempty"`
	Hashes  []string `json:"hashes,omitempty" yaml:"hashes,omitempty"`
}

// PlaybookDef is the authored investigation checklist for a scenario.
type PlaybookDef struct {
	Name  string   `json:"name" yaml:"name"`
	Steps []string `json:"steps" yaml:"steps"`
}

// ScenarioMeta identifies a scenario.
type ScenarioMeta struct {
	ID                   string `json:"id" yaml:"id"`
	Name                 string `json:"name" yaml:"name"`
	Difficulty           string `json:"difficulty" yaml:"difficulty"`
	EstimatedTimeMinutes int    `json:"estimated_time_minutes,omitempty" yaml:"estimated_time_minutes,omitempty"`
}

// Scenario is a bundled training case: alert, IOCs, playbook and ground truth.
type Scenario struct {
	Scenario ScenarioMeta  `json:"scenario" yaml:"scenario"`
	Alert    ScenarioAlert `json:"alert" yaml:"alert"`
	IOCs     IOCSet        `json:"iocs,omitempty" yaml:"iocs,omitempty"`
	Playbook PlaybookDef   `json:"playbook" yaml:"playbook"`
	// Answer may be absent; scoring is refused for scenarios without one.
	Answer *AnswerKey `json:"answer,omitempty" yaml:"answer,omitempty"`
}

// Validate checks the minimum shape required to register a scenario.
func (s *Scenario) Validate() error {
	if s.Scenario.ID == "" {
		return fmt.Errorf("scenario id is required")
	}
	if s.Alert.Title == "" {
		return fmt.Errorf("alert title is required")
	}
	if s.Answer != nil {
		if _, err := ParseVerdict(string(s.Answer.Verdict)); err != nil {
			return fmt.Errorf("answer key: %w", err)
		}
		if _, err := ParseAction(string(s.Answer.RecommendedAction)); err != nil {
			return fmt.Errorf("answer key: %w", err)
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored answer keys.
func (s *Scenario) Clone() *Scenario {
	cp := *s
	if s.Answer != nil {
		answer := *s.Answer
		if s.Answer.ContainmentRequired != nil {
			required := *s.Answer.ContainmentRequired
			answer.ContainmentRequired = &required
		}
		answer.KeyFindings = append([]string(nil), s.Answer.KeyFindings...)
		cp.Answer = &answer
	}
	cp.Playbook.Steps = append([]string(nil), s.Playbook.Steps...)
	cp.IOCs.IPs = append([]string(nil), s.IOCs.IPs...)
	cp.IOCs.Domains = append([]string(nil), s.IOCs.Domains...)
	cp.IOCs.URLs = append([]string(nil), s.IOCs.URLs...)
	cp.IOCs.Hashes = append([]string(nil), s.IOCs.Hashes...)
	return &cp
}

// Submission is one investigation attempt. It is created empty when the
// investigation opens and becomes immutable once finalized.
type Submission struct {
	ID           string    `json:"id"`
	ScenarioID   string    `json:"scenario_id"`
	Verdict      Verdict   `json:"verdict,omitempty"`
	Action       Action    `json:"action,omitempty"`
	FindingsText string    `json:"findings_text,omitempty"`
	Finalized    bool      `json:"finalized"`
	CreatedAt    time.Time `json:"created_at"`
	SubmittedAt  time.Time `json:"submitted_at,omitempty"`
}

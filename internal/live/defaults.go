package live

import "github.com/Mousewarriors/SEIM-Project/internal/model"

// DefaultRules returns the authored starter rules loaded when no rule set
// has been persisted yet.
func DefaultRules() []model.Rule {
	return []model.Rule{
		{
			ID:          "rule-def-1",
			Name:        "Failed Logons",
			Description: "Detect failed login attempts",
			Severity:    model.SeverityMedium,
			Field:       "event.action",
			Operator:    model.OpContains,
			Value:       "fail",
			Enabled:     true,
		},
		{
			ID:          "rule-def-2",
			Name:        "Process Blocked",
			Description: "Detect blocked process execution",
			Severity:    model.SeverityHigh,
			Field:       "event.action",
			Operator:    model.OpContains,
			Value:       "block",
			Enabled:     true,
		},
	}
}

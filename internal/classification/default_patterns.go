package classification

import "github.com/Veraticus/punchlist/internal/model"

// Keyword sets matched against trimmed, lower-cased checklist cells.
var (
	affirmativeValues = []string{"✓", "✔", "ok", "pass", "passed", "good", "satisfactory"}
	negativeValues    = []string{"✗", "✘", "x", "fail", "failed", "not ok", "defect", "issue"}
)

// UrgencyRule raises an item to Level when any keyword appears in the
// fields the rule inspects.
type UrgencyRule struct {
	Name     string
	Level    model.Urgency
	Keywords []string
	// MatchValue checks the raw cell text; otherwise component and room are checked.
	MatchValue bool
}

// DefaultUrgencyRules returns the urgency rules in evaluation order.
// The first matching rule wins.
func DefaultUrgencyRules() []UrgencyRule {
	return []UrgencyRule{
		{
			Name:       "Urgent wording",
			Level:      model.UrgencyUrgent,
			Keywords:   []string{"urgent", "immediate", "safety", "hazard", "dangerous"},
			MatchValue: true,
		},
		{
			Name:     "Safety-related component",
			Level:    model.UrgencyHighPriority,
			Keywords: []string{"fire", "smoke", "electrical", "gas", "water", "security"},
		},
	}
}

// completionOffsets is the number of days allowed to fix an item, by urgency.
var completionOffsets = map[model.Urgency]int{
	model.UrgencyUrgent:       3,
	model.UrgencyHighPriority: 7,
	model.UrgencyNormal:       14,
}

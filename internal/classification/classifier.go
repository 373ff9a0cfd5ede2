// Package classification maps raw checklist cells to status classes and urgency levels.
package classification

import (
	"strings"
	"time"

	"github.com/Veraticus/punchlist/internal/model"
)

// ClassifyStatus normalizes a raw checklist cell.
//
// Unrecognized non-empty values are treated as defects. The canonical
// "Blank" label maps back to Blank so already-classified rows are stable.
func ClassifyStatus(raw string) model.StatusClass {
	value := normalize(raw)
	if value == "" {
		return model.StatusBlank
	}

	if contains(affirmativeValues, value) {
		return model.StatusOK
	}
	if contains(negativeValues, value) {
		return model.StatusNotOK
	}
	if value == strings.ToLower(string(model.StatusBlank)) {
		return model.StatusBlank
	}

	return model.StatusNotOK
}

// ClassifyUrgency ranks an item using the default urgency rules.
func ClassifyUrgency(raw, component, room string) model.Urgency {
	return ClassifyUrgencyWith(DefaultUrgencyRules(), raw, component, room)
}

// ClassifyUrgencyWith ranks an item against rules in order. Empty cells are Normal.
func ClassifyUrgencyWith(rules []UrgencyRule, raw, component, room string) model.Urgency {
	value := normalize(raw)
	if value == "" {
		return model.UrgencyNormal
	}

	component = strings.ToLower(component)
	room = strings.ToLower(room)

	for _, rule := range rules {
		if rule.MatchValue {
			if containsAny(value, rule.Keywords) {
				return rule.Level
			}
			continue
		}
		if containsAny(component, rule.Keywords) || containsAny(room, rule.Keywords) {
			return rule.Level
		}
	}

	return model.UrgencyNormal
}

// PlannedCompletion returns the due date for an item inspected on inspected.
func PlannedCompletion(urgency model.Urgency, inspected time.Time) time.Time {
	days, ok := completionOffsets[urgency]
	if !ok {
		days = completionOffsets[model.UrgencyNormal]
	}
	return inspected.AddDate(0, 0, days)
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Package model defines the core domain models used throughout the application.
package model

import "time"

// StatusClass is the normalized outcome of a single checklist cell.
type StatusClass string

// Status class constants.
const (
	StatusOK    StatusClass = "OK"
	StatusNotOK StatusClass = "Not OK"
	StatusBlank StatusClass = "Blank"
)

// Valid reports whether s is one of the known status classes.
func (s StatusClass) Valid() bool {
	switch s {
	case StatusOK, StatusNotOK, StatusBlank:
		return true
	}
	return false
}

// Urgency ranks how quickly a defect has to be fixed.
type Urgency string

// Urgency constants.
const (
	UrgencyNormal       Urgency = "Normal"
	UrgencyHighPriority Urgency = "High Priority"
	UrgencyUrgent       Urgency = "Urgent"
)

// Valid reports whether u is one of the known urgency levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyHighPriority, UrgencyUrgent:
		return true
	}
	return false
}

// InspectionItem is one row of the tidy table: a single unit x checklist item.
type InspectionItem struct {
	InspectionDate    time.Time   `json:"inspection_date"`
	PlannedCompletion time.Time   `json:"planned_completion"`
	OwnerSignoff      *time.Time  `json:"owner_signoff,omitempty"`
	ID                string      `json:"id"`
	InspectionID      string      `json:"inspection_id"`
	Unit              string      `json:"unit"`
	UnitType          string      `json:"unit_type"`
	Room              string      `json:"room"`
	Component         string      `json:"component"`
	Trade             string      `json:"trade"`
	StatusClass       StatusClass `json:"status_class"`
	Urgency           Urgency     `json:"urgency"`
	OriginalStatus    string      `json:"original_status"` // Raw cell text as exported
}

// IsDefect reports whether the item needs remediation.
func (i *InspectionItem) IsDefect() bool {
	return i.StatusClass == StatusNotOK
}

// Defects returns the Not OK rows of items, preserving order.
func Defects(items []InspectionItem) []InspectionItem {
	defects := make([]InspectionItem, 0)
	for _, item := range items {
		if item.IsDefect() {
			defects = append(defects, item)
		}
	}
	return defects
}

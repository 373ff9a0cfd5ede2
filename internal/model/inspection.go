package model

import "time"

// Inspection is the header row of one processed upload.
type Inspection struct {
	InspectionDate      time.Time `json:"inspection_date"`
	CreatedAt           time.Time `json:"created_at"`
	ID                  string    `json:"id"`
	BuildingID          string    `json:"building_id"`
	BuildingName        string    `json:"building_name"`
	Address             string    `json:"address"`
	InspectorName       string    `json:"inspector_name"`
	OriginalFilename    string    `json:"original_filename"`
	Status              string    `json:"status"`
	TotalUnits          int       `json:"total_units"`
	TotalDefects        int       `json:"total_defects"`
	ReadyUnits          int       `json:"ready_units"`
	UrgentDefects       int       `json:"urgent_defects"`
	HighPriorityDefects int       `json:"high_priority_defects"`
	DefectRate          float64   `json:"defect_rate"`
	ReadyPct            float64   `json:"ready_pct"`
	AvgDefectsPerUnit   float64   `json:"avg_defects_per_unit"`
}

// BuildingInfo returns the header metadata in the shape metrics expects.
func (i *Inspection) BuildingInfo() BuildingInfo {
	info := BuildingInfo{
		Name:    i.BuildingName,
		Address: i.Address,
	}
	if !i.InspectionDate.IsZero() {
		info.Date = i.InspectionDate.Format("2006-01-02")
	}
	return info
}

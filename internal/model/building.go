package model

import "time"

// BuildingInfo is the caller-supplied building metadata used when the CSV
// does not carry its own site details.
type BuildingInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Date    string `json:"date"` // YYYY-MM-DD, optional
}

// SiteDetails holds building metadata extracted from the source CSV.
type SiteDetails struct {
	BuildingName string `json:"building_name"`
	Address      string `json:"address"`
}

// Building is a persisted building row.
type Building struct {
	CreatedAt      time.Time `json:"created_at"`
	InspectionDate time.Time `json:"inspection_date"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	UnitTypes      string    `json:"unit_types"`
	Status         string    `json:"status"`
	TotalUnits     int       `json:"total_units"`
	TotalDefects   int       `json:"total_defects"`
	ReadyUnits     int       `json:"ready_units"`
	DefectRate     float64   `json:"defect_rate"`
	ReadyPct       float64   `json:"ready_pct"`
}

// BuildingOverview is the developer-facing rollup of one building.
type BuildingOverview struct {
	LatestInspection *time.Time `json:"latest_inspection,omitempty"`
	BuildingName     string     `json:"building_name"`
	Address          string     `json:"address"`
	TotalInspections int        `json:"total_inspections"`
	TotalDefects     int        `json:"total_defects"`
	ResolvedDefects  int        `json:"resolved_defects"`
	AvgReadyPct      float64    `json:"avg_ready_pct"`
}

package model

import "time"

// Metrics is the building-level summary shared by reports, the API and the dashboard.
type Metrics struct {
	BuildingName           string            `json:"building_name"`
	Address                string            `json:"address"`
	InspectionDate         string            `json:"inspection_date"`
	InspectionDateRange    string            `json:"inspection_date_range"`
	UnitTypes              string            `json:"unit_types"`
	SummaryTrade           []TradeCount      `json:"summary_trade"`
	SummaryUnit            []UnitCount       `json:"summary_unit"`
	SummaryRoom            []RoomCount       `json:"summary_room"`
	UrgentDefectsTable     []DefectDetail    `json:"urgent_defects_table"`
	PlannedWork2WeeksTable []DefectDetail    `json:"planned_work_2_weeks_table"`
	PlannedWorkMonthTable  []DefectDetail    `json:"planned_work_month_table"`
	ComponentDetails       []ComponentRollup `json:"component_details"`
	TotalUnits             int               `json:"total_units"`
	TotalInspections       int               `json:"total_inspections"`
	TotalDefects           int               `json:"total_defects"`
	ReadyUnits             int               `json:"ready_units"`
	MinorWorkUnits         int               `json:"minor_work_units"`
	MajorWorkUnits         int               `json:"major_work_units"`
	ExtensiveWorkUnits     int               `json:"extensive_work_units"`
	UrgentDefects          int               `json:"urgent_defects"`
	HighPriorityDefects    int               `json:"high_priority_defects"`
	PlannedWork2Weeks      int               `json:"planned_work_2_weeks"`
	PlannedWorkMonth       int               `json:"planned_work_month"`
	DefectRate             float64           `json:"defect_rate"`
	AvgDefectsPerUnit      float64           `json:"avg_defects_per_unit"`
	ReadyPct               float64           `json:"ready_pct"`
	MinorPct               float64           `json:"minor_pct"`
	MajorPct               float64           `json:"major_pct"`
	ExtensivePct           float64           `json:"extensive_pct"`
	IsMultiDay             bool              `json:"is_multi_day"`
}

// TradeCount is one row of the per-trade defect summary.
type TradeCount struct {
	Trade       string `json:"trade"`
	DefectCount int    `json:"defect_count"`
}

// UnitCount is one row of the per-unit defect summary.
type UnitCount struct {
	Unit        string `json:"unit"`
	DefectCount int    `json:"defect_count"`
}

// RoomCount is one row of the per-room defect summary.
type RoomCount struct {
	Room        string `json:"room"`
	DefectCount int    `json:"defect_count"`
}

// DefectDetail describes a single defect for the urgent and planned-work tables.
type DefectDetail struct {
	PlannedCompletion time.Time `json:"planned_completion"`
	Unit              string    `json:"unit"`
	Room              string    `json:"room"`
	Component         string    `json:"component"`
	Trade             string    `json:"trade"`
	Urgency           Urgency   `json:"urgency"`
}

// ComponentRollup lists the units affected by one trade/room/component defect.
type ComponentRollup struct {
	Trade         string `json:"trade"`
	Room          string `json:"room"`
	Component     string `json:"component"`
	AffectedUnits string `json:"affected_units"` // sorted, comma-joined
	UnitCount     int    `json:"unit_count"`
}

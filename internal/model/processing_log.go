package model

import "time"

// ProcessingStatus is the outcome of one upload attempt.
type ProcessingStatus string

// Processing status constants.
const (
	ProcessingRunning   ProcessingStatus = "processing"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// ProcessingLog is the audit row written for every upload attempt.
type ProcessingLog struct {
	CreatedAt          time.Time        `json:"created_at"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
	ID                 string           `json:"id"`
	OriginalFilename   string           `json:"original_filename"`
	FileChecksum       string           `json:"file_checksum"`
	InspectorName      string           `json:"inspector_name"`
	BuildingName       string           `json:"building_name"`
	ErrorMessage       string           `json:"error_message"`
	InspectionID       string           `json:"inspection_id"`
	Status             ProcessingStatus `json:"status"`
	FileSize           int64            `json:"file_size"`
	TotalRows          int              `json:"total_rows"`
	ProcessedRows      int              `json:"processed_rows"`
	DefectsFound       int              `json:"defects_found"`
	WorkOrdersCreated  int              `json:"work_orders_created"`
	MappingSuccessRate float64          `json:"mapping_success_rate"`
}

// DuplicateWarningSameName flags an upload whose filename matches an earlier
// upload but whose content differs.
const DuplicateWarningSameName = "same_filename_different_content"

// DuplicateReport is the advisory result of a duplicate upload check.
type DuplicateReport struct {
	ProcessedAt      time.Time `json:"processed_at"`
	InspectionID     string    `json:"inspection_id"`
	BuildingName     string    `json:"building_name"`
	OriginalFilename string    `json:"original_filename"`
	Checksum         string    `json:"checksum"`
	Warning          string    `json:"warning"`
	IsDuplicate      bool      `json:"is_duplicate"`
}

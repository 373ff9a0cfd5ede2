package model

import "time"

// WorkOrderStatus tracks a work order through the builder workflow.
type WorkOrderStatus string

// Work order status constants.
const (
	WorkOrderPending         WorkOrderStatus = "pending"
	WorkOrderInProgress      WorkOrderStatus = "in_progress"
	WorkOrderWaitingApproval WorkOrderStatus = "waiting_approval"
	WorkOrderApproved        WorkOrderStatus = "approved"
	WorkOrderRejected        WorkOrderStatus = "rejected"
	WorkOrderCompleted       WorkOrderStatus = "completed"
	WorkOrderCancelled       WorkOrderStatus = "cancelled"
)

// WorkOrderStatuses lists every status in workflow order.
var WorkOrderStatuses = []WorkOrderStatus{
	WorkOrderPending,
	WorkOrderInProgress,
	WorkOrderWaitingApproval,
	WorkOrderApproved,
	WorkOrderRejected,
	WorkOrderCompleted,
	WorkOrderCancelled,
}

// Valid reports whether s is a known work order status.
func (s WorkOrderStatus) Valid() bool {
	for _, status := range WorkOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// WorkOrder is a remediation task derived from a single defect.
type WorkOrder struct {
	PlannedDate    time.Time       `json:"planned_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	ID             string          `json:"id"`
	InspectionID   string          `json:"inspection_id"`
	BuildingName   string          `json:"building_name"` // populated on reads only
	Unit           string          `json:"unit"`
	Trade          string          `json:"trade"`
	Component      string          `json:"component"`
	Room           string          `json:"room"`
	Notes          string          `json:"notes"`
	Urgency        Urgency         `json:"urgency"`
	Status         WorkOrderStatus `json:"status"`
	EstimatedHours float64         `json:"estimated_hours"`
	PhotosRequired bool            `json:"photos_required"`
}

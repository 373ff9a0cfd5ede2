// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/punchlist/internal/model"
)

// InspectionFilter narrows inspection history queries.
type InspectionFilter struct {
	BuildingName string
	Limit        int
}

// WorkOrderFilter narrows work order queries. Empty fields match everything.
type WorkOrderFilter struct {
	InspectionID string
	Trade        string
	Status       model.WorkOrderStatus
	Limit        int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Inspection operations
	SaveInspection(ctx context.Context, items []model.InspectionItem, metrics *model.Metrics, inspectorName, filename string) (string, error)
	LoadInspection(ctx context.Context, id string) (*model.Inspection, []model.InspectionItem, error)
	ListInspections(ctx context.Context, filter InspectionFilter) ([]model.Inspection, error)

	// Work order operations
	SaveWorkOrders(ctx context.Context, orders []model.WorkOrder) error
	GetWorkOrders(ctx context.Context, filter WorkOrderFilter) ([]model.WorkOrder, error)
	UpdateWorkOrderStatus(ctx context.Context, id string, status model.WorkOrderStatus, notes string) error

	// Processing log operations
	SaveProcessingLog(ctx context.Context, entry *model.ProcessingLog) error
	FindProcessingLogByChecksum(ctx context.Context, checksum string) (*model.ProcessingLog, error)
	FindProcessingLogByFilename(ctx context.Context, filename string) (*model.ProcessingLog, error)

	// Trade mapping operations
	SaveTradeMappings(ctx context.Context, mappings []model.TradeMapping) error
	GetTradeMappings(ctx context.Context) ([]model.TradeMapping, error)

	// Reporting
	GetProjectOverview(ctx context.Context) ([]model.BuildingOverview, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// InspectionReport bundles everything an exporter needs for one inspection.
type InspectionReport struct {
	Inspection *model.Inspection      `json:"inspection,omitempty"`
	Metrics    *model.Metrics         `json:"metrics"`
	Items      []model.InspectionItem `json:"items"`
	WorkOrders []model.WorkOrder      `json:"work_orders"`
}

// ReportWriter exports an inspection report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report *InspectionReport) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

package engine

import (
	"context"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/workorder"
)

// GenerateWorkOrders stores one work order per defect in items and returns
// how many were created. Failures are logged and reported as zero.
func (e *Engine) GenerateWorkOrders(ctx context.Context, inspectionID string, items []model.InspectionItem) int {
	if e.storage == nil || inspectionID == "" {
		return 0
	}

	orders := workorder.Plan(inspectionID, items, e.now())
	if len(orders) == 0 {
		return 0
	}

	if err := e.storage.SaveWorkOrders(ctx, orders); err != nil {
		common.LogError(err, "Failed to create work orders", common.Fields{
			"inspection_id": inspectionID,
			"defects":       len(orders),
		})
		return 0
	}

	common.LogInfo("Created work orders", common.Fields{
		"inspection_id": inspectionID,
		"count":         len(orders),
	})
	return len(orders)
}

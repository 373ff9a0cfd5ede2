// Package workorder turns defects into builder work orders.
package workorder

import (
	"time"

	"github.com/Veraticus/punchlist/internal/classification"
	"github.com/Veraticus/punchlist/internal/model"
)

// estimatedHours is the labour allowance for one defect, by urgency.
var estimatedHours = map[model.Urgency]float64{
	model.UrgencyUrgent:       2,
	model.UrgencyHighPriority: 4,
	model.UrgencyNormal:       3,
}

// photoTrades need before/after photos attached to the work order.
var photoTrades = map[string]bool{
	"Flooring - Tiles": true,
	"Painting":         true,
	"Waterproofing":    true,
	"Concrete":         true,
}

// PhotosRequired reports whether work for trade must be photographed.
func PhotosRequired(trade string) bool {
	return photoTrades[trade]
}

// EstimatedHours returns the labour allowance for a defect of urgency u.
func EstimatedHours(u model.Urgency) float64 {
	if hours, ok := estimatedHours[u]; ok {
		return hours
	}
	return estimatedHours[model.UrgencyNormal]
}

// Plan builds one pending work order per Not OK item, due a fixed number of
// days after now depending on urgency.
func Plan(inspectionID string, items []model.InspectionItem, now time.Time) []model.WorkOrder {
	orders := make([]model.WorkOrder, 0)
	for i := range items {
		item := &items[i]
		if !item.IsDefect() {
			continue
		}

		urgency := item.Urgency
		if !urgency.Valid() {
			urgency = model.UrgencyNormal
		}

		orders = append(orders, model.WorkOrder{
			InspectionID:   inspectionID,
			Unit:           item.Unit,
			Trade:          item.Trade,
			Component:      item.Component,
			Room:           item.Room,
			Urgency:        urgency,
			Status:         model.WorkOrderPending,
			PlannedDate:    classification.PlannedCompletion(urgency, now),
			EstimatedHours: EstimatedHours(urgency),
			Notes:          notes(item.InspectionDate),
			PhotosRequired: PhotosRequired(item.Trade),
		})
	}
	return orders
}

func notes(inspected time.Time) string {
	date := "N/A"
	if !inspected.IsZero() {
		date = inspected.Format("2006-01-02")
	}
	return "Defect identified during inspection on " + date
}

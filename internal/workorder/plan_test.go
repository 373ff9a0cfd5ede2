package workorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchlist/internal/model"
)

func TestPlan(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	inspected := time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC)

	items := []model.InspectionItem{
		{Unit: "101", Room: "Kitchen", Component: "Sink", Trade: "Plumbing", StatusClass: model.StatusOK, Urgency: model.UrgencyNormal, InspectionDate: inspected},
		{Unit: "101", Room: "Bedroom", Component: "Walls", Trade: "Painting", StatusClass: model.StatusNotOK, Urgency: model.UrgencyNormal, InspectionDate: inspected},
		{Unit: "102", Room: "Hallway", Component: "Smoke Detector", Trade: "Fire Safety", StatusClass: model.StatusNotOK, Urgency: model.UrgencyUrgent, InspectionDate: inspected},
		{Unit: "102", Room: "Kitchen", Component: "Power Points", Trade: "Electrical", StatusClass: model.StatusNotOK, Urgency: model.UrgencyHighPriority},
		{Unit: "103", Room: "Laundry", Component: "Tub", Trade: "Plumbing", StatusClass: model.StatusBlank, Urgency: model.UrgencyNormal, InspectionDate: inspected},
	}

	orders := Plan("insp-1", items, now)
	require.Len(t, orders, 3, "one order per Not OK item")

	painting := orders[0]
	assert.Equal(t, "insp-1", painting.InspectionID)
	assert.Equal(t, "101", painting.Unit)
	assert.Equal(t, "Painting", painting.Trade)
	assert.Equal(t, "Walls", painting.Component)
	assert.Equal(t, "Bedroom", painting.Room)
	assert.Equal(t, model.WorkOrderPending, painting.Status)
	assert.Equal(t, now.AddDate(0, 0, 14), painting.PlannedDate)
	assert.InDelta(t, 3.0, painting.EstimatedHours, 0.001)
	assert.True(t, painting.PhotosRequired)
	assert.Equal(t, "Defect identified during inspection on 2024-05-28", painting.Notes)

	urgent := orders[1]
	assert.Equal(t, model.UrgencyUrgent, urgent.Urgency)
	assert.Equal(t, now.AddDate(0, 0, 3), urgent.PlannedDate)
	assert.InDelta(t, 2.0, urgent.EstimatedHours, 0.001)
	assert.False(t, urgent.PhotosRequired)

	high := orders[2]
	assert.Equal(t, now.AddDate(0, 0, 7), high.PlannedDate)
	assert.InDelta(t, 4.0, high.EstimatedHours, 0.001)
	assert.Equal(t, "Defect identified during inspection on N/A", high.Notes)
}

func TestPlan_NoDefects(t *testing.T) {
	orders := Plan("insp-1", []model.InspectionItem{{StatusClass: model.StatusOK}}, time.Now())
	assert.NotNil(t, orders)
	assert.Empty(t, orders)

	assert.Empty(t, Plan("insp-1", nil, time.Now()))
}

func TestPhotosRequired(t *testing.T) {
	for _, trade := range []string{"Flooring - Tiles", "Painting", "Waterproofing", "Concrete"} {
		assert.True(t, PhotosRequired(trade), trade)
	}
	assert.False(t, PhotosRequired("Plumbing"))
	assert.False(t, PhotosRequired("painting"))
}

func TestEstimatedHours_UnknownUrgency(t *testing.T) {
	assert.InDelta(t, 3.0, EstimatedHours("Someday"), 0.001)
}

package ingest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
}

func TestReshape_EndToEndExample(t *testing.T) {
	input := "auditName,Pre-Settlement Inspection_Kitchen_Cabinets\n" +
		"2024-05-01/101/BuildingX,Fail\n" +
		"2024-05-01/101/BuildingX,Pass\n" +
		"2024-05-01/101/BuildingX,Pass\n"

	frame, err := ReadFrame(strings.NewReader(input))
	require.NoError(t, err)

	result, err := Reshape(frame, trade.Default(), Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)

	inspected := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	wantStatus := []model.StatusClass{model.StatusNotOK, model.StatusOK, model.StatusOK}
	for i, item := range result.Items {
		assert.Equal(t, "101", item.Unit)
		assert.Equal(t, "Kitchen", item.Room)
		assert.Equal(t, "Cabinets", item.Component)
		assert.Equal(t, "Carpentry & Joinery", item.Trade)
		assert.Equal(t, UnknownUnitType, item.UnitType)
		assert.Equal(t, wantStatus[i], item.StatusClass)
		assert.Equal(t, model.UrgencyNormal, item.Urgency)
		assert.Equal(t, inspected, item.InspectionDate)
		assert.Equal(t, inspected.AddDate(0, 0, 14), item.PlannedCompletion)
		assert.Nil(t, item.OwnerSignoff)
	}
	assert.Len(t, model.Defects(result.Items), 1)
	assert.InDelta(t, 100.0, result.MappingSuccessRate, 0.001)
	assert.Equal(t, 3, result.TotalRows)

	site := SiteDetails(frame)
	assert.Equal(t, "BuildingX", site.BuildingName)
	assert.Empty(t, site.Address)
}

func TestReshape_NoInspectionColumns(t *testing.T) {
	frame := NewFrame([]string{"auditName", "Pre-Settlement Inspection_Kitchen_notes"}, [][]string{{"a", "b"}})

	_, err := Reshape(frame, trade.Default(), Options{Now: fixedNow})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoInspectionColumns)
}

func TestReshape_ItemsAndMetadataColumns(t *testing.T) {
	frame := NewFrame(
		[]string{
			"Lot Details_Lot Number",
			"Pre-Settlement Inspection_Unit Type",
			"Pre-Settlement Inspection_Bathroom_Tiles",
			"Pre-Settlement Inspection_Bathroom_Tiles",
			"Pre-Settlement Inspection_Bedroom_Room Type",
			"Pre-Settlement Inspection_Living Room_Walls_notes",
			"Pre-Settlement Inspection_Hallway_Smoke_Smoke Detector",
			"Pre-Settlement Inspection_Doorbell",
		},
		[][]string{
			{"G01", "apartment", "✓", "✗", "Master", "scuffed", "Fail", "ok"},
			{"", "TOWNHOUSE", "", "Pass", "", "", "urgent - not working", "x"},
			{"nan", "Studio", "defect", "ok", "", "", "", ""},
		},
	)

	result, err := Reshape(frame, trade.Default(), Options{Now: fixedNow})
	require.NoError(t, err)

	// Bathroom_Tiles twice, Hallway smoke detector, General doorbell; three rows each.
	require.Len(t, result.Items, 12)

	assert.Equal(t, "G01", result.Items[0].Unit)
	assert.Equal(t, "Unit_2", result.Items[1].Unit)
	assert.Equal(t, "Unit_3", result.Items[2].Unit)
	assert.Equal(t, "Apartment", result.Items[0].UnitType)
	assert.Equal(t, "Townhouse", result.Items[1].UnitType)
	assert.Equal(t, "Studio", result.Items[2].UnitType)

	tiles := result.Items[3:6]
	for _, item := range tiles {
		assert.Equal(t, "Bathroom", item.Room)
		assert.Equal(t, "Tiles", item.Component, "duplicate suffix is stripped")
		assert.Equal(t, "Flooring - Tiles", item.Trade)
	}
	assert.Equal(t, model.StatusNotOK, tiles[0].StatusClass)
	assert.Equal(t, model.StatusOK, tiles[1].StatusClass)

	smoke := result.Items[6:9]
	assert.Equal(t, "Hallway", smoke[0].Room)
	assert.Equal(t, "Smoke Detector", smoke[0].Component)
	assert.Equal(t, "Fire Safety", smoke[0].Trade)
	assert.Equal(t, model.UrgencyHighPriority, smoke[0].Urgency)
	assert.Equal(t, model.UrgencyUrgent, smoke[1].Urgency)
	assert.Equal(t, model.StatusNotOK, smoke[1].StatusClass)
	assert.Equal(t, model.StatusBlank, smoke[2].StatusClass)
	assert.Equal(t, model.UrgencyNormal, smoke[2].Urgency)

	doorbell := result.Items[9:12]
	assert.Equal(t, "General", doorbell[0].Room)
	assert.Equal(t, "Doorbell", doorbell[0].Component)
	assert.Equal(t, model.UnknownTrade, doorbell[0].Trade)

	assert.InDelta(t, 75.0, result.MappingSuccessRate, 0.001)

	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	for _, item := range result.Items {
		assert.Equal(t, today, item.InspectionDate, "falls back to today without date columns")
	}
}

func TestReshape_ChunkProgress(t *testing.T) {
	header := []string{"auditName"}
	row := []string{"2024-05-01/7A/Tower"}
	for i := 0; i < 120; i++ {
		header = append(header, fmt.Sprintf("Pre-Settlement Inspection_Room%d_Item", i))
		row = append(row, "Pass")
	}
	frame := NewFrame(header, [][]string{row})

	var calls [][2]int
	result, err := Reshape(frame, trade.Default(), Options{
		Now: fixedNow,
		Progress: func(done, total int) {
			calls = append(calls, [2]int{done, total})
		},
	})
	require.NoError(t, err)

	assert.Len(t, result.Items, 120)
	assert.Equal(t, [][2]int{{50, 120}, {100, 120}, {120, 120}}, calls)
	assert.Equal(t, "Room0", result.Items[0].Room)
	assert.Equal(t, "Room119", result.Items[119].Room)
	assert.Equal(t, "7A", result.Items[0].Unit)
	assert.Zero(t, result.MappingSuccessRate)
}

func TestReshape_ConductedOnDates(t *testing.T) {
	frame := NewFrame(
		[]string{"Title Page_Conducted on", "Sign Off_Owner/Agent Signature_timestamp", "Pre-Settlement Inspection_Entry_Door"},
		[][]string{
			{"02/05/2024 09:15", "2024-05-03T10:00:00Z", "Pass"},
			{"", "not a date", "Pass"},
			{"03/05/2024", "", "Pass"},
			{"2024-05-02", "", "Pass"},
		},
	)

	result, err := Reshape(frame, trade.Default(), Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, result.Items, 4)

	mode := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, mode, result.Items[0].InspectionDate)
	assert.Equal(t, mode, result.Items[1].InspectionDate, "missing date filled with mode")
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), result.Items[2].InspectionDate)
	assert.Equal(t, mode, result.Items[3].InspectionDate)

	require.NotNil(t, result.Items[0].OwnerSignoff)
	assert.Equal(t, time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC), *result.Items[0].OwnerSignoff)
	assert.Nil(t, result.Items[1].OwnerSignoff)
}

func TestReshape_NoRows(t *testing.T) {
	frame := NewFrame([]string{"Pre-Settlement Inspection_Entry_Door"}, nil)

	result, err := Reshape(frame, trade.Default(), Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.MappingSuccessRate)
}

func TestSplitItem(t *testing.T) {
	tests := []struct {
		column        string
		wantRoom      string
		wantComponent string
	}{
		{"Pre-Settlement Inspection_Kitchen_Cabinets", "Kitchen", "Cabinets"},
		{"Pre-Settlement Inspection_Kitchen_Cabinets.2", "Kitchen", "Cabinets"},
		{"Pre-Settlement Inspection_Bathroom_Shower_Screen", "Bathroom", "Screen"},
		{"Pre-Settlement Inspection_Doorbell", "General", "Doorbell"},
		{"Pre-Settlement Inspection_Kitchen Area_Stovetop and Oven", "Kitchen Area", "Stovetop and Oven"},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			room, component := splitItem(tt.column)
			assert.Equal(t, tt.wantRoom, room)
			assert.Equal(t, tt.wantComponent, component)
		})
	}
}

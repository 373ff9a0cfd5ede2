package report

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/punchlist/internal/metrics"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/service"
)

func sampleReport() *service.InspectionReport {
	inspected := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	items := []model.InspectionItem{
		{Unit: "101", UnitType: "Apartment", InspectionDate: inspected, Room: "Bathroom", Component: "Tiles", Trade: "Flooring - Tiles", StatusClass: model.StatusNotOK, Urgency: model.UrgencyNormal, PlannedCompletion: inspected.AddDate(0, 0, 14)},
		{Unit: "101", UnitType: "Apartment", InspectionDate: inspected, Room: "Hallway", Component: "Smoke Alarm", Trade: "Fire Safety", StatusClass: model.StatusNotOK, Urgency: model.UrgencyHighPriority, PlannedCompletion: inspected.AddDate(0, 0, 7)},
		{Unit: "102", UnitType: "Apartment", InspectionDate: inspected, Room: "Bathroom", Component: "Tiles", Trade: "Flooring - Tiles", StatusClass: model.StatusOK, Urgency: model.UrgencyNormal, PlannedCompletion: inspected.AddDate(0, 0, 14)},
	}
	m := metrics.Compute(items, model.BuildingInfo{Name: "Harbour View", Address: "1 Quay St"}, nil, inspected)

	return &service.InspectionReport{
		Inspection: &model.Inspection{ID: "insp-1", InspectorName: "Sam", OriginalFilename: "harbour.csv"},
		Metrics:    m,
		Items:      items,
		WorkOrders: []model.WorkOrder{
			{ID: "wo-1", Unit: "101", Trade: "Flooring - Tiles", Room: "Bathroom", Component: "Tiles", Urgency: model.UrgencyNormal, Status: model.WorkOrderPending, PlannedDate: inspected.AddDate(0, 0, 14), EstimatedHours: 3, PhotosRequired: true},
		},
	}
}

func findTab(t *testing.T, tabs []Tab, name string) Tab {
	t.Helper()
	for _, tab := range tabs {
		if tab.Name == name {
			return tab
		}
	}
	t.Fatalf("tab %q not found", name)
	return Tab{}
}

func TestBuildTabs(t *testing.T) {
	tabs := BuildTabs(sampleReport())

	names := make([]string, len(tabs))
	for i, tab := range tabs {
		names[i] = tab.Name
		for _, row := range tab.Rows {
			assert.Len(t, row, len(tab.Header), "tab %s", tab.Name)
		}
	}
	assert.Equal(t, []string{
		TabSummary, TabTrades, TabUnits, TabRooms, TabUrgent, TabTwoWeeks,
		TabMonth, TabComponents, TabInspection, TabWorkOrders,
	}, names)

	trades := findTab(t, tabs, TabTrades)
	assert.Equal(t, [][]any{{"Fire Safety", 1}, {"Flooring - Tiles", 1}}, trades.Rows)

	items := findTab(t, tabs, TabInspection)
	require.Len(t, items.Rows, 3)
	assert.Equal(t, []any{"101", "Apartment", "2024-05-01", "", "Bathroom", "Tiles", "Not OK", "Flooring - Tiles", "Normal", "2024-05-15"}, items.Rows[0])

	orders := findTab(t, tabs, TabWorkOrders)
	require.Len(t, orders.Rows, 1)
	assert.Equal(t, "Yes", orders.Rows[0][9])

	summary := findTab(t, tabs, TabSummary)
	assert.Contains(t, summary.Rows, []any{"Building", "Harbour View"})
	assert.Contains(t, summary.Rows, []any{"Total Defects", 2})
	assert.Contains(t, summary.Rows, []any{"Inspection ID", "insp-1"})
}

func TestBuildTabs_EmptyReport(t *testing.T) {
	tabs := BuildTabs(&service.InspectionReport{})
	require.Len(t, tabs, 10)
	for _, tab := range tabs[1:] {
		assert.NotNil(t, tab.Rows, tab.Name)
		assert.Empty(t, tab.Rows, tab.Name)
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, TabSummary, f.GetSheetName(0))
	assert.Len(t, f.GetSheetList(), 10)

	rows, err := f.GetRows(TabInspection)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Unit", rows[0][0])
	assert.Equal(t, "Smoke Alarm", rows[2][5])

	value, err := f.GetCellValue(TabTrades, "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestFilename(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "Harbour_View_2024-05-01_inspection.xlsx", Filename(r))

	r.Metrics.BuildingName = "../../etc"
	assert.Equal(t, "etc_2024-05-01_inspection.xlsx", Filename(r))

	assert.Equal(t, "inspection_inspection.xlsx", Filename(&service.InspectionReport{}))
}

func TestFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	w := NewFileWriter(dir)

	require.NoError(t, w.Write(context.Background(), sampleReport()))
	assert.Equal(t, filepath.Join(dir, "Harbour_View_2024-05-01_inspection.xlsx"), w.LastPath)
	assert.FileExists(t, w.LastPath)

	var _ service.ReportWriter = w
}

// Package report lays out an inspection as named tables and writes them to
// an Excel workbook.
package report

import (
	"math"

	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/service"
)

const dateLayout = "2006-01-02"

// Tab names, in workbook order.
const (
	TabSummary    = "Summary"
	TabTrades     = "Trade Summary"
	TabUnits      = "Unit Summary"
	TabRooms      = "Room Summary"
	TabUrgent     = "Urgent Defects"
	TabTwoWeeks   = "Planned Work 2 Weeks"
	TabMonth      = "Planned Work Month"
	TabComponents = "Component Details"
	TabInspection = "Inspection Items"
	TabWorkOrders = "Work Orders"
)

// Tab is one named table of an exported report.
type Tab struct {
	Name   string
	Header []string
	Rows   [][]any
}

// BuildTabs lays out r as tables. Every tab is present even when it has no rows.
func BuildTabs(r *service.InspectionReport) []Tab {
	if r == nil {
		r = &service.InspectionReport{}
	}
	m := r.Metrics
	if m == nil {
		m = &model.Metrics{}
	}

	return []Tab{
		summaryTab(r, m),
		{Name: TabTrades, Header: []string{"Trade", "Defects"}, Rows: tradeRows(m.SummaryTrade)},
		{Name: TabUnits, Header: []string{"Unit", "Defects"}, Rows: unitRows(m.SummaryUnit)},
		{Name: TabRooms, Header: []string{"Room", "Defects"}, Rows: roomRows(m.SummaryRoom)},
		defectTab(TabUrgent, m.UrgentDefectsTable),
		defectTab(TabTwoWeeks, m.PlannedWork2WeeksTable),
		defectTab(TabMonth, m.PlannedWorkMonthTable),
		{
			Name:   TabComponents,
			Header: []string{"Trade", "Room", "Component", "Affected Units", "Unit Count"},
			Rows:   componentRows(m.ComponentDetails),
		},
		itemsTab(r.Items),
		workOrdersTab(r.WorkOrders),
	}
}

func summaryTab(r *service.InspectionReport, m *model.Metrics) Tab {
	rows := [][]any{
		{"Building", m.BuildingName},
		{"Address", m.Address},
		{"Inspection Date", m.InspectionDate},
		{"Date Range", m.InspectionDateRange},
		{"Unit Types", m.UnitTypes},
		{"Total Units", m.TotalUnits},
		{"Total Inspections", m.TotalInspections},
		{"Total Defects", m.TotalDefects},
		{"Defect Rate (%)", round1(m.DefectRate)},
		{"Average Defects per Unit", round1(m.AvgDefectsPerUnit)},
		{"Ready Units", m.ReadyUnits},
		{"Ready (%)", round1(m.ReadyPct)},
		{"Minor Work Units", m.MinorWorkUnits},
		{"Minor Work (%)", round1(m.MinorPct)},
		{"Major Work Units", m.MajorWorkUnits},
		{"Major Work (%)", round1(m.MajorPct)},
		{"Extensive Work Units", m.ExtensiveWorkUnits},
		{"Extensive Work (%)", round1(m.ExtensivePct)},
		{"Urgent Defects", m.UrgentDefects},
		{"High Priority Defects", m.HighPriorityDefects},
		{"Planned Work (2 Weeks)", m.PlannedWork2Weeks},
		{"Planned Work (Month)", m.PlannedWorkMonth},
	}
	if r.Inspection != nil {
		rows = append(rows,
			[]any{"Inspection ID", r.Inspection.ID},
			[]any{"Inspector", r.Inspection.InspectorName},
			[]any{"Source File", r.Inspection.OriginalFilename},
		)
	}
	return Tab{Name: TabSummary, Header: []string{"Metric", "Value"}, Rows: rows}
}

func tradeRows(counts []model.TradeCount) [][]any {
	rows := make([][]any, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []any{c.Trade, c.DefectCount})
	}
	return rows
}

func unitRows(counts []model.UnitCount) [][]any {
	rows := make([][]any, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []any{c.Unit, c.DefectCount})
	}
	return rows
}

func roomRows(counts []model.RoomCount) [][]any {
	rows := make([][]any, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []any{c.Room, c.DefectCount})
	}
	return rows
}

func defectTab(name string, details []model.DefectDetail) Tab {
	rows := make([][]any, 0, len(details))
	for _, d := range details {
		rows = append(rows, []any{
			d.Unit, d.Room, d.Component, d.Trade, string(d.Urgency), d.PlannedCompletion.Format(dateLayout),
		})
	}
	return Tab{
		Name:   name,
		Header: []string{"Unit", "Room", "Component", "Trade", "Urgency", "Planned Completion"},
		Rows:   rows,
	}
}

func componentRows(rollups []model.ComponentRollup) [][]any {
	rows := make([][]any, 0, len(rollups))
	for _, c := range rollups {
		rows = append(rows, []any{c.Trade, c.Room, c.Component, c.AffectedUnits, c.UnitCount})
	}
	return rows
}

func itemsTab(items []model.InspectionItem) Tab {
	rows := make([][]any, 0, len(items))
	for i := range items {
		item := &items[i]
		signoff := ""
		if item.OwnerSignoff != nil {
			signoff = item.OwnerSignoff.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []any{
			item.Unit,
			item.UnitType,
			item.InspectionDate.Format(dateLayout),
			signoff,
			item.Room,
			item.Component,
			string(item.StatusClass),
			item.Trade,
			string(item.Urgency),
			item.PlannedCompletion.Format(dateLayout),
		})
	}
	return Tab{
		Name: TabInspection,
		Header: []string{
			"Unit", "UnitType", "InspectionDate", "OwnerSignoffTimestamp", "Room",
			"Component", "StatusClass", "Trade", "Urgency", "PlannedCompletion",
		},
		Rows: rows,
	}
}

func workOrdersTab(orders []model.WorkOrder) Tab {
	rows := make([][]any, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		photos := "No"
		if o.PhotosRequired {
			photos = "Yes"
		}
		rows = append(rows, []any{
			o.ID, o.Unit, o.Trade, o.Room, o.Component, string(o.Urgency), string(o.Status),
			o.PlannedDate.Format(dateLayout), o.EstimatedHours, photos, o.Notes,
		})
	}
	return Tab{
		Name: TabWorkOrders,
		Header: []string{
			"ID", "Unit", "Trade", "Room", "Component", "Urgency", "Status",
			"Planned Date", "Estimated Hours", "Photos Required", "Notes",
		},
		Rows: rows,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

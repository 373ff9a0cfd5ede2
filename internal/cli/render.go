package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/punchlist/internal/model"
)

const dateLayout = "2006-01-02"

// MetricsSummary renders the headline numbers of an inspection.
func MetricsSummary(m *model.Metrics) string {
	if m == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Building: %s\n", BuildingIcon, m.BuildingName)
	if m.Address != "" {
		fmt.Fprintf(&b, "  Address: %s\n", m.Address)
	}
	fmt.Fprintf(&b, "  Inspection date: %s\n", m.InspectionDate)
	if m.IsMultiDay {
		fmt.Fprintf(&b, "  Date range: %s\n", m.InspectionDateRange)
	}
	fmt.Fprintf(&b, "  Unit types: %s\n\n", m.UnitTypes)

	fmt.Fprintf(&b, "%s Units: %d  Defects: %d  Defect rate: %.1f%%  Avg/unit: %.2f\n",
		ChartIcon, m.TotalUnits, m.TotalDefects, m.DefectRate, m.AvgDefectsPerUnit)
	fmt.Fprintf(&b, "  Ready: %d (%.1f%%)  Minor: %d (%.1f%%)  Major: %d (%.1f%%)  Extensive: %d (%.1f%%)\n",
		m.ReadyUnits, m.ReadyPct, m.MinorWorkUnits, m.MinorPct,
		m.MajorWorkUnits, m.MajorPct, m.ExtensiveWorkUnits, m.ExtensivePct)
	fmt.Fprintf(&b, "  %s  %s  Planned 2 weeks: %d  Planned month: %d",
		ErrorStyle.Render(fmt.Sprintf("Urgent: %d", m.UrgentDefects)),
		WarningStyle.Render(fmt.Sprintf("High priority: %d", m.HighPriorityDefects)),
		m.PlannedWork2Weeks, m.PlannedWorkMonth)

	if len(m.SummaryTrade) > 0 {
		b.WriteString("\n\nTop trades:")
		for i, tc := range m.SummaryTrade {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "\n  • %s: %d", tc.Trade, tc.DefectCount)
		}
	}

	return b.String()
}

// DuplicateNotice describes a duplicate check result, or returns "" when
// the upload is new.
func DuplicateNotice(d *model.DuplicateReport) string {
	switch {
	case d == nil:
		return ""
	case d.IsDuplicate:
		return FormatWarning(fmt.Sprintf(
			"Identical file already processed on %s as inspection %s (%s)",
			d.ProcessedAt.Format(time.DateTime), d.InspectionID, d.BuildingName))
	case d.Warning == model.DuplicateWarningSameName:
		return FormatWarning(fmt.Sprintf(
			"%s was processed before with different content (inspection %s)",
			d.OriginalFilename, d.InspectionID))
	default:
		return ""
	}
}

// WriteInspections writes inspection history as an aligned table.
func WriteInspections(out io.Writer, inspections []model.Inspection) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBUILDING\tDATE\tINSPECTOR\tUNITS\tDEFECTS\tREADY %\tURGENT")
	for _, in := range inspections {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.1f\t%d\n",
			in.ID, in.BuildingName, formatDate(in.InspectionDate), orDash(in.InspectorName),
			in.TotalUnits, in.TotalDefects, in.ReadyPct, in.UrgentDefects)
	}
	return w.Flush()
}

// WriteWorkOrders writes work orders as an aligned table.
func WriteWorkOrders(out io.Writer, orders []model.WorkOrder) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUNIT\tROOM\tCOMPONENT\tTRADE\tURGENCY\tSTATUS\tPLANNED\tHOURS\tPHOTOS")
	for _, wo := range orders {
		photos := "no"
		if wo.PhotosRequired {
			photos = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			wo.ID, wo.Unit, wo.Room, wo.Component, wo.Trade, wo.Urgency, wo.Status,
			formatDate(wo.PlannedDate), wo.EstimatedHours, photos)
	}
	return w.Flush()
}

// WriteOverview writes the per-building project overview.
func WriteOverview(out io.Writer, overview []model.BuildingOverview) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUILDING\tINSPECTIONS\tLATEST\tAVG READY %\tDEFECTS\tRESOLVED")
	for _, o := range overview {
		latest := "-"
		if o.LatestInspection != nil {
			latest = formatDate(*o.LatestInspection)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%.1f\t%d\t%d\n",
			o.BuildingName, o.TotalInspections, latest, o.AvgReadyPct, o.TotalDefects, o.ResolvedDefects)
	}
	return w.Flush()
}

// WriteTradeMappings writes a trade mapping table.
func WriteTradeMappings(out io.Writer, mappings []model.TradeMapping) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tCOMPONENT\tTRADE")
	for _, m := range mappings {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Room, m.Component, m.Trade)
	}
	return w.Flush()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package ingest

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/punchlist/internal/classification"
	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/trade"
)

// ChunkSize is the number of checklist columns melted per batch.
const ChunkSize = 50

// UnknownUnitType is used when the export carries no unit type.
const UnknownUnitType = "Unknown Type"

var (
	duplicateSuffix = regexp.MustCompile(`\.\d+$`)

	// Checklist entries that describe the unit rather than inspect it.
	metadataItems = map[string]bool{
		"Unit Type":      true,
		"Building Type":  true,
		"Townhouse Type": true,
		"Apartment Type": true,
		"Room Type":      true,
	}
)

// Options tunes a reshape run.
type Options struct {
	// Now supplies the fallback inspection date. Defaults to time.Now.
	Now func() time.Time
	// Progress is called after each chunk of columns with columns done and total.
	Progress func(done, total int)
}

// Result is the tidy table produced from one export.
type Result struct {
	Items              []model.InspectionItem
	TotalRows          int
	MappingSuccessRate float64
}

type rowContext struct {
	inspected time.Time
	signoff   *time.Time
	unit      string
	unitType  string
}

// Reshape melts every checklist column of frame into one item per unit,
// classifies each cell and joins it to table.
func Reshape(frame *Frame, table *trade.Table, opts Options) (*Result, error) {
	if frame == nil {
		return nil, common.ErrEmptyUpload
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	columns := frame.InspectionColumns()
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: expected columns prefixed %q", common.ErrNoInspectionColumns, InspectionPrefix)
	}

	rows := buildRowContexts(frame, now())

	items := make([]model.InspectionItem, 0, len(columns)*len(rows))
	mapped := 0
	for start := 0; start < len(columns); start += ChunkSize {
		end := start + ChunkSize
		if end > len(columns) {
			end = len(columns)
		}

		for _, column := range columns[start:end] {
			room, component := splitItem(column)
			if metadataItems[room] || metadataItems[component] {
				continue
			}
			idx := frame.index[column]

			for r, row := range rows {
				raw := frame.Rows[r][idx]
				urgency := classification.ClassifyUrgency(raw, component, room)
				tradeName, ok := table.Lookup(room, component)
				if ok {
					mapped++
				} else {
					tradeName = model.UnknownTrade
				}

				items = append(items, model.InspectionItem{
					Unit:              row.unit,
					UnitType:          row.unitType,
					InspectionDate:    row.inspected,
					OwnerSignoff:      row.signoff,
					Room:              room,
					Component:         component,
					StatusClass:       classification.ClassifyStatus(raw),
					Trade:             tradeName,
					Urgency:           urgency,
					PlannedCompletion: classification.PlannedCompletion(urgency, row.inspected),
					OriginalStatus:    strings.TrimSpace(raw),
				})
			}
		}

		if opts.Progress != nil {
			opts.Progress(end, len(columns))
		}
	}

	result := &Result{
		Items:     items,
		TotalRows: frame.Len(),
	}
	if len(items) > 0 {
		result.MappingSuccessRate = float64(mapped) / float64(len(items)) * 100
	}

	slog.Info("Reshaped inspection export",
		"rows", frame.Len(),
		"columns", len(columns),
		"items", len(items),
		"mapping_success_rate", fmt.Sprintf("%.1f%%", result.MappingSuccessRate))

	return result, nil
}

// splitItem turns "Pre-Settlement Inspection_Kitchen_Cabinets.1" into
// ("Kitchen", "Cabinets").
func splitItem(column string) (string, string) {
	parts := strings.SplitN(column, "_", 3)
	if len(parts) < 3 {
		return "General", strings.TrimPrefix(column, InspectionPrefix)
	}
	component := duplicateSuffix.ReplaceAllString(parts[2], "")
	if i := strings.LastIndex(component, "_"); i >= 0 {
		component = component[i+1:]
	}
	return parts[1], component
}

func buildRowContexts(frame *Frame, today time.Time) []rowContext {
	dates := inspectionDates(frame, dateOnly(today))

	rows := make([]rowContext, frame.Len())
	for i := range rows {
		rows[i] = rowContext{
			inspected: dates[i],
			unit:      unitFor(frame, i),
			unitType:  unitTypeFor(frame.Value(i, ColumnUnitType)),
		}
		if ts, ok := ParseTimestamp(frame.Value(i, ColumnOwnerSignoff)); ok {
			rows[i].signoff = &ts
		}
	}
	return rows
}

// inspectionDates resolves a date per row from the Conducted on column,
// then from auditName, then today.
func inspectionDates(frame *Frame, today time.Time) []time.Time {
	dates := make([]time.Time, frame.Len())

	if frame.Has(ColumnConductedOn) {
		for i := range dates {
			if d, ok := ParseDate(frame.Value(i, ColumnConductedOn)); ok {
				dates[i] = d
			}
		}
		if fillWithMode(dates) {
			return dates
		}
	}

	if frame.Has(ColumnAuditName) {
		for i := range dates {
			dates[i] = parseAuditName(frame.Value(i, ColumnAuditName)).date
		}
		if fillWithMode(dates) {
			return dates
		}
	}

	if frame.Len() > 0 {
		slog.Warn("Could not extract inspection dates, using current date", "date", today.Format("2006-01-02"))
	}
	for i := range dates {
		dates[i] = today
	}
	return dates
}

func unitFor(frame *Frame, row int) string {
	if lot := frame.Value(row, ColumnLotNumber); lot != "" && !strings.EqualFold(lot, "nan") {
		return lot
	}
	if unit := parseAuditName(frame.Value(row, ColumnAuditName)).unit; unit != "" {
		return unit
	}
	return "Unit_" + strconv.Itoa(row+1)
}

func unitTypeFor(raw string) string {
	switch strings.ToLower(raw) {
	case "apartment":
		return "Apartment"
	case "townhouse":
		return "Townhouse"
	case "":
		return UnknownUnitType
	default:
		return raw
	}
}

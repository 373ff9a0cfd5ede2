// Package metrics computes settlement-readiness figures for a set of inspection items.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/punchlist/internal/ingest"
	"github.com/Veraticus/punchlist/internal/model"
)

// Readiness thresholds on defects per unit.
const (
	ReadyMaxDefects = 2
	MinorMaxDefects = 7
	MajorMaxDefects = 15
)

const dateLayout = "2006-01-02"

// Compute builds the building metrics from the tidy items. Site details found in
// source take precedence over info; source may be nil when items are reloaded
// from storage. now anchors the planned-work windows and the date fallback.
func Compute(items []model.InspectionItem, info model.BuildingInfo, source *ingest.Frame, now time.Time) *model.Metrics {
	m := &model.Metrics{
		BuildingName:           info.Name,
		Address:                info.Address,
		SummaryTrade:           make([]model.TradeCount, 0),
		SummaryUnit:            make([]model.UnitCount, 0),
		SummaryRoom:            make([]model.RoomCount, 0),
		UrgentDefectsTable:     make([]model.DefectDetail, 0),
		PlannedWork2WeeksTable: make([]model.DefectDetail, 0),
		PlannedWorkMonthTable:  make([]model.DefectDetail, 0),
		ComponentDetails:       make([]model.ComponentRollup, 0),
		TotalInspections:       len(items),
	}

	site := ingest.SiteDetails(source)
	if site.BuildingName != "" {
		m.BuildingName = site.BuildingName
	}
	if site.Address != "" {
		m.Address = site.Address
	}

	applyDates(m, items, info, now)
	applyReadiness(m, items)
	applyDefects(m, items, now)

	return m
}

func applyDates(m *model.Metrics, items []model.InspectionItem, info model.BuildingInfo, now time.Time) {
	counts := make(map[time.Time]int)
	var first, last time.Time
	for _, item := range items {
		if item.InspectionDate.IsZero() {
			continue
		}
		d := item.InspectionDate
		counts[d]++
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
	}

	if len(counts) == 0 {
		m.InspectionDate = info.Date
		if m.InspectionDate == "" {
			m.InspectionDate = now.Format(dateLayout)
		}
		m.InspectionDateRange = m.InspectionDate
		return
	}

	m.InspectionDate = ingest.Mode(counts).Format(dateLayout)
	m.InspectionDateRange = first.Format(dateLayout) + " to " + last.Format(dateLayout)
	m.IsMultiDay = !first.Equal(last)
}

func applyReadiness(m *model.Metrics, items []model.InspectionItem) {
	defectsPerUnit := make(map[string]int)
	unitTypes := make(map[string]bool)
	for _, item := range items {
		if _, ok := defectsPerUnit[item.Unit]; !ok {
			defectsPerUnit[item.Unit] = 0
		}
		if item.IsDefect() {
			defectsPerUnit[item.Unit]++
		}
		if item.UnitType != "" {
			unitTypes[item.UnitType] = true
		}
	}

	for _, count := range defectsPerUnit {
		switch {
		case count <= ReadyMaxDefects:
			m.ReadyUnits++
		case count <= MinorMaxDefects:
			m.MinorWorkUnits++
		case count <= MajorMaxDefects:
			m.MajorWorkUnits++
		default:
			m.ExtensiveWorkUnits++
		}
	}

	m.TotalUnits = len(defectsPerUnit)
	if m.TotalUnits > 0 {
		total := float64(m.TotalUnits)
		m.ReadyPct = float64(m.ReadyUnits) / total * 100
		m.MinorPct = float64(m.MinorWorkUnits) / total * 100
		m.MajorPct = float64(m.MajorWorkUnits) / total * 100
		m.ExtensivePct = float64(m.ExtensiveWorkUnits) / total * 100
	}

	types := make([]string, 0, len(unitTypes))
	for t := range unitTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	m.UnitTypes = strings.Join(types, ", ")
}

func applyDefects(m *model.Metrics, items []model.InspectionItem, now time.Time) {
	defects := model.Defects(items)
	m.TotalDefects = len(defects)
	if len(items) > 0 {
		m.DefectRate = float64(len(defects)) / float64(len(items)) * 100
	}
	units := m.TotalUnits
	if units < 1 {
		units = 1
	}
	m.AvgDefectsPerUnit = float64(len(defects)) / float64(units)

	twoWeeks := now.AddDate(0, 0, 14)
	month := now.AddDate(0, 0, 30)

	byTrade := make(map[string]int)
	byUnit := make(map[string]int)
	byRoom := make(map[string]int)
	type componentKey struct{ trade, room, component string }
	affected := make(map[componentKey]map[string]bool)

	for _, d := range defects {
		byTrade[d.Trade]++
		byUnit[d.Unit]++
		byRoom[d.Room]++

		key := componentKey{trade: d.Trade, room: d.Room, component: d.Component}
		if affected[key] == nil {
			affected[key] = make(map[string]bool)
		}
		affected[key][d.Unit] = true

		detail := model.DefectDetail{
			PlannedCompletion: d.PlannedCompletion,
			Unit:              d.Unit,
			Room:              d.Room,
			Component:         d.Component,
			Trade:             d.Trade,
			Urgency:           d.Urgency,
		}

		switch d.Urgency {
		case model.UrgencyUrgent:
			m.UrgentDefects++
			m.UrgentDefectsTable = append(m.UrgentDefectsTable, detail)
		case model.UrgencyHighPriority:
			m.HighPriorityDefects++
		}

		switch {
		case d.PlannedCompletion.After(now) && !d.PlannedCompletion.After(twoWeeks):
			m.PlannedWork2WeeksTable = append(m.PlannedWork2WeeksTable, detail)
		case d.PlannedCompletion.After(twoWeeks) && !d.PlannedCompletion.After(month):
			m.PlannedWorkMonthTable = append(m.PlannedWorkMonthTable, detail)
		}
	}
	m.PlannedWork2Weeks = len(m.PlannedWork2WeeksTable)
	m.PlannedWorkMonth = len(m.PlannedWorkMonthTable)

	for _, table := range [][]model.DefectDetail{m.UrgentDefectsTable, m.PlannedWork2WeeksTable, m.PlannedWorkMonthTable} {
		sortDetails(table)
	}

	for _, name := range sortedKeys(byTrade) {
		m.SummaryTrade = append(m.SummaryTrade, model.TradeCount{Trade: name, DefectCount: byTrade[name]})
	}
	for _, name := range sortedKeys(byUnit) {
		m.SummaryUnit = append(m.SummaryUnit, model.UnitCount{Unit: name, DefectCount: byUnit[name]})
	}
	for _, name := range sortedKeys(byRoom) {
		m.SummaryRoom = append(m.SummaryRoom, model.RoomCount{Room: name, DefectCount: byRoom[name]})
	}

	for key, units := range affected {
		list := make([]string, 0, len(units))
		for u := range units {
			list = append(list, u)
		}
		sort.Strings(list)
		m.ComponentDetails = append(m.ComponentDetails, model.ComponentRollup{
			Trade:         key.trade,
			Room:          key.room,
			Component:     key.component,
			AffectedUnits: strings.Join(list, ", "),
			UnitCount:     len(list),
		})
	}
	sort.Slice(m.ComponentDetails, func(i, j int) bool {
		a, b := m.ComponentDetails[i], m.ComponentDetails[j]
		if a.UnitCount != b.UnitCount {
			return a.UnitCount > b.UnitCount
		}
		if a.Trade != b.Trade {
			return a.Trade < b.Trade
		}
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		return a.Component < b.Component
	})
}

// sortedKeys orders keys by descending count, then by name.
func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortDetails(details []model.DefectDetail) {
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if !a.PlannedCompletion.Equal(b.PlannedCompletion) {
			return a.PlannedCompletion.Before(b.PlannedCompletion)
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.Room < b.Room
	})
}

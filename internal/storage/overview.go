package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Veraticus/punchlist/internal/model"
)

// GetProjectOverview rolls inspections and completed work orders up per building,
// most recently inspected first.
func (s *sqlStore) GetProjectOverview(ctx context.Context) ([]model.BuildingOverview, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.name, COALESCE(b.address, ''), i.inspection_date, i.total_defects, i.ready_pct
		FROM inspector_inspections i
		JOIN inspector_buildings b ON b.id = i.building_id
		ORDER BY i.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inspections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byName := make(map[string]*model.BuildingOverview)
	readySum := make(map[string]float64)
	for rows.Next() {
		var name, address string
		var inspected sql.NullTime
		var defects int
		var readyPct float64
		if err := rows.Scan(&name, &address, &inspected, &defects, &readyPct); err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}

		o, ok := byName[name]
		if !ok {
			o = &model.BuildingOverview{BuildingName: name, Address: address}
			byName[name] = o
		}
		if address != "" {
			o.Address = address
		}
		o.TotalInspections++
		o.TotalDefects += defects
		readySum[name] += readyPct
		if inspected.Valid {
			d := dateOnly(inspected.Time)
			if o.LatestInspection == nil || d.After(*o.LatestInspection) {
				o.LatestInspection = &d
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inspections: %w", err)
	}
	_ = rows.Close()

	resolved, err := s.completedWorkOrdersByBuilding(ctx)
	if err != nil {
		return nil, err
	}

	overview := make([]model.BuildingOverview, 0, len(byName))
	for name, o := range byName {
		o.AvgReadyPct = readySum[name] / float64(o.TotalInspections)
		o.ResolvedDefects = resolved[name]
		overview = append(overview, *o)
	}
	sort.Slice(overview, func(i, j int) bool {
		a, b := overview[i].LatestInspection, overview[j].LatestInspection
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return overview[i].BuildingName < overview[j].BuildingName
	})

	return overview, nil
}

func (s *sqlStore) completedWorkOrdersByBuilding(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT b.name, COUNT(*)
		FROM inspector_work_orders w
		JOIN inspector_inspections i ON i.id = w.inspection_id
		JOIN inspector_buildings b ON b.id = i.building_id
		WHERE w.status = ?
		GROUP BY b.name`), string(model.WorkOrderCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to count completed work orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan work order count: %w", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work order counts: %w", err)
	}
	return counts, nil
}

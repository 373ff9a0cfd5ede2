package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/service"
)

const defaultInspectionLimit = 10

var itemColumns = []string{
	"id", "inspection_id", "position", "unit", "unit_type", "inspection_date",
	"room", "component", "trade", "status_class", "urgency",
	"planned_completion", "owner_signoff_timestamp", "original_status", "created_at",
}

// SaveInspection writes the building, the inspection header and every item in
// one transaction and returns the new inspection ID.
func (s *sqlStore) SaveInspection(ctx context.Context, items []model.InspectionItem, metrics *model.Metrics, inspectorName, filename string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if metrics == nil {
		return "", fmt.Errorf("%w: metrics", ErrNilParameter)
	}
	if err := validateItems(items); err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	inspectionDate := parseMetricsDate(metrics.InspectionDate, now)

	buildingID, err := s.insertBuildingTx(ctx, tx, metrics, inspectionDate, now)
	if err != nil {
		return "", err
	}

	inspectionID := uuid.NewString()
	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO inspector_inspections (
			id, building_id, inspection_date, inspector_name, total_units, total_defects,
			defect_rate, ready_units, ready_pct, urgent_defects, high_priority_defects,
			avg_defects_per_unit, original_filename, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		inspectionID, buildingID, inspectionDate, inspectorName, metrics.TotalUnits, metrics.TotalDefects,
		metrics.DefectRate, metrics.ReadyUnits, metrics.ReadyPct, metrics.UrgentDefects, metrics.HighPriorityDefects,
		metrics.AvgDefectsPerUnit, filename, "completed", now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert inspection: %w", err)
	}

	rows := make([][]any, len(items))
	for i := range items {
		item := &items[i]
		rows[i] = []any{
			uuid.NewString(), inspectionID, i, item.Unit, item.UnitType, dateOnly(item.InspectionDate),
			item.Room, item.Component, item.Trade, string(item.StatusClass), string(item.Urgency),
			dateOnly(item.PlannedCompletion), nullTime(item.OwnerSignoff), item.OriginalStatus, now,
		}
	}
	if err := s.insertRows(ctx, tx, "inspector_inspection_items", itemColumns, rows); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit inspection: %w", err)
	}

	return inspectionID, nil
}

// insertBuildingTx records the building as described by this upload. Each
// save gets its own row; overviews group buildings by name.
func (s *sqlStore) insertBuildingTx(ctx context.Context, tx *sql.Tx, m *model.Metrics, inspectionDate, now time.Time) (string, error) {
	name := m.BuildingName
	if name == "" {
		name = "Unknown Building"
	}

	id := uuid.NewString()
	_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO inspector_buildings (
			id, name, address, inspection_date, total_units, total_defects, defect_rate,
			ready_units, ready_pct, unit_types, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, name, m.Address, inspectionDate, m.TotalUnits, m.TotalDefects, m.DefectRate,
		m.ReadyUnits, m.ReadyPct, m.UnitTypes, "active", now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert building: %w", err)
	}

	return id, nil
}

const inspectionSelect = `
	SELECT i.id, i.building_id, b.name, COALESCE(b.address, ''), i.inspection_date,
		COALESCE(i.inspector_name, ''), i.total_units, i.total_defects, i.defect_rate,
		i.ready_units, i.ready_pct, i.urgent_defects, i.high_priority_defects,
		i.avg_defects_per_unit, COALESCE(i.original_filename, ''), COALESCE(i.status, ''), i.created_at
	FROM inspector_inspections i
	JOIN inspector_buildings b ON b.id = i.building_id`

// LoadInspection returns the inspection header and its items in original order.
func (s *sqlStore) LoadInspection(ctx context.Context, id string) (*model.Inspection, []model.InspectionItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, nil, err
	}

	inspection, err := scanInspection(s.db.QueryRowContext(ctx, s.q(inspectionSelect+` WHERE i.id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("inspection %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load inspection: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, inspection_id, unit, COALESCE(unit_type, ''), inspection_date, COALESCE(room, ''),
			COALESCE(component, ''), COALESCE(trade, ''), status_class, urgency,
			planned_completion, owner_signoff_timestamp, COALESCE(original_status, '')
		FROM inspector_inspection_items
		WHERE inspection_id = ?
		ORDER BY position`), id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query inspection items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]model.InspectionItem, 0, 64)
	for rows.Next() {
		var item model.InspectionItem
		var inspected, planned, signoff sql.NullTime
		var status, urgency string
		if err := rows.Scan(
			&item.ID, &item.InspectionID, &item.Unit, &item.UnitType, &inspected, &item.Room,
			&item.Component, &item.Trade, &status, &urgency,
			&planned, &signoff, &item.OriginalStatus,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan inspection item: %w", err)
		}
		item.StatusClass = model.StatusClass(status)
		item.Urgency = model.Urgency(urgency)
		if inspected.Valid {
			item.InspectionDate = dateOnly(inspected.Time)
		}
		if planned.Valid {
			item.PlannedCompletion = dateOnly(planned.Time)
		}
		item.OwnerSignoff = timePtr(signoff)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate inspection items: %w", err)
	}

	if len(items) == 0 {
		return nil, nil, fmt.Errorf("inspection %s has no items: %w", id, common.ErrNotFound)
	}

	return inspection, items, nil
}

// ListInspections returns inspections newest first.
func (s *sqlStore) ListInspections(ctx context.Context, filter service.InspectionFilter) ([]model.Inspection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultInspectionLimit
	}

	query := inspectionSelect
	args := make([]any, 0, 2)
	if filter.BuildingName != "" {
		query += ` WHERE b.name = ?`
		args = append(args, filter.BuildingName)
	}
	query += ` ORDER BY i.created_at DESC, i.id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inspections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	inspections := make([]model.Inspection, 0, limit)
	for rows.Next() {
		inspection, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		inspections = append(inspections, *inspection)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inspections: %w", err)
	}

	return inspections, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInspection(row rowScanner) (*model.Inspection, error) {
	var i model.Inspection
	var inspected, created sql.NullTime
	if err := row.Scan(
		&i.ID, &i.BuildingID, &i.BuildingName, &i.Address, &inspected,
		&i.InspectorName, &i.TotalUnits, &i.TotalDefects, &i.DefectRate,
		&i.ReadyUnits, &i.ReadyPct, &i.UrgentDefects, &i.HighPriorityDefects,
		&i.AvgDefectsPerUnit, &i.OriginalFilename, &i.Status, &created,
	); err != nil {
		return nil, err
	}
	if inspected.Valid {
		i.InspectionDate = dateOnly(inspected.Time)
	}
	if created.Valid {
		i.CreatedAt = created.Time.UTC()
	}
	return &i, nil
}

func parseMetricsDate(value string, fallback time.Time) time.Time {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return dateOnly(fallback)
}

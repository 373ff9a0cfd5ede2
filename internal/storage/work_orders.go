package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/service"
)

var workOrderColumns = []string{
	"id", "inspection_id", "unit", "trade", "component", "room", "urgency", "status",
	"planned_date", "estimated_hours", "notes", "photos_required", "created_at", "updated_at",
}

// SaveWorkOrders bulk-inserts orders in one transaction. Missing IDs,
// statuses and timestamps are filled in on the caller's slice.
func (s *sqlStore) SaveWorkOrders(ctx context.Context, orders []model.WorkOrder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateWorkOrders(orders); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	rows := make([][]any, len(orders))
	for i := range orders {
		order := &orders[i]
		if order.ID == "" {
			order.ID = uuid.NewString()
		}
		if order.Status == "" {
			order.Status = model.WorkOrderPending
		}
		if order.CreatedAt.IsZero() {
			order.CreatedAt = now
		}
		order.UpdatedAt = now

		rows[i] = []any{
			order.ID, order.InspectionID, order.Unit, order.Trade, order.Component, order.Room,
			string(order.Urgency), string(order.Status), dateOnly(order.PlannedDate), order.EstimatedHours,
			order.Notes, order.PhotosRequired, order.CreatedAt, order.UpdatedAt,
		}
	}

	if err := s.insertRows(ctx, tx, "inspector_work_orders", workOrderColumns, rows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit work orders: %w", err)
	}
	return nil
}

// GetWorkOrders lists work orders by planned date, most urgent first within a day.
func (s *sqlStore) GetWorkOrders(ctx context.Context, filter service.WorkOrderFilter) ([]model.WorkOrder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidStatus, filter.Status)
	}

	var where []string
	var args []any
	if filter.InspectionID != "" {
		where = append(where, "w.inspection_id = ?")
		args = append(args, filter.InspectionID)
	}
	if filter.Trade != "" {
		where = append(where, "w.trade = ?")
		args = append(args, filter.Trade)
	}
	if filter.Status != "" {
		where = append(where, "w.status = ?")
		args = append(args, string(filter.Status))
	}

	query := `
		SELECT w.id, w.inspection_id, b.name, w.unit, w.trade, COALESCE(w.component, ''),
			COALESCE(w.room, ''), w.urgency, w.status, w.planned_date, w.estimated_hours,
			COALESCE(w.notes, ''), w.photos_required, w.created_at, w.updated_at
		FROM inspector_work_orders w
		JOIN inspector_inspections i ON i.id = w.inspection_id
		JOIN inspector_buildings b ON b.id = i.building_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += `
		ORDER BY w.planned_date,
			CASE w.urgency WHEN 'Urgent' THEN 0 WHEN 'High Priority' THEN 1 ELSE 2 END,
			w.unit, w.id`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orders := make([]model.WorkOrder, 0)
	for rows.Next() {
		var o model.WorkOrder
		var urgency, status string
		var planned, created, updated sql.NullTime
		if err := rows.Scan(
			&o.ID, &o.InspectionID, &o.BuildingName, &o.Unit, &o.Trade, &o.Component,
			&o.Room, &urgency, &status, &planned, &o.EstimatedHours,
			&o.Notes, &o.PhotosRequired, &created, &updated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work order: %w", err)
		}
		o.Urgency = model.Urgency(urgency)
		o.Status = model.WorkOrderStatus(status)
		if planned.Valid {
			o.PlannedDate = dateOnly(planned.Time)
		}
		if created.Valid {
			o.CreatedAt = created.Time.UTC()
		}
		if updated.Valid {
			o.UpdatedAt = updated.Time.UTC()
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work orders: %w", err)
	}

	return orders, nil
}

// UpdateWorkOrderStatus moves a work order to status and records the change.
// A non-empty note replaces the stored notes.
func (s *sqlStore) UpdateWorkOrderStatus(ctx context.Context, id string, status model.WorkOrderStatus, notes string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previous string
	err = tx.QueryRowContext(ctx, s.q(`SELECT status FROM inspector_work_orders WHERE id = ?`), id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("work order %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up work order: %w", err)
	}

	now := s.now()
	_, err = tx.ExecContext(ctx, s.q(`
		UPDATE inspector_work_orders
		SET status = ?, notes = COALESCE(?, notes), updated_at = ?
		WHERE id = ?`),
		string(status), nullString(notes), now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO inspector_work_order_history (id, work_order_id, previous_status, new_status, notes, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), id, previous, string(status), nullString(notes), now,
	)
	if err != nil {
		return fmt.Errorf("failed to record work order history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit work order update: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
)

// SaveProcessingLog records one upload attempt. entry.ID and entry.CreatedAt
// are filled in when empty.
func (s *sqlStore) SaveProcessingLog(ctx context.Context, entry *model.ProcessingLog) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProcessingLog(entry); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO inspector_csv_processing_log (
			id, original_filename, file_checksum, file_size, inspector_name, building_name,
			total_rows, processed_rows, defects_found, mapping_success_rate, work_orders_created,
			status, error_message, inspection_id, created_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.OriginalFilename, entry.FileChecksum, entry.FileSize, entry.InspectorName, entry.BuildingName,
		entry.TotalRows, entry.ProcessedRows, entry.DefectsFound, entry.MappingSuccessRate, entry.WorkOrdersCreated,
		string(entry.Status), nullString(entry.ErrorMessage), nullString(entry.InspectionID), entry.CreatedAt, nullTime(entry.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save processing log: %w", err)
	}
	return nil
}

const processingLogSelect = `
	SELECT id, original_filename, file_checksum, file_size, COALESCE(inspector_name, ''),
		COALESCE(building_name, ''), total_rows, processed_rows, defects_found,
		mapping_success_rate, work_orders_created, status, COALESCE(error_message, ''),
		COALESCE(inspection_id, ''), created_at, completed_at
	FROM inspector_csv_processing_log`

// FindProcessingLogByChecksum returns the latest completed upload with checksum.
func (s *sqlStore) FindProcessingLogByChecksum(ctx context.Context, checksum string) (*model.ProcessingLog, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(checksum, "checksum"); err != nil {
		return nil, err
	}
	return s.findProcessingLog(ctx, `file_checksum = ?`, checksum)
}

// FindProcessingLogByFilename returns the latest completed upload with filename.
func (s *sqlStore) FindProcessingLogByFilename(ctx context.Context, filename string) (*model.ProcessingLog, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(filename, "filename"); err != nil {
		return nil, err
	}
	return s.findProcessingLog(ctx, `original_filename = ?`, filename)
}

func (s *sqlStore) findProcessingLog(ctx context.Context, condition string, arg any) (*model.ProcessingLog, error) {
	query := processingLogSelect + ` WHERE ` + condition + ` AND status = ? ORDER BY created_at DESC LIMIT 1`
	row := s.db.QueryRowContext(ctx, s.q(query), arg, string(model.ProcessingCompleted))

	var entry model.ProcessingLog
	var status string
	var created, completed sql.NullTime
	err := row.Scan(
		&entry.ID, &entry.OriginalFilename, &entry.FileChecksum, &entry.FileSize, &entry.InspectorName,
		&entry.BuildingName, &entry.TotalRows, &entry.ProcessedRows, &entry.DefectsFound,
		&entry.MappingSuccessRate, &entry.WorkOrdersCreated, &status, &entry.ErrorMessage,
		&entry.InspectionID, &created, &completed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query processing log: %w", err)
	}

	entry.Status = model.ProcessingStatus(status)
	if created.Valid {
		entry.CreatedAt = created.Time.UTC()
	}
	entry.CompletedAt = timePtr(completed)
	return &entry, nil
}

// Package engine runs an inspection export through the pipeline: duplicate
// check, reshape, metrics, persistence and work order generation.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/ingest"
	"github.com/Veraticus/punchlist/internal/metrics"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/service"
	"github.com/Veraticus/punchlist/internal/trade"
)

// Engine orchestrates processing of inspection exports.
type Engine struct {
	storage service.Storage
	mapping *trade.Table
	now     func() time.Time
}

// Config holds configuration options for the engine.
type Config struct {
	// Mapping is the configured master mapping file, used when neither the
	// upload nor the database supplies one.
	Mapping *trade.Table
	// Now overrides the clock.
	Now func() time.Time
}

// New creates an engine backed by storage. A nil storage disables
// persistence and duplicate detection.
func New(storage service.Storage) *Engine {
	return NewWithConfig(storage, Config{})
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *Engine {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		storage: storage,
		mapping: config.Mapping,
		now:     now,
	}
}

// Upload is everything known about one export at the time it is processed.
type Upload struct {
	// Mapping overrides the master trade mapping for this upload only.
	Mapping *trade.Table
	// Progress receives reshape progress.
	Progress      func(done, total int)
	Filename      string
	InspectorName string
	Building      model.BuildingInfo
	Data          []byte
	// Force processes an export that was already processed.
	Force bool
	// DryRun computes items and metrics without persisting anything.
	DryRun bool
}

// Result is the outcome of processing one upload.
type Result struct {
	Metrics   *model.Metrics
	Duplicate *model.DuplicateReport
	// SaveErr is set when the items were computed but could not be stored.
	SaveErr            error
	InspectionID       string
	Checksum           string
	MappingSource      string
	Items              []model.InspectionItem
	TotalRows          int
	WorkOrdersCreated  int
	MappingSuccessRate float64
	// Skipped is true when a duplicate stopped processing.
	Skipped bool
}

// Saved reports whether the inspection was persisted.
func (r *Result) Saved() bool {
	return r.InspectionID != ""
}

// Process runs one upload through the pipeline. Only malformed exports and
// exports without any unit rows are returned as errors; storage failures are logged and reported in
// Result.SaveErr so the computed items and metrics stay usable.
func (e *Engine) Process(ctx context.Context, up Upload) (*Result, error) {
	if len(up.Data) == 0 {
		return nil, common.ErrEmptyUpload
	}

	result := &Result{Checksum: Checksum(up.Data)}
	persist := e.storage != nil && !up.DryRun

	if persist {
		result.Duplicate = e.CheckDuplicate(ctx, up.Data, up.Filename)
		if result.Duplicate != nil && result.Duplicate.IsDuplicate && !up.Force {
			common.FromContext(ctx).Warn("Skipping duplicate upload",
				"filename", up.Filename,
				"inspection_id", result.Duplicate.InspectionID,
				"processed_at", result.Duplicate.ProcessedAt)
			result.Skipped = true
			return result, nil
		}
	}

	frame, err := ingest.ReadFrame(bytes.NewReader(up.Data))
	if err != nil {
		if persist {
			e.logFailure(ctx, up, result, err)
		}
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	table, source := e.resolveMapping(ctx, up.Mapping)
	result.MappingSource = source

	reshaped, err := ingest.Reshape(frame, table, ingest.Options{
		Now:      e.now,
		Progress: up.Progress,
	})
	if err != nil {
		if persist {
			e.logFailure(ctx, up, result, err)
		}
		return nil, err
	}

	result.Items = reshaped.Items
	result.TotalRows = reshaped.TotalRows
	result.MappingSuccessRate = reshaped.MappingSuccessRate

	if len(result.Items) == 0 {
		err := common.NewUserError("export contains no inspection rows", common.ErrEmptyUpload)
		if persist {
			e.logFailure(ctx, up, result, err)
		}
		return nil, err
	}
	result.Metrics = metrics.Compute(reshaped.Items, up.Building, frame, e.now())

	if !persist {
		return result, nil
	}

	id, err := e.storage.SaveInspection(ctx, result.Items, result.Metrics, up.InspectorName, up.Filename)
	if err != nil {
		common.LogError(err, "Failed to save inspection", common.Fields{
			"filename": up.Filename,
			"items":    len(result.Items),
		})
		result.SaveErr = err
		e.logFailure(ctx, up, result, err)
		return result, nil
	}
	result.InspectionID = id
	result.WorkOrdersCreated = e.GenerateWorkOrders(ctx, id, result.Items)

	completed := e.now().UTC()
	e.saveLog(ctx, &model.ProcessingLog{
		OriginalFilename:   up.Filename,
		FileChecksum:       result.Checksum,
		FileSize:           int64(len(up.Data)),
		InspectorName:      up.InspectorName,
		BuildingName:       result.Metrics.BuildingName,
		TotalRows:          result.TotalRows,
		ProcessedRows:      len(result.Items),
		DefectsFound:       result.Metrics.TotalDefects,
		MappingSuccessRate: result.MappingSuccessRate,
		WorkOrdersCreated:  result.WorkOrdersCreated,
		Status:             model.ProcessingCompleted,
		InspectionID:       id,
		CompletedAt:        &completed,
	})

	common.FromContext(ctx).Info("Processed inspection",
		"inspection_id", id,
		"building", result.Metrics.BuildingName,
		"units", result.Metrics.TotalUnits,
		"defects", result.Metrics.TotalDefects,
		"work_orders", result.WorkOrdersCreated)

	return result, nil
}

// Load rebuilds the report for a stored inspection.
func (e *Engine) Load(ctx context.Context, inspectionID string) (*service.InspectionReport, error) {
	if e.storage == nil {
		return nil, fmt.Errorf("%w: no database configured", common.ErrMissingConfig)
	}

	inspection, items, err := e.storage.LoadInspection(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	orders, err := e.storage.GetWorkOrders(ctx, service.WorkOrderFilter{InspectionID: inspectionID})
	if err != nil {
		return nil, fmt.Errorf("failed to load work orders: %w", err)
	}

	return &service.InspectionReport{
		Inspection: inspection,
		Metrics:    metrics.Compute(items, inspection.BuildingInfo(), nil, e.now()),
		Items:      items,
		WorkOrders: orders,
	}, nil
}

func (e *Engine) logFailure(ctx context.Context, up Upload, result *Result, cause error) {
	entry := &model.ProcessingLog{
		OriginalFilename:   up.Filename,
		FileChecksum:       result.Checksum,
		FileSize:           int64(len(up.Data)),
		InspectorName:      up.InspectorName,
		BuildingName:       up.Building.Name,
		TotalRows:          result.TotalRows,
		ProcessedRows:      len(result.Items),
		MappingSuccessRate: result.MappingSuccessRate,
		Status:             model.ProcessingFailed,
		ErrorMessage:       cause.Error(),
	}
	if result.Metrics != nil {
		entry.BuildingName = result.Metrics.BuildingName
		entry.DefectsFound = result.Metrics.TotalDefects
	}
	e.saveLog(ctx, entry)
}

func (e *Engine) saveLog(ctx context.Context, entry *model.ProcessingLog) {
	if entry.OriginalFilename == "" {
		entry.OriginalFilename = "upload.csv"
	}
	if err := e.storage.SaveProcessingLog(ctx, entry); err != nil {
		common.FromContext(ctx).Warn("Failed to record processing log",
			"filename", entry.OriginalFilename,
			"status", entry.Status,
			"error", err)
	}
}

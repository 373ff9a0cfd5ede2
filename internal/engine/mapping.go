package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/punchlist/internal/trade"
)

// Where a run's trade mapping came from.
const (
	MappingFromUpload   = "upload"
	MappingFromDatabase = "database"
	MappingFromFile     = "file"
	MappingFromDefault  = "default"
)

// resolveMapping picks the mapping for one run: the upload's own table, then
// the master mapping in the database, then the configured file, then the
// embedded default.
func (e *Engine) resolveMapping(ctx context.Context, override *trade.Table) (*trade.Table, string) {
	if override.Len() > 0 {
		return override, MappingFromUpload
	}

	if e.storage != nil {
		mappings, err := e.storage.GetTradeMappings(ctx)
		switch {
		case err != nil:
			slog.Warn("Failed to load master trade mapping", "error", err)
		case len(mappings) > 0:
			return trade.FromMappings(mappings), MappingFromDatabase
		}
	}

	if e.mapping.Len() > 0 {
		return e.mapping, MappingFromFile
	}
	return trade.Default(), MappingFromDefault
}

// MasterMapping returns the mapping a run without an override would use.
func (e *Engine) MasterMapping(ctx context.Context) (*trade.Table, string) {
	return e.resolveMapping(ctx, nil)
}

// ImportMapping parses a Room,Component,Trade CSV and stores it as the master mapping.
func (e *Engine) ImportMapping(ctx context.Context, r io.Reader) (*trade.Table, error) {
	table, err := trade.Parse(r)
	if err != nil {
		return nil, err
	}
	if e.storage == nil {
		return table, nil
	}
	if err := e.storage.SaveTradeMappings(ctx, table.Mappings()); err != nil {
		return nil, fmt.Errorf("failed to save trade mapping: %w", err)
	}
	slog.Info("Imported master trade mapping", "entries", table.Len())
	return table, nil
}

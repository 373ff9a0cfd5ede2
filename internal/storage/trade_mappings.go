package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
)

// SaveTradeMappings replaces the master trade mapping. Later duplicates of a
// (Room, Component) pair win.
func (s *sqlStore) SaveTradeMappings(ctx context.Context, mappings []model.TradeMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	type key struct{ room, component string }
	index := make(map[key]int, len(mappings))
	deduped := make([]model.TradeMapping, 0, len(mappings))
	for _, m := range mappings {
		m.Room = strings.TrimSpace(m.Room)
		m.Component = strings.TrimSpace(m.Component)
		m.Trade = strings.TrimSpace(m.Trade)
		if m.Room == "" || m.Component == "" || m.Trade == "" {
			return fmt.Errorf("%w: empty field in %+v", common.ErrInvalidMapping, m)
		}
		k := key{m.Room, m.Component}
		if i, ok := index[k]; ok {
			deduped[i] = m
			continue
		}
		index[k] = len(deduped)
		deduped = append(deduped, m)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inspector_trade_mappings`); err != nil {
		return fmt.Errorf("failed to clear trade mappings: %w", err)
	}

	now := s.now()
	rows := make([][]any, len(deduped))
	for i, m := range deduped {
		rows[i] = []any{uuid.NewString(), m.Room, m.Component, m.Trade, now}
	}
	if err := s.insertRows(ctx, tx, "inspector_trade_mappings", []string{"id", "room", "component", "trade", "created_at"}, rows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trade mappings: %w", err)
	}
	return nil
}

// GetTradeMappings returns the master trade mapping ordered by room and component.
func (s *sqlStore) GetTradeMappings(ctx context.Context) ([]model.TradeMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT room, component, trade FROM inspector_trade_mappings ORDER BY room, component`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	mappings := make([]model.TradeMapping, 0)
	for rows.Next() {
		var m model.TradeMapping
		if err := rows.Scan(&m.Room, &m.Component, &m.Trade); err != nil {
			return nil, fmt.Errorf("failed to scan trade mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trade mappings: %w", err)
	}

	return mappings, nil
}

// Package trade holds the (Room, Component) to trade lookup used when reshaping inspections.
package trade

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
)

//go:embed default_mapping.csv
var defaultMappingCSV []byte

type key struct {
	room      string
	component string
}

// Table is an immutable trade lookup. Later rows for the same (Room, Component)
// replace earlier ones.
type Table struct {
	index    map[key]int
	mappings []model.TradeMapping
}

// Default returns the built-in mapping table.
func Default() *Table {
	table, err := Parse(bytes.NewReader(defaultMappingCSV))
	if err != nil {
		panic(fmt.Sprintf("embedded trade mapping is invalid: %v", err))
	}
	return table
}

// FromMappings builds a table from already-loaded mappings, such as the
// master copy kept in the database.
func FromMappings(mappings []model.TradeMapping) *Table {
	t := &Table{index: make(map[key]int, len(mappings))}
	for _, m := range mappings {
		t.add(m)
	}
	return t
}

// LoadFile reads a Room,Component,Trade CSV from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path) // #nosec G304 - user-supplied mapping file
	if err != nil {
		return nil, fmt.Errorf("failed to open trade mapping %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return Parse(f)
}

// Parse reads a mapping CSV. The header must name Room, Component and Trade
// columns in any order; extra columns are ignored.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", common.ErrInvalidMapping)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping header: %w", err)
	}

	roomIdx, componentIdx, tradeIdx := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "room":
			roomIdx = i
		case "component":
			componentIdx = i
		case "trade":
			tradeIdx = i
		}
	}
	if roomIdx < 0 || componentIdx < 0 || tradeIdx < 0 {
		return nil, fmt.Errorf("%w: header must contain Room, Component and Trade", common.ErrInvalidMapping)
	}

	t := &Table{index: make(map[key]int)}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read mapping line %d: %w", line, err)
		}

		m := model.TradeMapping{
			Room:      field(record, roomIdx),
			Component: field(record, componentIdx),
			Trade:     field(record, tradeIdx),
		}
		if m.Room == "" && m.Component == "" && m.Trade == "" {
			continue
		}
		if m.Room == "" || m.Component == "" || m.Trade == "" {
			return nil, fmt.Errorf("%w: line %d has an empty field", common.ErrInvalidMapping, line)
		}
		t.add(m)
	}

	return t, nil
}

// Lookup returns the trade for a room and component.
func (t *Table) Lookup(room, component string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.index[key{room: strings.TrimSpace(room), component: strings.TrimSpace(component)}]
	if !ok {
		return "", false
	}
	return t.mappings[i].Trade, true
}

// Trade returns the mapped trade or model.UnknownTrade.
func (t *Table) Trade(room, component string) string {
	if trade, ok := t.Lookup(room, component); ok {
		return trade
	}
	return model.UnknownTrade
}

// Mappings returns a copy of the table rows in insertion order.
func (t *Table) Mappings() []model.TradeMapping {
	if t == nil {
		return nil
	}
	out := make([]model.TradeMapping, len(t.mappings))
	copy(out, t.mappings)
	return out
}

// Len returns the number of distinct (Room, Component) pairs.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.mappings)
}

// WriteCSV writes the table in the same format Parse reads.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Room", "Component", "Trade"}); err != nil {
		return fmt.Errorf("failed to write mapping header: %w", err)
	}
	for _, m := range t.Mappings() {
		if err := writer.Write([]string{m.Room, m.Component, m.Trade}); err != nil {
			return fmt.Errorf("failed to write mapping row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (t *Table) add(m model.TradeMapping) {
	m.Room = strings.TrimSpace(m.Room)
	m.Component = strings.TrimSpace(m.Component)
	m.Trade = strings.TrimSpace(m.Trade)

	k := key{room: m.Room, component: m.Component}
	if i, ok := t.index[k]; ok {
		t.mappings[i] = m
		return
	}
	t.index[k] = len(t.mappings)
	t.mappings = append(t.mappings, m)
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

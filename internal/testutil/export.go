package testutil

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/Veraticus/punchlist/internal/ingest"
)

// ExportBuilder assembles a wide inspection export the way the field app
// writes it: metadata columns first, then one column per checklist item and
// one row per unit.
//
// Example:
//
//	data := testutil.NewExportBuilder(t).
//		WithItems("Kitchen_Sink", "Bathroom_Tiles").
//		WithUnit("101", "01/05/2024", "✓", "✗").
//		Bytes()
type ExportBuilder struct {
	t        *testing.T
	metadata []string
	items    []string
	rows     []exportRow
}

type exportRow struct {
	metadata map[string]string
	values   []string
}

// NewExportBuilder starts an export with the lot number and conducted-on columns.
func NewExportBuilder(t *testing.T) *ExportBuilder {
	t.Helper()
	return &ExportBuilder{
		t:        t,
		metadata: []string{ingest.ColumnAuditName, ingest.ColumnConductedOn, ingest.ColumnLotNumber},
	}
}

// WithMetadataColumn adds another non-checklist column.
func (b *ExportBuilder) WithMetadataColumn(name string) *ExportBuilder {
	b.metadata = append(b.metadata, name)
	return b
}

// WithItems adds checklist columns given as "Room_Component" suffixes.
func (b *ExportBuilder) WithItems(items ...string) *ExportBuilder {
	for _, item := range items {
		b.items = append(b.items, ingest.InspectionPrefix+item)
	}
	return b
}

// WithUnit adds one row with a lot number, conducted-on date and one value per item.
func (b *ExportBuilder) WithUnit(lot, conductedOn string, values ...string) *ExportBuilder {
	return b.WithRow(map[string]string{
		ingest.ColumnLotNumber:   lot,
		ingest.ColumnConductedOn: conductedOn,
	}, values...)
}

// WithRow adds one row with arbitrary metadata cells.
func (b *ExportBuilder) WithRow(metadata map[string]string, values ...string) *ExportBuilder {
	b.t.Helper()
	if len(values) != len(b.items) {
		b.t.Fatalf("row has %d values for %d items", len(values), len(b.items))
	}
	b.rows = append(b.rows, exportRow{metadata: metadata, values: values})
	return b
}

// Frame returns the export as a parsed frame.
func (b *ExportBuilder) Frame() *ingest.Frame {
	b.t.Helper()
	header, rows := b.table()
	return ingest.NewFrame(header, rows)
}

// Bytes returns the export encoded as CSV.
func (b *ExportBuilder) Bytes() []byte {
	b.t.Helper()
	header, rows := b.table()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		b.t.Fatalf("failed to write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		b.t.Fatalf("failed to write rows: %v", err)
	}
	return buf.Bytes()
}

func (b *ExportBuilder) table() ([]string, [][]string) {
	header := make([]string, 0, len(b.metadata)+len(b.items))
	header = append(header, b.metadata...)
	header = append(header, b.items...)

	rows := make([][]string, len(b.rows))
	for i, row := range b.rows {
		record := make([]string, 0, len(header))
		for _, column := range b.metadata {
			record = append(record, row.metadata[column])
		}
		record = append(record, row.values...)
		rows[i] = record
	}
	return header, rows
}

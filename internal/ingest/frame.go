// Package ingest reshapes wide inspection exports into one row per unit and checklist item.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/punchlist/internal/common"
)

// Well-known export columns.
const (
	ColumnAuditName    = "auditName"
	ColumnConductedOn  = "Title Page_Conducted on"
	ColumnLotNumber    = "Lot Details_Lot Number"
	ColumnUnitType     = "Pre-Settlement Inspection_Unit Type"
	ColumnOwnerSignoff = "Sign Off_Owner/Agent Signature_timestamp"
	ColumnSiteLocation = "Title Page_Site conducted_Location"
	ColumnSiteArea     = "Title Page_Site conducted_Area"
	ColumnSiteRegion   = "Title Page_Site conducted_Region"
	InspectionPrefix   = "Pre-Settlement Inspection_"
	notesSuffix        = "_notes"
)

// Frame is a header plus rows read from a wide CSV export. Every row has
// exactly len(Header) cells.
type Frame struct {
	index  map[string]int
	Header []string
	Rows   [][]string
}

// ReadFrame parses a CSV export. A leading UTF-8 BOM is stripped and repeated
// header names are renamed name.1, name.2 and so on.
func ReadFrame(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, common.ErrEmptyUpload
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	frame := &Frame{
		Header: dedupeHeader(header),
		Rows:   make([][]string, 0),
	}
	frame.buildIndex()

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(frame.Rows)+2, err)
		}
		frame.Rows = append(frame.Rows, normalizeRecord(record, len(frame.Header)))
	}

	return frame, nil
}

// NewFrame builds a frame from in-memory values. Rows are padded or truncated
// to the header width.
func NewFrame(header []string, rows [][]string) *Frame {
	frame := &Frame{
		Header: dedupeHeader(append([]string(nil), header...)),
		Rows:   make([][]string, 0, len(rows)),
	}
	frame.buildIndex()
	for _, row := range rows {
		frame.Rows = append(frame.Rows, normalizeRecord(row, len(frame.Header)))
	}
	return frame
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Has reports whether the frame carries the named column.
func (f *Frame) Has(column string) bool {
	if f == nil {
		return false
	}
	_, ok := f.index[column]
	return ok
}

// Value returns the trimmed cell for row and column, or "" when absent.
func (f *Frame) Value(row int, column string) string {
	if f == nil || row < 0 || row >= len(f.Rows) {
		return ""
	}
	idx, ok := f.index[column]
	if !ok {
		return ""
	}
	return strings.TrimSpace(f.Rows[row][idx])
}

// FirstValue returns the first non-empty trimmed value of column.
func (f *Frame) FirstValue(column string) string {
	for i := 0; i < f.Len(); i++ {
		if v := f.Value(i, column); v != "" {
			return v
		}
	}
	return ""
}

// InspectionColumns lists checklist columns in header order.
func (f *Frame) InspectionColumns() []string {
	columns := make([]string, 0)
	if f == nil {
		return columns
	}
	for _, name := range f.Header {
		if strings.HasPrefix(name, InspectionPrefix) && !strings.HasSuffix(name, notesSuffix) {
			columns = append(columns, name)
		}
	}
	return columns
}

func (f *Frame) buildIndex() {
	f.index = make(map[string]int, len(f.Header))
	for i, name := range f.Header {
		f.index[name] = i
	}
}

func dedupeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, name := range header {
		taken[name] = true
	}

	out := make([]string, len(header))
	for i, name := range header {
		count, dup := seen[name]
		seen[name] = count + 1
		if !dup {
			out[i] = name
			continue
		}
		candidate := name + "." + strconv.Itoa(count)
		for taken[candidate] {
			count++
			candidate = name + "." + strconv.Itoa(count)
		}
		seen[name] = count + 1
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

func normalizeRecord(record []string, width int) []string {
	row := make([]string, width)
	copy(row, record)
	return row
}

package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/punchlist/internal/service"
)

const defaultSheet = "Sheet1"

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Workbook builds an in-memory workbook with one sheet per tab. The caller
// must Close the returned file.
func Workbook(r *service.InspectionReport) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, tab := range BuildTabs(r) {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, tab.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(tab.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", tab.Name, err)
		}

		if err := writeTab(f, tab, headerStyle); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	return f, nil
}

func writeTab(f *excelize.File, tab Tab, headerStyle int) error {
	header := make([]any, len(tab.Header))
	for i, h := range tab.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(tab.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", tab.Name, err)
	}

	last, err := excelize.CoordinatesToCellName(len(tab.Header), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(tab.Name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", tab.Name, err)
	}

	for i, row := range tab.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := row
		if err := f.SetSheetRow(tab.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", tab.Name, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(tab.Header))
	if err != nil {
		return fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetColWidth(tab.Name, "A", lastCol, 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

// WriteWorkbook streams the workbook for r to w.
func WriteWorkbook(w io.Writer, r *service.InspectionReport) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Filename returns a file name for r such as Harbour_View_2024-05-01_inspection.xlsx.
func Filename(r *service.InspectionReport) string {
	name, date := "inspection", ""
	if r.Metrics != nil {
		if r.Metrics.BuildingName != "" {
			name = r.Metrics.BuildingName
		}
		date = r.Metrics.InspectionDate
	}
	name = strings.Trim(unsafeFilename.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "inspection"
	}
	if date != "" {
		name += "_" + date
	}
	return name + "_inspection.xlsx"
}

// FileWriter saves workbooks into a directory.
type FileWriter struct {
	Dir string
	// LastPath is the file written by the most recent Write.
	LastPath string
}

// NewFileWriter creates a writer that saves into dir.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{Dir: dir}
}

// Write implements the ReportWriter interface.
func (w *FileWriter) Write(ctx context.Context, r *service.InspectionReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.Dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	path := filepath.Join(w.Dir, Filename(r))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	w.LastPath = path

	slog.Info("Wrote inspection workbook", "path", path, "items", len(r.Items))
	return nil
}

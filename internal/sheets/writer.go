package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/report"
	"github.com/Veraticus/punchlist/internal/service"
)

// Writer implements the ReportWriter interface for Google Sheets. Each report
// tab becomes one sheet of the spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
	// SpreadsheetID is the spreadsheet written by the most recent Write.
	SpreadsheetID string
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write implements the ReportWriter interface.
func (w *Writer) Write(ctx context.Context, r *service.InspectionReport) error {
	tabs := report.BuildTabs(r)
	w.logger.Info("starting sheets export",
		"items", len(r.Items),
		"tabs", len(tabs))

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts < 1 {
		retryOpts.MaxAttempts = 1
	}

	spreadsheetID, sheetIDs, err := w.getOrCreateSpreadsheet(ctx, tabs)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, tab := range tabs {
		values := tabValues(tab)
		err := common.WithRetry(ctx, func() error {
			if err := w.clearSheet(ctx, spreadsheetID, tab.Name); err != nil {
				return classifyAPIError(err)
			}
			return classifyAPIError(w.writeData(ctx, spreadsheetID, tab.Name, values))
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", tab.Name, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classifyAPIError(w.applyFormatting(ctx, spreadsheetID, formattingRequests(tabs, sheetIDs)))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.SpreadsheetID = spreadsheetID
	w.logger.Info("sheets export completed", "spreadsheet_id", spreadsheetID)

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet returns the target spreadsheet and the sheet ID of
// every tab, adding sheets that are missing.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context, tabs []report.Tab) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		spreadsheet := &sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    w.config.SpreadsheetName,
				TimeZone: w.config.TimeZone,
			},
		}
		for _, tab := range tabs {
			spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
				Properties: &sheets.SheetProperties{Title: tab.Name},
			})
		}

		created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created new spreadsheet",
			"id", created.SpreadsheetId,
			"url", created.SpreadsheetUrl)
		return created.SpreadsheetId, sheetIDs(created), nil
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	ids := sheetIDs(existing)
	requests := missingSheetRequests(tabs, ids)
	if len(requests) == 0 {
		return existing.SpreadsheetId, ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(existing.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to add sheets: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}
	return existing.SpreadsheetId, ids, nil
}

func sheetIDs(spreadsheet *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			ids[sheet.Properties.Title] = sheet.Properties.SheetId
		}
	}
	return ids
}

func missingSheetRequests(tabs []report.Tab, existing map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	for _, tab := range tabs {
		if _, ok := existing[tab.Name]; ok {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab.Name},
			},
		})
	}
	return requests
}

// clearSheet clears all data from one sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID, sheet string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, quoteSheet(sheet), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// tabValues converts a tab into the rows sent to the Sheets API.
func tabValues(tab report.Tab) [][]any {
	values := make([][]any, 0, len(tab.Rows)+1)
	header := make([]any, len(tab.Header))
	for i, h := range tab.Header {
		header[i] = h
	}
	values = append(values, header)
	values = append(values, tab.Rows...)
	return values
}

// writeData writes values to a sheet in batches.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, sheet string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}
		batch := values[i:end]

		rangeStr := fmt.Sprintf("%s!A%d", quoteSheet(sheet), i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "sheet", sheet, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

// formattingRequests bolds and freezes the header row of every tab and
// resizes its columns.
func formattingRequests(tabs []report.Tab, ids map[string]int64) []*sheets.Request {
	requests := make([]*sheets.Request, 0, len(tabs)*3)
	for _, tab := range tabs {
		id, ok := ids[tab.Name]
		if !ok {
			continue
		}
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          id,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   int64(len(tab.Header)),
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:    id,
						Dimension:  "COLUMNS",
						StartIndex: 0,
						EndIndex:   int64(len(tab.Header)),
					},
				},
			},
		)
	}
	return requests
}

// applyFormatting sends the formatting requests in one batch.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error {
	if len(requests) == 0 {
		return nil
	}
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func quoteSheet(name string) string {
	return "'" + name + "'"
}

// classifyAPIError marks quota errors for back-off and other client errors
// as permanent so WithRetry stops early.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return &common.RetryableError{Err: err, Retryable: false}
	}
	return err
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/engine"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/report"
	"github.com/Veraticus/punchlist/internal/service"
	"github.com/Veraticus/punchlist/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestServer(t *testing.T) (*gin.Engine, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	eng := engine.NewWithConfig(db.Storage, engine.Config{
		Now: func() time.Time { return time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC) },
	})
	return NewRouter(eng, db.Storage), db
}

func sampleExport(t *testing.T) []byte {
	t.Helper()
	return testutil.NewExportBuilder(t).
		WithItems("Bathroom_Tiles", "Bathroom_Toilet", "Garage_Door", "Roof_Gutter").
		WithUnit("101", "01/05/2024", "✓", "✗", "✓", "fail").
		WithUnit("102", "01/05/2024", "✓", "✓", "✗", "").
		Bytes()
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func upload(t *testing.T, r http.Handler, fields map[string]string) (*httptest.ResponseRecorder, uploadResponse) {
	t.Helper()
	if fields == nil {
		fields = map[string]string{"building": "Harbour View", "address": "1 Quay St", "inspector": "Sam"}
	}
	rec := perform(r, multipartRequest(t, "/api/inspections", fields,
		formFile{field: "file", name: "harbour.csv", data: sampleExport(t)}))
	var resp uploadResponse
	decode(t, rec, &resp)
	return rec, resp
}

func TestHealth(t *testing.T) {
	r, _ := setupTestServer(t)
	rec := perform(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUploadInspection(t *testing.T) {
	r, db := setupTestServer(t)

	rec, resp := upload(t, r, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, resp.InspectionID)
	assert.Equal(t, 8, resp.ItemCount)
	assert.Equal(t, 3, resp.WorkOrdersCreated)
	assert.Equal(t, "Harbour View", resp.Metrics.BuildingName)
	assert.Equal(t, 3, db.MustCount("inspector_work_orders"))

	// Same bytes again are skipped as a duplicate.
	rec, dup := upload(t, r, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, dup.Skipped)
	require.NotNil(t, dup.Duplicate)
	assert.Equal(t, resp.InspectionID, dup.Duplicate.InspectionID)
}

func TestUploadInspection_DryRun(t *testing.T) {
	r, db := setupTestServer(t)

	rec, resp := upload(t, r, map[string]string{"building": "Harbour View", "dry_run": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.DryRun)
	assert.Empty(t, resp.InspectionID)
	assert.Equal(t, 0, db.MustCount("inspector_inspections"))
}

func TestUploadInspection_WithMapping(t *testing.T) {
	r, _ := setupTestServer(t)

	mapping := []byte("Room,Component,Trade\nBathroom,Tiles,Tiler\n")
	rec := perform(r, multipartRequest(t, "/api/inspections", map[string]string{"building": "Harbour View"},
		formFile{field: "file", name: "harbour.csv", data: sampleExport(t)},
		formFile{field: "mapping", name: "mapping.csv", data: mapping}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp uploadResponse
	decode(t, rec, &resp)
	assert.Equal(t, engine.MappingFromUpload, resp.MappingSource)
	assert.InDelta(t, 25.0, resp.MappingSuccessRate, 0.001)
}

func TestUploadInspection_BadRequests(t *testing.T) {
	r, _ := setupTestServer(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"missing file", multipartRequest(t, "/api/inspections", map[string]string{"building": "x"})},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/api/inspections", strings.NewReader("{}"))},
		{"empty file", multipartRequest(t, "/api/inspections", nil, formFile{field: "file", name: "a.csv"})},
		{"no inspection columns", multipartRequest(t, "/api/inspections", nil,
			formFile{field: "file", name: "a.csv", data: []byte("auditName,Title Page_Conducted on\n2024-05-01/101/Tower,01/05/2024\n")})},
		{"header only", multipartRequest(t, "/api/inspections", nil,
			formFile{field: "file", name: "a.csv", data: []byte("auditName,Pre-Settlement Inspection_Kitchen_Cabinets\n")})},
		{"bad mapping", multipartRequest(t, "/api/inspections", nil,
			formFile{field: "file", name: "a.csv", data: sampleExport(t)},
			formFile{field: "mapping", name: "m.csv", data: []byte("Room,Trade\nKitchen,Plumbing\n")})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := perform(r, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestUploadInspection_TooLarge(t *testing.T) {
	r, db := setupTestServer(t)

	oversized := bytes.Repeat([]byte("a"), MaxUploadBytes+1)
	rec := perform(r, multipartRequest(t, "/api/inspections", nil,
		formFile{field: "file", name: "huge.csv", data: oversized}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds")
	assert.Zero(t, db.MustCount("inspector_csv_processing_log"))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("inspection abc: %w", common.ErrNotFound), http.StatusNotFound, "inspection abc: not found"},
		{"too large", common.NewUserError("file exceeds limit", common.ErrUploadTooLarge), http.StatusRequestEntityTooLarge, "file exceeds limit"},
		{"bad query", common.NewUserError("limit must be a non-negative integer", common.ErrInvalidRequest), http.StatusBadRequest, "limit must be a non-negative integer"},
		{"empty export", common.NewUserError("export contains no inspection rows", common.ErrEmptyUpload), http.StatusBadRequest, "export contains no inspection rows"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			writeError(c, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			decode(t, rec, &body)
			assert.Equal(t, tt.message, body["error"])
		})
	}
}

func TestCheckInspection(t *testing.T) {
	r, _ := setupTestServer(t)

	check := func() map[string]json.RawMessage {
		rec := perform(r, multipartRequest(t, "/api/inspections/check", nil,
			formFile{field: "file", name: "harbour.csv", data: sampleExport(t)}))
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]json.RawMessage
		decode(t, rec, &body)
		return body
	}

	assert.Equal(t, "null", string(check()["duplicate"]))

	_, resp := upload(t, r, nil)

	var dup model.DuplicateReport
	require.NoError(t, json.Unmarshal(check()["duplicate"], &dup))
	assert.True(t, dup.IsDuplicate)
	assert.Equal(t, resp.InspectionID, dup.InspectionID)
}

func TestInspectionReads(t *testing.T) {
	r, _ := setupTestServer(t)
	_, resp := upload(t, r, nil)

	rec := perform(r, httptest.NewRequest(http.MethodGet, "/api/inspections?building=Harbour+View&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Inspections []model.Inspection `json:"inspections"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Inspections, 1)
	assert.Equal(t, resp.InspectionID, list.Inspections[0].ID)

	rec = perform(r, httptest.NewRequest(http.MethodGet, "/api/inspections/"+resp.InspectionID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var full service.InspectionReport
	decode(t, rec, &full)
	assert.Len(t, full.Items, 8)
	assert.Len(t, full.WorkOrders, 3)
	assert.Equal(t, 3, full.Metrics.TotalDefects)

	rec = perform(r, httptest.NewRequest(http.MethodGet, "/api/inspections/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = perform(r, httptest.NewRequest(http.MethodGet, "/api/inspections?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetWorkbook(t *testing.T) {
	r, _ := setupTestServer(t)
	_, resp := upload(t, r, nil)

	rec := perform(r, httptest.NewRequest(http.MethodGet, "/api/inspections/"+resp.InspectionID+"/workbook", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Harbour_View")

	f, err := excelize.OpenReader(io.NopCloser(rec.Body))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Contains(t, f.GetSheetList(), report.TabWorkOrders)
}

func TestWorkOrders(t *testing.T) {
	r, _ := setupTestServer(t)
	_, resp := upload(t, r, nil)

	rec := perform(r, httptest.NewRequest(http.MethodGet, "/api/work-orders?inspection_id="+resp.InspectionID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		WorkOrders []model.WorkOrder `json:"work_orders"`
	}
	decode(t, rec, &list)
	require.Len(t, list.WorkOrders, 3)
	id := list.WorkOrders[0].ID

	patch := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/work-orders/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return perform(r, req)
	}

	rec = patch(id, `{"status":"in_progress","notes":"crew booked"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = perform(r, httptest.NewRequest(http.MethodGet, "/api/work-orders?status=in_progress", nil))
	decode(t, rec, &list)
	require.Len(t, list.WorkOrders, 1)
	assert.Equal(t, "crew booked", list.WorkOrders[0].Notes)

	assert.Equal(t, http.StatusBadRequest, patch(id, `{"status":"done"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch(id, `{}`).Code)
	assert.Equal(t, http.StatusNotFound, patch("missing", `{"status":"completed"}`).Code)

	rec = perform(r, httptest.NewRequest(http.MethodGet, "/api/work-orders?status=done", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverviewAndMappings(t *testing.T) {
	r, _ := setupTestServer(t)
	upload(t, r, nil)

	rec := perform(r, httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var overview struct {
		Buildings []model.BuildingOverview `json:"buildings"`
	}
	decode(t, rec, &overview)
	require.Len(t, overview.Buildings, 1)
	assert.Equal(t, "Harbour View", overview.Buildings[0].BuildingName)
	assert.Equal(t, 1, overview.Buildings[0].TotalInspections)

	rec = perform(r, httptest.NewRequest(http.MethodGet, "/api/trade-mappings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"default"`)
}

func TestStart_RequiresDependencies(t *testing.T) {
	err := Start(context.Background(), Options{})
	assert.Error(t, err)
}

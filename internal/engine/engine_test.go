package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/service"
	"github.com/Veraticus/punchlist/internal/testutil"
	"github.com/Veraticus/punchlist/internal/trade"
)

var fixedNow = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestEngine(t *testing.T) (*Engine, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewWithConfig(db.Storage, Config{Now: fixedClock}), db
}

// sampleExport has two units, four checklist items and three defects.
func sampleExport(t *testing.T) []byte {
	t.Helper()
	return testutil.NewExportBuilder(t).
		WithItems("Bathroom_Tiles", "Bathroom_Toilet", "Garage_Door", "Roof_Gutter").
		WithUnit("101", "01/05/2024", "✓", "✗", "✓", "fail").
		WithUnit("102", "01/05/2024", "✓", "✓", "✗", "").
		Bytes()
}

func sampleUpload(t *testing.T) Upload {
	t.Helper()
	return Upload{
		Data:          sampleExport(t),
		Filename:      "harbour.csv",
		InspectorName: "Sam Inspector",
		Building:      model.BuildingInfo{Name: "Harbour View", Address: "1 Quay St"},
	}
}

func TestEngine_Process(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	var progress []int
	up := sampleUpload(t)
	up.Progress = func(done, _ int) { progress = append(progress, done) }

	result, err := eng.Process(ctx, up)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Saved())
	assert.NoError(t, result.SaveErr)
	assert.False(t, result.Skipped)
	assert.Nil(t, result.Duplicate)
	assert.Equal(t, MappingFromDefault, result.MappingSource)
	assert.Equal(t, Checksum(up.Data), result.Checksum)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, []int{4}, progress)

	require.Len(t, result.Items, 8)
	assert.InDelta(t, 75.0, result.MappingSuccessRate, 0.001)

	defects := model.Defects(result.Items)
	require.Len(t, defects, 3)
	assert.Equal(t, len(defects), result.WorkOrdersCreated)

	require.NotNil(t, result.Metrics)
	assert.Equal(t, "Harbour View", result.Metrics.BuildingName)
	assert.Equal(t, "1 Quay St", result.Metrics.Address)
	assert.Equal(t, "2024-05-01", result.Metrics.InspectionDate)
	assert.Equal(t, 2, result.Metrics.TotalUnits)
	assert.Equal(t, 3, result.Metrics.TotalDefects)

	assert.Equal(t, 1, db.MustCount("inspector_inspections"))
	assert.Equal(t, 8, db.MustCount("inspector_inspection_items"))
	assert.Equal(t, 3, db.MustCount("inspector_work_orders"))

	entry, err := db.Storage.FindProcessingLogByChecksum(ctx, result.Checksum)
	require.NoError(t, err)
	assert.Equal(t, result.InspectionID, entry.InspectionID)
	assert.Equal(t, "Harbour View", entry.BuildingName)
	assert.Equal(t, 3, entry.DefectsFound)
	assert.Equal(t, 3, entry.WorkOrdersCreated)
	assert.Equal(t, 8, entry.ProcessedRows)
	assert.Equal(t, int64(len(up.Data)), entry.FileSize)

	orders, err := db.Storage.GetWorkOrders(ctx, service.WorkOrderFilter{InspectionID: result.InspectionID})
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for _, o := range orders {
		assert.Equal(t, model.WorkOrderPending, o.Status)
		assert.Equal(t, "Defect identified during inspection on 2024-05-01", o.Notes)
	}
}

func TestEngine_ProcessDuplicate(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	first, err := eng.Process(ctx, sampleUpload(t))
	require.NoError(t, err)

	again := sampleUpload(t)
	again.Filename = "renamed.csv"
	second, err := eng.Process(ctx, again)
	require.NoError(t, err)

	assert.True(t, second.Skipped)
	assert.False(t, second.Saved())
	require.NotNil(t, second.Duplicate)
	assert.True(t, second.Duplicate.IsDuplicate)
	assert.Equal(t, first.InspectionID, second.Duplicate.InspectionID)
	assert.Equal(t, "Harbour View", second.Duplicate.BuildingName)
	assert.Equal(t, "harbour.csv", second.Duplicate.OriginalFilename)
	assert.Empty(t, second.Items)
	assert.Equal(t, 1, db.MustCount("inspector_inspections"))

	again.Force = true
	forced, err := eng.Process(ctx, again)
	require.NoError(t, err)
	assert.True(t, forced.Saved())
	assert.NotEqual(t, first.InspectionID, forced.InspectionID)
	assert.Equal(t, 2, db.MustCount("inspector_inspections"))
}

func TestEngine_ProcessSameFilenameWarning(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Process(ctx, sampleUpload(t))
	require.NoError(t, err)

	changed := sampleUpload(t)
	changed.Data = testutil.NewExportBuilder(t).
		WithItems("Bathroom_Tiles").
		WithUnit("201", "02/05/2024", "✗").
		Bytes()

	result, err := eng.Process(ctx, changed)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.True(t, result.Saved())
	require.NotNil(t, result.Duplicate)
	assert.False(t, result.Duplicate.IsDuplicate)
	assert.Equal(t, model.DuplicateWarningSameName, result.Duplicate.Warning)
	assert.Equal(t, 1, result.WorkOrdersCreated)
}

func TestEngine_ProcessNoInspectionColumns(t *testing.T) {
	eng, db := newTestEngine(t)

	up := sampleUpload(t)
	up.Data = []byte("auditName,Title Page_Conducted on\n2024-05-01/101/Tower,01/05/2024\n")

	result, err := eng.Process(context.Background(), up)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, common.ErrNoInspectionColumns)

	assert.Zero(t, db.MustCount("inspector_inspections"))
	assert.Equal(t, 1, db.MustCount("inspector_csv_processing_log"))
	var status, message string
	require.NoError(t, db.Storage.DB().QueryRow(
		"SELECT status, error_message FROM inspector_csv_processing_log").Scan(&status, &message))
	assert.Equal(t, string(model.ProcessingFailed), status)
	assert.Contains(t, message, "no inspection columns")
}

func TestEngine_ProcessHeaderOnlyExport(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	up := sampleUpload(t)
	up.Data = []byte("auditName,Pre-Settlement Inspection_Kitchen_Cabinets\n")

	for attempt := 0; attempt < 2; attempt++ {
		result, err := eng.Process(ctx, up)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, common.ErrEmptyUpload)

		var userErr *common.UserError
		require.ErrorAs(t, err, &userErr)
		assert.Equal(t, "export contains no inspection rows", userErr.UserMessage)
	}

	assert.Zero(t, db.MustCount("inspector_inspections"))
	assert.Zero(t, db.MustCount("inspector_buildings"))
	assert.Equal(t, 2, db.MustCount("inspector_csv_processing_log"))
	assert.Nil(t, eng.CheckDuplicate(ctx, up.Data, "other.csv"))

	var completed int
	require.NoError(t, db.Storage.DB().QueryRow(
		"SELECT COUNT(*) FROM inspector_csv_processing_log WHERE status = ?",
		string(model.ProcessingCompleted)).Scan(&completed))
	assert.Zero(t, completed)
}

func TestEngine_ProcessEmptyUpload(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.Process(context.Background(), Upload{Filename: "empty.csv"})
	assert.ErrorIs(t, err, common.ErrEmptyUpload)
}

func TestEngine_ProcessDryRun(t *testing.T) {
	eng, db := newTestEngine(t)

	up := sampleUpload(t)
	up.DryRun = true
	result, err := eng.Process(context.Background(), up)
	require.NoError(t, err)

	assert.False(t, result.Saved())
	assert.Len(t, result.Items, 8)
	assert.Equal(t, 3, result.Metrics.TotalDefects)
	assert.Zero(t, result.WorkOrdersCreated)
	assert.Zero(t, db.MustCount("inspector_inspections"))
	assert.Zero(t, db.MustCount("inspector_csv_processing_log"))
}

func TestEngine_ProcessWithoutStorage(t *testing.T) {
	eng := NewWithConfig(nil, Config{Now: fixedClock})

	result, err := eng.Process(context.Background(), sampleUpload(t))
	require.NoError(t, err)
	assert.False(t, result.Saved())
	assert.Len(t, result.Items, 8)
	assert.Nil(t, eng.CheckDuplicate(context.Background(), []byte("x"), "x.csv"))

	_, err = eng.Load(context.Background(), "anything")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

// failingStore fails every inspection save.
type failingStore struct {
	service.Storage
}

var errDiskFull = errors.New("disk full")

func (failingStore) SaveInspection(context.Context, []model.InspectionItem, *model.Metrics, string, string) (string, error) {
	return "", errDiskFull
}

func TestEngine_ProcessSaveFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := NewWithConfig(failingStore{db.Storage}, Config{Now: fixedClock})

	result, err := eng.Process(context.Background(), sampleUpload(t))
	require.NoError(t, err)

	assert.False(t, result.Saved())
	assert.ErrorIs(t, result.SaveErr, errDiskFull)
	assert.Len(t, result.Items, 8)
	require.NotNil(t, result.Metrics)
	assert.Equal(t, 3, result.Metrics.TotalDefects)
	assert.Zero(t, result.WorkOrdersCreated)

	assert.Zero(t, db.MustCount("inspector_work_orders"))
	assert.Equal(t, 1, db.MustCount("inspector_csv_processing_log"))
}

func TestEngine_MappingPrecedence(t *testing.T) {
	ctx := context.Background()
	session := trade.FromMappings([]model.TradeMapping{{Room: "Roof", Component: "Gutter", Trade: "Roofing"}})
	configured := trade.FromMappings([]model.TradeMapping{{Room: "Roof", Component: "Gutter", Trade: "Plumbing"}})

	t.Run("default", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		table, source := eng.MasterMapping(ctx)
		assert.Equal(t, MappingFromDefault, source)
		assert.Equal(t, trade.Default().Len(), table.Len())
	})

	t.Run("configured file", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		eng := NewWithConfig(db.Storage, Config{Now: fixedClock, Mapping: configured})
		_, source := eng.MasterMapping(ctx)
		assert.Equal(t, MappingFromFile, source)
	})

	t.Run("database beats configured file", func(t *testing.T) {
		db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
			TradeMappings: []model.TradeMapping{{Room: "Roof", Component: "Gutter", Trade: "Guttering"}},
		})
		eng := NewWithConfig(db.Storage, Config{Now: fixedClock, Mapping: configured})
		table, source := eng.MasterMapping(ctx)
		assert.Equal(t, MappingFromDatabase, source)
		assert.Equal(t, "Guttering", table.Trade("Roof", "Gutter"))
	})

	t.Run("upload beats everything", func(t *testing.T) {
		db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
			TradeMappings: []model.TradeMapping{{Room: "Roof", Component: "Gutter", Trade: "Guttering"}},
		})
		eng := NewWithConfig(db.Storage, Config{Now: fixedClock, Mapping: configured})

		up := sampleUpload(t)
		up.Mapping = session
		result, err := eng.Process(ctx, up)
		require.NoError(t, err)
		assert.Equal(t, MappingFromUpload, result.MappingSource)
		assert.InDelta(t, 25.0, result.MappingSuccessRate, 0.001)

		for _, item := range result.Items {
			if item.Room == "Roof" {
				assert.Equal(t, "Roofing", item.Trade)
			} else {
				assert.Equal(t, model.UnknownTrade, item.Trade)
			}
		}
	})
}

func TestEngine_Load(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := eng.Process(ctx, sampleUpload(t))
	require.NoError(t, err)

	report, err := eng.Load(ctx, result.InspectionID)
	require.NoError(t, err)

	assert.Equal(t, result.InspectionID, report.Inspection.ID)
	assert.Equal(t, "Sam Inspector", report.Inspection.InspectorName)
	assert.Len(t, report.Items, len(result.Items))
	assert.Len(t, report.WorkOrders, 3)

	assert.Equal(t, result.Metrics.BuildingName, report.Metrics.BuildingName)
	assert.Equal(t, result.Metrics.TotalDefects, report.Metrics.TotalDefects)
	assert.Equal(t, result.Metrics.TotalUnits, report.Metrics.TotalUnits)
	assert.Equal(t, result.Metrics.ReadyUnits, report.Metrics.ReadyUnits)
	assert.Equal(t, result.Metrics.SummaryTrade, report.Metrics.SummaryTrade)
	assert.Equal(t, result.Metrics.TotalInspections, report.Metrics.TotalInspections)

	_, err = eng.Load(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEngine_GenerateWorkOrders(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	assert.Zero(t, eng.GenerateWorkOrders(ctx, "", []model.InspectionItem{{StatusClass: model.StatusNotOK}}))
	assert.Zero(t, eng.GenerateWorkOrders(ctx, "insp", nil))

	// Orders for an inspection that does not exist violate the foreign key.
	assert.Zero(t, eng.GenerateWorkOrders(ctx, "missing", []model.InspectionItem{
		{Unit: "101", Trade: "Painting", StatusClass: model.StatusNotOK, Urgency: model.UrgencyNormal},
	}))
	assert.Zero(t, db.MustCount("inspector_work_orders"))
}

func TestEngine_ImportMapping(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	csv := "Room,Component,Trade\nRoof,Gutter,Roofing\nGarage,Door,Garage Doors\n"
	table, err := eng.ImportMapping(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 2, db.MustCount("inspector_trade_mappings"))

	_, source := eng.MasterMapping(ctx)
	assert.Equal(t, MappingFromDatabase, source)

	_, err = eng.ImportMapping(ctx, strings.NewReader("Room,Trade\nRoof,Roofing\n"))
	assert.ErrorIs(t, err, common.ErrInvalidMapping)
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Checksum(nil))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", Checksum([]byte("hello")))
}

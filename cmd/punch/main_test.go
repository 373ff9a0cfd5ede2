package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/testutil"
)

func runPunch(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCommands_EndToEnd(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	db := filepath.Join(dir, "punch.db")
	export := filepath.Join(dir, "harbour.csv")
	require.NoError(t, os.WriteFile(export, testutil.NewExportBuilder(t).
		WithItems("Bathroom_Tiles", "Bathroom_Toilet", "Garage_Door", "Roof_Gutter").
		WithUnit("101", "01/05/2024", "✓", "✗", "✓", "fail").
		WithUnit("102", "01/05/2024", "✓", "✓", "✗", "").
		Bytes(), 0600))

	out, err := runPunch(t, "process", export, "--database", db, "--building", "Harbour View", "--no-progress")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Harbour View")
	assert.Contains(t, out, "with 3 work orders")

	out, err = runPunch(t, "process", export, "--database", db, "--no-progress")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Skipped")

	out, err = runPunch(t, "check", export, "--database", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Identical file already processed")

	out, err = runPunch(t, "inspections", "list", "--database", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Harbour View")

	out, err = runPunch(t, "workorders", "list", "--database", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, "pending")

	_, err = runPunch(t, "workorders", "update", "missing", "done", "--database", db)
	assert.ErrorIs(t, err, common.ErrInvalidStatus)

	out, err = runPunch(t, "overview", "--database", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Harbour View")

	out, err = runPunch(t, "mapping", "show", "--database", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, "from default")

	out, err = runPunch(t, "migrate", "--status", "--database", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Current version: 4")
}

func TestParseStatus(t *testing.T) {
	status, err := parseStatus(" In_Progress ")
	require.NoError(t, err)
	assert.Equal(t, model.WorkOrderInProgress, status)

	_, err = parseStatus("done")
	assert.ErrorIs(t, err, common.ErrInvalidStatus)
	assert.Contains(t, statusList(), "waiting_approval")
}

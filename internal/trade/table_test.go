package trade

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	table := Default()

	assert.Equal(t, 76, table.Len())
	assert.Equal(t, "Carpentry & Joinery", table.Trade("Kitchen", "Cabinets"))
	assert.Equal(t, "Fire Safety", table.Trade("Hallway", "Smoke Detector"))
	assert.Equal(t, "Flooring - Tiles", table.Trade("Bathroom", "Tiles"))
	assert.Equal(t, model.UnknownTrade, table.Trade("Attic", "Ladder"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		want    []model.TradeMapping
	}{
		{
			name:  "standard header",
			input: "Room,Component,Trade\nKitchen,Sink,Plumbing\nBedroom,Walls,Painting\n",
			want: []model.TradeMapping{
				{Room: "Kitchen", Component: "Sink", Trade: "Plumbing"},
				{Room: "Bedroom", Component: "Walls", Trade: "Painting"},
			},
		},
		{
			name:  "reordered columns with BOM and extras",
			input: "\ufeffTrade, notes ,component,ROOM\nPlumbing,x,Sink,Kitchen\n",
			want: []model.TradeMapping{
				{Room: "Kitchen", Component: "Sink", Trade: "Plumbing"},
			},
		},
		{
			name:  "later duplicate wins",
			input: "Room,Component,Trade\nKitchen,Sink,Plumbing\nKitchen,Sink,Carpentry\n",
			want: []model.TradeMapping{
				{Room: "Kitchen", Component: "Sink", Trade: "Carpentry"},
			},
		},
		{
			name:  "blank rows skipped",
			input: "Room,Component,Trade\n,,\nKitchen,Sink,Plumbing\n",
			want: []model.TradeMapping{
				{Room: "Kitchen", Component: "Sink", Trade: "Plumbing"},
			},
		},
		{
			name:    "missing trade column",
			input:   "Room,Component\nKitchen,Sink\n",
			wantErr: common.ErrInvalidMapping,
		},
		{
			name:    "partial row",
			input:   "Room,Component,Trade\nKitchen,,Plumbing\n",
			wantErr: common.ErrInvalidMapping,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: common.ErrInvalidMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Mappings())
		})
	}
}

func TestTable_Lookup(t *testing.T) {
	table := FromMappings([]model.TradeMapping{
		{Room: " Kitchen ", Component: "Sink", Trade: "Plumbing"},
	})

	trade, ok := table.Lookup("Kitchen", " Sink")
	assert.True(t, ok)
	assert.Equal(t, "Plumbing", trade)

	_, ok = table.Lookup("kitchen", "sink")
	assert.False(t, ok, "lookups are case sensitive")

	var nilTable *Table
	assert.Equal(t, model.UnknownTrade, nilTable.Trade("Kitchen", "Sink"))
	assert.Zero(t, nilTable.Len())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.csv")
	require.NoError(t, os.WriteFile(path, []byte("Room,Component,Trade\nLaundry,Tub,Plumbing\n"), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Plumbing", table.Trade("Laundry", "Tub"))

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestTable_WriteCSV(t *testing.T) {
	table := Default()

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	reparsed, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Mappings(), reparsed.Mappings())
}

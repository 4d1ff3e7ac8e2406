package spreadsheet_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/opengov-tools/budget_import_app/internal/platform/spreadsheet"
)

// writeTestSheet builds an xlsx file with a header row and n data rows.
func writeTestSheet(t *testing.T, n int) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"jurisdiction_code", "program_code", "quantity"}))
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &[]any{"J01", fmt.Sprintf("P%d", i), i}))
	}

	path := filepath.Join(t.TempDir(), "budget.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := spreadsheet.Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func TestReadChunks_ChunkingAndHeaderMapping(t *testing.T) {
	src, err := spreadsheet.Open(writeTestSheet(t, 5))
	require.NoError(t, err)
	defer src.Close()

	var chunkSizes []int
	var rows []map[string]string
	total, err := src.ReadChunks(context.Background(), 2, func(chunk []map[string]string) error {
		chunkSizes = append(chunkSizes, len(chunk))
		rows = append(rows, chunk...)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, []int{2, 2, 1}, chunkSizes)

	require.Len(t, rows, 5)
	assert.Equal(t, "J01", rows[0]["jurisdiction_code"])
	assert.Equal(t, "P0", rows[0]["program_code"])
	assert.Equal(t, "P4", rows[4]["program_code"])
}

func TestReadChunks_ShortRowsPadWithEmptyCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"jurisdiction_code", "program_code", "quantity"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"J01"}))

	path := filepath.Join(t.TempDir(), "short.xlsx")
	require.NoError(t, f.SaveAs(path))

	src, err := spreadsheet.Open(path)
	require.NoError(t, err)
	defer src.Close()

	total, err := src.ReadChunks(context.Background(), 10, func(chunk []map[string]string) error {
		require.Len(t, chunk, 1)
		assert.Equal(t, "J01", chunk[0]["jurisdiction_code"])
		assert.Equal(t, "", chunk[0]["program_code"])
		assert.Equal(t, "", chunk[0]["quantity"])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestReadChunks_HeaderOnlyFile(t *testing.T) {
	src, err := spreadsheet.Open(writeTestSheet(t, 0))
	require.NoError(t, err)
	defer src.Close()

	calls := 0
	total, err := src.ReadChunks(context.Background(), 10, func([]map[string]string) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Zero(t, calls)
}

func TestReadChunks_CallbackErrorAbortsStream(t *testing.T) {
	src, err := spreadsheet.Open(writeTestSheet(t, 5))
	require.NoError(t, err)
	defer src.Close()

	calls := 0
	_, err = src.ReadChunks(context.Background(), 2, func([]map[string]string) error {
		calls++
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestReadChunks_CancelledContextStopsStream(t *testing.T) {
	src, err := spreadsheet.Open(writeTestSheet(t, 6))
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err = src.ReadChunks(ctx, 2, func([]map[string]string) error {
		calls++
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

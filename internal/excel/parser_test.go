package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbookBytes builds an in-memory .xlsx with the given cell values, one
// row per entry.
func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseNormalizesRows(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"Month", "Revenue"},
		{"Jan", 120},
		{nil, nil},
		{"Feb", 98.5},
	})

	table, err := Parse(data, "revenue.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"Month", "Revenue"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, int64(120), table.Rows[0]["Revenue"])
	assert.Equal(t, "Jan", table.Rows[0]["Month"])
	assert.Equal(t, 98.5, table.Rows[1]["Revenue"])

	assert.Equal(t, 2, table.Metadata.TotalRows)
	assert.Equal(t, 2, table.Metadata.TotalColumns)
	assert.Equal(t, "revenue.xlsx", table.Metadata.FileName)
	assert.Len(t, table.Rows, table.Metadata.TotalRows)
}

func TestParseShortRowsPadWithNull(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"A", "B", "C"},
		{"only-a"},
	})

	table, err := Parse(data, "short.xlsx")
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "only-a", table.Rows[0]["A"])
	assert.Nil(t, table.Rows[0]["B"])
	assert.Nil(t, table.Rows[0]["C"])
}

func TestParseHeaderOnlyFails(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"Month", "Revenue"},
	})

	_, err := Parse(data, "headers.xlsx")
	assert.Error(t, err)
}

func TestParseAllRowsEmptyFails(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"Month", "Revenue"},
		{nil, nil},
	})

	_, err := Parse(data, "empty-rows.xlsx")
	assert.Error(t, err)
}

func TestParseGarbageFails(t *testing.T) {
	_, err := Parse([]byte("not a workbook"), "garbage.xlsx")
	assert.Error(t, err)
}

// Blank headers disappear from the header list but row values stay keyed by
// the original blank header. Filtering is cosmetic and does not re-key rows.
func TestParseBlankHeaderFilteredButNotRekeyed(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"Name", nil, "Score"},
		{"alice", "stray", 10},
	})

	table, err := Parse(data, "blank-header.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Score"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "stray", table.Rows[0][""])
	assert.Equal(t, int64(10), table.Rows[0]["Score"])

	// Metadata still counts the original header positions.
	assert.Equal(t, 3, table.Metadata.TotalColumns)
}

func TestParseReadsFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Key"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "first"))
	_, err := f.NewSheet("Sheet2")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet2", "A1", "Other"))
	require.NoError(t, f.SetCellValue("Sheet2", "A2", "second"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, parseErr := Parse(buf.Bytes(), "multi.xlsx")
	require.NoError(t, parseErr)

	assert.Equal(t, []string{"Key"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "first", table.Rows[0]["Key"])
}

func TestParseBooleanCells(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"Flag"},
		{true},
	})

	table, err := Parse(data, "flags.xlsx")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, true, table.Rows[0]["Flag"])
}

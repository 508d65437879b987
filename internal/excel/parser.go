// Package excel turns uploaded workbook bytes into a normalized tabular
// representation and derives chart-ready point series from it.
package excel

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
)

// Row maps a header name to the cell value beneath it. Values are string,
// int64, float64, bool, or nil for missing cells.
type Row map[string]any

// Metadata summarizes a parsed table. TotalColumns counts the original
// header row before empty headers are filtered out.
type Metadata struct {
	TotalRows    int    `json:"totalRows"`
	TotalColumns int    `json:"totalColumns"`
	FileName     string `json:"fileName"`
}

// Table is the normalized form of the first worksheet of an uploaded
// workbook. Immutable once produced.
type Table struct {
	Headers  []string `json:"headers"`
	Rows     []Row    `json:"rows"`
	Metadata Metadata `json:"metadata"`
}

// Parse loads the first sheet of a workbook and normalizes it: the first row
// becomes the header list, fully-empty data rows are dropped, and each
// surviving row is keyed positionally by header name. Only the first sheet is
// read; subsequent sheets are ignored.
//
// Empty or whitespace-only headers are filtered from the returned header
// list, but row mappings keep the original header strings as keys. Data
// under a blank header therefore stays reachable under its blank key. This
// mirrors the observed upstream behavior and must not be "fixed" without a
// data migration.
func Parse(data []byte, fileName string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apierr.Parse("failed to process Excel file: unreadable workbook").WithCause(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierr.Parse("failed to process Excel file: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apierr.Parse("failed to process Excel file: unreadable sheet").WithCause(err)
	}
	if len(rows) == 0 {
		return nil, apierr.Parse("Excel file is empty")
	}

	headers := rows[0]
	cleaned := make([]Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		if emptyRow(raw) {
			continue
		}
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(raw) && raw[i] != "" {
				row[header] = parseCell(raw[i])
			} else {
				row[header] = nil
			}
		}
		cleaned = append(cleaned, row)
	}

	if len(cleaned) == 0 {
		return nil, apierr.Parse("Excel file has no data rows")
	}

	return &Table{
		Headers: filterHeaders(headers),
		Rows:    cleaned,
		Metadata: Metadata{
			TotalRows:    len(cleaned),
			TotalColumns: len(headers),
			FileName:     fileName,
		},
	}, nil
}

func emptyRow(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}

func filterHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			out = append(out, h)
		}
	}
	return out
}

// parseCell interprets a cell's string rendering as int64, float64, or bool
// where possible, keeping the original string otherwise.
func parseCell(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return s
}

// =============================================================================
// Bank Column Mapper - XLSX Parser
// =============================================================================
//
// This module reads bank exports saved as Excel workbooks. A worksheet is
// treated like a CSV file:
//
//   | Posted     | Details      | Value   |   <- first non-empty row = headers
//   |------------|--------------|---------|
//   | 01/15/2024 | Coffee       | -3.50   |   <- every later row = one source row
//   | 01/20/2024 | Salary       | 2500.00 |
//
// Cell values are read as their displayed text, so dates and amounts keep
// the formatting the bank applied. The resulting rows go through the same
// mapping resolver as CSV input.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// =============================================================================
// SHEET DATA STRUCTURE
// =============================================================================

// SheetData represents one parsed worksheet.
type SheetData struct {
	// SourceFile is the path to the workbook.
	SourceFile string

	// Sheet is the name of the worksheet that was read.
	Sheet string

	// Headers contains the column headers in sheet order.
	Headers []string

	// Rows contains the data rows keyed by header.
	Rows []types.SourceRow
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a worksheet from an XLSX workbook.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - sheet: The worksheet name. Empty selects the first sheet.
//
// RETURNS:
//   - A pointer to the SheetData struct.
//   - An error if the file cannot be opened, the sheet does not exist,
//     or the sheet has no header row.
func Parse(filePath, sheet string) (*SheetData, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseSheet(f, filePath, sheet)
}

// parseSheet parses a single sheet from an open XLSX file.
func parseSheet(f *excelize.File, filePath, sheet string) (*SheetData, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet '%s' not found (available: %s)", sheet, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	// The header row is the first row with any content.
	start := 0
	for start < len(rows) && isRowEmpty(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("sheet '%s' is empty", sheet)
	}

	headers := rows[start]
	data := &SheetData{
		SourceFile: filePath,
		Sheet:      sheet,
		Headers:    headers,
		Rows:       make([]types.SourceRow, 0, len(rows)-start-1),
	}

	for _, record := range rows[start+1:] {
		if isRowEmpty(record) {
			continue
		}

		row := make(types.SourceRow, len(headers))
		for i, header := range headers {
			if i >= len(record) {
				break
			}
			row[header] = record[i]
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// Bank Column Mapper - CSV Parser Module
// =============================================================================
//
// This module reads bank CSV exports into header-keyed source rows. It handles:
//   - Byte-order marks (UTF-8 and UTF-16), stripped transparently
//   - Legacy single-byte encodings (Windows-1252, ISO-8859-1)
//   - Configurable delimiters (comma, semicolon, tab, pipe, ...)
//   - Quoted fields and ragged rows
//
// HEADER HANDLING:
//   The first record is the header row. Header names are kept exactly as
//   written (no trimming, no renaming) because profiles are matched on the
//   exact header sequence.
//
// ROW HANDLING:
//   - Rows shorter than the header omit the trailing keys
//   - Cells beyond the last header are ignored
//   - Rows whose cells are all blank are kept; only empty lines are skipped
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/bank-column-mapper/internal/config"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("CSV file is empty")

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents the parsed CSV file.
type CSVData struct {
	// Headers contains the column headers in file order.
	Headers []string

	// Rows contains the data rows keyed by header.
	Rows []types.SourceRow

	// SourceFile is the path to the source CSV file.
	SourceFile string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV dialect settings.
//
// RETURNS:
//   - A pointer to the CSVData struct containing the parsed data.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader parses CSV content from r.
func ParseReader(r io.Reader, settings config.CSVSettings) (*CSVData, error) {
	comma, err := settings.Comma()
	if err != nil {
		return nil, err
	}

	decoded := transform.NewReader(bufio.NewReader(r), decoderFor(settings.Encoding))

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, comma)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, ErrEmptyFile
	}

	headers := allRows[0]
	return &CSVData{
		Headers: headers,
		Rows:    extractDataRows(allRows[1:], headers),
	}, nil
}

// decoderFor returns a decoder that honours a byte-order mark when present
// and otherwise decodes with the configured encoding.
func decoderFor(name string) transform.Transformer {
	var fallback encoding.Encoding = unicode.UTF8
	switch config.NormalizeEncoding(name) {
	case "windows-1252":
		fallback = charmap.Windows1252
	case "iso-8859-1":
		fallback = charmap.ISO8859_1
	}
	return unicode.BOMOverride(fallback.NewDecoder())
}

// configureReader configures the CSV reader.
func configureReader(reader *csv.Reader, comma rune) {
	reader.Comma = comma

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Bank exports are not always strict about quoting.
	reader.LazyQuotes = true
}

// extractDataRows converts records to header-keyed rows.
func extractDataRows(records [][]string, headers []string) []types.SourceRow {
	rows := make([]types.SourceRow, 0, len(records))

	for _, record := range records {
		row := make(types.SourceRow, len(headers))
		for i, header := range headers {
			if i >= len(record) {
				break
			}
			row[header] = record[i]
		}
		rows = append(rows, row)
	}

	return rows
}

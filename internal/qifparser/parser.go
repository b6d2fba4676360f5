// =============================================================================
// Bank Column Mapper - QIF Parser Module
// =============================================================================
//
// This module reads Quicken Interchange Format exports. QIF is line based:
// every line starts with a one-letter tag and each transaction ends with a
// line beginning with "^".
//
// TAG MAPPING:
//   D -> date
//   T -> amount
//   P -> description (payee)
//
// Every other tag ("!Type:Bank", M, N, L, ...) and blank lines are ignored.
// When a tag appears more than once in a record, the last value wins.
//
// QIF rows are keyed by canonical field name, so they never go through the
// mapping resolver.
//
// =============================================================================

package qifparser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/bank-column-mapper/internal/dates"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

const (
	// RecordTerminator ends a transaction record.
	RecordTerminator = "^"

	// maxLineSize bounds a single QIF line.
	maxLineSize = 1024 * 1024
)

// tagFields maps QIF tag codes to canonical fields.
var tagFields = map[byte]types.Field{
	'D': types.FieldDate,
	'T': types.FieldAmount,
	'P': types.FieldDescription,
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a QIF file and returns one row per transaction record.
//
// PARAMETERS:
//   - filePath: The path to the QIF file.
//
// RETURNS:
//   - Rows keyed by date, description and amount. Dates are ISO-8601
//     when they match a known QIF date format, otherwise raw.
//   - An error if the file cannot be read.
func Parse(filePath string) ([]types.SourceRow, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader parses QIF content from r. A leading byte-order mark is
// dropped.
func ParseReader(r io.Reader) ([]types.SourceRow, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		rows    []types.SourceRow
		current = newRecord()
	)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(strings.TrimSpace(line), RecordTerminator) {
			if current.lines > 0 {
				rows = append(rows, current.row())
			}
			current = newRecord()
			continue
		}

		current.add(line)
	}

	// A final record without a terminator still counts.
	if current.lines > 0 {
		rows = append(rows, current.row())
	}

	if err := scanner.Err(); err != nil {
		return rows, fmt.Errorf("failed to read QIF: %w", err)
	}

	return rows, nil
}

// =============================================================================
// RECORD ACCUMULATION
// =============================================================================

// record collects tag values for one transaction.
type record struct {
	values map[types.Field]string
	lines  int
}

func newRecord() *record {
	return &record{values: make(map[types.Field]string, len(tagFields))}
}

// add consumes one line of the current record.
func (r *record) add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	r.lines++

	field, ok := tagFields[line[0]]
	if !ok {
		return
	}
	r.values[field] = strings.TrimSpace(line[1:])
}

// row builds the source row, filling missing fields with "".
func (r *record) row() types.SourceRow {
	return types.SourceRow{
		string(types.FieldDate):        dates.ParseQIF(r.values[types.FieldDate]),
		string(types.FieldDescription): r.values[types.FieldDescription],
		string(types.FieldAmount):      r.values[types.FieldAmount],
	}
}

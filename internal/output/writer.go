// Package output writes normalized rows as CSV, JSON lines or XML.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/bank-column-mapper/internal/config"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
	"github.com/ginjaninja78/bank-column-mapper/internal/xmlwriter"
	"github.com/ginjaninja78/bank-column-mapper/pkg/utils"
)

// FormatFromPath picks an output format from a file extension. Unknown
// extensions fall back to CSV.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".json", ".ndjson":
		return config.FormatJSONL
	case ".xml":
		return config.FormatXML
	default:
		return config.FormatCSV
	}
}

// Extension returns the file extension used for a format, without the dot.
func Extension(format string) string {
	switch config.NormalizeOutputFormat(format) {
	case config.FormatJSONL:
		return "jsonl"
	case config.FormatXML:
		return "xml"
	default:
		return "csv"
	}
}

// Write renders rows to w in the given format.
func Write(w io.Writer, rows []types.CanonicalRow, format string) error {
	switch config.NormalizeOutputFormat(format) {
	case config.FormatCSV:
		return writeCSV(w, rows)
	case config.FormatJSONL:
		return writeJSONL(w, rows)
	case config.FormatXML:
		doc, err := xmlwriter.Generate(rows)
		if err != nil {
			return err
		}
		_, err = w.Write(doc)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile renders rows and replaces path atomically, so a failed run never
// leaves a half-written file behind.
func WriteFile(path string, rows []types.CanonicalRow, format string) error {
	var buf bytes.Buffer
	if err := Write(&buf, rows, format); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeCSV writes a header line followed by one record per row.
func writeCSV(w io.Writer, rows []types.CanonicalRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.HeaderRecord()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeJSONL writes one JSON object per line, keys in canonical order.
func writeJSONL(w io.Writer, rows []types.CanonicalRow) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to write JSON row: %w", err)
		}
	}
	return nil
}

// =============================================================================
// Bank Column Mapper - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - profile     (persisted mappings)
//   - resolver    (mapping elicitation)
//   - normalizer  (row transformation)
//   - csvparser / qifparser / xlsxparser (source rows)
//   - output      (canonical rows)
//
// =============================================================================

package types

import "fmt"

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Field names one of the three canonical output fields.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
)

// RequiredFields lists the canonical fields in output order.
// Mapping elicitation asks for them in this order too.
var RequiredFields = []Field{FieldDate, FieldDescription, FieldAmount}

// =============================================================================
// MAPPING
// =============================================================================

// Mapping maps each canonical field to the source header that feeds it.
// Being a struct, it always carries exactly the three required keys.
type Mapping struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// Column returns the source header mapped to the given canonical field.
func (m Mapping) Column(field Field) string {
	switch field {
	case FieldDate:
		return m.Date
	case FieldDescription:
		return m.Description
	case FieldAmount:
		return m.Amount
	default:
		return ""
	}
}

// Set assigns the source header for a canonical field.
func (m *Mapping) Set(field Field, header string) error {
	switch field {
	case FieldDate:
		m.Date = header
	case FieldDescription:
		m.Description = header
	case FieldAmount:
		m.Amount = header
	default:
		return fmt.Errorf("unknown canonical field %q", field)
	}
	return nil
}

// IdentityMapping maps every canonical field to a source key of the same name.
// QIF rows are keyed this way, so they never need a learned mapping.
func IdentityMapping() Mapping {
	return Mapping{
		Date:        string(FieldDate),
		Description: string(FieldDescription),
		Amount:      string(FieldAmount),
	}
}

// =============================================================================
// ROWS
// =============================================================================

// SourceRow is a single input record keyed by header (CSV, XLSX) or by
// canonical field name (QIF). Values are raw, untouched strings.
type SourceRow map[string]string

// CanonicalRow is a normalized transaction in the fixed output order.
type CanonicalRow struct {
	// Date is ISO-8601 (YYYY-MM-DD) when normalization succeeded,
	// otherwise the original raw value.
	Date string `json:"date" xml:"date"`

	// Description may be empty.
	Description string `json:"description" xml:"description"`

	// Amount is passed through verbatim, never parsed.
	Amount string `json:"amount" xml:"amount"`
}

// Record returns the row as a slice in canonical field order.
func (r CanonicalRow) Record() []string {
	return []string{r.Date, r.Description, r.Amount}
}

// HeaderRecord returns the canonical field names in output order.
func HeaderRecord() []string {
	header := make([]string, len(RequiredFields))
	for i, f := range RequiredFields {
		header[i] = string(f)
	}
	return header
}

// =============================================================================
// Bank Column Mapper - Profile Validation Module
// =============================================================================
//
// This module checks the invariants every stored profile must satisfy before
// it is written, and reports problems in existing profile files.
//
// RULES:
//   - "headers"     : at least one header
//   - "mapped"      : each of date, description, amount maps to a header
//   - "in_headers"  : each mapped header is present in the stored header list
//   - "date_format" : a present date format uses only supported directives
//   - "distinct"    : two canonical fields sharing one header (warning only)
//
// Missing profiles are never an error here; that is the store's concern.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/bank-column-mapper/internal/dates"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a single validation problem.
type ValidationError struct {
	// Severity is "error" (profile unusable) or "warning".
	Severity string

	// Source is the profile file or key the problem was found in.
	Source string

	// Field is the canonical field concerned, if any.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(e.Severity))
	if e.Source != "" {
		fmt.Fprintf(&b, " %s:", e.Source)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field '%s':", e.Field)
	}
	fmt.Fprintf(&b, " %s", e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateProfile checks a header list, mapping and optional date format.
//
// PARAMETERS:
//   - source: Label used in error messages (file name or key).
//   - headers: The stored header sequence.
//   - mapping: The canonical field mapping.
//   - dateFormat: The strptime-style date format, "" when absent.
//
// RETURNS:
//   - A slice of ValidationError pointers, empty when the profile is valid.
func ValidateProfile(source string, headers []string, mapping types.Mapping, dateFormat string) []*ValidationError {
	var errs []*ValidationError

	if len(headers) == 0 {
		errs = append(errs, &ValidationError{
			Severity: SeverityError,
			Source:   source,
			Rule:     "headers",
			Message:  "profile has no headers",
		})
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	usedBy := make(map[string]types.Field)
	for _, field := range types.RequiredFields {
		column := mapping.Column(field)

		if column == "" && !known[""] {
			errs = append(errs, &ValidationError{
				Severity: SeverityError,
				Source:   source,
				Field:    string(field),
				Rule:     "mapped",
				Message:  "field is not mapped to a header",
			})
			continue
		}

		if !known[column] {
			errs = append(errs, &ValidationError{
				Severity: SeverityError,
				Source:   source,
				Field:    string(field),
				Value:    column,
				Rule:     "in_headers",
				Message:  "mapped header is not in the profile's header list",
			})
		}

		if other, dup := usedBy[column]; dup {
			errs = append(errs, &ValidationError{
				Severity: SeverityWarning,
				Source:   source,
				Field:    string(field),
				Value:    column,
				Rule:     "distinct",
				Message:  fmt.Sprintf("header is also mapped to '%s'", other),
			})
		} else {
			usedBy[column] = field
		}
	}

	if dateFormat != "" {
		if _, ok := dates.Layout(dateFormat); !ok {
			errs = append(errs, &ValidationError{
				Severity: SeverityError,
				Source:   source,
				Field:    string(types.FieldDate),
				Value:    dateFormat,
				Rule:     "date_format",
				Message:  "unsupported date format (use %Y %m %d %y and punctuation)",
			})
		}
	}

	return errs
}

// HasErrors reports whether any problem has error severity.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

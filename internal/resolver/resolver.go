// =============================================================================
// Bank Column Mapper - Mapping Resolver
// =============================================================================
//
// This module decides how an input file's columns map onto the canonical
// date/description/amount schema.
//
// RESOLUTION STEPS:
//   1. Ask the profile store for a profile (bank name, then header signature).
//      A hit is returned as stored, without checking it against the current
//      headers; fields whose header disappeared simply normalize to "".
//   2. Otherwise list the headers with an example value each and ask for the
//      header (by zero-based index or exact name) of every canonical field.
//      Invalid answers are rejected and asked again, without limit.
//   3. Infer the date format from the first rows' date column.
//   4. Save the new profile so the next run with the same bank name or the
//      same headers is not prompted.
//
// =============================================================================

package resolver

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/bank-column-mapper/internal/dates"
	"github.com/ginjaninja78/bank-column-mapper/internal/profile"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Source tells where a resolved mapping came from.
type Source string

const (
	SourceBankName  Source = "bank_name"
	SourceSignature Source = "header_signature"
	SourceElicited  Source = "elicited"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	// Mapping maps canonical fields to source headers.
	Mapping types.Mapping

	// DateFormat is the strptime-style date format, "" when absent.
	DateFormat string

	// Profile is the stored or newly saved profile.
	Profile *profile.Profile

	// Source tells whether the mapping was found or elicited.
	Source Source
}

// Created reports whether the mapping was elicited during this run.
func (r *Resolution) Created() bool {
	return r.Source == SourceElicited
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver finds or elicits mappings.
type Resolver struct {
	store    *profile.Store
	prompter Prompter
	out      io.Writer
	logger   zerolog.Logger
}

// New creates a Resolver. Header listings and rejection notices go to out.
func New(store *profile.Store, prompter Prompter, out io.Writer, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		prompter: prompter,
		out:      out,
		logger:   logger,
	}
}

// Resolve returns the mapping and date format for a file.
//
// PARAMETERS:
//   - bankName: The bank name, "" when not given.
//   - headers: The file's headers in order.
//   - samples: Leading data rows; the first supplies example values and up to
//     five are used for date format inference.
//
// RETURNS:
//   - The resolution.
//   - An error if a profile cannot be read or saved, or if the prompter runs
//     out of input.
func (r *Resolver) Resolve(bankName string, headers []string, samples []types.SourceRow) (*Resolution, error) {
	// =========================================================================
	// STEP 1: EXISTING PROFILE
	// =========================================================================

	p, err := r.store.Find(bankName, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	if p != nil {
		source := SourceSignature
		if bankName != "" && p.Bank() == bankName {
			source = SourceBankName
		}
		r.logger.Debug().Str("source", string(source)).Str("bank", p.Bank()).Msg("Using stored profile")
		return &Resolution{
			Mapping:    p.Mapping,
			DateFormat: p.Format(),
			Profile:    p,
			Source:     source,
		}, nil
	}

	// =========================================================================
	// STEP 2: ELICIT MAPPING
	// =========================================================================

	r.logger.Info().Int("headers", len(headers)).Msg("No profile matches these headers; asking for a mapping")

	mapping, err := r.elicit(headers, samples)
	if err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 3: INFER DATE FORMAT
	// =========================================================================

	dateFormat, _ := dates.InferFormat(SampleValues(samples, mapping.Date))
	r.logger.Debug().Str("date_format", dateFormat).Msg("Inferred date format")

	// =========================================================================
	// STEP 4: PERSIST
	// =========================================================================

	saved, err := r.store.Save(bankName, headers, mapping, dateFormat)
	if err != nil {
		return nil, err
	}
	r.logger.Info().Str("dir", r.store.Dir()).Str("bank", bankName).Msg("Saved new profile")

	return &Resolution{
		Mapping:    mapping,
		DateFormat: dateFormat,
		Profile:    saved,
		Source:     SourceElicited,
	}, nil
}

// elicit shows the header list and asks for each canonical field in turn.
func (r *Resolver) elicit(headers []string, samples []types.SourceRow) (types.Mapping, error) {
	var mapping types.Mapping

	heading := color.New(color.Bold)
	index := color.New(color.FgCyan)
	invalid := color.New(color.FgRed)

	heading.Fprintln(r.out, "Unrecognized headers. Please map to required fields: date, description, amount")
	fmt.Fprintln(r.out, "Available headers:")

	var first types.SourceRow
	if len(samples) > 0 {
		first = samples[0]
	}
	for i, h := range headers {
		index.Fprintf(r.out, "  [%d]", i)
		fmt.Fprintf(r.out, " %s e.g. '%s'\n", h, first[h])
	}

	for _, field := range types.RequiredFields {
		for {
			answer, err := r.prompter.Prompt(fmt.Sprintf("Map '%s' to header name or index: ", field))
			if err != nil {
				return types.Mapping{}, fmt.Errorf("failed to read mapping for %s: %w", field, err)
			}

			if header, ok := Select(headers, answer); ok {
				if err := mapping.Set(field, header); err != nil {
					return types.Mapping{}, err
				}
				break
			}
			invalid.Fprintln(r.out, "Invalid selection, try again.")
		}
	}

	return mapping, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Select interprets one answer against the header list. Surrounding
// whitespace is ignored. An all-digit answer is only ever an index, even if a
// header happens to have that name; anything else must equal a header exactly.
func Select(headers []string, answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}

	if isDigits(answer) {
		i, err := strconv.Atoi(answer)
		if err != nil || i < 0 || i >= len(headers) {
			return "", false
		}
		return headers[i], true
	}

	for _, h := range headers {
		if h == answer {
			return h, true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// SampleValues collects the values of column from up to the first
// dates.SampleLimit rows. A missing column yields "".
func SampleValues(samples []types.SourceRow, column string) []string {
	if len(samples) > dates.SampleLimit {
		samples = samples[:dates.SampleLimit]
	}
	values := make([]string, len(samples))
	for i, row := range samples {
		values[i] = row[column]
	}
	return values
}

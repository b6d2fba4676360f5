// =============================================================================
// Bank Column Mapper - Converter Module
// =============================================================================
//
// This module orchestrates the normalization pipeline for a single input
// file, from reading the export to producing canonical rows.
//
// CONVERSION PIPELINE:
//   1. Check the input file and pick the format adapter by extension
//   2. Extract headers and source rows (CSV, XLSX) or tagged rows (QIF)
//   3. Resolve the column mapping (stored profile or interactive elicitation)
//   4. Normalize every row onto date/description/amount
//   5. Collect run statistics
//
// Nothing is written here. The caller hands Result.Rows to an output writer
// once every row has been normalized.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/bank-column-mapper/internal/config"
	"github.com/ginjaninja78/bank-column-mapper/internal/csvparser"
	"github.com/ginjaninja78/bank-column-mapper/internal/dates"
	"github.com/ginjaninja78/bank-column-mapper/internal/normalizer"
	"github.com/ginjaninja78/bank-column-mapper/internal/qifparser"
	"github.com/ginjaninja78/bank-column-mapper/internal/resolver"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
	"github.com/ginjaninja78/bank-column-mapper/internal/xlsxparser"
	"github.com/ginjaninja78/bank-column-mapper/pkg/utils"
)

var (
	// ErrInputNotFound is returned when the input path is not a readable file.
	ErrInputNotFound = errors.New("input not found")

	// ErrUnsupportedFormat is returned for extensions without an adapter.
	ErrUnsupportedFormat = errors.New("unsupported file type, use .csv, .qif or .xlsx")
)

// InputFormat identifies the adapter used for a file.
type InputFormat string

const (
	InputCSV  InputFormat = "csv"
	InputQIF  InputFormat = "qif"
	InputXLSX InputFormat = "xlsx"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Format is the input format that was detected.
	Format InputFormat

	// Headers are the source headers. Empty for QIF.
	Headers []string

	// Rows are the normalized rows in source order.
	Rows []types.CanonicalRow

	// Resolution describes the mapping used. Nil for QIF, whose tags map
	// onto the canonical fields directly.
	Resolution *resolver.Resolution

	// Stats contains processing statistics.
	Stats Stats
}

// Options are per-run inputs that do not come from the config file.
type Options struct {
	// BankName selects or names the profile. Empty means match by headers.
	BankName string

	// Sheet overrides the configured XLSX worksheet.
	Sheet string
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the pipeline for one file at a time.
type Converter struct {
	cfg      *config.Config
	resolver *resolver.Resolver
	logger   zerolog.Logger
}

// New creates a new Converter.
//
// PARAMETERS:
//   - cfg: The application configuration (CSV dialect, sheet, workers).
//   - res: The mapping resolver backed by the profile store.
//   - logger: The run logger.
func New(cfg *config.Config, res *resolver.Resolver, logger zerolog.Logger) *Converter {
	return &Converter{
		cfg:      cfg,
		resolver: res,
		logger:   logger,
	}
}

// DetectFormat returns the input format for a path based on its extension.
func DetectFormat(path string) (InputFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return InputCSV, nil
	case ".qif":
		return InputQIF, nil
	case ".xlsx":
		return InputXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file at path.
//
// RETURNS:
//   - The normalized rows and run statistics.
//   - An error if the input is missing, unsupported or unreadable, or if
//     the mapping cannot be resolved. No rows are returned on error.
func (c *Converter) Run(path string, opts Options) (*Result, error) {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: CHECK INPUT
	// =========================================================================

	if !utils.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	log := c.logger.With().Str("input", path).Str("format", string(format)).Logger()
	log.Info().Msg("Processing file")

	result := &Result{
		FilePath: path,
		Format:   format,
	}

	// =========================================================================
	// STEP 2: EXTRACT ROWS
	// =========================================================================

	var rows []types.SourceRow

	switch format {
	case InputCSV:
		data, err := csvparser.Parse(path, c.cfg.CSV)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		result.Headers, rows = data.Headers, data.Rows

	case InputXLSX:
		sheet := opts.Sheet
		if sheet == "" {
			sheet = c.cfg.XLSX.Sheet
		}
		data, err := xlsxparser.Parse(path, sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse XLSX: %w", err)
		}
		result.Headers, rows = data.Headers, data.Rows
		log.Debug().Str("sheet", data.Sheet).Msg("Read worksheet")

	case InputQIF:
		rows, err = qifparser.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse QIF: %w", err)
		}
	}

	log.Debug().Int("rows", len(rows)).Int("headers", len(result.Headers)).Msg("Extracted rows")

	// =========================================================================
	// STEP 3: RESOLVE MAPPING
	// =========================================================================
	// QIF rows already carry canonical keys and ISO dates where possible.

	mapping := types.IdentityMapping()
	dateFormat := ""

	if format != InputQIF {
		resolution, err := c.resolver.Resolve(opts.BankName, result.Headers, samples(rows))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve mapping: %w", err)
		}
		result.Resolution = resolution
		mapping, dateFormat = resolution.Mapping, resolution.DateFormat

		log.Info().
			Str("source", string(resolution.Source)).
			Str("date_format", dateFormat).
			Msg("Resolved column mapping")
	}

	// =========================================================================
	// STEP 4: NORMALIZE
	// =========================================================================

	result.Rows = normalizer.NormalizeAll(rows, mapping, dateFormat, c.cfg.Workers)

	// =========================================================================
	// STEP 5: STATISTICS
	// =========================================================================

	result.Stats = Summarize(result.Rows)
	result.Stats.ProcessingTime = time.Since(startTime)

	log.Info().
		Int("rows", result.Stats.RowsProcessed).
		Int("dates_normalized", result.Stats.DatesNormalized).
		Int("dates_passed_through", result.Stats.DatesPassedThrough).
		Str("amount_total", result.Stats.AmountTotal.String()).
		Int("unparsed_amounts", result.Stats.UnparsedAmounts).
		Dur("elapsed", result.Stats.ProcessingTime).
		Msg("Normalization complete")

	return result, nil
}

// samples returns the leading rows used for examples and date inference.
func samples(rows []types.SourceRow) []types.SourceRow {
	if len(rows) > dates.SampleLimit {
		return rows[:dates.SampleLimit]
	}
	return rows
}

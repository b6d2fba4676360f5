// =============================================================================
// Bank Column Mapper - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the application
// configuration. Everything that used to be a process-wide constant (profile
// directory, CSV dialect, output format) is a field here and is threaded
// explicitly into the components that need it.
//
// CONFIGURATION FILE:
//   config.yaml (optional). When the default file is absent, Default() is used.
//   Command-line flags override values read from the file.
//
// EXAMPLE:
//   profile_dir: ~/.bank-profiles
//   log_level: debug
//   log_format: console
//   output_format: csv
//   workers: 4
//   csv:
//     delimiter: ";"
//     encoding: windows-1252
//   xlsx:
//     sheet: Transactions
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultConfigFile is the config path used when --config is not given.
	DefaultConfigFile = "config.yaml"

	// DefaultProfileDir is where bank profiles live unless configured otherwise.
	DefaultProfileDir = ".bank-profiles"

	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultWorkers          = 4
	defaultDelimiter        = ","
	defaultEncoding         = "utf-8"
	defaultOutputNameFormat = "{stem}_normalized.{ext}"
)

// Output formats understood by the output package. An empty value means
// "choose from the destination".
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
	FormatXML   = "xml"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// ProfileDir is the directory holding bank and header-signature profiles.
	// Default: ".bank-profiles"
	ProfileDir string `yaml:"profile_dir"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects "console" (human readable) or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// OutputFormat forces the output format: "csv", "jsonl" or "xml".
	// Empty means JSON lines on stdout, or inferred from the output file
	// extension when writing to a file.
	OutputFormat string `yaml:"output_format"`

	// OutputNameFormat names files written with --output-dir.
	// Placeholders: {stem}, {ext}, {uuid}, {timestamp}, {date}
	// Default: "{stem}_normalized.{ext}"
	OutputNameFormat string `yaml:"output_name_format"`

	// Workers is the number of goroutines used to normalize rows.
	// Set to 1 for sequential processing.
	// Default: 4
	Workers int `yaml:"workers"`

	// CSV contains settings for reading CSV input.
	CSV CSVSettings `yaml:"csv"`

	// XLSX contains settings for reading spreadsheet input.
	XLSX XLSXSettings `yaml:"xlsx"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), ";" (semicolon), "tab", "pipe"
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the file.
	// Valid values: "utf-8", "windows-1252", "iso-8859-1"
	// A byte-order mark always takes precedence.
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`
}

// XLSXSettings contains settings for reading spreadsheets.
type XLSXSettings struct {
	// Sheet is the worksheet to read. Empty means the first sheet.
	Sheet string `yaml:"sheet"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//   - required: When false, a missing file yields Default() instead of an error.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, required bool) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.ProfileDir == "" {
		cfg.ProfileDir = DefaultProfileDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}
	cfg.OutputFormat = NormalizeOutputFormat(cfg.OutputFormat)
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = defaultOutputNameFormat
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = defaultDelimiter
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = defaultEncoding
	}
}

// Validate checks the configuration for values the rest of the program
// cannot work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want console or json)", c.LogFormat)
	}

	if err := ValidateOutputFormat(c.OutputFormat); err != nil {
		return err
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if _, err := c.CSV.Comma(); err != nil {
		return err
	}

	switch NormalizeEncoding(c.CSV.Encoding) {
	case "utf-8", "windows-1252", "iso-8859-1":
	default:
		return fmt.Errorf("unsupported csv encoding %q", c.CSV.Encoding)
	}

	return nil
}

// NormalizeOutputFormat folds an output format name to the lower-case form
// the output package expects.
func NormalizeOutputFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// ValidateOutputFormat accepts "", "csv", "jsonl" and "xml" in any case.
func ValidateOutputFormat(format string) error {
	switch NormalizeOutputFormat(format) {
	case "", FormatCSV, FormatJSONL, FormatXML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want csv, jsonl or xml)", format)
	}
}

// Comma returns the delimiter as a rune, resolving the named aliases.
func (s CSVSettings) Comma() (rune, error) {
	switch strings.ToLower(s.Delimiter) {
	case "\\t", "tab":
		return '\t', nil
	case "pipe":
		return '|', nil
	case "semicolon":
		return ';', nil
	case "comma", "":
		return ',', nil
	}

	r, size := utf8.DecodeRuneInString(s.Delimiter)
	if size != len(s.Delimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid csv delimiter %q", s.Delimiter)
	}
	return r, nil
}

// NormalizeEncoding folds the accepted spellings of an encoding name.
func NormalizeEncoding(name string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "utf-8", "utf8":
		return "utf-8"
	case "windows-1252", "cp1252":
		return "windows-1252"
	case "iso-8859-1", "latin-1", "latin1":
		return "iso-8859-1"
	default:
		return strings.ToLower(name)
	}
}

// =============================================================================
// Bank Column Mapper - Process Command
// =============================================================================
//
// This file defines the 'process' command, which normalizes one export file.
//
// COMMAND USAGE:
//   colmap process <input> [flags]
//
// FLAGS:
//   --bank-name   : Bank/profile name for saving and reuse
//   --profile-dir : Directory holding bank profiles
//   --output      : Write to this file instead of stdout
//   --output-dir  : Write to this directory, named by output_name_format
//   --format      : csv, jsonl or xml
//   --sheet       : Worksheet to read from an XLSX workbook
//
// PROCESSING PIPELINE:
//   1. Load configuration and apply flag overrides
//   2. Build the profile store, resolver and converter
//   3. Run the converter (prompts on stderr when no profile matches)
//   4. Write rows to stdout or the output file
//
// Only normalized rows go to stdout. Prompts, logs and the summary go to
// stderr so the output can be piped.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bank-column-mapper/internal/config"
	"github.com/ginjaninja78/bank-column-mapper/internal/converter"
	"github.com/ginjaninja78/bank-column-mapper/internal/output"
	"github.com/ginjaninja78/bank-column-mapper/internal/profile"
	"github.com/ginjaninja78/bank-column-mapper/internal/resolver"
	"github.com/ginjaninja78/bank-column-mapper/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	bankName     string
	profileDir   string
	outputPath   string
	outputDir    string
	outputFormat string
	sheetName    string
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process <input>",
	Short: "Normalize a CSV, QIF or XLSX export",
	Long: `The process command reads one export file and writes normalized
date/description/amount rows.

CSV and XLSX files are matched to a stored profile by --bank-name first and
by their exact header row second. When nothing matches, you are asked which
column holds each field; the answer is saved for next time. QIF files use
fixed tags and never prompt.

Without --output, rows are printed as JSON lines on stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&bankName, "bank-name", "", "Bank/profile name for saving and reuse")
	processCmd.Flags().StringVar(&profileDir, "profile-dir", "", "Directory to store bank profiles (default from config)")
	processCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to write normalized output")
	processCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory to write normalized output, named by output_name_format")
	processCmd.Flags().StringVar(&outputFormat, "format", "", "Output format: csv, jsonl or xml")
	processCmd.Flags().StringVar(&sheetName, "sheet", "", "Worksheet to read from an XLSX file (default first sheet)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command, input string) error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if profileDir != "" {
		cfg.ProfileDir = profileDir
	}
	if outputFormat != "" {
		if err := config.ValidateOutputFormat(outputFormat); err != nil {
			return err
		}
		cfg.OutputFormat = config.NormalizeOutputFormat(outputFormat)
	}
	if outputPath != "" && outputDir != "" {
		return fmt.Errorf("--output and --output-dir cannot be used together")
	}

	stderr := cmd.ErrOrStderr()
	logger := newLogger(cfg, stderr)

	// =========================================================================
	// STEP 2: WIRE COMPONENTS
	// =========================================================================

	store := profile.NewStore(cfg.ProfileDir)
	prompter := resolver.NewConsolePrompter(cmd.InOrStdin(), stderr)
	res := resolver.New(store, prompter, stderr, logger)
	conv := converter.New(cfg, res, logger)

	// =========================================================================
	// STEP 3: CONVERT
	// =========================================================================

	result, err := conv.Run(input, converter.Options{
		BankName: bankName,
		Sheet:    sheetName,
	})
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	dest := outputPath
	if outputDir != "" {
		format := cfg.OutputFormat
		if format == "" {
			format = config.FormatCSV
		}
		name := utils.GenerateOutputFileName(cfg.OutputNameFormat, map[string]string{
			"stem": utils.Stem(input),
			"ext":  output.Extension(format),
		})
		dest = filepath.Join(outputDir, name)
	}

	if dest == "" {
		format := cfg.OutputFormat
		if format == "" {
			format = config.FormatJSONL
		}
		return output.Write(cmd.OutOrStdout(), result.Rows, format)
	}

	format := cfg.OutputFormat
	if format == "" {
		format = output.FormatFromPath(dest)
	}
	if err := output.WriteFile(dest, result.Rows, format); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(stderr, "Wrote normalized %s to %s\n", format, dest)
	printSummary(cmd, result)
	return nil
}

// printSummary writes the run statistics to stderr.
func printSummary(cmd *cobra.Command, result *converter.Result) {
	out := cmd.ErrOrStderr()
	s := result.Stats

	fmt.Fprintf(out, "Rows:            %d\n", s.RowsProcessed)
	fmt.Fprintf(out, "Dates converted: %d (kept raw: %d)\n", s.DatesNormalized, s.DatesPassedThrough)
	fmt.Fprintf(out, "Amount total:    %s", s.AmountTotal.StringFixed(2))
	if s.UnparsedAmounts > 0 {
		fmt.Fprintf(out, " (%d non-numeric skipped)", s.UnparsedAmounts)
	}
	fmt.Fprintln(out)
	if result.Resolution != nil {
		fmt.Fprintf(out, "Mapping source:  %s\n", result.Resolution.Source)
	}
}

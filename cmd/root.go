// =============================================================================
// Bank Column Mapper - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI.
//
// COBRA CLI STRUCTURE:
//   rootCmd (colmap)
//   ├── processCmd  (colmap process <input>)
//   ├── profilesCmd (colmap profiles list|show|validate)
//   └── versionCmd  (colmap version)
//
// The root command owns the global flags (--config, --verbose) and the
// shared config/logger setup used by the subcommands.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bank-column-mapper/internal/config"
	"github.com/ginjaninja78/bank-column-mapper/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "colmap",
	Short: "Bank Column Mapper - Normalize bank exports to date, description, amount",
	Long: `colmap turns personal-finance exports (CSV, QIF, XLSX) into a single
three-field schema: date, description, amount.

The first time a bank's CSV layout is seen, colmap asks which column holds
each field and saves the answer as a profile. Later files from the same
bank (by --bank-name) or with the same headers are converted without
prompting.

Example Usage:
  colmap process export.csv --bank-name acme          # JSON lines on stdout
  colmap process export.csv --output normalized.csv   # CSV file
  colmap process statement.qif --format xml --output out.xml
  colmap profiles list`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig reads the configuration file. The default file is optional;
// a file named with --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	required := cmd.Flags().Changed("config")
	cfg, err := config.Load(cfgFile, required)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the run logger on w, tagged with a fresh run ID.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	logger := logging.New(cfg, w)
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	return logger.With().Str("run_id", uuid.New().String()).Logger()
}

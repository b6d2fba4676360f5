// =============================================================================
// Bank Column Mapper - Main Entry Point
// =============================================================================
//
// This is the main entry point for the colmap CLI. It normalizes bank
// exports (CSV, QIF, XLSX) into date/description/amount rows and remembers
// each bank's column layout as a reusable profile.
//
// USAGE:
//   colmap process <input>    - Normalize one export file
//   colmap profiles list      - List stored profiles
//   colmap profiles show NAME - Print one profile
//   colmap profiles validate  - Check every stored profile
//   colmap version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Profiles, mapping resolution, adapters, normalization
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bank-column-mapper/cmd"
)

func main() {
	cmd.Execute()
}

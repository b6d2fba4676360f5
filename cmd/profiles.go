// =============================================================================
// Bank Column Mapper - Profiles Command
// =============================================================================
//
// COMMAND USAGE:
//   colmap profiles list              - One line per stored profile file
//   colmap profiles show NAME         - Print a profile as JSON
//   colmap profiles validate          - Check every profile file
//
// NAME is a bank name, a header signature, or a file name as printed by
// 'profiles list'.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bank-column-mapper/internal/profile"
	"github.com/ginjaninja78/bank-column-mapper/internal/validation"
)

// profilesDir overrides the configured profile directory.
var profilesDir string

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect stored bank profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		return listProfiles(cmd, store)
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print one profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}

		p, err := store.Load(args[0])
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var profilesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every stored profile for problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		return validateProfiles(cmd, store)
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd, profilesShowCmd, profilesValidateCmd)

	profilesCmd.PersistentFlags().StringVar(&profilesDir, "profile-dir", "", "Directory holding bank profiles (default from config)")
}

// openStore resolves the profile directory from flags and config.
func openStore(cmd *cobra.Command) (*profile.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if profilesDir != "" {
		cfg.ProfileDir = profilesDir
	}
	return profile.NewStore(cfg.ProfileDir), nil
}

// listProfiles prints a table of profile files.
func listProfiles(cmd *cobra.Command, store *profile.Store) error {
	entries, err := store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No profiles in %s\n", store.Dir())
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tDATE FORMAT\tDATE\tDESCRIPTION\tAMOUNT")

	for _, e := range entries {
		kind := "bank"
		if e.IsSignature {
			kind = "headers"
		}

		p, err := store.ReadEntry(e)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\t(unreadable)\t\t\t\n", e.Name, kind)
			continue
		}

		dateFormat := p.Format()
		if dateFormat == "" {
			dateFormat = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Name, kind, dateFormat, p.Mapping.Date, p.Mapping.Description, p.Mapping.Amount)
	}

	return w.Flush()
}

// validateProfiles checks every profile file and reports all problems.
func validateProfiles(cmd *cobra.Command, store *profile.Store) error {
	entries, err := store.List()
	if err != nil {
		return err
	}

	var problems []*validation.ValidationError
	for _, e := range entries {
		p, err := store.ReadEntry(e)
		if err != nil {
			problems = append(problems, &validation.ValidationError{
				Severity: validation.SeverityError,
				Source:   e.Name,
				Rule:     "readable",
				Message:  err.Error(),
			})
			continue
		}
		problems = append(problems, p.Validate(e.Name)...)
	}

	out := cmd.OutOrStdout()
	if len(problems) == 0 {
		fmt.Fprintf(out, "%d profile(s) OK\n", len(entries))
		return nil
	}

	fmt.Fprint(out, validation.FormatErrors(problems))
	if validation.HasErrors(problems) {
		return fmt.Errorf("%d of %d profile(s) failed validation", countSources(problems), len(entries))
	}
	return nil
}

// countSources counts distinct profiles with error-level problems.
func countSources(problems []*validation.ValidationError) int {
	seen := make(map[string]bool)
	for _, p := range problems {
		if p.Severity == validation.SeverityError {
			seen[p.Source] = true
		}
	}
	return len(seen)
}

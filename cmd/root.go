// =============================================================================
// Validation Document Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (validation-docs)
//   ├── generateCmd (validation-docs generate)
//   ├── validateCmd (validation-docs validate)
//   └── versionCmd  (validation-docs version)
//
// PERSISTENT FLAGS:
//   --config   : The JSON (or YAML) configuration file
//   --logfile  : The run log file
//   --verbose  : Debug level logging
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/validation-docs/internal/config"
	"github.com/ginjaninja78/validation-docs/internal/types"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. Required unless the
// run is lenient, where DefaultConfigFile is tried.
var cfgFile string

// logFile holds the path to the run log. Defaults to a file in the output
// directory.
var logFile string

// verbose enables debug logging when set to true.
var verbose bool

// DefaultConfigFile is the configuration file a lenient run falls back to.
const DefaultConfigFile = "validation_docs_config.json"

// Console colours.
var (
	noticeColor  = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen)
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   config.ProgramName,
	Short: "Validation Document Generator - Mail-merge validation checklists into Word templates",
	Long: `Validation Document Generator prepares the documents of a computer system
validation package by merging tab-delimited checklists into Word templates.

Documents:
  - IQ, OQ and PQ worksheets
  - System Specification
  - Test Plan
  - User Requirements
  - Validation Report

Example Usage:
  validation-docs generate --config ./validation_docs_config.json
  validation-docs generate --lenient --non-interactive --software-name LIMS
  validation-docs validate --config ./validation_docs_config.json`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main(). An operator
// declining to proceed is not an error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, types.ErrUserAbort) {
			return
		}
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
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
		"",
		"Path to the configuration file (required unless --lenient)",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFile,
		"logfile",
		"",
		"Path to the log file (default is validation-docs.log in the output directory)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// resolveConfigPath returns the configuration file to load.
//
// RETURNS:
//   - flagValue when set.
//   - DefaultConfigFile in the working directory for a lenient run.
//   - An error wrapping types.ErrConfigMissing otherwise.
func resolveConfigPath(flagValue string, lenient bool) (string, []string, error) {
	if flagValue != "" {
		return flagValue, nil, nil
	}
	if !lenient {
		return "", nil, fmt.Errorf("%w: --config was not specified", types.ErrConfigMissing)
	}
	notice := fmt.Sprintf("--config was not specified and therefore was set to '%s'", DefaultConfigFile)
	return DefaultConfigFile, []string{notice}, nil
}

// printNotices writes default-applied messages in yellow.
func printNotices(w io.Writer, notices []string) {
	for _, n := range notices {
		noticeColor.Fprintln(w, n)
	}
}

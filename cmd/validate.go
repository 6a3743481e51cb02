// =============================================================================
// Validation Document Generator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration,
// templates and checklists without writing any document.
//
// COMMAND USAGE:
//   validation-docs validate --config ./validation_docs_config.json
//
// Every problem is printed. The command exits non-zero if any of them is an
// error, i.e. 'generate' would fail.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/validation-docs/internal/config"
	"github.com/ginjaninja78/validation-docs/internal/types"
	"github.com/ginjaninja78/validation-docs/internal/validation"
)

// warningsAsErrors fails validation on warnings too.
var warningsAsErrors bool

// errorLog is an optional file receiving the problems found.
var errorLog string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration, templates and checklists",
	Long: `The validate command runs the checks 'generate' performs before reading any
data: every template and checklist entry is configured, every file exists,
every template holds the rows its checklists fill and every checklist has
the columns it needs.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	flags := validateCmd.Flags()
	flags.StringVar(&templateFilesDir, "template-files-dir", "", "Directory holding the Word templates")
	flags.BoolVar(&lenient, "lenient", false, "Report missing checklists as warnings")
	flags.BoolVar(&warningsAsErrors, "warnings-as-errors", false, "Fail on warnings")
	flags.StringVar(&errorLog, "error-log", "", "Also write the problems to this file")
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	configPath, notices, err := resolveConfigPath(cfgFile, lenient)
	printNotices(out, notices)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	templateDir, notices, err := config.ResolveTemplateDir(templateFilesDir, cfg)
	printNotices(out, notices)
	if err != nil {
		return err
	}

	v := validation.NewValidatorWithOptions(cfg, templateDir, validation.ValidationOptions{
		Lenient:               lenient,
		TreatWarningsAsErrors: warningsAsErrors,
	})
	result := v.ValidateAll(types.AllDocTypes)

	for _, e := range result.Errors {
		if e.Severity == validation.SeverityError || warningsAsErrors {
			errorColor.Fprintln(out, e.Error())
		} else {
			noticeColor.Fprintln(out, e.Error())
		}
	}

	if errorLog != "" {
		if err := validation.WriteErrorLog(result.Errors, errorLog); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Checked %d document type(s): %d error(s), %d warning(s)\n",
		result.DocumentsValidated, result.ErrorCount, result.WarningCount)

	if !result.IsValid {
		return fmt.Errorf("validation failed with %d error(s)", result.ErrorCount)
	}
	successColor.Fprintln(out, "Configuration is valid.")
	return nil
}

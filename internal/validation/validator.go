// =============================================================================
// Validation Document Generator - Validation Engine
// =============================================================================
//
// This module checks a configuration before any document is generated.
// It warns about sections that name no known document type, and for every
// document type it verifies:
//   - The template entry is configured and the template opens
//   - The template holds a table row for each key field the document fills
//   - Every data file entry is configured and the file exists
//   - Every data file carries the required header columns
//
// ERROR HANDLING:
//   - Problems are collected, not returned on the first one
//   - Each problem names the document type, setting and file involved
//   - Problems are errors (generation would fail) or warnings (generation
//     would continue with placeholder rows or unfilled fields)
//
// =============================================================================

package validation

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/validation-docs/internal/config"
	"github.com/ginjaninja78/validation-docs/internal/generator"
	"github.com/ginjaninja78/validation-docs/internal/mailmerge"
	"github.com/ginjaninja78/validation-docs/internal/tabparser"
	"github.com/ginjaninja78/validation-docs/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single problem found.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// DocType is the document the problem affects.
	DocType types.DocType

	// Setting is the configuration key involved, if any.
	Setting string

	// Path is the file involved, if any.
	Path string

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("[%s] %s", strings.ToUpper(e.Severity), e.DocType)
	if e.Setting != "" {
		msg += fmt.Sprintf(", '%s'", e.Setting)
	}
	msg += ": " + e.Message
	if e.Path != "" {
		msg += fmt.Sprintf(" (file: '%s')", e.Path)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Errors contains all problems (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// DocumentsValidated is the number of document types checked.
	DocumentsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks a configuration.
type Validator struct {
	config      *config.Config
	templateDir string
	options     ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// Lenient reports missing data file entries and files as warnings, the
	// way a lenient run treats them.
	Lenient bool

	// TreatWarningsAsErrors makes warnings fail validation.
	TreatWarningsAsErrors bool
}

// NewValidator creates a Validator with default options.
func NewValidator(cfg *config.Config, templateDir string) *Validator {
	return NewValidatorWithOptions(cfg, templateDir, ValidationOptions{})
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(cfg *config.Config, templateDir string, options ValidationOptions) *Validator {
	return &Validator{
		config:      cfg,
		templateDir: templateDir,
		options:     options,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateAll checks every document type in docTypes.
//
// PARAMETERS:
//   - docTypes: The documents to check, e.g. types.AllDocTypes.
//
// RETURNS:
//   - A ValidationResult. IsValid is false if any error was found.
func (v *Validator) ValidateAll(docTypes []types.DocType) *ValidationResult {
	result := &ValidationResult{}
	result.Errors = append(result.Errors, v.ValidateSections()...)

	for _, docType := range docTypes {
		result.Errors = append(result.Errors, v.ValidateDocument(docType)...)
		result.DocumentsValidated++
	}

	for _, e := range result.Errors {
		if e.Severity == SeverityError || v.options.TreatWarningsAsErrors {
			result.ErrorCount++
		} else {
			result.WarningCount++
		}
	}
	result.IsValid = result.ErrorCount == 0

	return result
}

// ValidateDocument checks one document type.
func (v *Validator) ValidateDocument(docType types.DocType) []*ValidationError {
	var errs []*ValidationError
	errs = append(errs, v.validateTemplate(docType)...)

	// A file shared by several documents is reported by each of them; the
	// message names the document so the operator knows what would fail.
	for _, in := range generator.Inputs(docType) {
		errs = append(errs, v.validateInput(docType, in)...)
	}

	return errs
}

// ValidateSections warns about configuration sections that name no known
// document type, e.g. a misspelt "Operational Qualification". Their
// settings are never read.
func (v *Validator) ValidateSections() []*ValidationError {
	var errs []*ValidationError
	for _, name := range v.config.DocumentNames() {
		if _, ok := types.ParseDocType(name); ok {
			continue
		}
		errs = append(errs, &ValidationError{
			Severity: SeverityWarning,
			DocType:  types.DocType(name),
			Path:     v.config.Path,
			Message:  "not a known document type; this section is ignored",
		})
	}
	return errs
}

// validateTemplate checks the template entry, file and key fields.
func (v *Validator) validateTemplate(docType types.DocType) []*ValidationError {
	name, err := v.config.Setting(docType, config.KeyTemplateFile)
	if err != nil {
		return []*ValidationError{{
			Severity: SeverityError,
			DocType:  docType,
			Setting:  config.KeyTemplateFile,
			Message:  "template is not configured",
			Err:      err,
		}}
	}

	path := filepath.Join(v.templateDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []*ValidationError{{
			Severity: SeverityError,
			DocType:  docType,
			Setting:  config.KeyTemplateFile,
			Path:     path,
			Message:  "template does not exist",
			Err:      types.FileNotFound("template file", path),
		}}
	}

	doc, err := mailmerge.Open(path)
	if err != nil {
		return []*ValidationError{{
			Severity: SeverityError,
			DocType:  docType,
			Setting:  config.KeyTemplateFile,
			Path:     path,
			Message:  "template cannot be read",
			Err:      err,
		}}
	}

	present := make(map[string]bool)
	for _, field := range doc.FieldNames() {
		present[field] = true
	}

	var errs []*ValidationError
	for _, key := range generator.RowKeys(docType) {
		if !present[key] {
			errs = append(errs, &ValidationError{
				Severity: SeverityWarning,
				DocType:  docType,
				Setting:  config.KeyTemplateFile,
				Path:     path,
				Message:  fmt.Sprintf("template has no merge field '%s'; its rows will not be filled", key),
			})
		}
	}
	return errs
}

// validateInput checks one data file entry.
func (v *Validator) validateInput(docType types.DocType, in generator.Input) []*ValidationError {
	missing := SeverityError
	if in.Optional || v.options.Lenient {
		missing = SeverityWarning
	}

	path, err := v.config.InputPath(in.Section, in.Key)
	if err != nil {
		msg := "data file is not configured"
		if missing == SeverityWarning {
			msg += "; placeholder rows will be used"
		}
		return []*ValidationError{{
			Severity: missing,
			DocType:  docType,
			Setting:  in.Key,
			Message:  msg,
			Err:      err,
		}}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		severity := SeverityError
		if v.options.Lenient {
			severity = SeverityWarning
		}
		return []*ValidationError{{
			Severity: severity,
			DocType:  docType,
			Setting:  in.Key,
			Path:     path,
			Message:  "data file does not exist",
			Err:      types.FileNotFound("file", path),
		}}
	}

	table, err := tabparser.Parse(path)
	if err != nil {
		return []*ValidationError{{
			Severity: SeverityError,
			DocType:  docType,
			Setting:  in.Key,
			Path:     path,
			Message:  "data file cannot be read",
			Err:      err,
		}}
	}

	if err := table.Require(in.Columns...); err != nil {
		var mce *types.MissingColumnError
		msg := err.Error()
		if errors.As(err, &mce) {
			msg = fmt.Sprintf("required column '%s' is missing", mce.Column)
		}
		return []*ValidationError{{
			Severity: SeverityError,
			DocType:  docType,
			Setting:  in.Key,
			Path:     path,
			Message:  msg,
			Err:      err,
		}}
	}

	return nil
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

// WriteErrorLog writes validation errors to a log file.
//
// PARAMETERS:
//   - errors: The validation errors to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Validation Document Generator - Validation Log\nGenerated: %s\n\n",
		time.Now().Format("2006-01-02 15:04:05"))
	writer.WriteString(FormatErrors(errors))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush error log: %w", err)
	}
	return nil
}

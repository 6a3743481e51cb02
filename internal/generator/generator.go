// =============================================================================
// Validation Document Generator - Generator Module
// =============================================================================
//
// This module contains the core generation logic. It runs the pipeline for a
// single document type, from configuration lookup to the written .docx.
//
// GENERATION PIPELINE:
//   1. Check the configuration entries the document needs
//   2. Locate the Word template
//   3. Choose the execution status (IQ, OQ, PQ ask the operator)
//   4. Load the record lists from the input files
//   5. Merge the header fields and the record lists into the template
//   6. Write the output file
//
// Documents are generated one at a time, in order, by a Session. The
// Session carries the state later documents reuse from earlier ones.
//
// =============================================================================

package generator

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/validation-docs/internal/config"
	"github.com/ginjaninja78/validation-docs/internal/mailmerge"
	"github.com/ginjaninja78/validation-docs/internal/types"
	"github.com/ginjaninja78/validation-docs/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of generating a single document.
type Result struct {
	// DocType is the document that was generated.
	DocType types.DocType

	// TemplatePath is the template the document was merged from.
	// This is empty if the template could not be located.
	TemplatePath string

	// OutputFile is the path to the generated .docx file.
	// This is empty if generation failed.
	OutputFile string

	// Success indicates whether generation was successful.
	Success bool

	// Error contains the error if generation failed.
	Error error

	// Executed is true when the document was prepared as executed.
	Executed bool

	// Warnings lists the problems that did not stop generation.
	Warnings []string

	// Stats contains generation statistics.
	Stats GenerationStats
}

// GenerationStats contains statistics about one document.
type GenerationStats struct {
	// RowLists is the number of repeating rows filled.
	RowLists int

	// RowsMerged is the number of records merged across all row lists.
	RowsMerged int

	// FieldsMerged is the number of header fields replaced.
	FieldsMerged int

	// ProcessingTime is the time taken to generate the document.
	ProcessingTime time.Duration
}

// =============================================================================
// GENERATOR STRUCTURE
// =============================================================================

// Generator produces one document of a Session.
type Generator struct {
	docType  types.DocType
	session  *Session
	logger   *slog.Logger
	warnings []string
}

// New creates a Generator for docType.
func New(session *Session, docType types.DocType) *Generator {
	return &Generator{
		docType: docType,
		session: session,
		logger:  session.Logger.With("type", string(docType)),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the generation pipeline for the document.
//
// RETURNS:
//   - A Result struct containing the outcome.
func (g *Generator) Run() Result {
	startTime := time.Now()
	result := Result{DocType: g.docType}
	cfg := g.session.Config
	params := g.session.Params

	asm, ok := assemblers[g.docType]
	if !ok {
		result.Error = fmt.Errorf("unknown document type '%s'", g.docType)
		return g.finish(result)
	}

	g.logger.Info("Processing document")

	// =========================================================================
	// STEP 1: CHECK CONFIGURATION
	// =========================================================================
	// Every configuration entry is looked up before any file is touched.

	templateName, err := cfg.Setting(g.docType, config.KeyTemplateFile)
	if err != nil {
		result.Error = err
		return g.finish(result)
	}

	if !g.session.Lenient {
		for _, in := range asm.inputs {
			if in.Optional {
				continue
			}
			if _, err := cfg.Setting(in.Section, in.Key); err != nil {
				result.Error = err
				return g.finish(result)
			}
		}
	}

	// =========================================================================
	// STEP 2: LOCATE TEMPLATE
	// =========================================================================
	// A missing template is fatal even in lenient mode.

	templatePath := filepath.Join(params.TemplateFilesDir, templateName)
	if !utils.FileExists(templatePath) {
		result.Error = types.FileNotFound("template file", templatePath)
		return g.finish(result)
	}
	result.TemplatePath = templatePath
	g.logger.Debug("Using template", "path", templatePath)

	// =========================================================================
	// STEP 3: EXECUTION STATUS
	// =========================================================================

	status := types.NotExecuted
	if asm.statusFrom != "" {
		if status, err = g.session.executionStatus(asm.statusFrom); err != nil {
			result.Error = err
			return g.finish(result)
		}
		result.Executed = status.YesNo != ""
	}

	// =========================================================================
	// STEP 4: LOAD RECORDS
	// =========================================================================

	var lists []types.RowList
	if asm.rows != nil {
		if lists, err = asm.rows(g, status); err != nil {
			result.Error = err
			return g.finish(result)
		}
	}

	// =========================================================================
	// STEP 5: MERGE
	// =========================================================================

	doc, err := mailmerge.Open(templatePath)
	if err != nil {
		result.Error = err
		return g.finish(result)
	}
	g.logger.Debug("Template merge fields", "fields", doc.FieldNames())

	header := params.HeaderFields()
	if g.docType.Executable() {
		header["executed"] = status.YesNo
		header["execution_date"] = status.Date
	}
	result.Stats.FieldsMerged = doc.Merge(header)

	for _, list := range lists {
		if doc.MergeRows(list.Key, list.Maps()) == 0 {
			g.warn("template '%s' has no table row with merge field '%s'", templateName, list.Key)
		}
		result.Stats.RowLists++
		result.Stats.RowsMerged += len(list.Records)
	}

	// =========================================================================
	// STEP 6: WRITE OUTPUT FILE
	// =========================================================================

	if err := utils.EnsureDirectory(params.OutDir); err != nil {
		result.Error = err
		return g.finish(result)
	}

	outputPath := utils.OutputPath(params.OutDir, params.SoftwareName, params.SoftwareVersion,
		g.docType.Label(), params.DocumentPreparedDate)
	if err := doc.Write(outputPath); err != nil {
		result.Error = err
		return g.finish(result)
	}

	result.OutputFile = outputPath
	result.Success = true
	g.logger.Info("Wrote document", "path", outputPath, "rows", result.Stats.RowsMerged)

	result.Stats.ProcessingTime = time.Since(startTime)
	return g.finish(result)
}

// finish attaches the collected warnings to result.
func (g *Generator) finish(result Result) Result {
	result.Warnings = g.warnings
	return result
}

// warn records a problem that does not stop generation.
func (g *Generator) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	g.warnings = append(g.warnings, msg)
	g.logger.Warn(msg)
}

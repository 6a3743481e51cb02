// =============================================================================
// Validation Document Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which writes every document of
// the validation package.
//
// COMMAND USAGE:
//   validation-docs generate [flags]
//
// GENERATION PIPELINE:
//   1. Settle the output directory, prepared date and log file; open the log
//   2. Load the configuration file
//   3. Resolve the global parameters (flag, then config, then prompt)
//   4. Show the parameters and ask the operator to proceed
//   5. Generate IQ, OQ, PQ, System Specification, Test Plan,
//      User Requirements and Validation Report, in that order
//   6. Write the run summary and the audit trail
//
// A failure in any step aborts the run. Declining to proceed exits cleanly
// without writing documents.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/validation-docs/internal/audit"
	"github.com/ginjaninja78/validation-docs/internal/config"
	"github.com/ginjaninja78/validation-docs/internal/generator"
	"github.com/ginjaninja78/validation-docs/internal/prompt"
	"github.com/ginjaninja78/validation-docs/internal/types"
	"github.com/ginjaninja78/validation-docs/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	outDir               string
	templateFilesDir     string
	softwareName         string
	softwareVersion      string
	server               string
	documentPreparedBy   string
	documentPreparedDate string

	// lenient replaces missing checklists and test data with placeholder rows.
	lenient bool

	// nonInteractive answers every yes/no question with yes and fails on
	// questions that need text.
	nonInteractive bool

	// auditDB is the SQLite audit trail. Empty disables it.
	auditDB string
)

// ProceedQuestion is the gate asked before any document is written.
const ProceedQuestion = "Okay to proceed? [Y/n] "

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the validation documents",
	Long: `The generate command merges the checklists named in the configuration file
into the Word templates of each document type and writes one .docx per type
into the output directory.

Values not given on the command line are taken from the configuration file,
then asked for. IQ, OQ and PQ ask whether to prepare the document as executed.

By default a missing checklist aborts the run. With --lenient it is replaced
by a placeholder row and a warning is logged. A missing template is always
fatal.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringVar(&outDir, "outdir", "", "Output directory (default is a timestamped directory under the system temp dir)")
	flags.StringVar(&templateFilesDir, "template-files-dir", "", "Directory holding the Word templates")
	flags.StringVar(&softwareName, "software-name", "", "Name of the software being validated")
	flags.StringVar(&softwareVersion, "software-version", "", "Version of the software being validated")
	flags.StringVar(&server, "server", "", "Server the software is installed on")
	flags.StringVar(&documentPreparedBy, "document-prepared-by", "", "First and last name of the person preparing the documents")
	flags.StringVar(&documentPreparedDate, "document-prepared-date", "", "Date the documents are prepared (default is today, e.g. 17-Oct-2026)")
	flags.BoolVar(&lenient, "lenient", false, "Use placeholder rows for missing checklists instead of failing")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "Do not prompt; answer yes to every confirmation")
	flags.StringVar(&auditDB, "audit-db", "", "SQLite database recording runs and written documents")
}

// overrides collects the command line values.
func overrides() config.Overrides {
	return config.Overrides{
		OutDir:               outDir,
		LogFile:              logFile,
		TemplateFilesDir:     templateFilesDir,
		SoftwareName:         softwareName,
		SoftwareVersion:      softwareVersion,
		Server:               server,
		DocumentPreparedBy:   documentPreparedBy,
		DocumentPreparedDate: documentPreparedDate,
	}
}

// newDecider returns the operator for the run.
func newDecider(cmd *cobra.Command) prompt.Decider {
	if nonInteractive {
		return &prompt.Static{Default: true}
	}
	return prompt.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())
}

// =============================================================================
// MAIN GENERATION FUNCTION
// =============================================================================

func runGenerate(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()
	o := overrides()

	// =========================================================================
	// STEP 1: OUTPUT LOCATIONS AND RUN LOG
	// =========================================================================
	// The config path is checked before the output directory is created, and
	// the run log is opened before anything else can fail.

	configPath, pathNotices, err := resolveConfigPath(cfgFile, lenient)
	if err != nil {
		return err
	}

	params, notices, err := config.ResolveOutput(o, startTime)
	printNotices(out, notices)
	if err != nil {
		return err
	}

	runID := utils.NewRunID()
	logger, closer, err := utils.NewFileLogger(params.LogFile, verbose, runID)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("Run started", "outdir", params.OutDir, "logfile", params.LogFile, "lenient", lenient)
	logNotices(logger, notices)

	fail := func(step string, err error) error {
		logger.Error(step+" failed", "error", err)
		return err
	}

	// =========================================================================
	// STEP 2: LOAD CONFIGURATION
	// =========================================================================

	printNotices(out, pathNotices)
	logNotices(logger, pathNotices)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fail("Loading configuration", err)
	}
	logger.Info("Loaded configuration", "config", cfg.Path, "sections", cfg.DocumentNames())

	// =========================================================================
	// STEP 3: GLOBAL PARAMETERS
	// =========================================================================

	decider := newDecider(cmd)
	notices, err = config.ResolveParams(params, o, cfg, decider)
	printNotices(out, notices)
	logNotices(logger, notices)
	if err != nil {
		return fail("Resolving parameters", err)
	}

	// =========================================================================
	// STEP 4: CONFIRM
	// =========================================================================

	printParams(out, cfg.Path, params)
	proceed, err := decider.Confirm(ProceedQuestion)
	if err != nil {
		return fail("Confirming", fmt.Errorf("failed to read answer: %w", err))
	}
	if !proceed {
		logger.Info("Operator declined to proceed")
		fmt.Fprintln(out, "Okay, bye.")
		return types.ErrUserAbort
	}

	logger.Info("Starting generation",
		"software_name", params.SoftwareName,
		"software_version", params.SoftwareVersion,
		"server", params.Server,
		"document_prepared_by", params.DocumentPreparedBy,
		"document_prepared_date", params.DocumentPreparedDate,
		"template_files_dir", params.TemplateFilesDir)

	trail, err := openAudit(auditDB, audit.Run{
		RunID:           runID,
		StartedAt:       startTime,
		ConfigFile:      cfg.Path,
		SoftwareName:    params.SoftwareName,
		SoftwareVersion: params.SoftwareVersion,
		Server:          params.Server,
		PreparedBy:      params.DocumentPreparedBy,
		PreparedDate:    params.DocumentPreparedDate,
		OutDir:          params.OutDir,
	})
	if err != nil {
		return fail("Opening audit trail", err)
	}
	if trail != nil {
		defer trail.Close()
	}

	// =========================================================================
	// STEP 5: GENERATE
	// =========================================================================

	session := generator.NewSession(cfg, params, decider, logger)
	session.Lenient = lenient
	results, runErr := session.Run(types.AllDocTypes)

	// =========================================================================
	// STEP 6: REPORT
	// =========================================================================

	summary := utils.RunSummary{
		RunID:           runID,
		StartTime:       startTime,
		ConfigFile:      cfg.Path,
		SoftwareName:    params.SoftwareName,
		SoftwareVersion: params.SoftwareVersion,
		Server:          params.Server,
		PreparedBy:      params.DocumentPreparedBy,
		PreparedDate:    params.DocumentPreparedDate,
	}

	for _, r := range results {
		for _, w := range r.Warnings {
			noticeColor.Fprintf(out, "WARNING: %s: %s\n", r.DocType, w)
		}
		if !r.Success {
			errorColor.Fprintf(out, "  ✗ %s: %v\n", r.DocType, r.Error)
			summary.Failed = append(summary.Failed, utils.FailedDocumentInfo{
				DocType:      string(r.DocType),
				ErrorMessage: r.Error.Error(),
			})
			continue
		}

		successColor.Fprintf(out, "  ✓ Wrote %s to %s\n", r.DocType, r.OutputFile)
		info := documentInfo(r, logger)
		summary.Documents = append(summary.Documents, info)
		trail.document(runID, info, logger)
	}

	summary.EndTime = time.Now()
	summaryPath, err := utils.WriteSummaryLog(summary, params.OutDir)
	if err != nil {
		logger.Error("Failed to write run summary", "error", err)
	} else {
		fmt.Fprintf(out, "Run summary written to %s\n", summaryPath)
	}

	status := audit.StatusCompleted
	if runErr != nil {
		status = audit.StatusFailed
	}
	trail.finish(runID, summary.EndTime, status, logger)

	if runErr != nil {
		return runErr
	}

	logger.Info("Generation complete", "documents", len(summary.Documents), "elapsed", summary.EndTime.Sub(startTime))
	fmt.Fprintf(out, "Log file: %s\n", params.LogFile)
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// logNotices records default-applied messages in the run log.
func logNotices(logger *slog.Logger, notices []string) {
	for _, n := range notices {
		logger.Info(n)
	}
}

// printParams shows the values every document header will carry.
func printParams(w io.Writer, configPath string, p *config.Params) {
	fmt.Fprintln(w, "\nThe documents will be prepared with these values:")
	fmt.Fprintf(w, "  config:                 %s\n", configPath)
	fmt.Fprintf(w, "  software_name:          %s\n", p.SoftwareName)
	fmt.Fprintf(w, "  software_version:       %s\n", p.SoftwareVersion)
	fmt.Fprintf(w, "  server:                 %s\n", p.Server)
	fmt.Fprintf(w, "  document_prepared_by:   %s\n", p.DocumentPreparedBy)
	fmt.Fprintf(w, "  document_prepared_date: %s\n", p.DocumentPreparedDate)
	fmt.Fprintf(w, "  template_files_dir:     %s\n", p.TemplateFilesDir)
	fmt.Fprintf(w, "  outdir:                 %s\n", p.OutDir)
	fmt.Fprintf(w, "  logfile:                %s\n\n", p.LogFile)
}

// documentInfo describes a written document for the summary and audit.
func documentInfo(r generator.Result, logger *slog.Logger) utils.DocumentInfo {
	info := utils.DocumentInfo{
		DocType:    string(r.DocType),
		OutputFile: r.OutputFile,
		Template:   filepath.Base(r.TemplatePath),
		Rows:       r.Stats.RowsMerged,
		Executed:   r.Executed,
	}
	sum, err := utils.FileSHA256(r.OutputFile)
	if err != nil {
		logger.Warn("Failed to hash document", "path", r.OutputFile, "error", err)
	}
	info.SHA256 = sum
	return info
}

// auditTrail records the run when --audit-db is set. A nil trail records
// nothing. Recording failures are logged and do not fail the run.
type auditTrail struct {
	db audit.DB
}

func openAudit(path string, run audit.Run) (*auditTrail, error) {
	if path == "" {
		return nil, nil
	}
	db, err := audit.Initialize(path)
	if err != nil {
		return nil, err
	}
	if err := audit.RecordRun(db, run); err != nil {
		db.Close()
		return nil, err
	}
	return &auditTrail{db: db}, nil
}

func (a *auditTrail) document(runID string, info utils.DocumentInfo, logger *slog.Logger) {
	if a == nil {
		return
	}
	err := audit.RecordDocument(a.db, audit.Document{
		RunID:      runID,
		DocType:    info.DocType,
		OutputFile: info.OutputFile,
		SHA256:     info.SHA256,
		Rows:       info.Rows,
		Executed:   info.Executed,
	})
	if err != nil {
		logger.Warn("Audit trail not updated", "error", err)
	}
}

func (a *auditTrail) finish(runID string, at time.Time, status string, logger *slog.Logger) {
	if a == nil {
		return
	}
	if err := audit.FinishRun(a.db, runID, at, status); err != nil {
		logger.Warn("Audit trail not updated", "error", err)
	}
}

func (a *auditTrail) Close() error {
	return a.db.Close()
}

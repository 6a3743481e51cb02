// =============================================================================
// Validation Document Generator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the generator:
//   - Output directory management
//   - Output file naming
//   - Run summary generation
//   - Checksums of written documents
//
// OUTPUT LAYOUT:
//   <outdir>/<software name> <software version> - <label> - <date>.docx
//   <outdir>/validation-docs.log
//   <outdir>/run-summary.txt
//
// =============================================================================

package utils

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SummaryFileName is the name of the run summary written to the output
// directory.
const SummaryFileName = "run-summary.txt"

// OutputNameFormat is the name of every generated document.
const OutputNameFormat = "{software_name} {software_version} - {label} - {date}.docx"

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectory creates dir and its parents if they don't exist.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName fills the placeholders of format.
//
// PARAMETERS:
//   - format: The format string for the file name, e.g. OutputNameFormat.
//             Each {key} is replaced by params[key].
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name, always ending in .docx.
//
// EXAMPLE:
//   format: OutputNameFormat
//   params: {"software_name": "LIMS", "software_version": "4.2",
//            "label": "IQ Checklist", "date": "17-Oct-2026"}
//   output: "LIMS 4.2 - IQ Checklist - 17-Oct-2026.docx"
func GenerateOutputFileName(format string, params map[string]string) string {
	pairs := make([]string, 0, len(params)*2)
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", value)
	}
	result := strings.NewReplacer(pairs...).Replace(format)

	if !strings.HasSuffix(strings.ToLower(result), ".docx") {
		result += ".docx"
	}

	return result
}

// OutputPath returns the path of a generated document in outDir.
func OutputPath(outDir, softwareName, softwareVersion, label, date string) string {
	return filepath.Join(outDir, GenerateOutputFileName(OutputNameFormat, map[string]string{
		"software_name":    softwareName,
		"software_version": softwareVersion,
		"label":            label,
		"date":             date,
	}))
}

// NewRunID returns a fresh identifier for one generation run.
func NewRunID() string {
	return uuid.New().String()
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a generation run.
type RunSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	ConfigFile      string
	SoftwareName    string
	SoftwareVersion string
	Server          string
	PreparedBy      string
	PreparedDate    string
	Documents       []DocumentInfo
	Failed          []FailedDocumentInfo
}

// DocumentInfo describes a written document.
type DocumentInfo struct {
	DocType    string
	OutputFile string
	Template   string
	Rows       int
	Executed   bool
	SHA256     string
}

// FailedDocumentInfo describes a document that could not be generated.
type FailedDocumentInfo struct {
	DocType      string
	ErrorMessage string
}

// WriteSummaryLog writes a run summary to SummaryFileName in outputDir.
//
// PARAMETERS:
//   - summary: The run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, SummaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Validation Document Generator - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:           %s\n"+
		"  Start Time:       %s\n"+
		"  End Time:         %s\n"+
		"  Duration:         %s\n"+
		"  Config File:      %s\n\n"+
		"Parameters:\n"+
		"  Software Name:    %s\n"+
		"  Software Version: %s\n"+
		"  Server:           %s\n"+
		"  Prepared By:      %s\n"+
		"  Prepared Date:    %s\n\n"+
		"Statistics:\n"+
		"  Documents Written: %d\n"+
		"  Documents Failed:  %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.ConfigFile,
		summary.SoftwareName,
		summary.SoftwareVersion,
		summary.Server,
		summary.PreparedBy,
		summary.PreparedDate,
		len(summary.Documents),
		len(summary.Failed))

	if len(summary.Documents) > 0 {
		writer.WriteString("Written Documents:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, d := range summary.Documents {
			fmt.Fprintf(writer, "  Type:     %s\n", d.DocType)
			fmt.Fprintf(writer, "  Output:   %s\n", d.OutputFile)
			fmt.Fprintf(writer, "  Template: %s\n", d.Template)
			fmt.Fprintf(writer, "  Rows:     %d\n", d.Rows)
			fmt.Fprintf(writer, "  Executed: %t\n", d.Executed)
			fmt.Fprintf(writer, "  SHA-256:  %s\n\n", d.SHA256)
		}
	}

	if len(summary.Failed) > 0 {
		writer.WriteString("Failed Documents:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Failed {
			fmt.Fprintf(writer, "  Type:  %s\n", f.DocType)
			fmt.Fprintf(writer, "  Error: %s\n\n", f.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// FileSHA256 returns the hex SHA-256 digest of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

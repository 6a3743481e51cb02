// =============================================================================
// Validation Document Generator - Audit Command
// =============================================================================
//
// This file defines the 'audit' command, which shows what a generation run
// recorded in the audit trail.
//
// COMMAND USAGE:
//   validation-docs audit --audit-db ./audit.db <run-id>
//
// The run ID is printed in the run summary and tagged on every log line.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/validation-docs/internal/audit"
	"github.com/ginjaninja78/validation-docs/internal/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit <run-id>",
	Short: "Show a recorded generation run",
	Long: `The audit command reads the SQLite audit trail written by
'generate --audit-db' and prints the parameters of one run together with
every document it wrote and the document's SHA-256.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudit(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&auditDB, "audit-db", "", "SQLite database written by generate --audit-db")
}

func runAudit(cmd *cobra.Command, runID string) error {
	if auditDB == "" {
		return fmt.Errorf("%w: --audit-db was not specified", types.ErrConfigMissing)
	}
	// Initialize would create an empty database.
	if _, err := os.Stat(auditDB); os.IsNotExist(err) {
		return types.FileNotFound("audit database", auditDB)
	}

	db, err := audit.Initialize(auditDB)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := audit.LoadRun(db, runID)
	if err != nil {
		return err
	}
	docs, err := audit.Documents(db, runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run ID:           %s\n", run.RunID)
	fmt.Fprintf(out, "Status:           %s\n", run.Status)
	fmt.Fprintf(out, "Started:          %s\n", run.StartedAt.Local().Format(time.DateTime))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(out, "Finished:         %s\n", run.FinishedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(out, "Config File:      %s\n", run.ConfigFile)
	fmt.Fprintf(out, "Software Name:    %s\n", run.SoftwareName)
	fmt.Fprintf(out, "Software Version: %s\n", run.SoftwareVersion)
	fmt.Fprintf(out, "Server:           %s\n", run.Server)
	fmt.Fprintf(out, "Prepared By:      %s\n", run.PreparedBy)
	fmt.Fprintf(out, "Prepared Date:    %s\n", run.PreparedDate)
	fmt.Fprintf(out, "Output Dir:       %s\n\n", run.OutDir)

	fmt.Fprintf(out, "Documents (%d):\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(out, "  %-22s rows=%-4d executed=%-5t %s\n", d.DocType, d.Rows, d.Executed, d.OutputFile)
		fmt.Fprintf(out, "  %-22s sha256=%s\n", "", d.SHA256)
	}
	return nil
}

// =============================================================================
// Validation Document Generator - Main Entry Point
// =============================================================================
//
// USAGE:
//   validation-docs generate  - Write the validation documents
//   validation-docs validate  - Check the configuration without writing
//   validation-docs version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Configuration, checklist parsing, mail merge and
//                      document generation
//   - pkg/           : Output naming, run summary and logging helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/validation-docs/cmd"
)

func main() {
	cmd.Execute()
}

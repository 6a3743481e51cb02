package generator

import (
	"fmt"
	"log/slog"

	"github.com/ginjaninja78/validation-docs/internal/checklist"
	"github.com/ginjaninja78/validation-docs/internal/config"
	"github.com/ginjaninja78/validation-docs/internal/prompt"
	"github.com/ginjaninja78/validation-docs/internal/types"
	"github.com/ginjaninja78/validation-docs/pkg/utils"
)

// =============================================================================
// SESSION
// =============================================================================

// Session holds everything one generation run shares between documents:
// the loaded configuration, the resolved parameters, the operator, and the
// state carried from one document to the next.
//
// STATE CARRIED BETWEEN DOCUMENTS:
//   - The checklist ID counter (hardware IDs, then software IDs).
//   - The IQ hardware and software records, reused by System Specification
//     and Test Plan.
//   - The execution status chosen for IQ, OQ and PQ.
type Session struct {
	// Config is the loaded configuration file.
	Config *config.Config

	// Params are the resolved global parameters.
	Params *config.Params

	// Decider answers the "Prepare executed ...?" questions.
	Decider prompt.Decider

	// Logger receives the run log.
	Logger *slog.Logger

	// Lenient turns missing checklist and test data inputs into warnings
	// and placeholder rows instead of errors.
	Lenient bool

	counter      checklist.Counter
	installation *installationLists
	status       map[types.DocType]types.ExecutionStatus
}

// installationLists are the IQ checklist records of the session.
type installationLists struct {
	hardware []types.Record
	software []types.Record
}

// NewSession creates a Session. A nil logger discards log records.
func NewSession(cfg *config.Config, params *config.Params, decider prompt.Decider, logger *slog.Logger) *Session {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Session{
		Config:  cfg,
		Params:  params,
		Decider: decider,
		Logger:  logger,
		status:  make(map[types.DocType]types.ExecutionStatus),
	}
}

// Run generates docTypes in order and stops at the first failure.
//
// RETURNS:
//   - One Result per document attempted, the failed one last.
//   - The error of the failed document, or nil.
func (s *Session) Run(docTypes []types.DocType) ([]Result, error) {
	results := make([]Result, 0, len(docTypes))

	for _, docType := range docTypes {
		result := New(s, docType).Run()
		results = append(results, result)

		if !result.Success {
			s.Logger.Error("Document generation failed", "type", docType, "error", result.Error)
			return results, fmt.Errorf("failed to generate %s: %w", docType, result.Error)
		}
	}

	s.Logger.Info("All documents generated", "documents", len(results), "checklist_ids", s.counter.Value())
	return results, nil
}

// executionStatus returns the execution status of an executable document,
// asking the operator the first time.
func (s *Session) executionStatus(docType types.DocType) (types.ExecutionStatus, error) {
	if status, ok := s.status[docType]; ok {
		return status, nil
	}

	executed, err := s.Decider.Confirm(fmt.Sprintf("Prepare executed %s? [Y/n] ", docType))
	if err != nil {
		return types.ExecutionStatus{}, fmt.Errorf("failed to read answer: %w", err)
	}

	status := types.NotExecuted
	if executed {
		status = types.Executed(s.Params.DocumentPreparedDate)
	}
	s.status[docType] = status

	s.Logger.Info("Execution status chosen", "type", docType, "executed", executed)
	return status, nil
}

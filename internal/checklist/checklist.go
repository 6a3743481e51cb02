// =============================================================================
// Validation Document Generator - Checklist Records Module
// =============================================================================
//
// This module turns parsed input tables into the merge records each template
// expects. Column names are the ones operators put in the header row of the
// input files; record keys are template merge-field names.
//
// RECORD SHAPES:
//   Installation checklist (IQ, hardware "h" / software "s"):
//     {h_id, h_desc, h_req, h_yes_no, h_date}
//   Test checklist replicates (OQ, PQ, Test Plan):
//     {id_rep1, test_procedure_rep1, expected_finding_rep1, yes_no, date_initialed}
//     {id_rep2, test_procedure_rep2, expected_finding_rep2, yes_no, date_initialed}
//   Test data (OQ, PQ, Test Plan):
//     {test_data_name, test_data_desc}
//   User requirements:
//     {id, req, criticality, comment}
//
// =============================================================================

package checklist

import (
	"fmt"
	"strconv"

	"github.com/ginjaninja78/validation-docs/internal/tabparser"
	"github.com/ginjaninja78/validation-docs/internal/types"
)

// Input column names.
const (
	ColDescription            = "Description"
	ColRequirement            = "Requirement"
	ColTestNumber             = "Test Number"
	ColTestProcedure          = "Test Procedure"
	ColExpectedFinding        = "Expected Finding"
	ColName                   = "Name"
	ColID                     = "ID"
	ColRequirementDescription = "Requirement Description"
	ColCriticality            = "Criticality"
)

// Row identifier (key) fields of each record list.
const (
	KeyHardware     = "h_id"
	KeySoftware     = "s_id"
	KeyReplicate1   = "id_rep1"
	KeyReplicate2   = "id_rep2"
	KeyTestData     = "test_data_name"
	KeyRequirements = "id"
)

// Prefixes of the installation checklist fields.
const (
	HardwarePrefix = "h"
	SoftwarePrefix = "s"
)

// TestIDPrefix is prepended to the sequential test IDs of a checklist without
// a Test Number column.
const TestIDPrefix = "T"

// Placeholder fills the test data table when no test data file is
// configured.
const Placeholder = "TBD"

// =============================================================================
// COUNTER
// =============================================================================

// Counter hands out sequential row identifiers. One Counter is shared by
// the hardware and software checklists of a run so their IDs never
// collide.
type Counter struct {
	n int
}

// Next returns the next identifier, starting at "1".
func (c *Counter) Next() string {
	c.n++
	return strconv.Itoa(c.n)
}

// Value returns the last identifier handed out (0 before the first).
func (c *Counter) Value() int {
	return c.n
}

// =============================================================================
// BUILDERS
// =============================================================================

// InstallationChecklist builds IQ checklist records from a table with Description and
// Requirement columns. prefix is HardwarePrefix or SoftwarePrefix.
func InstallationChecklist(table *tabparser.Table, prefix string, counter *Counter, status types.ExecutionStatus) ([]types.Record, error) {
	records := make([]types.Record, 0, table.Len())

	for i := 0; i < table.Len(); i++ {
		description, err := table.Value(i, ColDescription)
		if err != nil {
			return nil, err
		}
		requirement, err := table.Value(i, ColRequirement)
		if err != nil {
			return nil, err
		}

		records = append(records, types.Record{
			prefix + "_id":     counter.Next(),
			prefix + "_desc":   description,
			prefix + "_req":    requirement,
			prefix + "_yes_no": status.YesNo,
			prefix + "_date":   status.Date,
		})
	}

	return records, nil
}

// Replicates builds the two parallel record lists of a test checklist:
// replicate 1 and replicate 2 carry the same rows under different key and
// column suffixes so a template can lay the test out twice.
//
// A Test Number column, when present, supplies the IDs verbatim; otherwise
// IDs run T1, T2, ... in file order.
func Replicates(table *tabparser.Table, status types.ExecutionStatus) (rep1, rep2 []types.Record, err error) {
	explicitIDs := table.Has(ColTestNumber)

	rep1 = make([]types.Record, 0, table.Len())
	rep2 = make([]types.Record, 0, table.Len())

	for i := 0; i < table.Len(); i++ {
		testID := TestIDPrefix + strconv.Itoa(i+1)
		if explicitIDs {
			if testID, err = table.Value(i, ColTestNumber); err != nil {
				return nil, nil, err
			}
		}

		procedure, err := table.Value(i, ColTestProcedure)
		if err != nil {
			return nil, nil, err
		}
		finding, err := table.Value(i, ColExpectedFinding)
		if err != nil {
			return nil, nil, err
		}

		rep1 = append(rep1, replicate(1, testID, procedure, finding, status))
		rep2 = append(rep2, replicate(2, testID, procedure, finding, status))
	}

	return rep1, rep2, nil
}

func replicate(n int, testID, procedure, finding string, status types.ExecutionStatus) types.Record {
	suffix := fmt.Sprintf("_rep%d", n)
	return types.Record{
		"id" + suffix:               testID,
		"test_procedure" + suffix:   procedure,
		"expected_finding" + suffix: finding,
		"yes_no":                    status.YesNo,
		"date_initialed":            status.Date,
	}
}

// TestData builds test data records from a table with Name and Description
// columns.
func TestData(table *tabparser.Table) ([]types.Record, error) {
	records := make([]types.Record, 0, table.Len())

	for i := 0; i < table.Len(); i++ {
		name, err := table.Value(i, ColName)
		if err != nil {
			return nil, err
		}
		description, err := table.Value(i, ColDescription)
		if err != nil {
			return nil, err
		}
		records = append(records, types.Record{
			"test_data_name": name,
			"test_data_desc": description,
		})
	}

	return records, nil
}

// PlaceholderTestData is the single record merged when a document has no
// test data file.
func PlaceholderTestData() []types.Record {
	return []types.Record{{
		"test_data_name": Placeholder,
		"test_data_desc": Placeholder,
	}}
}

// PlaceholderInstallation is the single record merged in place of a missing
// installation checklist.
func PlaceholderInstallation(prefix string, status types.ExecutionStatus) []types.Record {
	return []types.Record{{
		prefix + "_id":     Placeholder,
		prefix + "_desc":   Placeholder,
		prefix + "_req":    Placeholder,
		prefix + "_yes_no": status.YesNo,
		prefix + "_date":   status.Date,
	}}
}

// PlaceholderReplicates are the replicate records merged in place of a
// missing test checklist.
func PlaceholderReplicates(status types.ExecutionStatus) (rep1, rep2 []types.Record) {
	rep1 = []types.Record{replicate(1, Placeholder, Placeholder, Placeholder, status)}
	rep2 = []types.Record{replicate(2, Placeholder, Placeholder, Placeholder, status)}
	return rep1, rep2
}

// PlaceholderRequirements is the record merged in place of a missing
// requirements file.
func PlaceholderRequirements() []types.Record {
	return []types.Record{{
		"id":          Placeholder,
		"req":         Placeholder,
		"criticality": Placeholder,
		"comment":     "",
	}}
}

// UserRequirements builds requirement records from a table with Requirement
// Description and Criticality columns. An ID column supplies the IDs
// verbatim; otherwise they run 1, 2, ... in file order.
func UserRequirements(table *tabparser.Table) ([]types.Record, error) {
	explicitIDs := table.Has(ColID)
	records := make([]types.Record, 0, table.Len())

	for i := 0; i < table.Len(); i++ {
		id := strconv.Itoa(i + 1)
		if explicitIDs {
			v, err := table.Value(i, ColID)
			if err != nil {
				return nil, err
			}
			id = v
		}

		req, err := table.Value(i, ColRequirementDescription)
		if err != nil {
			return nil, err
		}
		criticality, err := table.Value(i, ColCriticality)
		if err != nil {
			return nil, err
		}

		records = append(records, types.Record{
			"id":          id,
			"req":         req,
			"criticality": criticality,
			"comment":     "",
		})
	}

	return records, nil
}

// Required header columns of each input kind.
var (
	InstallationColumns  = []string{ColDescription, ColRequirement}
	TestChecklistColumns = []string{ColTestProcedure, ColExpectedFinding}
	TestDataColumns      = []string{ColName, ColDescription}
	RequirementColumns   = []string{ColRequirementDescription, ColCriticality}
)

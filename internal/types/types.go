// =============================================================================
// Validation Document Generator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - checklist
//   - generator
//   - validation
//
// =============================================================================

package types

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// DocType names one of the validation documents the tool can generate.
// The string value is also the key of the document's entry in the
// configuration file.
type DocType string

const (
	IQ                  DocType = "IQ"
	OQ                  DocType = "OQ"
	PQ                  DocType = "PQ"
	SystemSpecification DocType = "System Specification"
	TestPlan            DocType = "Test Plan"
	UserRequirements    DocType = "User Requirements"
	ValidationReport    DocType = "Validation Report"
)

// AllDocTypes lists every document type in generation order.
var AllDocTypes = []DocType{
	IQ,
	OQ,
	PQ,
	SystemSpecification,
	TestPlan,
	UserRequirements,
	ValidationReport,
}

// Label returns the title used in the output file name.
func (d DocType) Label() string {
	switch d {
	case IQ:
		return "IQ Checklist"
	case OQ:
		return "OQ Validation Testing Worksheet"
	case PQ:
		return "PQ Validation Testing Worksheet"
	default:
		return string(d)
	}
}

// Executable reports whether the document carries an execution status
// (yes/no and date columns filled in when the document is prepared as
// executed).
func (d DocType) Executable() bool {
	return d == IQ || d == OQ || d == PQ
}

// ParseDocType matches a document type by its configuration name.
func ParseDocType(s string) (DocType, bool) {
	for _, d := range AllDocTypes {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// =============================================================================
// MERGE RECORDS
// =============================================================================

// Record is one row of merge data. Keys are template merge-field names.
type Record map[string]string

// RowList is a list of records merged into one repeating table row of a
// template. Key is the merge field that identifies the row to repeat.
type RowList struct {
	Key     string
	Records []Record
}

// Maps converts the records into the plain map form the merge engine takes.
func (l RowList) Maps() []map[string]string {
	out := make([]map[string]string, len(l.Records))
	for i, r := range l.Records {
		out[i] = r
	}
	return out
}

// =============================================================================
// EXECUTION STATUS
// =============================================================================

// ExecutionStatus holds the values injected into the yes/no and date
// columns of an executable document.
type ExecutionStatus struct {
	// YesNo is "Yes" for an executed document and "" otherwise.
	YesNo string

	// Date is the execution date, or "" when not executed.
	Date string
}

// Executed returns the status of a document prepared as executed on date.
func Executed(date string) ExecutionStatus {
	return ExecutionStatus{YesNo: "Yes", Date: date}
}

// NotExecuted is the status of a blank document.
var NotExecuted = ExecutionStatus{}

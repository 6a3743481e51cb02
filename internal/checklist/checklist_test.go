package checklist

import (
	"errors"
	"strings"
	"testing"

	"github.com/ginjaninja78/validation-docs/internal/tabparser"
	"github.com/ginjaninja78/validation-docs/internal/types"
)

// parseTable builds a Table from tab-delimited content
func parseTable(t *testing.T, source, content string) *tabparser.Table {
	t.Helper()
	table, err := tabparser.ParseReader(strings.NewReader(content), source)
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	return table
}

func TestCounter(t *testing.T) {
	var c Counter
	if c.Value() != 0 {
		t.Errorf("Value() = %d before first Next, want 0", c.Value())
	}
	for _, want := range []string{"1", "2", "3"} {
		if got := c.Next(); got != want {
			t.Errorf("Next() = %q, want %q", got, want)
		}
	}
}

// TestInstallationChecklist tests the hardware checklist example
func TestInstallationChecklist(t *testing.T) {
	table := parseTable(t, "hw.txt",
		"Description\tRequirement\n"+
			"Check power\tMust be grounded\n"+
			"Check network\tMust have static IP\n")

	var counter Counter
	records, err := InstallationChecklist(table, HardwarePrefix, &counter, types.NotExecuted)
	if err != nil {
		t.Fatalf("InstallationChecklist() error = %v", err)
	}

	want := []types.Record{
		{"h_id": "1", "h_desc": "Check power", "h_req": "Must be grounded", "h_yes_no": "", "h_date": ""},
		{"h_id": "2", "h_desc": "Check network", "h_req": "Must have static IP", "h_yes_no": "", "h_date": ""},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		for k, v := range want[i] {
			if records[i][k] != v {
				t.Errorf("record %d %s = %q, want %q", i, k, records[i][k], v)
			}
		}
		if len(records[i]) != len(want[i]) {
			t.Errorf("record %d has %d keys, want %d", i, len(records[i]), len(want[i]))
		}
	}
}

// TestSharedCounter tests that software IDs continue after hardware IDs
func TestSharedCounter(t *testing.T) {
	hw := parseTable(t, "hw.txt", "Description\tRequirement\nA\ta\nB\tb\n")
	sw := parseTable(t, "sw.txt", "Description\tRequirement\nC\tc\n")
	status := types.Executed("17-Oct-2026")

	var counter Counter
	if _, err := InstallationChecklist(hw, HardwarePrefix, &counter, status); err != nil {
		t.Fatal(err)
	}
	records, err := InstallationChecklist(sw, SoftwarePrefix, &counter, status)
	if err != nil {
		t.Fatal(err)
	}

	if records[0]["s_id"] != "3" {
		t.Errorf("s_id = %q, want 3", records[0]["s_id"])
	}
	if records[0]["s_yes_no"] != "Yes" || records[0]["s_date"] != "17-Oct-2026" {
		t.Errorf("execution values = %q, %q", records[0]["s_yes_no"], records[0]["s_date"])
	}
}

func TestInstallationChecklistMissingColumn(t *testing.T) {
	table := parseTable(t, "hw.txt", "Description\tNotes\nCheck power\tx\n")

	var counter Counter
	_, err := InstallationChecklist(table, HardwarePrefix, &counter, types.NotExecuted)

	var mce *types.MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("error = %v, want MissingColumnError", err)
	}
	if mce.Column != ColRequirement {
		t.Errorf("Column = %q, want %q", mce.Column, ColRequirement)
	}
}

func TestInstallationChecklistEmpty(t *testing.T) {
	table := parseTable(t, "hw.txt", "Description\tRequirement\n")

	var counter Counter
	records, err := InstallationChecklist(table, HardwarePrefix, &counter, types.NotExecuted)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(records) != 0 || counter.Value() != 0 {
		t.Errorf("got %d records, counter %d; want none", len(records), counter.Value())
	}
}

// TestReplicates tests generated and explicit test IDs
func TestReplicates(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIDs []string
	}{
		{
			name:    "generated IDs",
			content: "Test Procedure\tExpected Finding\nLog in\tHome page shown\nLog out\tLogin page shown\n",
			wantIDs: []string{"T1", "T2"},
		},
		{
			name:    "explicit IDs",
			content: "Test Number\tTest Procedure\tExpected Finding\nOQ-7\tLog in\tHome page shown\nOQ-9\tLog out\tLogin page shown\n",
			wantIDs: []string{"OQ-7", "OQ-9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := parseTable(t, "oq.txt", tt.content)

			rep1, rep2, err := Replicates(table, types.Executed("17-Oct-2026"))
			if err != nil {
				t.Fatalf("Replicates() error = %v", err)
			}
			if len(rep1) != len(tt.wantIDs) || len(rep2) != len(tt.wantIDs) {
				t.Fatalf("got %d/%d records, want %d", len(rep1), len(rep2), len(tt.wantIDs))
			}

			for i, id := range tt.wantIDs {
				if rep1[i][KeyReplicate1] != id || rep2[i][KeyReplicate2] != id {
					t.Errorf("row %d IDs = %q/%q, want %q", i, rep1[i][KeyReplicate1], rep2[i][KeyReplicate2], id)
				}
				if rep1[i]["test_procedure_rep1"] != rep2[i]["test_procedure_rep2"] {
					t.Errorf("row %d procedures differ between replicates", i)
				}
				for _, r := range []types.Record{rep1[i], rep2[i]} {
					if r["yes_no"] != "Yes" || r["date_initialed"] != "17-Oct-2026" {
						t.Errorf("row %d execution values = %q, %q", i, r["yes_no"], r["date_initialed"])
					}
				}
			}
			if rep1[0]["expected_finding_rep1"] != "Home page shown" {
				t.Errorf("expected_finding_rep1 = %q", rep1[0]["expected_finding_rep1"])
			}
		})
	}
}

func TestReplicatesMissingColumn(t *testing.T) {
	table := parseTable(t, "oq.txt", "Test Procedure\nLog in\n")

	_, _, err := Replicates(table, types.NotExecuted)
	if !errors.Is(err, types.ErrMissingColumn) {
		t.Errorf("error = %v, want ErrMissingColumn", err)
	}
}

func TestTestData(t *testing.T) {
	table := parseTable(t, "td.txt", "Name\tDescription\nSample A\tPlasma\nSample B\n")

	records, err := TestData(table)
	if err != nil {
		t.Fatalf("TestData() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["test_data_name"] != "Sample A" || records[0]["test_data_desc"] != "Plasma" {
		t.Errorf("record 0 = %v", records[0])
	}
	if records[1]["test_data_desc"] != "" {
		t.Errorf("short row desc = %q, want empty", records[1]["test_data_desc"])
	}
}

func TestPlaceholderTestData(t *testing.T) {
	records := PlaceholderTestData()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0][KeyTestData] != Placeholder || records[0]["test_data_desc"] != Placeholder {
		t.Errorf("placeholder = %v", records[0])
	}
}

func TestUserRequirements(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIDs []string
	}{
		{
			name:    "generated IDs",
			content: "Requirement Description\tCriticality\nUsers must log in\tHigh\nAudit trail is kept\tMedium\n",
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "explicit IDs",
			content: "ID\tRequirement Description\tCriticality\nUR-1\tUsers must log in\tHigh\nUR-2\tAudit trail is kept\tMedium\n",
			wantIDs: []string{"UR-1", "UR-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := UserRequirements(parseTable(t, "ur.txt", tt.content))
			if err != nil {
				t.Fatalf("UserRequirements() error = %v", err)
			}
			for i, id := range tt.wantIDs {
				if records[i][KeyRequirements] != id {
					t.Errorf("record %d id = %q, want %q", i, records[i][KeyRequirements], id)
				}
				if _, ok := records[i]["comment"]; !ok {
					t.Errorf("record %d has no comment key", i)
				}
			}
			if records[1]["req"] != "Audit trail is kept" || records[1]["criticality"] != "Medium" {
				t.Errorf("record 1 = %v", records[1])
			}
		})
	}
}

func TestPlaceholderLists(t *testing.T) {
	status := types.Executed("17-Oct-2026")

	hw := PlaceholderInstallation(HardwarePrefix, status)
	if len(hw) != 1 || hw[0][KeyHardware] != Placeholder || hw[0]["h_yes_no"] != "Yes" {
		t.Errorf("PlaceholderInstallation() = %v", hw)
	}

	rep1, rep2 := PlaceholderReplicates(status)
	if rep1[0][KeyReplicate1] != Placeholder || rep2[0][KeyReplicate2] != Placeholder {
		t.Errorf("PlaceholderReplicates() = %v, %v", rep1, rep2)
	}
	if rep2[0]["date_initialed"] != "17-Oct-2026" {
		t.Errorf("replicate date = %q", rep2[0]["date_initialed"])
	}

	ur := PlaceholderRequirements()
	if len(ur) != 1 || ur[0][KeyRequirements] != Placeholder {
		t.Errorf("PlaceholderRequirements() = %v", ur)
	}
}

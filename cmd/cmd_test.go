package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/validation-docs/internal/audit"
	"github.com/ginjaninja78/validation-docs/internal/testutil"
	"github.com/ginjaninja78/validation-docs/internal/types"
	"github.com/ginjaninja78/validation-docs/pkg/utils"
)

// resetFlags clears the package flag variables between executions
func resetFlags() {
	cfgFile, logFile, verbose = "", "", false
	outDir, templateFilesDir = "", ""
	softwareName, softwareVersion, server = "", "", ""
	documentPreparedBy, documentPreparedDate = "", ""
	lenient, nonInteractive, auditDB = false, false, ""
	warningsAsErrors, errorLog = false, ""
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

// writeProject writes a config, its checklists and one template per
// document type, returning the config path
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"hw.txt": "Description\tRequirement\nCheck power\tMust be grounded\n",
		"sw.txt": "Description\tRequirement\nInstall LIMS\tVersion 4.2\n",
		"oq.txt": "Test Procedure\tExpected Finding\nLog in\tHome page shown\n",
		"pq.txt": "Test Procedure\tExpected Finding\nRun batch\tBatch completes\n",
		"ur.txt": "Requirement Description\tCriticality\nUsers must log in\tHigh\n",
		"validation_docs_config.json": `{
  "IQ": {"template file basename": "iq.docx", "hardware checklist file basename": "hw.txt", "software checklist file basename": "sw.txt"},
  "OQ": {"template file basename": "oq.docx", "checklist file basename": "oq.txt"},
  "PQ": {"template file basename": "pq.docx", "checklist file basename": "pq.txt"},
  "System Specification": {"template file basename": "ss.docx"},
  "Test Plan": {"template file basename": "tp.docx"},
  "User Requirements": {"template file basename": "ur.docx", "checklist file basename": "ur.txt"},
  "Validation Report": {"template file basename": "vr.docx"}
}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	templates := filepath.Join(dir, "template_files_dir")
	if err := os.MkdirAll(templates, 0755); err != nil {
		t.Fatal(err)
	}

	header := testutil.Paragraph(testutil.SimpleField("software_name"))
	installation := testutil.Table(testutil.Row(testutil.SimpleField("h_id"), testutil.SimpleField("h_desc"))) +
		testutil.Table(testutil.Row(testutil.SimpleField("s_id"), testutil.SimpleField("s_desc")))
	worksheet := testutil.Table(testutil.Row(testutil.SimpleField("test_data_name"))) +
		testutil.Table(testutil.Row(testutil.SimpleField("id_rep1"), testutil.SimpleField("test_procedure_rep1"))) +
		testutil.Table(testutil.Row(testutil.SimpleField("id_rep2"), testutil.SimpleField("test_procedure_rep2")))

	bodies := map[string]string{
		"iq.docx": header + installation,
		"oq.docx": header + worksheet,
		"pq.docx": header + worksheet,
		"ss.docx": header + installation,
		"tp.docx": header + worksheet + installation,
		"ur.docx": header + testutil.Table(testutil.Row(testutil.SimpleField("id"), testutil.SimpleField("req"))),
		"vr.docx": header,
	}
	for name, body := range bodies {
		testutil.WriteDocx(t, filepath.Join(templates, name), body, nil)
	}

	return filepath.Join(dir, "validation_docs_config.json")
}

func globalArgs(configPath, out string) []string {
	return []string{
		"generate",
		"--config", configPath,
		"--outdir", out,
		"--software-name", "LIMS",
		"--software-version", "4.2",
		"--server", "labsrv01",
		"--document-prepared-by", "Jane Doe",
		"--document-prepared-date", "17-Oct-2026",
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"generate", "validate", "audit", "version"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestFlags(t *testing.T) {
	for _, name := range []string{"config", "logfile", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s missing", name)
		}
	}

	for _, name := range []string{
		"outdir", "template-files-dir", "software-name", "software-version", "server",
		"document-prepared-by", "document-prepared-date", "lenient", "non-interactive", "audit-db",
	} {
		if generateCmd.Flags().Lookup(name) == nil {
			t.Errorf("generate flag --%s missing", name)
		}
	}
}

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name        string
		flag        string
		lenient     bool
		want        string
		wantNotices int
		wantErr     error
	}{
		{name: "flag", flag: "my.json", want: "my.json"},
		{name: "flag lenient", flag: "my.json", lenient: true, want: "my.json"},
		{name: "lenient default", lenient: true, want: DefaultConfigFile, wantNotices: 1},
		{name: "strict missing", wantErr: types.ErrConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, notices, err := resolveConfigPath(tt.flag, tt.lenient)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want || len(notices) != tt.wantNotices {
				t.Errorf("got %q with %d notices, want %q with %d", got, len(notices), tt.want, tt.wantNotices)
			}
		})
	}
}

// TestGenerate tests a full non-interactive run with an audit trail
func TestGenerate(t *testing.T) {
	configPath := writeProject(t)
	out := filepath.Join(t.TempDir(), "out")
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	args := append(globalArgs(configPath, out), "--non-interactive", "--audit-db", dbPath)
	output, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("generate error = %v\n%s", err, output)
	}

	for _, docType := range types.AllDocTypes {
		path := utils.OutputPath(out, "LIMS", "4.2", docType.Label(), "17-Oct-2026")
		if !utils.FileExists(path) {
			t.Errorf("%s was not written to %s", docType, path)
		}
		if !strings.Contains(output, "Wrote "+string(docType)) {
			t.Errorf("output does not report %s", docType)
		}
	}

	iq := testutil.ReadPart(t, utils.OutputPath(out, "LIMS", "4.2", types.IQ.Label(), "17-Oct-2026"), "word/document.xml")
	if !strings.Contains(iq, "Check power") || !strings.Contains(iq, "Install LIMS") {
		t.Error("IQ checklists were not merged")
	}

	for _, name := range []string{utils.SummaryFileName, "validation-docs.log"} {
		if !utils.FileExists(filepath.Join(out, name)) {
			t.Errorf("%s not written", name)
		}
	}

	db, err := audit.Initialize(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT run_id FROM runs WHERE status = ?", audit.StatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	var runID string
	if rows.Next() {
		rows.Scan(&runID)
	}
	rows.Close()
	if runID == "" {
		t.Fatal("no completed run recorded")
	}

	docs, err := audit.Documents(db, runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != len(types.AllDocTypes) {
		t.Fatalf("recorded %d documents, want %d", len(docs), len(types.AllDocTypes))
	}
	if docs[0].DocType != string(types.IQ) || !docs[0].Executed || len(docs[0].SHA256) != 64 {
		t.Errorf("first document = %+v", docs[0])
	}
	db.Close()

	output, err = execute(t, "", "audit", "--audit-db", dbPath, runID)
	if err != nil {
		t.Fatalf("audit error = %v", err)
	}
	for _, want := range []string{"Run ID:           " + runID, "Status:           completed", "Documents (7):", docs[0].SHA256} {
		if !strings.Contains(output, want) {
			t.Errorf("audit output does not contain %q:\n%s", want, output)
		}
	}
}

func TestAuditErrors(t *testing.T) {
	if _, err := execute(t, "", "audit", "some-run"); !errors.Is(err, types.ErrConfigMissing) {
		t.Errorf("no --audit-db: error = %v, want ErrConfigMissing", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.db")
	if _, err := execute(t, "", "audit", "--audit-db", missing, "some-run"); !errors.Is(err, types.ErrFileNotFound) {
		t.Errorf("missing database: error = %v, want ErrFileNotFound", err)
	}
	if utils.FileExists(missing) {
		t.Error("audit created the database")
	}

	dbPath := filepath.Join(t.TempDir(), "audit.db")
	db, err := audit.Initialize(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()
	if _, err := execute(t, "", "audit", "--audit-db", dbPath, "some-run"); err == nil {
		t.Error("audit of an unknown run succeeded")
	}
}

func TestGenerateDecline(t *testing.T) {
	configPath := writeProject(t)
	out := filepath.Join(t.TempDir(), "out")

	output, err := execute(t, "n\n", globalArgs(configPath, out)...)
	if !errors.Is(err, types.ErrUserAbort) {
		t.Fatalf("error = %v, want ErrUserAbort", err)
	}
	if !strings.Contains(output, ProceedQuestion) {
		t.Errorf("output does not ask to proceed:\n%s", output)
	}

	matches, _ := filepath.Glob(filepath.Join(out, "*.docx"))
	if len(matches) != 0 {
		t.Errorf("declined run wrote %v", matches)
	}
}

func TestGenerateInteractiveExecution(t *testing.T) {
	configPath := writeProject(t)
	out := filepath.Join(t.TempDir(), "out")

	// proceed, IQ executed, OQ not executed, PQ default
	output, err := execute(t, "y\ny\nn\n\n", globalArgs(configPath, out)...)
	if err != nil {
		t.Fatalf("generate error = %v\n%s", err, output)
	}
	for _, q := range []string{"Prepare executed IQ? [Y/n] ", "Prepare executed OQ? [Y/n] ", "Prepare executed PQ? [Y/n] "} {
		if strings.Count(output, q) != 1 {
			t.Errorf("question %q asked %d times", q, strings.Count(output, q))
		}
	}
}

func TestGenerateMissingConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "", "generate", "--outdir", out, "--non-interactive")
	if !errors.Is(err, types.ErrConfigMissing) {
		t.Errorf("no --config: error = %v, want ErrConfigMissing", err)
	}
	if utils.FileExists(out) {
		t.Error("output directory created although --config was not given")
	}

	_, err = execute(t, "", "generate", "--outdir", out, "--non-interactive", "--config", filepath.Join(out, "missing.json"))
	if !errors.Is(err, types.ErrFileNotFound) {
		t.Errorf("missing file: error = %v, want ErrFileNotFound", err)
	}

	// The failure reaches the run log.
	data, err := os.ReadFile(filepath.Join(out, "validation-docs.log"))
	if err != nil {
		t.Fatalf("run log not written: %v", err)
	}
	if !strings.Contains(string(data), "Loading configuration failed") || !strings.Contains(string(data), "missing.json") {
		t.Errorf("run log does not record the failure:\n%s", data)
	}
}

func TestGenerateNonInteractiveNeedsValues(t *testing.T) {
	configPath := writeProject(t)
	out := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "", "generate", "--config", configPath, "--outdir", out, "--non-interactive")
	if err == nil {
		t.Fatal("expected an error for unanswered questions")
	}
}

func TestValidate(t *testing.T) {
	configPath := writeProject(t)

	output, err := execute(t, "", "validate", "--config", configPath)
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "0 error(s)") {
		t.Errorf("output = %s", output)
	}

	// Without test data every OQ/PQ check reports a warning.
	_, err = execute(t, "", "validate", "--config", configPath, "--warnings-as-errors")
	if err == nil {
		t.Error("--warnings-as-errors should fail on warnings")
	}

	if err := os.Remove(filepath.Join(filepath.Dir(configPath), "hw.txt")); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(t.TempDir(), "validation.log")
	output, err = execute(t, "", "validate", "--config", configPath, "--error-log", logPath)
	if err == nil {
		t.Fatalf("validate succeeded with a missing checklist:\n%s", output)
	}
	if !utils.FileExists(logPath) {
		t.Error("error log not written")
	}
}

func TestVersion(t *testing.T) {
	output, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "Version:    "+Version) {
		t.Errorf("output = %s", output)
	}
}

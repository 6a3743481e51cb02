package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOutputPath(t *testing.T) {
	got := OutputPath("/out", "LIMS", "4.2", "IQ Checklist", "17-Oct-2026")
	want := filepath.Join("/out", "LIMS 4.2 - IQ Checklist - 17-Oct-2026.docx")
	if got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		name   string
		format string
		params map[string]string
		want   string
	}{
		{"adds extension", "{label}", map[string]string{"label": "Test Plan"}, "Test Plan.docx"},
		{"keeps extension", "{label}.DOCX", map[string]string{"label": "x"}, "x.DOCX"},
		{"unknown placeholder kept", "{label} {other}", map[string]string{"label": "x"}, "x {other}.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateOutputFileName(tt.format, tt.params); got != tt.want {
				t.Errorf("GenerateOutputFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnsureDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDirectory(dir); err != nil {
		t.Fatalf("EnsureDirectory() error = %v", err)
	}
	if !FileExists(dir) {
		t.Error("directory was not created")
	}
}

func TestFileSHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FileSHA256(path)
	if err != nil {
		t.Fatalf("FileSHA256() error = %v", err)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("FileSHA256() = %s, want %s", got, want)
	}
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	path, err := WriteSummaryLog(RunSummary{
		RunID:     "run-1",
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
		Documents: []DocumentInfo{{DocType: "IQ", OutputFile: "/out/iq.docx", Rows: 3, Executed: true}},
		Failed:    []FailedDocumentInfo{{DocType: "OQ", ErrorMessage: "template missing"}},
	}, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog() error = %v", err)
	}
	if filepath.Base(path) != SummaryFileName {
		t.Errorf("summary written to %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"run-1", "/out/iq.docx", "template missing", "Duration:         2s"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("summary does not contain %q", want)
		}
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, closer, err := NewFileLogger(path, false, "run-42")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("Generated document", "type", "IQ")
	logger.Debug("hidden")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"level=INFO", "run_id=run-42", "source=", `msg="Generated document"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log does not contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record written without verbose")
	}
}

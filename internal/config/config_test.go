package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/validation-docs/internal/types"
)

const sampleJSON = `{
	"software_name": "LIMS",
	"software_version": 4.2,
	"server": "labsrv01",
	"default document prepared by": "Jane Doe",
	"IQ": {
		"template file basename": "IQ_template.docx",
		"hardware checklist file basename": "iq_hardware.txt",
		"software checklist file basename": "iq_software.txt"
	},
	"OQ": {
		"template file basename": "OQ_template.docx",
		"checklist file basename": "oq_checklist.txt"
	}
}`

const sampleYAML = `software_name: LIMS
software_version: "4.2"
IQ:
  template file basename: IQ_template.docx
  hardware checklist file basename: iq_hardware.txt
`

// writeConfig writes content to name inside a temporary directory
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestLoad tests loading JSON and YAML configuration files
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		wantVersion string
		wantDocs    int
		wantErr     bool
	}{
		{
			name:        "JSON config with numeric version",
			file:        "config.json",
			content:     sampleJSON,
			wantVersion: "4.2",
			wantDocs:    2,
		},
		{
			name:        "YAML config",
			file:        "config.yaml",
			content:     sampleYAML,
			wantVersion: "4.2",
			wantDocs:    1,
		},
		{
			name:    "malformed JSON",
			file:    "config.json",
			content: `{"IQ": `,
			wantErr: true,
		},
		{
			name:    "non-string setting",
			file:    "config.json",
			content: `{"IQ": {"template file basename": ["a", "b"]}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)

			cfg, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if cfg.SoftwareVersion != tt.wantVersion {
				t.Errorf("SoftwareVersion = %q, want %q", cfg.SoftwareVersion, tt.wantVersion)
			}
			if len(cfg.Documents) != tt.wantDocs {
				t.Errorf("got %d document sections, want %d", len(cfg.Documents), tt.wantDocs)
			}
			if cfg.Dir != filepath.Dir(path) {
				t.Errorf("Dir = %q, want %q", cfg.Dir, filepath.Dir(path))
			}
		})
	}
}

// TestLoadMissingFile tests that a missing config file is reported as FileNotFound
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, types.ErrFileNotFound) {
		t.Errorf("Load() error = %v, want ErrFileNotFound", err)
	}
}

// TestSetting tests per-document lookups
func TestSetting(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", sampleJSON))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name    string
		docType types.DocType
		key     string
		want    string
		wantErr bool
	}{
		{"present key", types.IQ, KeyTemplateFile, "IQ_template.docx", false},
		{"absent key", types.OQ, KeyTestData, "", true},
		{"absent document type", types.PQ, KeyTemplateFile, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.Setting(tt.docType, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Setting() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, types.ErrConfigMissing) {
				t.Errorf("Setting() error = %v, want ErrConfigMissing", err)
			}
			if got != tt.want {
				t.Errorf("Setting() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInputPath(t *testing.T) {
	path := writeConfig(t, "config.json", sampleJSON)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got, err := cfg.InputPath(types.IQ, KeyHardwareChecklist)
	if err != nil {
		t.Fatalf("InputPath() error = %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "iq_hardware.txt")
	if got != want {
		t.Errorf("InputPath() = %q, want %q", got, want)
	}

	if !cfg.HasSetting(types.OQ, KeyChecklist) {
		t.Error("HasSetting(OQ, checklist) = false")
	}
	if cfg.HasSetting(types.OQ, KeyTestData) {
		t.Error("HasSetting(OQ, test data) = true")
	}
}

func TestDocumentNames(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", sampleJSON))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	names := cfg.DocumentNames()
	if len(names) != 2 || names[0] != "IQ" || names[1] != "OQ" {
		t.Errorf("DocumentNames() = %v", names)
	}
}

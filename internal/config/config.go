// =============================================================================
// Validation Document Generator - Configuration Module
// =============================================================================
//
// This module is responsible for loading the project configuration file and
// answering lookups against it. The file maps each document type to the
// basenames of its template and data files, and carries optional global
// defaults.
//
// CONFIGURATION FILE (JSON, the native format):
//   {
//     "software_name": "LIMS",
//     "software_version": "4.2",
//     "server": "labsrv01",
//     "default document prepared by": "Jane Doe",
//     "template_files_dir": "/opt/validation/templates",
//     "IQ": {
//       "template file basename": "IQ_template.docx",
//       "hardware checklist file basename": "iq_hardware.txt",
//       "software checklist file basename": "iq_software.txt"
//     },
//     "OQ": {
//       "template file basename": "OQ_template.docx",
//       "checklist file basename": "oq_checklist.txt",
//       "test data file basename": "oq_test_data.txt"
//     }
//   }
//
// The same structure may be written as YAML (.yaml / .yml).
//
// =============================================================================

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/validation-docs/internal/types"
)

// =============================================================================
// CONFIGURATION KEYS
// =============================================================================

// Per-document setting keys.
const (
	KeyTemplateFile      = "template file basename"
	KeyHardwareChecklist = "hardware checklist file basename"
	KeySoftwareChecklist = "software checklist file basename"
	KeyChecklist         = "checklist file basename"
	KeyTestData          = "test data file basename"
)

// Top-level default keys.
const (
	KeyTemplateFilesDir   = "template_files_dir"
	KeySoftwareName       = "software_name"
	KeySoftwareVersion    = "software_version"
	KeyServer             = "server"
	KeyDocumentPreparedBy = "default document prepared by"
)

// DefaultTemplateSubdir is the directory next to the config file searched for
// templates when neither the flag nor the config names one.
const DefaultTemplateSubdir = "template_files_dir"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// DocumentSettings maps setting keys (see Key* constants) to file basenames
// for one document type.
type DocumentSettings map[string]string

// Config holds the loaded project configuration. It is read-only once
// Load returns.
type Config struct {
	// Path is the absolute path of the configuration file.
	Path string

	// Dir is the directory containing the configuration file. Checklist and
	// test data basenames are resolved against it.
	Dir string

	// Documents holds the settings of every document type found in the file,
	// keyed by document type name.
	Documents map[string]DocumentSettings

	// Global defaults. An empty value means the key was not set.
	TemplateFilesDir   string
	SoftwareName       string
	SoftwareVersion    string
	Server             string
	DocumentPreparedBy string
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration file at configPath.
//
// PARAMETERS:
//   - configPath: The path to a JSON (or .yaml/.yml) configuration file.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error wrapping types.ErrFileNotFound if the file does not exist, or
//     a parse error if the file is malformed.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, types.FileNotFound("config file", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw, err := decode(configPath, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}

	config, err := fromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration '%s': %w", configPath, err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	config.Path = absPath

	applyConfigDefaults(config)

	return config, nil
}

// decode unmarshals the file by extension: YAML for .yaml/.yml, JSON
// otherwise.
func decode(configPath string, data []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// fromRaw sorts the top-level keys into global defaults and document
// sections. Any object-valued key is a document section.
func fromRaw(raw map[string]interface{}) (*Config, error) {
	config := &Config{Documents: make(map[string]DocumentSettings)}

	for key, value := range raw {
		switch v := value.(type) {
		case map[string]interface{}:
			settings := make(DocumentSettings, len(v))
			for k, sv := range v {
				s, err := scalar(sv)
				if err != nil {
					return nil, fmt.Errorf("'%s' '%s': %w", key, k, err)
				}
				settings[k] = s
			}
			config.Documents[key] = settings

		default:
			s, err := scalar(v)
			if err != nil {
				return nil, fmt.Errorf("'%s': %w", key, err)
			}
			switch key {
			case KeyTemplateFilesDir:
				config.TemplateFilesDir = s
			case KeySoftwareName:
				config.SoftwareName = s
			case KeySoftwareVersion:
				config.SoftwareVersion = s
			case KeyServer:
				config.Server = s
			case KeyDocumentPreparedBy:
				config.DocumentPreparedBy = s
			}
		}
	}

	return config, nil
}

// scalar renders a decoded config value as a string. Versions such as 4.2
// are often written unquoted, so numbers are accepted.
func scalar(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return fmt.Sprintf("%t", x), nil
	case int, int64, float64:
		return fmt.Sprintf("%v", x), nil
	default:
		return "", fmt.Errorf("expected a string value, got %T", v)
	}
}

// applyConfigDefaults sets values derived from the file location.
func applyConfigDefaults(config *Config) {
	if config.Dir == "" {
		config.Dir = filepath.Dir(config.Path)
	}
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Setting returns the value of key in the docType section.
//
// RETURNS:
//   - The configured basename.
//   - An error wrapping types.ErrConfigMissing if the section or the key is
//     absent or empty.
func (c *Config) Setting(docType types.DocType, key string) (string, error) {
	settings, ok := c.Documents[string(docType)]
	if !ok {
		return "", types.ConfigMissing(docType, key)
	}
	value := strings.TrimSpace(settings[key])
	if value == "" {
		return "", types.ConfigMissing(docType, key)
	}
	return value, nil
}

// HasSetting reports whether key is set in the docType section.
func (c *Config) HasSetting(docType types.DocType, key string) bool {
	_, err := c.Setting(docType, key)
	return err == nil
}

// InputPath resolves a data file setting against the config directory.
// Existence is not checked here.
func (c *Config) InputPath(docType types.DocType, key string) (string, error) {
	basename, err := c.Setting(docType, key)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Dir, basename), nil
}

// DocumentNames returns the document section names in sorted order.
func (c *Config) DocumentNames() []string {
	names := make([]string, 0, len(c.Documents))
	for name := range c.Documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

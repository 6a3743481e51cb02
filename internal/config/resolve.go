package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/validation-docs/internal/types"
)

// PreparedDateLayout formats the default document prepared date, e.g.
// 17-Oct-2026.
const PreparedDateLayout = "02-Jan-2006"

// ProgramName names the default output directory and log file.
const ProgramName = "validation-docs"

// Overrides holds values supplied on the command line. Empty means unset.
type Overrides struct {
	OutDir               string
	LogFile              string
	TemplateFilesDir     string
	SoftwareName         string
	SoftwareVersion      string
	Server               string
	DocumentPreparedBy   string
	DocumentPreparedDate string
}

// Params is the document assembly context: the global values written into
// every document header plus the directories used to find inputs and place
// outputs. Resolved once at startup.
type Params struct {
	SoftwareName         string
	SoftwareVersion      string
	Server               string
	DocumentPreparedBy   string
	DocumentPreparedDate string
	TemplateFilesDir     string
	OutDir               string
	LogFile              string
	ConfigDir            string
}

// HeaderFields returns the scalar merge fields common to every document.
func (p *Params) HeaderFields() map[string]string {
	return map[string]string{
		"document_prepared_by":   p.DocumentPreparedBy,
		"document_prepared_date": p.DocumentPreparedDate,
		"software_name":          p.SoftwareName,
		"software_version":       p.SoftwareVersion,
		"server":                 p.Server,
	}
}

// Asker asks the operator a free-text question.
type Asker interface {
	Ask(question string) (string, error)
}

// Notices collects messages about defaults that were applied during
// resolution. The command layer prints them.
type Notices []string

func (n *Notices) add(format string, args ...interface{}) {
	*n = append(*n, fmt.Sprintf(format, args...))
}

// =============================================================================
// OUTPUT LOCATIONS
// =============================================================================

// ResolveOutput settles the prepared date, output directory and log file.
// These are needed before the config file is read so that logging can start
// first. The output directory is created when missing.
func ResolveOutput(o Overrides, now time.Time) (*Params, Notices, error) {
	var notices Notices
	p := &Params{}

	p.DocumentPreparedDate = o.DocumentPreparedDate
	if p.DocumentPreparedDate == "" {
		p.DocumentPreparedDate = now.Format(PreparedDateLayout)
		notices.add("--document-prepared-date was not specified and therefore was set to '%s'", p.DocumentPreparedDate)
	}

	p.OutDir = o.OutDir
	if p.OutDir == "" {
		p.OutDir = DefaultOutDir(now)
		notices.add("--outdir was not specified and therefore was set to '%s'", p.OutDir)
	}

	if _, err := os.Stat(p.OutDir); os.IsNotExist(err) {
		if err := os.MkdirAll(p.OutDir, 0755); err != nil {
			return nil, notices, fmt.Errorf("failed to create output directory %s: %w", p.OutDir, err)
		}
		notices.add("Created output directory '%s'", p.OutDir)
	}

	p.LogFile = o.LogFile
	if p.LogFile == "" {
		p.LogFile = filepath.Join(p.OutDir, ProgramName+".log")
		notices.add("--logfile was not specified and therefore was set to '%s'", p.LogFile)
	}

	return p, notices, nil
}

// DefaultOutDir returns the timestamped default output directory.
func DefaultOutDir(now time.Time) string {
	return filepath.Join(os.TempDir(), ProgramName, now.Format("2006-01-02-150405"))
}

// =============================================================================
// GLOBAL PARAMETERS
// =============================================================================

// ResolveParams fills the remaining global parameters of p. Each value comes
// from the command line first, then the config file, then the operator.
//
// PARAMETERS:
//   - p: Params returned by ResolveOutput; completed in place.
//   - o: Command line overrides.
//   - cfg: The loaded configuration.
//   - asker: Asked for values that neither the flags nor the config provide.
//
// RETURNS:
//   - Notices about defaults taken from the config file.
//   - An error wrapping types.ErrFileNotFound when no template directory can
//     be found, or a prompt error.
func ResolveParams(p *Params, o Overrides, cfg *Config, asker Asker) (Notices, error) {
	var notices Notices
	var err error

	p.ConfigDir = cfg.Dir

	p.DocumentPreparedBy = o.DocumentPreparedBy
	if p.DocumentPreparedBy == "" {
		if cfg.DocumentPreparedBy != "" {
			p.DocumentPreparedBy = cfg.DocumentPreparedBy
			notices.add("--document-prepared-by was not specified and therefore was set to '%s'", p.DocumentPreparedBy)
		} else {
			p.DocumentPreparedBy, err = ask(asker, "What is the first and last name of the person that will prepare the documents? ")
			if err != nil {
				return notices, err
			}
		}
	}

	var dirNotices Notices
	p.TemplateFilesDir, dirNotices, err = ResolveTemplateDir(o.TemplateFilesDir, cfg)
	notices = append(notices, dirNotices...)
	if err != nil {
		return notices, err
	}

	fallbacks := []struct {
		flag     string
		fromCfg  string
		question string
		target   *string
	}{
		{o.SoftwareName, cfg.SoftwareName, "What is the software name? ", &p.SoftwareName},
		{o.SoftwareVersion, cfg.SoftwareVersion, "What is the software version? ", &p.SoftwareVersion},
		{o.Server, cfg.Server, "What is the server? ", &p.Server},
	}
	for _, f := range fallbacks {
		switch {
		case f.flag != "":
			*f.target = f.flag
		case f.fromCfg != "":
			*f.target = f.fromCfg
		default:
			if *f.target, err = ask(asker, f.question); err != nil {
				return notices, err
			}
		}
	}

	return notices, nil
}

// ResolveTemplateDir picks the template directory: flag, then the config's
// template_files_dir, then a template_files_dir next to the config file.
func ResolveTemplateDir(flagValue string, cfg *Config) (string, Notices, error) {
	var notices Notices
	dir := flagValue

	if dir == "" {
		if cfg.TemplateFilesDir != "" {
			dir = cfg.TemplateFilesDir
			notices.add("--template-files-dir was not specified and therefore was set to '%s'", dir)
		} else {
			dir = filepath.Join(cfg.Dir, DefaultTemplateSubdir)
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return "", notices, fmt.Errorf("%w: '%s' does not exist in the configuration file '%s' and was not found here '%s'",
					types.ErrFileNotFound, KeyTemplateFilesDir, cfg.Path, dir)
			}
			notices.add("--template-files-dir was not specified and therefore was set to '%s'", dir)
		}
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return "", notices, types.FileNotFound("template_files_dir", dir)
	}
	if err != nil {
		return "", notices, fmt.Errorf("failed to check template directory: %w", err)
	}
	if !info.IsDir() {
		return "", notices, fmt.Errorf("template_files_dir '%s' is not a directory", dir)
	}

	return dir, notices, nil
}

func ask(asker Asker, question string) (string, error) {
	answer, err := asker.Ask(question)
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

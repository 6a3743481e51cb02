package generator

import (
	"github.com/ginjaninja78/validation-docs/internal/checklist"
	"github.com/ginjaninja78/validation-docs/internal/config"
	"github.com/ginjaninja78/validation-docs/internal/tabparser"
	"github.com/ginjaninja78/validation-docs/internal/types"
	"github.com/ginjaninja78/validation-docs/pkg/utils"
)

// =============================================================================
// ASSEMBLERS
// =============================================================================
//
// Each document type differs only in where its execution status comes from
// and which record lists fill its repeating rows:
//
//   Document Type          Row lists (key field)
//   IQ                     hardware (h_id), software (s_id)
//   OQ / PQ                test data (test_data_name), replicate 1 (id_rep1),
//                          replicate 2 (id_rep2)
//   System Specification   hardware (h_id), software (s_id)
//   Test Plan              test data (test_data_name), replicate 1 (id_rep1),
//                          hardware (h_id), software (s_id)
//   User Requirements      requirements (id)
//   Validation Report      none
//
// =============================================================================

// Input is a data file entry a document reads.
type Input struct {
	// Section is the configuration section holding the entry.
	Section types.DocType

	// Key is the setting name within the section.
	Key string

	// Optional entries fall back to placeholder rows with a warning.
	Optional bool

	// Columns are the header columns the file must carry.
	Columns []string
}

// assembler describes how one document type is filled.
type assembler struct {
	// statusFrom names the document whose execution status the rows carry.
	statusFrom types.DocType

	// inputs are the data file entries, checked before any file is read.
	inputs []Input

	// keys are the key fields of the repeating rows, in merge order.
	keys []string

	// rows loads the record lists. Nil for documents with no table rows.
	rows func(g *Generator, status types.ExecutionStatus) ([]types.RowList, error)
}

var (
	installationInputs = []Input{
		{Section: types.IQ, Key: config.KeyHardwareChecklist, Columns: checklist.InstallationColumns},
		{Section: types.IQ, Key: config.KeySoftwareChecklist, Columns: checklist.InstallationColumns},
	}
	installationKeys = []string{checklist.KeyHardware, checklist.KeySoftware}
	testingKeys      = []string{checklist.KeyTestData, checklist.KeyReplicate1, checklist.KeyReplicate2}
)

func testingInputs(section types.DocType) []Input {
	return []Input{
		{Section: section, Key: config.KeyChecklist, Columns: checklist.TestChecklistColumns},
		{Section: section, Key: config.KeyTestData, Optional: true, Columns: checklist.TestDataColumns},
	}
}

var assemblers = map[types.DocType]assembler{
	types.IQ: {
		statusFrom: types.IQ,
		inputs:     installationInputs,
		keys:       installationKeys,
		rows:       installationRows,
	},
	types.OQ: {
		statusFrom: types.OQ,
		inputs:     testingInputs(types.OQ),
		keys:       testingKeys,
		rows:       testingRows(types.OQ),
	},
	types.PQ: {
		statusFrom: types.PQ,
		inputs:     testingInputs(types.PQ),
		keys:       testingKeys,
		rows:       testingRows(types.PQ),
	},
	types.SystemSpecification: {
		statusFrom: types.IQ,
		inputs:     installationInputs,
		keys:       installationKeys,
		rows:       installationRows,
	},
	types.TestPlan: {
		statusFrom: types.OQ,
		inputs:     append(testingInputs(types.OQ), installationInputs...),
		keys:       []string{checklist.KeyTestData, checklist.KeyReplicate1, checklist.KeyHardware, checklist.KeySoftware},
		rows:       testPlanRows,
	},
	types.UserRequirements: {
		inputs: []Input{{Section: types.UserRequirements, Key: config.KeyChecklist, Columns: checklist.RequirementColumns}},
		keys:   []string{checklist.KeyRequirements},
		rows:   requirementRows,
	},
	types.ValidationReport: {},
}

// Inputs returns the data file entries docType reads.
func Inputs(docType types.DocType) []Input {
	return assemblers[docType].inputs
}

// RowKeys returns the key fields of the repeating rows of docType.
func RowKeys(docType types.DocType) []string {
	return assemblers[docType].keys
}

// =============================================================================
// ROW LIST BUILDERS
// =============================================================================

func installationRows(g *Generator, _ types.ExecutionStatus) ([]types.RowList, error) {
	lists, err := g.installation()
	if err != nil {
		return nil, err
	}
	return []types.RowList{
		{Key: checklist.KeyHardware, Records: lists.hardware},
		{Key: checklist.KeySoftware, Records: lists.software},
	}, nil
}

// testingRows fills an OQ or PQ worksheet from the section's own entries.
func testingRows(section types.DocType) func(*Generator, types.ExecutionStatus) ([]types.RowList, error) {
	return func(g *Generator, status types.ExecutionStatus) ([]types.RowList, error) {
		testData, err := g.testData(section)
		if err != nil {
			return nil, err
		}
		rep1, rep2, err := g.replicates(section, status)
		if err != nil {
			return nil, err
		}
		return []types.RowList{
			{Key: checklist.KeyTestData, Records: testData},
			{Key: checklist.KeyReplicate1, Records: rep1},
			{Key: checklist.KeyReplicate2, Records: rep2},
		}, nil
	}
}

// testPlanRows fills the Test Plan from the OQ entries and the IQ checklists.
func testPlanRows(g *Generator, status types.ExecutionStatus) ([]types.RowList, error) {
	testData, err := g.testData(types.OQ)
	if err != nil {
		return nil, err
	}
	rep1, _, err := g.replicates(types.OQ, status)
	if err != nil {
		return nil, err
	}
	lists, err := g.installation()
	if err != nil {
		return nil, err
	}
	return []types.RowList{
		{Key: checklist.KeyTestData, Records: testData},
		{Key: checklist.KeyReplicate1, Records: rep1},
		{Key: checklist.KeyHardware, Records: lists.hardware},
		{Key: checklist.KeySoftware, Records: lists.software},
	}, nil
}

func requirementRows(g *Generator, _ types.ExecutionStatus) ([]types.RowList, error) {
	table, err := g.table(types.UserRequirements, config.KeyChecklist)
	if err != nil {
		return nil, err
	}

	records := checklist.PlaceholderRequirements()
	if table != nil {
		if records, err = checklist.UserRequirements(table); err != nil {
			return nil, err
		}
	}
	return []types.RowList{{Key: checklist.KeyRequirements, Records: records}}, nil
}

// =============================================================================
// INPUT LOADING
// =============================================================================

// installation returns the IQ hardware and software records, reading them
// the first time. They always carry the IQ execution status, whichever
// document asks first.
func (g *Generator) installation() (*installationLists, error) {
	s := g.session
	if s.installation != nil {
		return s.installation, nil
	}

	status, err := s.executionStatus(types.IQ)
	if err != nil {
		return nil, err
	}

	hardware, err := g.installationChecklist(config.KeyHardwareChecklist, checklist.HardwarePrefix, status)
	if err != nil {
		return nil, err
	}
	software, err := g.installationChecklist(config.KeySoftwareChecklist, checklist.SoftwarePrefix, status)
	if err != nil {
		return nil, err
	}

	s.installation = &installationLists{hardware: hardware, software: software}
	return s.installation, nil
}

func (g *Generator) installationChecklist(key, prefix string, status types.ExecutionStatus) ([]types.Record, error) {
	table, err := g.table(types.IQ, key)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return checklist.PlaceholderInstallation(prefix, status), nil
	}
	return checklist.InstallationChecklist(table, prefix, &g.session.counter, status)
}

func (g *Generator) replicates(section types.DocType, status types.ExecutionStatus) (rep1, rep2 []types.Record, err error) {
	table, err := g.table(section, config.KeyChecklist)
	if err != nil {
		return nil, nil, err
	}
	if table == nil {
		rep1, rep2 = checklist.PlaceholderReplicates(status)
		return rep1, rep2, nil
	}
	return checklist.Replicates(table, status)
}

// testData reads the section's test data. A section without a test data
// entry gets the placeholder record in every mode.
func (g *Generator) testData(section types.DocType) ([]types.Record, error) {
	if !g.session.Config.HasSetting(section, config.KeyTestData) {
		g.warn("no '%s' configured for %s; using %s", config.KeyTestData, section, checklist.Placeholder)
		return checklist.PlaceholderTestData(), nil
	}

	table, err := g.table(section, config.KeyTestData)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return checklist.PlaceholderTestData(), nil
	}
	return checklist.TestData(table)
}

// table reads the data file named by a configuration entry.
//
// RETURNS:
//   - The parsed table.
//   - nil, nil in lenient mode when the entry or the file is missing; the
//     caller substitutes placeholder rows. A warning is recorded.
//   - An error wrapping types.ErrConfigMissing or types.ErrFileNotFound
//     otherwise.
func (g *Generator) table(section types.DocType, key string) (*tabparser.Table, error) {
	path, err := g.session.Config.InputPath(section, key)
	if err == nil && !utils.FileExists(path) {
		err = types.FileNotFound("file", path)
	}
	if err != nil {
		if g.session.Lenient {
			g.warn("%v; using placeholder rows", err)
			return nil, nil
		}
		return nil, err
	}

	table, err := tabparser.Parse(path)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Read input file", "path", path, "rows", table.Len())
	return table, nil
}

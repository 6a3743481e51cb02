package tabparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseWorkbook reads the first sheet of an .xlsx file with the same
// header-row rule as the tab-delimited reader.
func parseWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook '%s' has no sheets", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of '%s': %w", path, err)
	}

	var header []string
	var data [][]string
	var lines []int

	for i, row := range rows {
		if header == nil {
			if len(row) == 0 {
				continue
			}
			header = row
			continue
		}
		// GetRows returns empty rows between populated ones; the text
		// reader skips blank lines, so the workbook reader does too.
		if len(row) == 0 {
			continue
		}
		data = append(data, row)
		lines = append(lines, i+1)
	}

	return newTable(path, header, data, lines), nil
}

// =============================================================================
// Validation Document Generator - Tab-Delimited Parser Module
// =============================================================================
//
// This module reads the checklist, requirement and test data files that feed
// the document templates. Every file has the same shape:
//   - Row 1 is the header. Each column name is mapped to its position.
//   - Every following row is a data row, looked up by column name.
//
// FORMATS:
//   - Tab-delimited text (any extension other than .xlsx)
//   - Excel workbooks (.xlsx), first sheet only
//
// Values are kept verbatim: no trimming, no type conversion.
//
// =============================================================================

package tabparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/validation-docs/internal/types"
)

// utf8BOM is stripped from the first header cell; spreadsheet exports often
// start with it.
const utf8BOM = "\ufeff"

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is a parsed input file.
type Table struct {
	// SourceFile is the path the table was read from.
	SourceFile string

	// Headers contains the column names of the header row in file order.
	Headers []string

	// Rows contains the data rows (header excluded) in file order.
	Rows [][]string

	// index maps a column name to its position. When a name repeats, the
	// last position wins.
	index map[string]int

	// lines holds the 1-based source line of each data row, for errors.
	lines []int
}

// newTable builds a Table from a header row and data rows.
func newTable(source string, header []string, rows [][]string, lines []int) *Table {
	t := &Table{
		SourceFile: source,
		Headers:    header,
		Rows:       rows,
		index:      make(map[string]int, len(header)),
		lines:      lines,
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i, name := range header {
		t.index[name] = i
	}
	return t
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the input file at path.
//
// PARAMETERS:
//   - path: The tab-delimited or .xlsx file.
//
// RETURNS:
//   - The parsed Table. A file with only a header (or nothing at all) gives
//     a Table with no rows.
//   - An error wrapping types.ErrFileNotFound if path does not exist, or a
//     read error.
func Parse(path string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, types.FileNotFound("file", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return parseWorkbook(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(bufio.NewReader(file), path)
}

// ParseReader reads tab-delimited content from r. source names the content
// in errors.
func ParseReader(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	configureReader(reader)

	var header []string
	var rows [][]string
	var lines []int

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading '%s': %w", source, err)
		}

		if header == nil {
			header = record
			continue
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}

	return newTable(source, header, rows, lines), nil
}

// configureReader sets the reader up for tab-delimited input.
func configureReader(reader *csv.Reader) {
	reader.Comma = '\t'

	// Rows may have fewer cells than the header when trailing cells are
	// empty.
	reader.FieldsPerRecord = -1

	// Free text often contains stray quotes.
	reader.LazyQuotes = true
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether the header contains column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Require checks that every column is present in the header. The first
// missing column is reported as a *types.MissingColumnError.
func (t *Table) Require(columns ...string) error {
	for _, column := range columns {
		if !t.Has(column) {
			return &types.MissingColumnError{File: t.SourceFile, Column: column, Line: 1}
		}
	}
	return nil
}

// Value returns the cell of data row i (0-based) under column.
//
// RETURNS:
//   - The cell value. A row shorter than the header yields "" for the
//     missing trailing cells.
//   - A *types.MissingColumnError if the header has no such column.
func (t *Table) Value(i int, column string) (string, error) {
	pos, ok := t.index[column]
	if !ok {
		return "", &types.MissingColumnError{File: t.SourceFile, Column: column, Line: t.Line(i)}
	}

	row := t.Rows[i]
	if pos >= len(row) {
		return "", nil
	}
	return row[pos], nil
}

// Line returns the source line of data row i.
func (t *Table) Line(i int) int {
	if i >= 0 && i < len(t.lines) {
		return t.lines[i]
	}
	return i + 2
}

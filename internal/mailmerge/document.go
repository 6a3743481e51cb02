// =============================================================================
// Validation Document Generator - Mail Merge Module
// =============================================================================
//
// This module fills Word (.docx) templates. A template marks the places to
// fill with MERGEFIELD fields, either simple fields (w:fldSimple) or complex
// fields (w:fldChar begin/separate/end runs around a w:instrText).
//
// OPERATIONS:
//   - Merge replaces fields by name with plain text.
//   - MergeRows repeats the table row that holds a key field once per
//     record and fills each copy from its record.
//   - Write saves the result. Unfilled fields are left as they are.
//
// Fields are merged in the main document part and in every header and
// footer part. Output is deterministic: the same template and the same
// values always give the same bytes.
//
// =============================================================================

package mailmerge

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"time"
)

const (
	documentPart = "word/document.xml"
	settingsPart = "word/settings.xml"
)

// mergeablePart matches the parts that may hold merge fields.
var mergeablePart = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

// entry is one file of the .docx package.
type entry struct {
	name      string
	method    uint16
	modified  time.Time
	data      []byte
	root      *node
	mergeable bool
}

// Document is an opened template.
type Document struct {
	// Path is the file the template was opened from.
	Path string

	entries []*entry
}

// Open reads the template at path.
//
// PARAMETERS:
//   - path: A .docx file.
//
// RETURNS:
//   - The Document, ready to merge.
//   - An error if the file is not a readable zip, has no main document
//     part, or holds malformed XML in a part that is edited.
func Open(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template '%s': %w", path, err)
	}
	defer zr.Close()

	doc := &Document{Path: path}
	hasDocument := false

	for _, f := range zr.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s' in '%s': %w", f.Name, path, err)
		}

		e := &entry{
			name:      f.Name,
			method:    f.Method,
			modified:  f.Modified,
			data:      data,
			mergeable: mergeablePart.MatchString(f.Name),
		}

		if e.mergeable || f.Name == settingsPart {
			if e.root, err = parseXML(data); err != nil {
				return nil, fmt.Errorf("failed to parse '%s' in '%s': %w", f.Name, path, err)
			}
		}
		if f.Name == documentPart {
			hasDocument = true
		}

		doc.entries = append(doc.entries, e)
	}

	if !hasDocument {
		return nil, fmt.Errorf("'%s' is not a Word document: %s is missing", path, documentPart)
	}

	return doc, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FieldNames returns the sorted, distinct names of the merge fields still
// present in the document.
func (d *Document) FieldNames() []string {
	seen := make(map[string]bool)
	for _, e := range d.entries {
		if !e.mergeable {
			continue
		}
		for _, f := range findFields(e.root) {
			seen[f.name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge replaces every field named in values with its value and returns the
// number of fields replaced. Fields with no value are left untouched.
func (d *Document) Merge(values map[string]string) int {
	replaced := 0
	for _, e := range d.entries {
		if e.mergeable {
			replaced += mergeFields(e.root, values)
		}
	}
	return replaced
}

// MergeRows expands the table rows that contain the key field.
//
// Each such row is replaced by one copy per record, in record order, with
// the copy's fields filled from the record. An empty records list removes
// the row.
//
// RETURNS:
//   - The number of template rows expanded. Zero means the document has no
//     table row holding key.
func (d *Document) MergeRows(key string, records []map[string]string) int {
	expanded := 0

	for _, e := range d.entries {
		if !e.mergeable {
			continue
		}

		var rows []*node
		seen := make(map[*node]bool)
		for _, f := range findFields(e.root) {
			if f.name != key {
				continue
			}
			row := f.parent.ancestor("w:tr")
			if row == nil || seen[row] {
				continue
			}
			seen[row] = true
			rows = append(rows, row)
		}

		for _, row := range rows {
			copies := make([]*node, 0, len(records))
			for _, record := range records {
				c := row.clone()
				mergeFields(c, record)
				copies = append(copies, c)
			}

			parent := row.parent
			idx := parent.indexOf(row)
			if idx < 0 {
				continue
			}
			parent.replaceChildren(idx, idx, copies...)
			expanded++
		}
	}

	return expanded
}

// Bytes returns the merged .docx package.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range d.entries {
		data := e.data
		if e.name == settingsPart && e.root != nil {
			removeMailMergeSettings(e.root)
		}
		if e.root != nil {
			data = e.root.bytes()
		}

		method := e.method
		if method != zip.Store {
			method = zip.Deflate
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   method,
			Modified: e.modified,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add '%s': %w", e.name, err)
		}
		if len(data) == 0 {
			continue
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write '%s': %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish document: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves the merged document to path.
func (d *Document) Write(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}

// removeMailMergeSettings drops the data source binding so Word does not
// ask for the original data file when the output is opened.
func removeMailMergeSettings(root *node) {
	settings := root.child("w:settings")
	if settings == nil {
		return
	}
	for i := len(settings.children) - 1; i >= 0; i-- {
		c := settings.children[i]
		if c.kind == elementNode && c.name == "w:mailMerge" {
			settings.replaceChildren(i, i)
		}
	}
}

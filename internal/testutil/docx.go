// Package testutil builds Word templates for tests.
package testutil

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/settings.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"/></Types>`

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const settings = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:settings xmlns:w="` + wordNamespace + `"><w:mailMerge><w:mainDocumentType w:val="formLetters"/><w:dataType w:val="textFile"/></w:mailMerge><w:defaultTabStop w:val="720"/></w:settings>`

// SimpleField returns a w:fldSimple MERGEFIELD for name with bold run
// properties.
func SimpleField(name string) string {
	return fmt.Sprintf(`<w:fldSimple w:instr=" MERGEFIELD %s \* MERGEFORMAT "><w:r><w:rPr><w:b/></w:rPr><w:t>«%s»</w:t></w:r></w:fldSimple>`, name, name)
}

// ComplexField returns the begin/instr/separate/result/end runs of a
// MERGEFIELD for name.
func ComplexField(name string) string {
	return `<w:r><w:rPr><w:i/></w:rPr><w:fldChar w:fldCharType="begin"/></w:r>` +
		`<w:r><w:instrText xml:space="preserve"> MERGEFIELD </w:instrText></w:r>` +
		`<w:r><w:instrText xml:space="preserve">` + name + ` </w:instrText></w:r>` +
		`<w:r><w:fldChar w:fldCharType="separate"/></w:r>` +
		`<w:r><w:t>«` + name + `»</w:t></w:r>` +
		`<w:r><w:fldChar w:fldCharType="end"/></w:r>`
}

// Paragraph wraps content in a w:p.
func Paragraph(content ...string) string {
	return "<w:p>" + strings.Join(content, "") + "</w:p>"
}

// Text returns a plain run.
func Text(s string) string {
	return `<w:r><w:t>` + s + `</w:t></w:r>`
}

// Row returns a table row with one cell per content string.
func Row(cells ...string) string {
	var b strings.Builder
	b.WriteString("<w:tr>")
	for _, c := range cells {
		b.WriteString("<w:tc>" + Paragraph(c) + "</w:tc>")
	}
	b.WriteString("</w:tr>")
	return b.String()
}

// Table wraps rows in a w:tbl.
func Table(rows ...string) string {
	return "<w:tbl>" + strings.Join(rows, "") + "</w:tbl>"
}

// Document returns a complete word/document.xml holding body.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="` + wordNamespace + `"><w:body>` + body + `</w:body></w:document>`
}

// Header returns a complete header part holding content.
func Header(content string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:hdr xmlns:w="` + wordNamespace + `">` + content + `</w:hdr>`
}

// WriteDocx writes a .docx package to path. body is the content of
// w:body; extra maps further part names (e.g. "word/header1.xml") to their
// content.
func WriteDocx(t *testing.T, path, body string, extra map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", packageRels},
		{"word/document.xml", Document(body)},
		{"word/settings.xml", settings},
	}
	for name, content := range extra {
		parts = append(parts, struct{ name, content string }{name, content})
	}

	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", p.name, err)
		}
		if _, err := io.WriteString(w, p.content); err != nil {
			t.Fatalf("failed to write %s: %v", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close template: %v", err)
	}
}

// ReadPart returns the content of one part of the .docx at path.
func ReadPart(t *testing.T, path, part string) string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", part, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read %s: %v", part, err)
		}
		return string(data)
	}

	t.Fatalf("%s has no part %s", path, part)
	return ""
}

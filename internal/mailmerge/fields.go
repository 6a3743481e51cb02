package mailmerge

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// mergeFieldPattern extracts the field name from a MERGEFIELD instruction,
// e.g. ` MERGEFIELD software_name \* MERGEFORMAT ` or
// ` MERGEFIELD "Test Number" `. A quoted name may contain spaces.
var mergeFieldPattern = regexp.MustCompile(`^\s*MERGEFIELD\s+(?:"([^"]+)"|([^\s"\\]+))`)

// field is one merge field found in a part. The field occupies
// parent.children[start..end]: a single w:fldSimple element, or the runs
// from the begin fldChar to the end fldChar of a complex field.
type field struct {
	name   string
	parent *node
	start  int
	end    int
	rPr    *node
}

func fieldName(instr string) (string, bool) {
	m := mergeFieldPattern.FindStringSubmatch(instr)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}

// findFields returns the merge fields below root in document order.
func findFields(root *node) []*field {
	var fields []*field

	var visit func(p *node)
	visit = func(p *node) {
		for i := 0; i < len(p.children); i++ {
			c := p.children[i]
			if c.kind != elementNode {
				continue
			}

			if c.name == "w:fldSimple" {
				if name, ok := fieldName(c.attr("w:instr")); ok {
					fields = append(fields, &field{
						name:   name,
						parent: p,
						start:  i,
						end:    i,
						rPr:    c.child("w:r").child("w:rPr"),
					})
					continue
				}
			}

			if c.name == "w:r" && hasFieldChar(c, "begin") {
				if f := complexField(p, i); f != nil {
					fields = append(fields, f)
					i = f.end
					continue
				}
			}

			visit(c)
		}
	}

	visit(root)
	return fields
}

func hasFieldChar(run *node, charType string) bool {
	for _, c := range run.children {
		if c.kind == elementNode && c.name == "w:fldChar" && c.attr("w:fldCharType") == charType {
			return true
		}
	}
	return false
}

// complexField reads the field whose begin fldChar is in p.children[start].
// It returns nil when the field is not a MERGEFIELD or is never closed;
// nested fields inside a non-merge field are then found by the caller's
// normal scan.
func complexField(p *node, start int) *field {
	depth := 0
	separated := false
	var instr strings.Builder

	for j := start; j < len(p.children); j++ {
		run := p.children[j]
		if run.kind != elementNode || run.name != "w:r" {
			continue
		}

		for _, c := range run.children {
			if c.kind != elementNode {
				continue
			}
			switch c.name {
			case "w:fldChar":
				switch c.attr("w:fldCharType") {
				case "begin":
					depth++
				case "separate":
					if depth == 1 {
						separated = true
					}
				case "end":
					depth--
					if depth == 0 {
						name, ok := fieldName(instr.String())
						if !ok {
							return nil
						}
						return &field{
							name:   name,
							parent: p,
							start:  start,
							end:    j,
							rPr:    p.children[start].child("w:rPr"),
						}
					}
				}
			case "w:instrText":
				if depth == 1 && !separated {
					instr.WriteString(c.textContent())
				}
			}
		}
	}

	return nil
}

// lineBreaks normalises every line break a cell may carry to "\n". A
// vertical tab is the manual line break of text copied out of Word.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\v", "\n")

// replace swaps the field for a plain run holding value. The run keeps the
// field's run properties. Line breaks become w:br and tabs become w:tab.
// Characters XML 1.0 cannot carry are dropped.
func (f *field) replace(value string) {
	run := newElement("w:r")
	if f.rPr != nil {
		run.append(f.rPr.clone())
	}

	var text strings.Builder
	flush := func() {
		t := newElement("w:t")
		t.attrs = []xml.Attr{{Name: xml.Name{Space: "xml", Local: "space"}, Value: "preserve"}}
		if text.Len() > 0 {
			t.append(&node{kind: textNode, text: text.String()})
		}
		run.append(t)
		text.Reset()
	}

	for _, r := range lineBreaks.Replace(value) {
		switch {
		case r == '\n':
			flush()
			run.append(newElement("w:br"))
		case r == '\t':
			flush()
			run.append(newElement("w:tab"))
		case isXMLChar(r):
			text.WriteRune(r)
		}
	}
	flush()

	f.parent.replaceChildren(f.start, f.end, run)
}

// isXMLChar reports whether r may appear in XML 1.0 character data. Tab
// and line breaks are handled by the caller.
func isXMLChar(r rune) bool {
	return r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// mergeFields replaces every field below root that has a value. Fields are
// replaced last to first so the child indices of earlier fields stay valid.
func mergeFields(root *node, values map[string]string) int {
	fields := findFields(root)
	replaced := 0
	for i := len(fields) - 1; i >= 0; i-- {
		f := fields[i]
		if value, ok := values[f.name]; ok {
			f.replace(value)
			replaced++
		}
	}
	return replaced
}

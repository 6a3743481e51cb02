package mailmerge

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// nodeKind distinguishes the node types of a parsed part.
type nodeKind int

const (
	documentNode nodeKind = iota
	elementNode
	textNode
	rawNode // comments, processing instructions, directives: written back as is
)

// node is an element of a part's XML tree. Names keep their namespace
// prefix ("w:p") exactly as they appear in the file so the part can be
// written back without rewriting namespace declarations.
type node struct {
	kind     nodeKind
	name     string
	attrs    []xml.Attr
	text     string
	parent   *node
	children []*node
}

func newElement(name string) *node {
	return &node{kind: elementNode, name: name}
}

// parseXML builds the tree of a part.
func parseXML(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root := &node{kind: documentNode}
	cur := root

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &node{kind: elementNode, name: qualified(t.Name)}
			el.attrs = append(el.attrs, t.Attr...)
			cur.append(el)
			cur = el
		case xml.EndElement:
			if cur.parent == nil || cur.name != qualified(t.Name) {
				return nil, fmt.Errorf("unexpected end element </%s>", qualified(t.Name))
			}
			cur = cur.parent
		case xml.CharData:
			cur.append(&node{kind: textNode, text: string(t)})
		case xml.Comment:
			cur.append(&node{kind: rawNode, text: "<!--" + string(t) + "-->"})
		case xml.ProcInst:
			cur.append(&node{kind: rawNode, text: "<?" + t.Target + " " + string(t.Inst) + "?>"})
		case xml.Directive:
			cur.append(&node{kind: rawNode, text: "<!" + string(t) + ">"})
		}
	}

	if cur != root {
		return nil, fmt.Errorf("unclosed element <%s>", cur.name)
	}
	return root, nil
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// =============================================================================
// TREE EDITING
// =============================================================================

func (n *node) append(children ...*node) {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
}

// replaceChildren swaps children[start..end] (inclusive) for nodes.
func (n *node) replaceChildren(start, end int, nodes ...*node) {
	tail := n.children[end+1:]
	out := make([]*node, 0, len(n.children)-(end-start+1)+len(nodes))
	out = append(out, n.children[:start]...)
	for _, c := range nodes {
		c.parent = n
		out = append(out, c)
	}
	out = append(out, tail...)
	n.children = out
}

func (n *node) indexOf(child *node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *node) clone() *node {
	c := &node{kind: n.kind, name: n.name, text: n.text}
	if len(n.attrs) > 0 {
		c.attrs = append([]xml.Attr(nil), n.attrs...)
	}
	for _, child := range n.children {
		c.append(child.clone())
	}
	return c
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (n *node) attr(name string) string {
	for _, a := range n.attrs {
		if qualified(a.Name) == name {
			return a.Value
		}
	}
	return ""
}

// child returns the first child element called name, or nil.
func (n *node) child(name string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.kind == elementNode && c.name == name {
			return c
		}
	}
	return nil
}

// ancestor returns n or its nearest ancestor called name, or nil.
func (n *node) ancestor(name string) *node {
	for p := n; p != nil; p = p.parent {
		if p.kind == elementNode && p.name == name {
			return p
		}
	}
	return nil
}

// textContent concatenates the character data below n.
func (n *node) textContent() string {
	var b strings.Builder
	var walk func(*node)
	walk = func(x *node) {
		if x.kind == textNode {
			b.WriteString(x.text)
		}
		for _, c := range x.children {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// =============================================================================
// SERIALIZATION
// =============================================================================

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

func (n *node) bytes() []byte {
	var b bytes.Buffer
	n.write(&b)
	return b.Bytes()
}

func (n *node) write(b *bytes.Buffer) {
	switch n.kind {
	case documentNode:
		for _, c := range n.children {
			c.write(b)
		}
	case textNode:
		b.WriteString(textEscaper.Replace(n.text))
	case rawNode:
		b.WriteString(n.text)
	case elementNode:
		b.WriteByte('<')
		b.WriteString(n.name)
		for _, a := range n.attrs {
			b.WriteByte(' ')
			b.WriteString(qualified(a.Name))
			b.WriteString(`="`)
			b.WriteString(attrEscaper.Replace(a.Value))
			b.WriteByte('"')
		}
		if len(n.children) == 0 {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		for _, c := range n.children {
			c.write(b)
		}
		b.WriteString("</")
		b.WriteString(n.name)
		b.WriteByte('>')
	}
}

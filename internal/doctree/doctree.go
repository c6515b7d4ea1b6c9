package doctree

import "strings"

// Structural element kinds created by the parser. Any other kind is the
// name of the directive that produced the element.
const (
	KindRoot         = "document-root"
	KindPreamble     = "preamble"
	KindPara         = "para"
	KindSectionTitle = "section-title"
	KindChapter      = "chapter"
	KindSection      = "section"
)

// Node is anything that can appear as a child of an Element.
type Node interface {
	node()
}

// Element is a typed node owning an ordered list of children.
type Element struct {
	Kind     string // Directive name or one of the Kind* constants
	Spaces   string // Whitespace that followed the directive name (chapter/section only)
	Children []Node
}

// Text is a run of literal characters, unescaped.
type Text string

// Comment is the content of a comment directive.
type Comment string

func (*Element) node() {}
func (Text) node()     {}
func (Comment) node()  {}

// NewElement returns an empty element of the given kind.
func NewElement(kind string) *Element {
	return &Element{Kind: kind}
}

// AddElement appends a new child element and returns it.
func (e *Element) AddElement(kind string) *Element {
	child := NewElement(kind)
	e.Children = append(e.Children, child)
	return child
}

// AddText appends s, merging it into a trailing Text child if there is one.
func (e *Element) AddText(s string) {
	if s == "" {
		return
	}
	if n := len(e.Children); n > 0 {
		if prev, ok := e.Children[n-1].(Text); ok {
			e.Children[n-1] = prev + Text(s)
			return
		}
	}
	e.Children = append(e.Children, Text(s))
}

// AddComment appends a comment child.
func (e *Element) AddComment(s string) {
	e.Children = append(e.Children, Comment(s))
}

// Elements returns the direct element children of e.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Title returns the text of the first section-title child, or "".
func (e *Element) Title() string {
	for _, el := range e.Elements() {
		if el.Kind == KindSectionTitle {
			return el.PlainText()
		}
	}
	return ""
}

// FirstTitle returns the text of the first section-title anywhere below
// root, in document order.
func FirstTitle(root *Element) string {
	var title string
	found := false
	Walk(root, func(n Node) bool {
		if found {
			return false
		}
		if el, ok := n.(*Element); ok && el.Kind == KindSectionTitle {
			title, found = el.PlainText(), true
			return false
		}
		return true
	})
	return title
}

// PlainText concatenates every Text in the subtree. Comments are skipped.
func (e *Element) PlainText() string {
	var sb strings.Builder
	Walk(e, func(n Node) bool {
		if t, ok := n.(Text); ok {
			sb.WriteString(string(t))
		}
		return true
	})
	return sb.String()
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if el, ok := n.(*Element); ok {
		for _, c := range el.Children {
			Walk(c, fn)
		}
	}
}

// Stats summarizes a tree.
type Stats struct {
	Elements int            `json:"elements"`
	Texts    int            `json:"texts"`
	Comments int            `json:"comments"`
	Kinds    map[string]int `json:"kinds"`
}

// Count tallies the nodes below and including root.
func Count(root *Element) Stats {
	st := Stats{Kinds: make(map[string]int)}
	Walk(root, func(n Node) bool {
		switch v := n.(type) {
		case *Element:
			st.Elements++
			st.Kinds[v.Kind]++
		case Text:
			st.Texts++
		case Comment:
			st.Comments++
		}
		return true
	})
	return st
}

// Chunk is a sized text segment with structural context, ready for indexing.
type Chunk struct {
	Text       string   `json:"text"`
	Index      int      `json:"index"`
	Breadcrumb []string `json:"breadcrumb"` // Heading hierarchy, e.g. ["Invoking GCC", "Option Summary"]
	Tokens     int      `json:"tokens"`
}

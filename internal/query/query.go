// Package query evaluates XPath expressions against the XML form of a
// parsed document.
package query

import (
	"bytes"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/dgallion1/texi2xml/internal/render"
)

// Match is one node selected by an expression.
type Match struct {
	Name string `json:"name"`
	Text string `json:"text"`
	XML  string `json:"xml"`
}

// Select parses XML from r and returns every node matching expr.
func Select(r io.Reader, expr string) ([]Match, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}

	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	nodes, err := xmlquery.QueryAll(doc, expr)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", expr, err)
	}

	matches := make([]Match, 0, len(nodes))
	for _, n := range nodes {
		matches = append(matches, toMatch(n))
	}
	return matches, nil
}

// SelectTree renders root as XML and selects from it.
func SelectTree(root *doctree.Element, expr string) ([]Match, error) {
	var buf bytes.Buffer
	if err := (&render.XMLRenderer{}).Render(&buf, root); err != nil {
		return nil, fmt.Errorf("render xml: %w", err)
	}
	return Select(&buf, expr)
}

func toMatch(n *xmlquery.Node) Match {
	m := Match{Text: n.InnerText()}
	switch n.Type {
	case xmlquery.ElementNode:
		m.Name = n.Data
		m.XML = n.OutputXML(true)
	case xmlquery.AttributeNode:
		m.Name = "@" + n.Data
		m.XML = m.Text
	case xmlquery.CommentNode:
		m.Name = "#comment"
		m.Text = n.Data
		m.XML = "<!--" + n.Data + "-->"
	default:
		m.Name = "#text"
		m.XML = n.OutputXML(true)
	}
	return m
}

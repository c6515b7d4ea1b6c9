package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/texi2xml/internal/doctree"
)

// xmlHeader matches the declaration emitted by the historical converter.
const xmlHeader = `<?xml version="1.0" ?>`

// xmlTagNames maps structural kinds to the tag names of the XML format.
var xmlTagNames = map[string]string{
	doctree.KindRoot:         "texinfo",
	doctree.KindSectionTitle: "sectiontitle",
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	`"`, "&quot;",
	">", "&gt;",
)

// XMLRenderer writes the compact Texinfo XML format: no indentation, text
// preserved byte for byte apart from escaping.
type XMLRenderer struct{}

func (r *XMLRenderer) Extension() string   { return ".xml" }
func (r *XMLRenderer) ContentType() string { return "application/xml; charset=utf-8" }

func (r *XMLRenderer) Render(w io.Writer, root *doctree.Element) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(xmlHeader)
	writeXMLNode(bw, root)
	return bw.Flush()
}

// XMLTagName returns the tag used for an element kind.
func XMLTagName(kind string) string {
	if name, ok := xmlTagNames[kind]; ok {
		return name
	}
	return kind
}

func writeXMLNode(w *bufio.Writer, n doctree.Node) {
	switch v := n.(type) {
	case doctree.Text:
		xmlEscaper.WriteString(w, string(v))
	case doctree.Comment:
		w.WriteString("<!--")
		w.WriteString(string(v))
		w.WriteString("-->")
	case *doctree.Element:
		tag := XMLTagName(v.Kind)
		w.WriteString("<")
		w.WriteString(tag)
		if v.Kind == doctree.KindChapter || v.Kind == doctree.KindSection {
			w.WriteString(` spaces="`)
			xmlEscaper.WriteString(w, v.Spaces)
			w.WriteString(`"`)
		}
		if len(v.Children) == 0 {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for _, c := range v.Children {
			writeXMLNode(w, c)
		}
		w.WriteString("</")
		w.WriteString(tag)
		w.WriteString(">")
	}
}

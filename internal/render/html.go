package render

import (
	"fmt"
	"io"

	"github.com/dgallion1/texi2xml/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// htmlInlineTags maps inline commands that have a direct HTML equivalent.
var htmlInlineTags = map[string]string{
	"emph":   "em",
	"strong": "strong",
	"b":      "b",
	"i":      "i",
	"dfn":    "dfn",
	"var":    "var",
	"cite":   "cite",
	"code":   "code",
	"samp":   "samp",
	"kbd":    "kbd",
	"t":      "code",
}

// HTMLRenderer builds an x/net/html tree and renders it as a standalone page.
type HTMLRenderer struct{}

func (r *HTMLRenderer) Extension() string   { return ".html" }
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *HTMLRenderer) Render(w io.Writer, root *doctree.Element) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	page := newHTMLElement("html")
	head := newHTMLElement("head")
	head.AppendChild(newHTMLElement("meta", html.Attribute{Key: "charset", Val: "utf-8"}))
	title := newHTMLElement("title")
	title.AppendChild(&html.Node{Type: html.TextNode, Data: doctree.FirstTitle(root)})
	head.AppendChild(title)
	body := newHTMLElement("body")
	page.AppendChild(head)
	page.AppendChild(body)
	doc.AppendChild(page)

	for _, c := range root.Children {
		appendHTML(body, c, root.Kind)
	}
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func newHTMLElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// appendHTML converts n and appends it to parent. parentKind is the kind of
// the tree element n belongs to.
func appendHTML(parent *html.Node, n doctree.Node, parentKind string) {
	switch v := n.(type) {
	case doctree.Text:
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: string(v)})
	case doctree.Comment:
		parent.AppendChild(&html.Node{Type: html.CommentNode, Data: string(v)})
	case *doctree.Element:
		appendHTMLElement(parent, v, parentKind)
	}
}

func appendHTMLElement(parent *html.Node, el *doctree.Element, parentKind string) {
	if el.Kind == doctree.KindPreamble || metadataKinds[el.Kind] {
		return
	}

	var node *html.Node
	switch el.Kind {
	case doctree.KindChapter, doctree.KindSection:
		node = newHTMLElement("section", html.Attribute{Key: "class", Val: el.Kind})
	case doctree.KindSectionTitle:
		node = newHTMLElement(fmt.Sprintf("h%d", headingLevel(parentKind)))
	case doctree.KindPara:
		node = newHTMLElement("p")
	default:
		node = htmlInline(el)
		parent.AppendChild(node)
		return
	}
	for _, c := range el.Children {
		appendHTML(node, c, el.Kind)
	}
	parent.AppendChild(node)
}

// htmlInline converts an inline command. Its content is literal text.
func htmlInline(el *doctree.Element) *html.Node {
	content := el.PlainText()
	var node *html.Node
	switch {
	case inlineStyles[el.Kind] == styleLink:
		url, label := linkTarget(content)
		node = newHTMLElement("a", html.Attribute{Key: "href", Val: url})
		content = label
	case htmlInlineTags[el.Kind] != "":
		node = newHTMLElement(htmlInlineTags[el.Kind])
	case inlineStyles[el.Kind] == styleCode:
		node = newHTMLElement("code", html.Attribute{Key: "class", Val: el.Kind})
	default:
		node = newHTMLElement("span", html.Attribute{Key: "class", Val: el.Kind})
	}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	return node
}

package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/texi2xml/internal/doctree"
)

// MarkdownRenderer writes CommonMark. Chapters become level-1 headings and
// sections level-2 headings.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Extension() string   { return ".md" }
func (r *MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }

func (r *MarkdownRenderer) Render(w io.Writer, root *doctree.Element) error {
	bw := bufio.NewWriter(w)
	writeMarkdownBlocks(bw, root)
	return bw.Flush()
}

func writeMarkdownBlocks(w *bufio.Writer, el *doctree.Element) {
	for _, c := range el.Children {
		switch v := c.(type) {
		case doctree.Text:
			// Only separator newlines sit directly under structural elements.
		case doctree.Comment:
			w.WriteString("<!--" + string(v) + "-->\n\n")
		case *doctree.Element:
			writeMarkdownBlock(w, v, el.Kind)
		}
	}
}

func writeMarkdownBlock(w *bufio.Writer, el *doctree.Element, parentKind string) {
	switch {
	case el.Kind == doctree.KindPreamble || metadataKinds[el.Kind]:
	case el.Kind == doctree.KindChapter || el.Kind == doctree.KindSection:
		writeMarkdownBlocks(w, el)
	case el.Kind == doctree.KindSectionTitle:
		w.WriteString(strings.Repeat("#", headingLevel(parentKind)))
		w.WriteString(" ")
		w.WriteString(strings.TrimSpace(el.PlainText()))
		w.WriteString("\n\n")
	case el.Kind == doctree.KindPara:
		var sb strings.Builder
		for _, c := range el.Children {
			writeMarkdownInline(&sb, c)
		}
		if text := strings.TrimRight(sb.String(), "\n"); text != "" {
			w.WriteString(text)
			w.WriteString("\n\n")
		}
	default:
		var sb strings.Builder
		writeMarkdownInline(&sb, el)
		w.WriteString(sb.String())
		w.WriteString("\n\n")
	}
}

func writeMarkdownInline(sb *strings.Builder, n doctree.Node) {
	switch v := n.(type) {
	case doctree.Text:
		sb.WriteString(string(v))
	case doctree.Comment:
		sb.WriteString("<!--" + string(v) + "-->")
	case *doctree.Element:
		if metadataKinds[v.Kind] {
			return
		}
		content := v.PlainText()
		if content == "" {
			return
		}
		switch inlineStyles[v.Kind] {
		case styleItalic:
			sb.WriteString("*" + content + "*")
		case styleBold:
			sb.WriteString("**" + content + "**")
		case styleCode:
			sb.WriteString("`" + content + "`")
		case styleLink:
			url, label := linkTarget(content)
			if label == url {
				sb.WriteString("<" + url + ">")
			} else {
				sb.WriteString("[" + label + "](" + url + ")")
			}
		default:
			sb.WriteString(content)
		}
	}
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/fumiama/go-docx"
)

// Heading run sizes in half-points.
var docxHeadingSizes = map[int]string{
	1: "32",
	2: "28",
}

// DOCXRenderer writes a Word document: headings as large bold paragraphs,
// paragraphs as runs with italic/bold inline styling.
type DOCXRenderer struct{}

func (r *DOCXRenderer) Extension() string { return ".docx" }
func (r *DOCXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (r *DOCXRenderer) Render(w io.Writer, root *doctree.Element) error {
	doc := docx.New().WithDefaultTheme()
	addDOCXBlocks(doc, root)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func addDOCXBlocks(doc *docx.Docx, el *doctree.Element) {
	for _, c := range el.Elements() {
		switch {
		case c.Kind == doctree.KindPreamble || metadataKinds[c.Kind]:
		case c.Kind == doctree.KindChapter || c.Kind == doctree.KindSection:
			if title := strings.TrimSpace(c.Title()); title != "" {
				doc.AddParagraph().AddText(title).Bold().Size(docxHeadingSizes[headingLevel(c.Kind)])
			}
			addDOCXBlocks(doc, c)
		case c.Kind == doctree.KindSectionTitle:
			// Written with its chapter or section.
		case c.Kind == doctree.KindPara:
			addDOCXParagraph(doc, c.Children)
		default:
			addDOCXParagraph(doc, []doctree.Node{c})
		}
	}
}

type docxRun struct {
	text  string
	style inlineStyle
}

func addDOCXParagraph(doc *docx.Docx, children []doctree.Node) {
	var runs []docxRun
	for _, c := range children {
		switch v := c.(type) {
		case doctree.Text:
			runs = append(runs, docxRun{text: string(v)})
		case *doctree.Element:
			if metadataKinds[v.Kind] {
				continue
			}
			text := v.PlainText()
			style := inlineStyles[v.Kind]
			if style == styleLink {
				_, text = linkTarget(text)
			}
			runs = append(runs, docxRun{text: text, style: style})
		}
	}

	// Source line breaks inside a paragraph are soft.
	for i := range runs {
		runs[i].text = strings.ReplaceAll(runs[i].text, "\n", " ")
	}
	for len(runs) > 0 && strings.TrimSpace(runs[len(runs)-1].text) == "" {
		runs = runs[:len(runs)-1]
	}
	if len(runs) == 0 {
		return
	}
	runs[len(runs)-1].text = strings.TrimRight(runs[len(runs)-1].text, " ")

	para := doc.AddParagraph()
	for _, r := range runs {
		if r.text == "" {
			continue
		}
		run := para.AddText(r.text)
		switch r.style {
		case styleItalic:
			run.Italic()
		case styleBold:
			run.Bold()
		}
	}
}

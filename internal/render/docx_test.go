package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/texi2xml/internal/parser"
	"github.com/fumiama/go-docx"
)

func docxParagraphs(t *testing.T, b []byte) []string {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("parse docx: %v", err)
	}
	var paras []string
	for _, item := range doc.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var sb strings.Builder
		for _, child := range p.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if txt, ok := rc.(*docx.Text); ok {
					sb.WriteString(txt.Text)
				}
			}
		}
		paras = append(paras, sb.String())
	}
	return paras
}

func TestDOCXRenderer(t *testing.T) {
	root, err := parser.Parse(sampleDoc, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := (&DOCXRenderer{}).Render(&buf, root); err != nil {
		t.Fatalf("render: %v", err)
	}

	paras := docxParagraphs(t, buf.Bytes())
	if len(paras) != 4 {
		t.Fatalf("expected 4 paragraphs, got %d: %q", len(paras), paras)
	}
	if paras[0] != "Getting Started" {
		t.Errorf("expected chapter heading first, got %q", paras[0])
	}
	if paras[2] != "Options" {
		t.Errorf("expected section heading third, got %q", paras[2])
	}
	for _, want := range []string{"gcc", "compile", "files."} {
		if !strings.Contains(paras[1], want) {
			t.Errorf("expected %q in first paragraph, got %q", want, paras[1])
		}
	}
	if !strings.Contains(paras[3], "the manual") || strings.Contains(paras[3], "https://") {
		t.Errorf("expected link label without url, got %q", paras[3])
	}
}

func TestDOCXRenderer_Empty(t *testing.T) {
	root, err := parser.Parse("@set DRAFT\n", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := (&DOCXRenderer{}).Render(&buf, root); err != nil {
		t.Fatalf("render: %v", err)
	}
	if paras := docxParagraphs(t, buf.Bytes()); len(paras) != 0 {
		t.Errorf("expected no paragraphs, got %q", paras)
	}
}

package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// PreviewRenderer renders the Markdown form through goldmark, giving a
// lightweight HTML fragment for quick previews.
type PreviewRenderer struct{}

func (r *PreviewRenderer) Extension() string   { return ".preview.html" }
func (r *PreviewRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *PreviewRenderer) Render(w io.Writer, root *doctree.Element) error {
	var md bytes.Buffer
	if err := (&MarkdownRenderer{}).Render(&md, root); err != nil {
		return err
	}
	conv := goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	if err := conv.Convert(md.Bytes(), w); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	return nil
}

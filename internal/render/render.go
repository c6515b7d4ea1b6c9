package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/texi2xml/internal/doctree"
)

// Renderer serializes a parsed tree into an output format.
type Renderer interface {
	Render(w io.Writer, root *doctree.Element) error
	Extension() string
	ContentType() string
}

// Formats lists the output format names accepted by ForFormat.
func Formats() []string {
	return []string{"xml", "html", "markdown", "preview", "docx"}
}

// ForFormat returns the renderer for a format name.
func ForFormat(name string) (Renderer, error) {
	switch strings.ToLower(name) {
	case "xml":
		return &XMLRenderer{}, nil
	case "html", "htm":
		return &HTMLRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "preview":
		return &PreviewRenderer{}, nil
	case "docx":
		return &DOCXRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", name)
	}
}

// IsSupportedFormat checks if a format name is known.
func IsSupportedFormat(name string) bool {
	_, err := ForFormat(name)
	return err == nil
}

// metadataKinds are directives carried in the tree for completeness but
// with nothing to show in a reader-facing format.
var metadataKinds = map[string]bool{
	"set":         true,
	"clear":       true,
	"ifset":       true,
	"ifclear":     true,
	"end":         true,
	"setfilename": true,
}

// inlineStyle is how reader-facing formats present an inline command.
type inlineStyle int

const (
	stylePlain inlineStyle = iota
	styleItalic
	styleBold
	styleCode
	styleLink
)

var inlineStyles = map[string]inlineStyle{
	"emph":    styleItalic,
	"i":       styleItalic,
	"dfn":     styleItalic,
	"var":     styleItalic,
	"cite":    styleItalic,
	"strong":  styleBold,
	"b":       styleBold,
	"code":    styleCode,
	"samp":    styleCode,
	"kbd":     styleCode,
	"option":  styleCode,
	"command": styleCode,
	"env":     styleCode,
	"file":    styleCode,
	"t":       styleCode,
	"uref":    styleLink,
	"url":     styleLink,
}

// linkTarget splits "@uref{url, text}" content into its URL and label.
func linkTarget(content string) (url, label string) {
	url, label, _ = strings.Cut(content, ",")
	url = strings.TrimSpace(url)
	label = strings.TrimSpace(label)
	if label == "" {
		label = url
	}
	return url, label
}

// headingLevel returns 1 for chapters and 2 for sections.
func headingLevel(kind string) int {
	if kind == doctree.KindChapter {
		return 1
	}
	return 2
}

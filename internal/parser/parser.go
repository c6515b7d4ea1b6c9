package parser

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/texi2xml/internal/doctree"
)

// Parser converts raw document bytes into a node tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Element, error)
}

// SupportedExtensions lists file extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".texi":    true,
	".texinfo": true,
	".txi":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, includePaths []string, log *slog.Logger) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".texi", ".texinfo", ".txi":
		return &TexinfoParser{IncludePaths: includePaths, Log: log}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

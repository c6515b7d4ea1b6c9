package chunker

import (
	"slices"
	"strings"

	"github.com/dgallion1/texi2xml/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// ChunkTree walks a parsed document and produces one run of chunks per
// chapter or section body. Paragraphs directly under the root form an
// untitled leading body.
func ChunkTree(root *doctree.Element, cfg Config) []doctree.Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 100
	}

	var chunks []doctree.Chunk
	walkElement(root, nil, cfg, &chunks)
	return chunks
}

// walkElement chunks the paragraphs directly under el, then recurses into
// nested chapters and sections.
func walkElement(el *doctree.Element, breadcrumb []string, cfg Config, chunks *[]doctree.Chunk) {
	bc := breadcrumb
	if el.Kind == doctree.KindChapter || el.Kind == doctree.KindSection {
		bc = append(slices.Clone(breadcrumb), strings.TrimSpace(el.Title()))
	}

	if body := bodyText(el); body != "" {
		parts := []string{body}
		if EstimateTokens(body) > cfg.ChunkSize {
			parts = splitText(body, cfg.ChunkSize, cfg.ChunkOverlap)
		}
		for _, part := range parts {
			tokens := EstimateTokens(part)
			if tokens < cfg.MinChunk {
				continue
			}
			*chunks = append(*chunks, doctree.Chunk{
				Text:       part,
				Index:      len(*chunks),
				Breadcrumb: slices.Clone(bc),
				Tokens:     tokens,
			})
		}
	}

	for _, child := range el.Elements() {
		if child.Kind == doctree.KindChapter || child.Kind == doctree.KindSection {
			walkElement(child, bc, cfg, chunks)
		}
	}
}

// bodyText joins the paragraphs directly under el with blank lines. Source
// line breaks inside a paragraph collapse to single spaces.
func bodyText(el *doctree.Element) string {
	var paras []string
	for _, child := range el.Elements() {
		if child.Kind != doctree.KindPara {
			continue
		}
		if text := strings.Join(strings.Fields(child.PlainText()), " "); text != "" {
			paras = append(paras, text)
		}
	}
	return strings.Join(paras, "\n\n")
}

// splitText breaks text into pieces of about target tokens. Paragraphs are
// packed together; a paragraph that alone exceeds target is packed sentence
// by sentence instead. Each new piece repeats the last overlap tokens of the
// one before it.
func splitText(text string, target, overlap int) []string {
	var out []string
	p := packer{target: target, overlap: overlap, sep: "\n\n"}
	for _, para := range paragraphs(text) {
		if EstimateTokens(para) <= target {
			out = p.add(out, para)
			continue
		}
		out = p.flush(out)
		sp := packer{target: target, overlap: overlap, sep: " "}
		var parts []string
		for _, sent := range sentences(para) {
			parts = sp.add(parts, sent)
		}
		out = append(out, sp.flush(parts)...)
	}
	return p.flush(out)
}

// packer accumulates pieces joined by sep until adding another would pass
// target tokens.
type packer struct {
	target, overlap int
	sep             string

	buf    strings.Builder
	tokens int
}

func (p *packer) add(out []string, piece string) []string {
	n := EstimateTokens(piece)
	if p.tokens > 0 && p.tokens+n > p.target {
		full := p.buf.String()
		out = append(out, full)
		p.buf.Reset()
		p.tokens = 0
		if tail := overlapTail(full, p.overlap); tail != "" {
			p.buf.WriteString(tail)
			p.tokens = EstimateTokens(tail)
		}
	}
	if p.buf.Len() > 0 {
		p.buf.WriteString(p.sep)
	}
	p.buf.WriteString(piece)
	p.tokens += n
	return out
}

// flush emits whatever is buffered, without carrying overlap forward.
func (p *packer) flush(out []string) []string {
	if p.tokens > 0 {
		out = append(out, p.buf.String())
	}
	p.buf.Reset()
	p.tokens = 0
	return out
}

func paragraphs(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// sentences cuts after '.', '!' or '?' when a space follows.
func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// overlapTail returns the trailing words of text worth about tokens, or ""
// when text is not longer than that.
func overlapTail(text string, tokens int) string {
	words := strings.Fields(text)
	n := tokens * 3 / 4
	if n <= 0 || len(words) <= n {
		return ""
	}
	return strings.Join(words[len(words)-n:], " ")
}

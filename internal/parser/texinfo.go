package parser

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/edwingeng/deque"
)

// preambleMagic starts the header line of a Texinfo source file.
const preambleMagic = `\input texinfo`

type directiveKind int

const (
	directiveGeneric directiveKind = iota
	directiveComment
	directiveInclude
	directiveChapter
	directiveSection
)

// fullLineDirectives is the closed set of directives recognized when they
// occupy a whole line. Everything else degrades to literal text.
var fullLineDirectives = map[string]directiveKind{
	"c":           directiveComment,
	"comment":     directiveComment,
	"include":     directiveInclude,
	"chapter":     directiveChapter,
	"section":     directiveSection,
	"end":         directiveGeneric,
	"ifset":       directiveGeneric,
	"ifclear":     directiveGeneric,
	"set":         directiveGeneric,
	"clear":       directiveGeneric,
	"setfilename": directiveGeneric,
}

// TexinfoParser handles Texinfo source.
type TexinfoParser struct {
	// IncludePaths are searched, in order, after the including file's
	// directory when resolving @include.
	IncludePaths []string
	// BaseDir overrides the directory used to resolve top-level includes in
	// Parse. When empty the directory of filename is used.
	BaseDir string
	// Confined rejects include targets that are absolute or climb out of
	// the directory they are searched in.
	Confined bool
	Log      *slog.Logger
}

// Parse reads Texinfo from r and builds its tree.
func (p *TexinfoParser) Parse(r io.Reader, filename string) (*doctree.Element, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if p.BaseDir != "" {
		return p.parse(string(src), p.BaseDir, "")
	}
	if filename == "" {
		return p.parse(string(src), ".", "")
	}
	// filename names the source, so it opens the include chain.
	source, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", filename, err)
	}
	return p.parse(string(src), filepath.Dir(filename), source)
}

// ParseFile reads the file at path and builds its tree. Includes are
// resolved relative to the file's directory first.
func (p *TexinfoParser) ParseFile(path string) (*doctree.Element, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	source, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return p.parse(string(src), filepath.Dir(path), source)
}

func (p *TexinfoParser) parse(content, baseDir, source string) (*doctree.Element, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	b := &builder{
		log:          log,
		baseDir:      baseDir,
		includePaths: p.IncludePaths,
		confined:     p.Confined,
		root:         doctree.NewElement(doctree.KindRoot),
		tokens:       deque.NewDeque(),
	}
	if source != "" {
		b.chain = append(b.chain, includeFrame{path: source, until: -1})
	}
	return b.build(content)
}

// Parse builds the tree for content. Includes are resolved against baseDir
// and then includePaths.
func Parse(content, baseDir string, includePaths []string) (*doctree.Element, error) {
	p := &TexinfoParser{IncludePaths: includePaths}
	return p.parse(content, baseDir, "")
}

// ParseFile reads path and builds its tree.
func ParseFile(path string, includePaths ...string) (*doctree.Element, error) {
	p := &TexinfoParser{IncludePaths: includePaths}
	return p.ParseFile(path)
}

// builder is the per-parse stack machine. Open elements live on stack; the
// have* flags mirror whether an element of that kind is on it.
type builder struct {
	log          *slog.Logger
	baseDir      string
	includePaths []string
	confined     bool

	root        *doctree.Element
	stack       []*doctree.Element
	haveChapter bool
	haveSection bool
	havePara    bool

	// tokens is shared by the document and everything it includes: included
	// tokens are pushed at the front and drained before the rest.
	tokens deque.Deque
	chain  []includeFrame
}

func (b *builder) build(content string) (*doctree.Element, error) {
	b.push(b.root)
	b.root.AddText("\n")
	b.inject(Tokenize(content))

	err := b.run()
	for len(b.stack) > 0 {
		b.pop()
	}
	if err != nil {
		return nil, err
	}
	return b.root, nil
}

func (b *builder) run() error {
	for {
		b.leaveFinishedIncludes()

		tok0, ok := b.peek(0)
		if !ok {
			return nil
		}
		tok1, ok1 := b.peek(1)
		tok2, ok2 := b.peek(2)
		directive := tok0.Kind == TokenAt && ok1 && tok1.Kind == TokenText

		switch {
		case tok0.Kind == TokenText && strings.HasPrefix(tok0.Value, preambleMagic):
			b.handlePreamble()

		case directive && ok2 && tok2.Kind == TokenLBrace && isInlineName(tok1.Value):
			b.consumeN(3)
			b.handleInline(tok1.Value)

		case directive && (!ok2 || tok2.Kind == TokenNewline) && isFullLine(tok1.Value):
			b.consumeN(3)
			if err := b.handleDirective(splitDirective(tok1.Value)); err != nil {
				return err
			}

		case tok0.Kind == TokenNewline && (!ok1 || tok1.Kind == TokenNewline):
			// Blank line ends the paragraph.
			if b.top().Kind == doctree.KindPara {
				b.handleText(tok0.Value)
				b.pop()
			}
			b.consumeN(2)

		case tok0.Kind == TokenNewline:
			if b.havePara {
				b.handleText(tok0.Value)
			}
			b.consume()

		default:
			b.handleText(tok0.Value)
			b.consume()
		}
	}
}

func (b *builder) handlePreamble() {
	first, _ := b.consume()
	var line strings.Builder
	line.WriteString(first.Value)
	for {
		tok, ok := b.consume()
		if !ok || tok.Kind == TokenNewline {
			break
		}
		line.WriteString(tok.Value)
	}
	line.WriteString("\n")
	b.top().AddElement(doctree.KindPreamble).AddText(line.String())
}

// handleInline collects everything up to the first '}' as the literal
// content of a new leaf element. Nested braces are not supported.
func (b *builder) handleInline(name string) {
	var inner strings.Builder
	for {
		tok, ok := b.consume()
		if !ok || tok.Kind == TokenRBrace {
			break
		}
		inner.WriteString(tok.Value)
	}
	b.top().AddElement(name).AddText(inner.String())
}

func (b *builder) handleDirective(name, spaces, arg string) error {
	switch fullLineDirectives[name] {
	case directiveComment:
		text := collapseHyphens(strings.TrimRight(arg, " \t\r\f\v"))
		b.top().AddComment(" " + name + " " + text + " ")
		b.top().AddText("\n")

	case directiveInclude:
		return b.handleInclude(arg)

	case directiveChapter:
		for b.havePara || b.haveSection || b.haveChapter {
			b.pop()
		}
		b.openSectioning(doctree.KindChapter, spaces, arg)

	case directiveSection:
		for b.havePara || b.haveSection {
			b.pop()
		}
		b.openSectioning(doctree.KindSection, spaces, arg)

	default:
		if len(arg) >= 2 && arg[0] == '{' && arg[len(arg)-1] == '}' {
			arg = arg[1 : len(arg)-1]
		}
		b.top().AddElement(name).AddText(arg)
		b.top().AddText("\n")
	}
	return nil
}

func (b *builder) openSectioning(kind, spaces, title string) {
	el := b.top().AddElement(kind)
	el.Spaces = spaces
	b.push(el)
	el.AddElement(doctree.KindSectionTitle).AddText(title)
	el.AddText("\n")
}

func (b *builder) handleText(text string) {
	if b.top().Kind != doctree.KindPara && text != "\n" {
		b.push(b.top().AddElement(doctree.KindPara))
	}
	b.top().AddText(text)
}

func (b *builder) top() *doctree.Element {
	return b.stack[len(b.stack)-1]
}

func (b *builder) push(el *doctree.Element) {
	b.stack = append(b.stack, el)
	switch el.Kind {
	case doctree.KindChapter:
		b.haveChapter = true
	case doctree.KindSection:
		b.haveSection = true
	case doctree.KindPara:
		b.havePara = true
	}
}

// pop closes the innermost open element. The element it was appended to
// receives a newline.
func (b *builder) pop() {
	n := len(b.stack)
	old := b.stack[n-1]
	b.stack = b.stack[:n-1]
	switch old.Kind {
	case doctree.KindChapter:
		b.haveChapter = false
	case doctree.KindSection:
		b.haveSection = false
	case doctree.KindPara:
		b.havePara = false
	}
	if len(b.stack) > 0 {
		b.top().AddText("\n")
	}
}

func (b *builder) peek(n int) (Token, bool) {
	if n >= b.tokens.Len() {
		return Token{}, false
	}
	return b.tokens.Peek(n).(Token), true
}

func (b *builder) consume() (Token, bool) {
	if b.tokens.Empty() {
		return Token{}, false
	}
	return b.tokens.PopFront().(Token), true
}

func (b *builder) consumeN(n int) {
	for range n {
		b.consume()
	}
}

// inject places toks ahead of every pending token.
func (b *builder) inject(toks []Token) {
	for i := len(toks) - 1; i >= 0; i-- {
		b.tokens.PushFront(toks[i])
	}
}

// isInlineName reports whether name can label an inline span: one or more
// ASCII letters. Anything else stays literal text.
func isInlineName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

func isFullLine(text string) bool {
	name, _, _ := splitDirective(text)
	_, ok := fullLineDirectives[name]
	return ok
}

// splitDirective splits "section  Title" into its lowercase name, the
// whitespace after it, and the remaining argument.
func splitDirective(text string) (name, spaces, arg string) {
	i := 0
	for i < len(text) && text[i] >= 'a' && text[i] <= 'z' {
		i++
	}
	rest := text[i:]
	arg = strings.TrimLeft(rest, " \t\r\f\v")
	return text[:i], rest[:len(rest)-len(arg)], arg
}

// collapseHyphens removes "--" sequences so the text can sit inside an XML
// comment.
func collapseHyphens(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

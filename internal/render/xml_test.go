package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/dgallion1/texi2xml/internal/parser"
)

func renderString(t *testing.T, r Renderer, src string) string {
	t.Helper()
	root, err := parser.Parse(src, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, root); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestXMLRenderer_HistoricalOutput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "comment",
			src:  "@c This is a comment.",
			want: "<?xml version=\"1.0\" ?><texinfo>\n<!-- c This is a comment. -->\n</texinfo>",
		},
		{
			name: "preamble",
			src: `\input texinfo  @c -*-texinfo-*-
@c %**start of header
@setfilename gcc.info
`,
			want: `<?xml version="1.0" ?><texinfo>
<preamble>\input texinfo  @c -*-texinfo-*-
</preamble><!-- c %**start of header -->
<setfilename>gcc.info</setfilename>
</texinfo>`,
		},
		{
			name: "para",
			src:  "Hello world\n",
			want: "<?xml version=\"1.0\" ?><texinfo>\n<para>Hello world\n</para>\n</texinfo>",
		},
		{
			name: "paras",
			src: `Line 1 of para 1.
Line 2 of para 1.

Line 1 of para 2.
Line 2 of para 2.
`,
			want: `<?xml version="1.0" ?><texinfo>
<para>Line 1 of para 1.
Line 2 of para 1.
</para>
<para>Line 1 of para 2.
Line 2 of para 2.
</para>
</texinfo>`,
		},
		{
			name: "inline",
			src:  "Example of @emph{inline markup}.\n",
			want: "<?xml version=\"1.0\" ?><texinfo>\n<para>Example of <emph>inline markup</emph>.\n</para>\n</texinfo>",
		},
		{
			name: "multiple inlines",
			src: `
An amendment to the 1990 standard was published in 1995.  This
amendment added digraphs and @code{__STDC_VERSION__} to the language,
but otherwise concerned the library.  This amendment is commonly known
as @dfn{AMD1}; the amended standard is sometimes known as @dfn{C94} or
@dfn{C95}.  To select this standard in GCC, use the option
@option{-std=iso9899:199409} (with, as for other standard versions,
@option{-pedantic} to receive all required diagnostics).
`,
			want: `<?xml version="1.0" ?><texinfo>
<para>An amendment to the 1990 standard was published in 1995.  This
amendment added digraphs and <code>__STDC_VERSION__</code> to the language,
but otherwise concerned the library.  This amendment is commonly known
as <dfn>AMD1</dfn>; the amended standard is sometimes known as <dfn>C94</dfn> or
<dfn>C95</dfn>.  To select this standard in GCC, use the option
<option>-std=iso9899:199409</option> (with, as for other standard versions,
<option>-pedantic</option> to receive all required diagnostics).
</para>
</texinfo>`,
		},
		{
			name: "multiline inlines",
			src: `
whole standard including all the library facilities; a @dfn{conforming
freestanding implementation} is only required to provide certain
`,
			want: `<?xml version="1.0" ?><texinfo>
<para>whole standard including all the library facilities; a <dfn>conforming
freestanding implementation</dfn> is only required to provide certain
</para>
</texinfo>`,
		},
		{
			name: "sections",
			src: `@section Section 1
Text in section 1.

@section Section 2
Text in section 2.
`,
			want: `<?xml version="1.0" ?><texinfo>
<section spaces=" "><sectiontitle>Section 1</sectiontitle>
<para>Text in section 1.
</para>
</section>
<section spaces=" "><sectiontitle>Section 2</sectiontitle>
<para>Text in section 2.
</para>
</section>
</texinfo>`,
		},
		{
			name: "chapters",
			src: `@chapter Chapter 1
@section Chapter 1 Section 1
Text in chapter 1 section 1.

@section Chapter 1 Section 2
Text in chapter 1 section 2.

@chapter Chapter 2
@section Chapter 2 Section 1
Text in chapter 2 section 1.

@section Chapter 2 Section 2
Text in chapter 2 section 2.
`,
			want: `<?xml version="1.0" ?><texinfo>
<chapter spaces=" "><sectiontitle>Chapter 1</sectiontitle>
<section spaces=" "><sectiontitle>Chapter 1 Section 1</sectiontitle>
<para>Text in chapter 1 section 1.
</para>
</section>
<section spaces=" "><sectiontitle>Chapter 1 Section 2</sectiontitle>
<para>Text in chapter 1 section 2.
</para>
</section>
</chapter>
<chapter spaces=" "><sectiontitle>Chapter 2</sectiontitle>
<section spaces=" "><sectiontitle>Chapter 2 Section 1</sectiontitle>
<para>Text in chapter 2 section 1.
</para>
</section>
<section spaces=" "><sectiontitle>Chapter 2 Section 2</sectiontitle>
<para>Text in chapter 2 section 2.
</para>
</section>
</chapter>
</texinfo>`,
		},
		{
			name: "variable",
			src: `It corresponds to the compilers
@ifset VERSION_PACKAGE
@value{VERSION_PACKAGE}
@end ifset
version @value{version-GCC}.
`,
			want: `<?xml version="1.0" ?><texinfo>
<para>It corresponds to the compilers
<ifset>VERSION_PACKAGE</ifset>
<value>VERSION_PACKAGE</value>
<end>ifset</end>
version <value>version-GCC</value>.
</para>
</texinfo>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderString(t, &XMLRenderer{}, tt.src)
			if got != tt.want {
				t.Errorf("unexpected xml\n got: %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestXMLRenderer_EscapesText(t *testing.T) {
	got := renderString(t, &XMLRenderer{}, "a < b & \"c\" > d\n")
	want := "<para>a &lt; b &amp; &quot;c&quot; &gt; d\n</para>"
	if !strings.Contains(got, want) {
		t.Errorf("expected %q in %q", want, got)
	}
}

func TestXMLRenderer_EmptyElement(t *testing.T) {
	got := renderString(t, &XMLRenderer{}, "@chapter\n")
	want := "<?xml version=\"1.0\" ?><texinfo>\n<chapter spaces=\"\"><sectiontitle/>\n</chapter>\n</texinfo>"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestXMLRenderer_EmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := (&XMLRenderer{}).Render(&buf, doctree.NewElement(doctree.KindRoot)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != `<?xml version="1.0" ?><texinfo/>` {
		t.Errorf("expected self-closing root, got %q", got)
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range Formats() {
		r, err := ForFormat(name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if r.Extension() == "" || r.ContentType() == "" {
			t.Errorf("%s: expected extension and content type", name)
		}
	}
	if r, err := ForFormat("MD"); err != nil || r.Extension() != ".md" {
		t.Errorf("expected md alias to resolve to markdown, got %v, %v", r, err)
	}
	if _, err := ForFormat("rst"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if IsSupportedFormat("pdf") {
		t.Error("expected pdf to be unsupported")
	}
}

package render

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const sampleDoc = `\input texinfo
@setfilename doc.info
@chapter Getting Started
Use @code{gcc} to compile @emph{C} files.

@section Options
See @uref{https://gcc.gnu.org, the manual}.
@c internal note
`

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestHTMLRenderer(t *testing.T) {
	out := renderString(t, &HTMLRenderer{}, sampleDoc)
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("expected doctype, got %q", out[:min(len(out), 40)])
	}

	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	if titles := findAll(doc, "title"); len(titles) != 1 || textOf(titles[0]) != "Getting Started" {
		t.Errorf("expected page title from first chapter, got %v", titles)
	}
	h1 := findAll(doc, "h1")
	if len(h1) != 1 || textOf(h1[0]) != "Getting Started" {
		t.Errorf("expected one h1 'Getting Started', got %d", len(h1))
	}
	h2 := findAll(doc, "h2")
	if len(h2) != 1 || textOf(h2[0]) != "Options" {
		t.Errorf("expected one h2 'Options', got %d", len(h2))
	}

	sections := findAll(doc, "section")
	if len(sections) != 2 {
		t.Fatalf("expected 2 section elements, got %d", len(sections))
	}
	if attr(sections[0], "class") != "chapter" || attr(sections[1], "class") != "section" {
		t.Errorf("unexpected section classes: %q, %q", attr(sections[0], "class"), attr(sections[1], "class"))
	}

	if ps := findAll(doc, "p"); len(ps) != 2 {
		t.Errorf("expected 2 paragraphs, got %d", len(ps))
	}
	if em := findAll(doc, "em"); len(em) != 1 || textOf(em[0]) != "C" {
		t.Errorf("expected emph rendered as em")
	}
	if code := findAll(doc, "code"); len(code) != 1 || textOf(code[0]) != "gcc" {
		t.Errorf("expected code rendered as code")
	}
	links := findAll(doc, "a")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if attr(links[0], "href") != "https://gcc.gnu.org" || textOf(links[0]) != "the manual" {
		t.Errorf("unexpected link: href=%q text=%q", attr(links[0], "href"), textOf(links[0]))
	}

	if strings.Contains(out, "doc.info") {
		t.Error("expected setfilename to be omitted")
	}
	if strings.Contains(out, `\input`) {
		t.Error("expected preamble to be omitted")
	}
	if !strings.Contains(out, "<!-- c internal note -->") {
		t.Error("expected comment to be preserved")
	}
}

func TestHTMLRenderer_EscapesText(t *testing.T) {
	out := renderString(t, &HTMLRenderer{}, "x < y && @code{<b>}\n")
	if strings.Contains(out, "<b>") {
		t.Errorf("expected markup in text to be escaped: %s", out)
	}
	if !strings.Contains(out, "x &lt; y &amp;&amp;") {
		t.Errorf("expected escaped text, got %s", out)
	}
}

package query

import (
	"strings"
	"testing"

	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/dgallion1/texi2xml/internal/parser"
)

const manual = `@chapter Chapter 1
@section Installing
Run @command{make install}.

@section Running
@c operator notes
Start the @emph{daemon}.

@chapter Chapter 2
Nothing here yet.
`

func parseManual(t *testing.T) *doctree.Element {
	t.Helper()
	root, err := parser.Parse(manual, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return root
}

func TestSelectTree_Titles(t *testing.T) {
	matches, err := SelectTree(parseManual(t), "//chapter/sectiontitle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Text != "Chapter 1" || matches[1].Text != "Chapter 2" {
		t.Errorf("unexpected titles: %q, %q", matches[0].Text, matches[1].Text)
	}
	if matches[0].Name != "sectiontitle" {
		t.Errorf("expected name sectiontitle, got %q", matches[0].Name)
	}
	if matches[0].XML != "<sectiontitle>Chapter 1</sectiontitle>" {
		t.Errorf("unexpected xml: %q", matches[0].XML)
	}
}

func TestSelectTree_Predicate(t *testing.T) {
	matches, err := SelectTree(parseManual(t), "//section[sectiontitle='Running']/para/emph")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Text != "daemon" {
		t.Fatalf("expected single emph 'daemon', got %+v", matches)
	}
}

func TestSelectTree_Count(t *testing.T) {
	root := parseManual(t)
	paras, err := SelectTree(root, "//para")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paras) != 3 {
		t.Errorf("expected 3 paragraphs, got %d", len(paras))
	}
	if !strings.Contains(paras[0].Text, "make install") {
		t.Errorf("expected inline text in paragraph, got %q", paras[0].Text)
	}
}

func TestSelectTree_Attribute(t *testing.T) {
	matches, err := SelectTree(parseManual(t), "//chapter/@spaces")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(matches))
	}
	if matches[0].Name != "@spaces" {
		t.Errorf("expected @spaces, got %q", matches[0].Name)
	}
}

func TestSelectTree_Comment(t *testing.T) {
	matches, err := SelectTree(parseManual(t), "//comment()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(matches))
	}
	if matches[0].Text != " c operator notes " {
		t.Errorf("unexpected comment text %q", matches[0].Text)
	}
}

func TestSelect_NoMatches(t *testing.T) {
	matches, err := Select(strings.NewReader("<texinfo><para>x</para></texinfo>"), "//chapter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestSelect_InvalidExpression(t *testing.T) {
	_, err := Select(strings.NewReader("<texinfo/>"), "//para[")
	if err == nil {
		t.Fatal("expected error for invalid xpath")
	}
	if !strings.Contains(err.Error(), "invalid xpath") {
		t.Errorf("expected invalid xpath error, got %v", err)
	}
}

func TestSelect_InvalidXML(t *testing.T) {
	if _, err := Select(strings.NewReader("<texinfo><para></texinfo>"), "//para"); err == nil {
		t.Fatal("expected error for malformed xml")
	}
}

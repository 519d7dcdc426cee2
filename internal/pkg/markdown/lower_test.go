package markdown

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opentender/backend/internal/pkg/assets"
)

func text(s string) []Span {
	return []Span{{Kind: SpanText, Text: s}}
}

func TestParseTable(t *testing.T) {
	got := Parse("| A | B |\n| - | - |\n| 1 | 2 |")
	want := []Block{{
		Kind:   BlockTable,
		Header: []Cell{Cell(text("A")), Cell(text("B"))},
		Rows:   [][]Cell{{Cell(text("1")), Cell(text("2"))}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTableTerminatesOnText(t *testing.T) {
	got := Parse("| Phase | Durée |\n|:---|---:|\n| Étude | 2 mois |\n| Travaux | 6 mois | extra |\nAprès le tableau.")
	if len(got) != 2 {
		t.Fatalf("expected table + paragraph, got %d blocks: %+v", len(got), got)
	}
	table := got[0]
	if table.Kind != BlockTable || len(table.Rows) != 2 {
		t.Fatalf("unexpected table: %+v", table)
	}
	if len(table.Header) != 3 || table.Header[2] != nil {
		t.Fatalf("expected header padded to the widest row, got %+v", table.Header)
	}
	if got[1].Kind != BlockParagraph || PlainText(got[1].Spans) != "Après le tableau." {
		t.Fatalf("unexpected paragraph: %+v", got[1])
	}
}

func TestParseListTypeSwitch(t *testing.T) {
	got := Parse("- a\n1. b")
	want := []Block{
		{Kind: BlockList, Items: [][]Span{text("a")}},
		{Kind: BlockList, Ordered: true, Items: [][]Span{text("b")}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestParseListClosedByBlankLine(t *testing.T) {
	got := Parse("- a\n* b\n\n+ c")
	if len(got) != 2 {
		t.Fatalf("expected two lists, got %d", len(got))
	}
	if len(got[0].Items) != 2 || len(got[1].Items) != 1 {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestParseBlocks(t *testing.T) {
	input := strings.Join([]string{
		"## Notre approche",
		"Première ligne",
		"suite du **paragraphe**.",
		"> Citation",
		"---",
		"```go",
		"x := *y* | z | w",
		"```",
		"#### Détail ####",
		"###### trop profond",
	}, "\n")

	got := Parse(input)
	want := []Block{
		{Kind: BlockHeading, Level: 2, Spans: text("Notre approche")},
		{Kind: BlockParagraph, Spans: []Span{
			{Kind: SpanText, Text: "Première ligne suite du "},
			{Kind: SpanBold, Text: "paragraphe"},
			{Kind: SpanText, Text: "."},
		}},
		{Kind: BlockQuote, Spans: text("Citation")},
		{Kind: BlockRule},
		{Kind: BlockCode, Lang: "go", Code: "x := *y* | z | w"},
		{Kind: BlockHeading, Level: 4, Spans: text("Détail")},
		{Kind: BlockHeading, Level: 4, Spans: text("trop profond")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnclosedCodeFlushedAtEnd(t *testing.T) {
	got := Parse("```\nline 1\nline 2")
	if len(got) != 1 || got[0].Kind != BlockCode || got[0].Code != "line 1\nline 2" {
		t.Fatalf("unexpected blocks: %+v", got)
	}
}

func TestParseDecodesEntities(t *testing.T) {
	got := Parse("Budget &gt; 10&nbsp;000 &euro; &amp; d&#233;lais")
	if len(got) != 1 {
		t.Fatalf("expected one paragraph, got %+v", got)
	}
	if s := PlainText(got[0].Spans); s != "Budget > 10\u00a0000 € & délais" {
		t.Fatalf("entities not decoded: %q", s)
	}
}

func TestParseInline(t *testing.T) {
	tests := []struct {
		in   string
		want []Span
	}{
		{"***both***", []Span{{Kind: SpanBoldItalic, Text: "both"}}},
		{"**b** and *i*", []Span{{Kind: SpanBold, Text: "b"}, {Kind: SpanText, Text: " and "}, {Kind: SpanItalic, Text: "i"}}},
		{"use `a*b*c` here", []Span{{Kind: SpanText, Text: "use "}, {Kind: SpanCode, Text: "a*b*c"}, {Kind: SpanText, Text: " here"}}},
		{"see [site](https://x.fr)", []Span{{Kind: SpanText, Text: "see "}, {Kind: SpanLink, Text: "site", URL: "https://x.fr"}}},
		{"snake_case_name stays", text("snake_case_name stays")},
		{"2 * 3 * 4", text("2 * 3 * 4")},
		{"__bold__ _it_", []Span{{Kind: SpanBold, Text: "bold"}, {Kind: SpanText, Text: " "}, {Kind: SpanItalic, Text: "it"}}},
		{"**a** **b**", []Span{{Kind: SpanBold, Text: "a"}, {Kind: SpanText, Text: " "}, {Kind: SpanBold, Text: "b"}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseInline(tt.in)); diff != "" {
			t.Errorf("ParseInline(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

type mapResolver map[string]assets.Reference

func (m mapResolver) Resolve(ctx context.Context, id string) (assets.Reference, error) {
	ref, ok := m[id]
	if !ok {
		return assets.Reference{}, &assets.ResolutionError{ID: id, Err: assets.ErrAssetNotFound}
	}
	return ref, nil
}

func TestLowererResolvesAssets(t *testing.T) {
	l := NewLowerer(mapResolver{
		"org": {ID: "org", URL: "https://cdn/org.png", Name: "Organigramme"},
	})

	got := l.Lower(context.Background(), "Intro\n\n![](asset:org)\n\nVoir ![logo](asset:ghost) ci-dessus.")
	want := []Block{
		{Kind: BlockParagraph, Spans: text("Intro")},
		{Kind: BlockImage, Alt: "Organigramme", URL: "https://cdn/org.png", AssetID: "org"},
		{Kind: BlockParagraph, Spans: text("Voir [image unavailable: ghost] ci-dessus.")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lowered blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestLowererInlineAssetKeepsID(t *testing.T) {
	l := NewLowerer(mapResolver{
		"logo": {ID: "logo", URL: "https://cdn/logo.png", Name: "Logo"},
	})

	got := l.Lower(context.Background(), "Voir le schéma ![Logo](asset:logo) ci-dessous.")
	want := []Block{{Kind: BlockParagraph, Spans: []Span{
		{Kind: SpanText, Text: "Voir le schéma "},
		{Kind: SpanImage, Text: "Logo", URL: "https://cdn/logo.png", AssetID: "logo"},
		{Kind: SpanText, Text: " ci-dessous."},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lowered blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestLowererDoesNotDecodeResolvedURLs(t *testing.T) {
	const url = "https://cdn/org.png?sig=1&copy=2&not=3"
	l := NewLowerer(mapResolver{
		"org": {ID: "org", URL: url, Name: "Organigramme"},
	})

	got := l.Lower(context.Background(), "![](asset:org)\n\nR&amp;D &euro;")
	want := []Block{
		{Kind: BlockImage, Alt: "Organigramme", URL: url, AssetID: "org"},
		{Kind: BlockParagraph, Spans: text("R&D €")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lowered blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestLowererWithoutResolver(t *testing.T) {
	got := NewLowerer(nil).Lower(context.Background(), "![x](asset:abc-123)")
	if len(got) != 1 || !strings.Contains(PlainText(got[0].Spans), "abc-123") {
		t.Fatalf("expected diagnostic paragraph, got %+v", got)
	}
}

func TestResolutionErrorUnwraps(t *testing.T) {
	_, err := mapResolver{}.Resolve(context.Background(), "x")
	if !errors.Is(err, assets.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

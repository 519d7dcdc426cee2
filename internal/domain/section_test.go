package domain

import "testing"

func TestStripNumberPrefix(t *testing.T) {
	cases := map[string]string{
		"3. Foo":              "Foo",
		"7) Bar":              "Bar",
		"1.2 Sub title":       "Sub title",
		"10 - Support":        "Support",
		"Technical Approach":  "Technical Approach",
		"2024 roadmap":        "2024 roadmap",
		"2024 Budget":         "2024 Budget",
		"1.2.3 Deep":          "Deep",
		"5: Planning":         "Planning",
		"  4.  Methodology  ": "Methodology",
		"42":                  "42",
	}
	for in, want := range cases {
		if got := StripNumberPrefix(in); got != want {
			t.Errorf("StripNumberPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStateFromContent(t *testing.T) {
	if StateFromContent("") != StateIdle {
		t.Fatalf("empty content must load as idle")
	}
	if StateFromContent(" \n ") != StateIdle {
		t.Fatalf("blank content must load as idle")
	}
	if StateFromContent("# Title") != StateGenerated {
		t.Fatalf("non-empty content must load as generated")
	}
}

func TestSectionInstructionsOverride(t *testing.T) {
	s := Section{DefaultInstructions: "default"}
	if s.Instructions() != "default" {
		t.Fatalf("expected default instructions, got %q", s.Instructions())
	}
	s.InstructionOverride = "custom"
	if s.Instructions() != "custom" {
		t.Fatalf("expected override, got %q", s.Instructions())
	}
	s.InstructionOverride = "   "
	if s.Instructions() != "default" {
		t.Fatalf("blank override must fall back to default, got %q", s.Instructions())
	}
}

func TestNewCatalogSections(t *testing.T) {
	sections := NewCatalogSections()
	if len(sections) != len(Catalog) {
		t.Fatalf("expected %d sections, got %d", len(Catalog), len(sections))
	}
	seen := map[string]bool{}
	for _, s := range sections {
		if !s.Enabled || s.State != StateIdle || s.Content != "" {
			t.Fatalf("unexpected initial section state: %+v", s)
		}
		if seen[s.Key] {
			t.Fatalf("duplicate catalog key %s", s.Key)
		}
		seen[s.Key] = true
	}
	if _, ok := CatalogEntryByKey("approach"); !ok {
		t.Fatalf("expected approach entry in catalog")
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opentender/backend/internal/domain"
)

func TestCatalogCommand(t *testing.T) {
	var out bytes.Buffer
	catalogCmd.SetOut(&out)
	if err := runCatalog(catalogCmd, nil); err != nil {
		t.Fatalf("runCatalog error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(domain.Catalog)+1 {
		t.Fatalf("expected header plus %d rows, got %d lines", len(domain.Catalog), len(lines))
	}
	if !strings.HasPrefix(lines[1], "company") || strings.Contains(lines[1], "1.") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestParseTenderID(t *testing.T) {
	if id, err := parseTenderID("12"); err != nil || id != 12 {
		t.Fatalf("parseTenderID(12) = %d, %v", id, err)
	}
	if _, err := parseTenderID("abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{{"generate"}, {"export"}, {"import"}, {"tender", "create"}, {"knowledge", "add"}, {"asset", "upload"}} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Fatalf("command %v not registered: %v", path, err)
		}
	}
	if f := exportCmd.Flags().Lookup("format"); f == nil || f.DefValue != "docx" {
		t.Fatalf("unexpected export format flag: %+v", f)
	}
}

func TestReadSectionFiles(t *testing.T) {
	dir := t.TempDir()
	company := filepath.Join(dir, "company.md")
	if err := os.WriteFile(company, []byte("# Us\n\nRoofers."), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}
	contents, err := readSectionFiles([]string{company})
	if err != nil {
		t.Fatalf("readSectionFiles error: %v", err)
	}
	if contents["company"] != "# Us\n\nRoofers." {
		t.Fatalf("unexpected contents %q", contents)
	}
	if _, err := readSectionFiles([]string{company, company}); err == nil {
		t.Fatal("expected error for duplicated section")
	}
	if _, err := readSectionFiles([]string{filepath.Join(dir, "missing.md")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/service/generation"
	"github.com/opentender/backend/internal/service/render"
	"github.com/spf13/cobra"
)

func runCatalog(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTITLE")
	for _, entry := range domain.Catalog {
		fmt.Fprintf(w, "%s\t%s\n", entry.Key, domain.StripNumberPrefix(entry.Title))
	}
	return w.Flush()
}

func parseTenderID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid tender id %q", arg)
	}
	return uint(id), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	tenderID, err := parseTenderID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}

	doc, err := app.Documents.Open(ctx, tenderID)
	if err != nil {
		return err
	}
	opts := generation.Options{UseTender: !noTender, UseKnowledge: !noKnowledge, Regenerate: regenerate}

	if sectionKey != "" {
		section, err := app.Documents.GenerateSection(ctx, doc.ID, sectionKey, opts)
		if err != nil {
			return fmt.Errorf("generate section %s: %w", sectionKey, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d chars)\n", section.Key, section.State, len([]rune(section.Content)))
		return nil
	}

	summary, err := app.Documents.GenerateAll(ctx, doc.ID, opts)
	if err != nil {
		return err
	}
	current, err := app.Documents.Get(ctx, doc.ID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tENABLED\tSTATE\tERROR")
	for _, s := range current.Sections {
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", s.Key, s.Enabled, s.State, s.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d section(s) failed", summary.Failed)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	tenderID, err := parseTenderID(args[0])
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}

	doc, err := app.Documents.Open(ctx, tenderID)
	if err != nil {
		return err
	}
	result, err := app.Documents.Export(ctx, doc.ID, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(outputDir, result.Filename)
	if err := os.WriteFile(path, result.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// readSectionFiles 以文件名（去掉 .md）作为章节 key 读取正文
func readSectionFiles(paths []string) (map[string]string, error) {
	contents := make(map[string]string, len(paths))
	for _, path := range paths {
		key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if _, dup := contents[key]; dup {
			return nil, fmt.Errorf("section %s given more than once", key)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		contents[key] = string(data)
	}
	return contents, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	tenderID, err := parseTenderID(args[0])
	if err != nil {
		return err
	}
	contents, err := readSectionFiles(args[1:])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}

	doc, err := app.Documents.Open(ctx, tenderID)
	if err != nil {
		return err
	}
	imported, err := app.Documents.ImportSections(ctx, doc.ID, contents)
	if err != nil {
		return err
	}
	for _, s := range imported {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d chars)\n", s.Key, s.State, len([]rune(s.Content)))
	}
	return nil
}

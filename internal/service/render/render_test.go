package render

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/pkg/assets"
	"github.com/opentender/backend/internal/pkg/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]assets.Reference

func (f fakeResolver) Resolve(_ context.Context, id string) (assets.Reference, error) {
	ref, ok := f[id]
	if !ok {
		return assets.Reference{}, &assets.ResolutionError{ID: id, Err: assets.ErrAssetNotFound}
	}
	return ref, nil
}

type fakeFetcher struct {
	images map[string]*assets.Image
	calls  int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*assets.Image, error) {
	f.calls++
	img, ok := f.images[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleDocument() domain.Document {
	return domain.Document{
		ID:         1,
		Title:      "Rénovation énergétique",
		Reference:  "AO-2024-17",
		ClientName: "Ville de Lyon",
		Sections: []domain.Section{
			{Key: "foo", Title: "3. Foo", Enabled: true, Content: "Intro **bold** text.\n\n- one\n- two"},
			{Key: "baz", Title: "1. Baz", Enabled: false, Content: "Hidden body"},
			{Key: "empty", Title: "4. Empty", Enabled: true, Content: "   "},
			{Key: "bar", Title: "7. Bar", Enabled: true, Content: "| A | B |\n|---|---|\n| 1 | 2 |\n\n![Logo](asset:logo)\n\n![Chart](asset:missing)"},
		},
	}
}

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found in archive", name)
	return ""
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestPrepareRenumbersEnabledSections(t *testing.T) {
	sections, err := Prepare(context.Background(), sampleDocument(), markdown.NewLowerer(nil))
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "1. Foo", sections[0].DisplayTitle())
	assert.Equal(t, "2. Bar", sections[1].DisplayTitle())
}

func TestPrepareNothingToExport(t *testing.T) {
	doc := domain.Document{Sections: []domain.Section{
		{Key: "a", Title: "A", Enabled: false, Content: "body"},
		{Key: "b", Title: "B", Enabled: true},
	}}
	_, err := Prepare(context.Background(), doc, markdown.NewLowerer(nil))
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestDocxRenderer(t *testing.T) {
	resolver := fakeResolver{"logo": {ID: "logo", URL: "https://cdn.example.com/logo.png", Name: "logo.png"}}
	fetcher := &fakeFetcher{images: map[string]*assets.Image{
		"https://cdn.example.com/logo.png": {Data: pngBytes(t, 200, 100), ContentType: "image/png", Extension: ".png"},
	}}
	r := NewDocxRenderer(markdown.NewLowerer(resolver), fetcher)
	r.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }

	data, err := r.Render(context.Background(), sampleDocument())
	require.NoError(t, err)

	names := zipNames(t, data)
	assert.Contains(t, names, "[Content_Types].xml")
	assert.Contains(t, names, "word/document.xml")
	assert.Contains(t, names, "word/media/image1.png")

	doc := readZipPart(t, data, "word/document.xml")
	assert.Contains(t, doc, "1. Foo")
	assert.Contains(t, doc, "2. Bar")
	assert.NotContains(t, doc, "Baz")
	assert.NotContains(t, doc, "Hidden body")
	assert.NotContains(t, doc, "Empty")
	assert.Contains(t, doc, "[image unavailable: missing]")
	assert.Contains(t, doc, `<w:tbl>`)
	assert.Contains(t, doc, `<w:b/>`)
	assert.Contains(t, doc, "<wp:extent cx=\"1905000\" cy=\"952500\"/>")
	// 封面一个分节，每个章节一个分节
	assert.Equal(t, 3, strings.Count(doc, "<w:sectPr>"))
	assert.Equal(t, 2, strings.Count(doc, "<w:headerReference"))

	header := readZipPart(t, data, "word/header1.xml")
	assert.Contains(t, header, "AO-2024-17")
	footer := readZipPart(t, data, "word/footer1.xml")
	assert.Contains(t, footer, "05/03/2024")
	assert.Contains(t, footer, "NUMPAGES")

	types := readZipPart(t, data, "[Content_Types].xml")
	assert.Contains(t, types, `Extension="png"`)
}

func TestDocxRendererImageFetchFailure(t *testing.T) {
	resolver := fakeResolver{"logo": {ID: "logo", URL: "https://cdn.example.com/logo.png", Name: "logo.png"}}
	fetcher := &fakeFetcher{images: map[string]*assets.Image{}}
	r := NewDocxRenderer(markdown.NewLowerer(resolver), fetcher)

	data, err := r.Render(context.Background(), sampleDocument())
	require.NoError(t, err)

	doc := readZipPart(t, data, "word/document.xml")
	assert.Contains(t, doc, "[image unavailable: logo]")
	assert.NotContains(t, zipNames(t, data), "word/media/image1.png")
	assert.Equal(t, 1, fetcher.calls)
}

func TestDocxRendererEmbedsInlineImages(t *testing.T) {
	resolver := fakeResolver{"logo": {ID: "logo", URL: "https://cdn.example.com/logo.png", Name: "logo.png"}}
	fetcher := &fakeFetcher{images: map[string]*assets.Image{
		"https://cdn.example.com/logo.png": {Data: pngBytes(t, 40, 20), ContentType: "image/png", Extension: ".png"},
	}}
	doc := domain.Document{Title: "T", Sections: []domain.Section{
		{Key: "a", Title: "A", Enabled: true, Content: "Voir le schéma ![Logo](asset:logo) ci-dessous."},
	}}
	data, err := NewDocxRenderer(markdown.NewLowerer(resolver), fetcher).Render(context.Background(), doc)
	require.NoError(t, err)

	body := readZipPart(t, data, "word/document.xml")
	assert.Equal(t, 1, fetcher.calls)
	assert.Contains(t, body, "<w:drawing>")
	assert.NotContains(t, body, "<w:hyperlink")
	assert.Contains(t, body, "ci-dessous.")
	assert.Contains(t, zipNames(t, data), "word/media/image1.png")
}

func TestDocxRendererInlineImageFetchFailure(t *testing.T) {
	resolver := fakeResolver{"logo": {ID: "logo", URL: "https://cdn.example.com/logo.png", Name: "logo.png"}}
	doc := domain.Document{Title: "T", Sections: []domain.Section{
		{Key: "a", Title: "A", Enabled: true, Content: "Voir ![Logo](asset:logo) et ![Plan](https://cdn.example.com/plan.png)."},
	}}
	data, err := NewDocxRenderer(markdown.NewLowerer(resolver), &fakeFetcher{}).Render(context.Background(), doc)
	require.NoError(t, err)

	body := readZipPart(t, data, "word/document.xml")
	assert.Contains(t, body, "[image unavailable: logo]")
	assert.Contains(t, body, "[image unavailable: https://cdn.example.com/plan.png]")
	assert.NotContains(t, body, "<w:drawing>")
}

func TestDocxRendererOrderedListsRestart(t *testing.T) {
	doc := domain.Document{Title: "T", Sections: []domain.Section{
		{Key: "a", Title: "A", Enabled: true, Content: "1. x\n2. y\n\nbreak\n\n1. z"},
	}}
	data, err := NewDocxRenderer(markdown.NewLowerer(nil), nil).Render(context.Background(), doc)
	require.NoError(t, err)

	numbering := readZipPart(t, data, "word/numbering.xml")
	assert.Equal(t, 2, strings.Count(numbering, "<w:startOverride"))
}

func TestHTMLRenderer(t *testing.T) {
	resolver := fakeResolver{"logo": {ID: "logo", URL: "https://cdn.example.com/logo.png", Name: "logo.png"}}
	r := NewHTMLRenderer(markdown.NewLowerer(resolver))
	r.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }

	data, err := r.Render(context.Background(), sampleDocument())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "<h1>1. Foo</h1>")
	assert.Contains(t, out, "<h1>2. Bar</h1>")
	assert.NotContains(t, out, "Hidden body")
	assert.Contains(t, out, `<img src="https://cdn.example.com/logo.png" alt="Logo">`)
	assert.Contains(t, out, "[image unavailable: missing]")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<th>A</th>")
	assert.Contains(t, out, "@page")
	assert.Contains(t, out, "page-break-before: always")
}

func TestHTMLRendererEscapesContent(t *testing.T) {
	doc := domain.Document{Title: "T", Sections: []domain.Section{
		{Key: "a", Title: "A", Enabled: true, Content: "<script>alert(1)</script>\n\n[x](javascript:alert(1))"},
	}}
	data, err := NewHTMLRenderer(markdown.NewLowerer(nil)).Render(context.Background(), doc)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "<script>alert")
	assert.NotContains(t, out, "javascript:")
}

func TestHTMLRendererUnsafeImageFallsBackToURL(t *testing.T) {
	doc := domain.Document{Title: "T", Sections: []domain.Section{
		{Key: "a", Title: "A", Enabled: true, Content: "![Plan](ftp://files.example.com/plan.png)"},
	}}
	data, err := NewHTMLRenderer(markdown.NewLowerer(nil)).Render(context.Background(), doc)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "[image unavailable: ftp://files.example.com/plan.png]")
	assert.NotContains(t, out, "[image unavailable: ]")
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "Renovation_energetique_Lyon_20240305_140709.docx", Filename("Rénovation énergétique / Lyon", FormatDOCX, at))
	assert.Equal(t, "document_20240305_140709.pdf", Filename("***", FormatPDF, at))
	long := Filename(strings.Repeat("a", 200), FormatHTML, at)
	assert.True(t, strings.HasPrefix(long, strings.Repeat("a", 80)+"_"), long)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" DOCX ")
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, f)
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())

	_, err = ParseFormat("odt")
	assert.Error(t, err)
}

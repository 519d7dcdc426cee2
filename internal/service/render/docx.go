package render

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/pkg/assets"
	"github.com/opentender/backend/internal/pkg/markdown"
	"k8s.io/klog/v2"
)

// ImageFetcher 下载图片字节，DOCX 需要把图片打包进文件
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*assets.Image, error)
}

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relHeader    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"

	// A4，页边距 2.5cm，单位 twip
	pageWidthTwips  = 11906
	pageHeightTwips = 16838
	marginTwips     = 1417
	textWidthTwips  = pageWidthTwips - 2*marginTwips

	emuPerPixel   = 9525
	maxImageWidth = int64(textWidthTwips) * 635 // twip -> EMU
	defaultImgPx  = 480

	bulletNumID = 1
)

// DocxRenderer 生成 WordprocessingML 文档
type DocxRenderer struct {
	lowerer *markdown.Lowerer
	fetcher ImageFetcher
	now     func() time.Time
}

// NewDocxRenderer fetcher 为 nil 时图片全部输出为不可用提示
func NewDocxRenderer(lowerer *markdown.Lowerer, fetcher ImageFetcher) *DocxRenderer {
	return &DocxRenderer{lowerer: lowerer, fetcher: fetcher, now: time.Now}
}

// Render 实现 Renderer 接口
func (r *DocxRenderer) Render(ctx context.Context, doc domain.Document) ([]byte, error) {
	sections, err := Prepare(ctx, doc, r.lowerer)
	if err != nil {
		return nil, err
	}
	meta := Meta{Title: doc.Title, Reference: doc.Reference, ClientName: doc.ClientName, GeneratedAt: r.now()}

	b := newDocxBuilder(ctx, r.fetcher)
	b.writeCover(meta)
	for i, sec := range sections {
		b.writeSection(sec, i == len(sections)-1)
	}
	klog.V(6).Infof("[render.Docx] 渲染完成: docID=%d, sections=%d, images=%d", doc.ID, len(sections), len(b.media))
	return b.pack(meta)
}

// -----------------------------
// 构建器
// -----------------------------

type docxRel struct {
	id       string
	relType  string
	target   string
	external bool
}

type docxMedia struct {
	name string
	data []byte
}

type docxBuilder struct {
	ctx     context.Context
	fetcher ImageFetcher

	body      strings.Builder
	rels      []docxRel
	media     []docxMedia
	mediaExts map[string]string // 扩展名 -> MIME
	imageRels map[string]string // url -> relationship id
	numLists  int               // 有序列表实例个数，每个实例单独编号从 1 开始
	drawingID int

	headerRel string
	footerRel string
}

func newDocxBuilder(ctx context.Context, fetcher ImageFetcher) *docxBuilder {
	b := &docxBuilder{
		ctx:       ctx,
		fetcher:   fetcher,
		mediaExts: make(map[string]string),
		imageRels: make(map[string]string),
	}
	b.addRel(relStyles, "styles.xml", false)
	b.addRel(relNumbering, "numbering.xml", false)
	b.headerRel = b.addRel(relHeader, "header1.xml", false)
	b.footerRel = b.addRel(relFooter, "footer1.xml", false)
	return b
}

func (b *docxBuilder) addRel(relType, target string, external bool) string {
	id := fmt.Sprintf("rId%d", len(b.rels)+1)
	b.rels = append(b.rels, docxRel{id: id, relType: relType, target: target, external: external})
	return id
}

// writeCover 封面单独成节，不带页眉页脚
func (b *docxBuilder) writeCover(meta Meta) {
	b.body.WriteString(`<w:p><w:pPr><w:spacing w:before="3600"/></w:pPr></w:p>`)
	b.paragraph("Title", textRun(meta.Title))
	if meta.Reference != "" {
		b.paragraph("Subtitle", textRun("Reference: "+meta.Reference))
	}
	if meta.ClientName != "" {
		b.paragraph("Subtitle", textRun("Client: "+meta.ClientName))
	}
	b.paragraph("Subtitle", textRun(meta.GeneratedAt.Format("02/01/2006")))
	b.body.WriteString(`<w:p><w:pPr>`)
	b.body.WriteString(b.sectPr(false))
	b.body.WriteString(`</w:pPr></w:p>`)
}

// writeSection 每个章节一个分节，最后一个分节的属性放在 body 末尾
func (b *docxBuilder) writeSection(sec Section, last bool) {
	b.paragraph("Heading1", textRun(sec.DisplayTitle()))
	for _, block := range sec.Blocks {
		b.writeBlock(block)
	}
	if last {
		b.body.WriteString(b.sectPr(true))
		return
	}
	b.body.WriteString(`<w:p><w:pPr>`)
	b.body.WriteString(b.sectPr(true))
	b.body.WriteString(`</w:pPr></w:p>`)
}

func (b *docxBuilder) sectPr(withHeader bool) string {
	var s strings.Builder
	s.WriteString(`<w:sectPr>`)
	if withHeader {
		fmt.Fprintf(&s, `<w:headerReference w:type="default" r:id="%s"/>`, b.headerRel)
		fmt.Fprintf(&s, `<w:footerReference w:type="default" r:id="%s"/>`, b.footerRel)
	}
	s.WriteString(`<w:type w:val="nextPage"/>`)
	fmt.Fprintf(&s, `<w:pgSz w:w="%d" w:h="%d"/>`, pageWidthTwips, pageHeightTwips)
	fmt.Fprintf(&s, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>`,
		marginTwips, marginTwips, marginTwips, marginTwips)
	s.WriteString(`</w:sectPr>`)
	return s.String()
}

func (b *docxBuilder) writeBlock(block markdown.Block) {
	switch block.Kind {
	case markdown.BlockHeading:
		b.paragraph(fmt.Sprintf("Heading%d", min(block.Level+1, 5)), b.runs(block.Spans))
	case markdown.BlockParagraph:
		b.paragraph("", b.runs(block.Spans))
	case markdown.BlockQuote:
		b.paragraph("Quote", b.runs(block.Spans))
	case markdown.BlockList:
		numID := bulletNumID
		if block.Ordered {
			b.numLists++
			numID = bulletNumID + b.numLists
		}
		for _, item := range block.Items {
			fmt.Fprintf(&b.body, `<w:p><w:pPr><w:pStyle w:val="ListParagraph"/><w:numPr><w:ilvl w:val="0"/><w:numId w:val="%d"/></w:numPr></w:pPr>%s</w:p>`,
				numID, b.runs(item))
		}
	case markdown.BlockTable:
		b.writeTable(block)
	case markdown.BlockCode:
		for _, line := range strings.Split(block.Code, "\n") {
			b.paragraph("Code", `<w:r><w:t xml:space="preserve">`+esc(line)+`</w:t></w:r>`)
		}
	case markdown.BlockRule:
		b.body.WriteString(`<w:p><w:pPr><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="A6A6A6"/></w:pBdr></w:pPr></w:p>`)
	case markdown.BlockImage:
		b.writeImage(block)
	}
}

func (b *docxBuilder) paragraph(style, runs string) {
	b.body.WriteString(`<w:p>`)
	if style != "" {
		fmt.Fprintf(&b.body, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	b.body.WriteString(runs)
	b.body.WriteString(`</w:p>`)
}

func (b *docxBuilder) writeTable(block markdown.Block) {
	cols := len(block.Header)
	if cols == 0 {
		return
	}
	colWidth := textWidthTwips / cols

	b.body.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="5000" w:type="pct"/><w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="0" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/></w:tblPr><w:tblGrid>`)
	for i := 0; i < cols; i++ {
		fmt.Fprintf(&b.body, `<w:gridCol w:w="%d"/>`, colWidth)
	}
	b.body.WriteString(`</w:tblGrid>`)

	b.body.WriteString(`<w:tr><w:trPr><w:tblHeader/></w:trPr>`)
	for _, cell := range block.Header {
		fmt.Fprintf(&b.body, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/><w:shd w:val="clear" w:color="auto" w:fill="1F3864"/></w:tcPr><w:p><w:pPr><w:pStyle w:val="TableHeader"/></w:pPr>%s</w:p></w:tc>`,
			colWidth, b.runs(cell))
	}
	b.body.WriteString(`</w:tr>`)

	for _, row := range block.Rows {
		b.body.WriteString(`<w:tr>`)
		for i := 0; i < cols; i++ {
			var cell markdown.Cell
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&b.body, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr><w:p>%s</w:p></w:tc>`, colWidth, b.runs(cell))
		}
		b.body.WriteString(`</w:tr>`)
	}
	b.body.WriteString(`</w:tbl>`)
	// 表格后需要一个段落，避免相邻表格被 Word 合并
	b.body.WriteString(`<w:p/>`)
}

// writeImage 下载失败时输出提示文本，不中断渲染
func (b *docxBuilder) writeImage(block markdown.Block) {
	relID, cx, cy, err := b.embedImage(block.URL)
	if err != nil {
		id := block.AssetID
		if id == "" {
			id = block.URL
		}
		klog.Warningf("[render.Docx] 图片嵌入失败: %s, error=%v", id, err)
		b.paragraph("", diagnosticRun(markdown.UnavailableImage(id)))
		return
	}

	b.body.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
	b.body.WriteString(b.drawingRun(relID, cx, cy, block.Alt))
	b.body.WriteString(`</w:p>`)
	if block.Alt != "" {
		b.paragraph("Caption", textRun(block.Alt))
	}
}

// inlineImage 段落中的图片以行内 drawing 嵌入
func (b *docxBuilder) inlineImage(span markdown.Span) string {
	relID, cx, cy, err := b.embedImage(span.URL)
	if err != nil {
		id := span.AssetID
		if id == "" {
			id = span.URL
		}
		klog.Warningf("[render.Docx] 行内图片嵌入失败: %s, error=%v", id, err)
		return diagnosticRun(markdown.UnavailableImage(id))
	}
	return b.drawingRun(relID, cx, cy, span.Text)
}

func (b *docxBuilder) drawingRun(relID string, cx, cy int64, alt string) string {
	b.drawingID++
	name := fmt.Sprintf("Picture %d", b.drawingID)
	return fmt.Sprintf(`<w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0"><wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="%s" descr="%s"/>`+
		`<a:graphic><a:graphicData uri="%s"><pic:pic><pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, b.drawingID, name, esc(alt), nsPic, b.drawingID, name, relID, cx, cy)
}

func (b *docxBuilder) embedImage(url string) (string, int64, int64, error) {
	if b.fetcher == nil {
		return "", 0, 0, fmt.Errorf("no image fetcher configured")
	}
	img, err := b.fetcher.Fetch(b.ctx, url)
	if err != nil {
		return "", 0, 0, err
	}

	wPx, hPx := defaultImgPx, defaultImgPx*3/4
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
		wPx, hPx = cfg.Width, cfg.Height
	}
	cx, cy := int64(wPx)*emuPerPixel, int64(hPx)*emuPerPixel
	if cx > maxImageWidth {
		cy = cy * maxImageWidth / cx
		cx = maxImageWidth
	}

	if relID, ok := b.imageRels[url]; ok {
		return relID, cx, cy, nil
	}

	ext := strings.TrimPrefix(img.Extension, ".")
	if ext == "" {
		ext = "png"
	}
	name := fmt.Sprintf("image%d.%s", len(b.media)+1, ext)
	b.media = append(b.media, docxMedia{name: name, data: img.Data})
	b.mediaExts[ext] = img.ContentType
	relID := b.addRel(relImage, "media/"+name, false)
	b.imageRels[url] = relID
	return relID, cx, cy, nil
}

// -----------------------------
// 行内
// -----------------------------

func (b *docxBuilder) runs(spans []markdown.Span) string {
	var s strings.Builder
	for _, span := range spans {
		switch span.Kind {
		case markdown.SpanBold:
			s.WriteString(styledRun(span.Text, `<w:b/>`))
		case markdown.SpanItalic:
			s.WriteString(styledRun(span.Text, `<w:i/>`))
		case markdown.SpanBoldItalic:
			s.WriteString(styledRun(span.Text, `<w:b/><w:i/>`))
		case markdown.SpanCode:
			s.WriteString(styledRun(span.Text, `<w:rFonts w:ascii="Consolas" w:hAnsi="Consolas"/><w:shd w:val="clear" w:color="auto" w:fill="F2F2F2"/>`))
		case markdown.SpanImage:
			s.WriteString(b.inlineImage(span))
		case markdown.SpanLink:
			text := span.Text
			if text == "" {
				text = span.URL
			}
			relID := b.addRel(relHyperlink, span.URL, true)
			fmt.Fprintf(&s, `<w:hyperlink r:id="%s">%s</w:hyperlink>`, relID, styledRun(text, `<w:rStyle w:val="Hyperlink"/>`))
		default:
			s.WriteString(textRun(span.Text))
		}
	}
	return s.String()
}

func textRun(text string) string {
	return `<w:r><w:t xml:space="preserve">` + esc(text) + `</w:t></w:r>`
}

func styledRun(text, rPr string) string {
	return `<w:r><w:rPr>` + rPr + `</w:rPr><w:t xml:space="preserve">` + esc(text) + `</w:t></w:r>`
}

func diagnosticRun(text string) string {
	return styledRun(text, `<w:i/><w:color w:val="C00000"/>`)
}

func esc(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// -----------------------------
// 打包
// -----------------------------

func (b *docxBuilder) pack(meta Meta) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", b.contentTypes()},
		{"_rels/.rels", packageRels},
		{"docProps/core.xml", coreProps(meta)},
		{"docProps/app.xml", appProps},
		{"word/document.xml", b.document()},
		{"word/_rels/document.xml.rels", b.documentRels()},
		{"word/styles.xml", docxStyles},
		{"word/numbering.xml", b.numbering()},
		{"word/header1.xml", headerPart(meta)},
		{"word/footer1.xml", footerPart(meta)},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	for _, m := range b.media {
		w, err := zw.Create("word/media/" + m.name)
		if err != nil {
			return nil, fmt.Errorf("create media %s: %w", m.name, err)
		}
		if _, err := w.Write(m.data); err != nil {
			return nil, fmt.Errorf("write media %s: %w", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func (b *docxBuilder) document() string {
	return xmlHeader +
		`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `" xmlns:wp="` + nsWP + `" xmlns:a="` + nsA + `" xmlns:pic="` + nsPic + `">` +
		`<w:body>` + b.body.String() + `</w:body></w:document>`
}

func (b *docxBuilder) contentTypes() string {
	var s strings.Builder
	s.WriteString(xmlHeader)
	s.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	s.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	s.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	for ext, ct := range b.mediaExts {
		fmt.Fprintf(&s, `<Default Extension="%s" ContentType="%s"/>`, esc(ext), esc(ct))
	}
	s.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	s.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	s.WriteString(`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>`)
	s.WriteString(`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`)
	s.WriteString(`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`)
	s.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	s.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	s.WriteString(`</Types>`)
	return s.String()
}

func (b *docxBuilder) documentRels() string {
	var s strings.Builder
	s.WriteString(xmlHeader)
	s.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, rel := range b.rels {
		mode := ""
		if rel.external {
			mode = ` TargetMode="External"`
		}
		fmt.Fprintf(&s, `<Relationship Id="%s" Type="%s" Target="%s"%s/>`, rel.id, rel.relType, esc(rel.target), mode)
	}
	s.WriteString(`</Relationships>`)
	return s.String()
}

func (b *docxBuilder) numbering() string {
	var s strings.Builder
	s.WriteString(xmlHeader)
	s.WriteString(`<w:numbering xmlns:w="` + nsW + `">`)
	s.WriteString(`<w:abstractNum w:abstractNumId="0"><w:multiLevelType w:val="singleLevel"/><w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/><w:lvlJc w:val="left"/><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`)
	s.WriteString(`<w:abstractNum w:abstractNumId="1"><w:multiLevelType w:val="singleLevel"/><w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/><w:lvlJc w:val="left"/><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`)
	fmt.Fprintf(&s, `<w:num w:numId="%d"><w:abstractNumId w:val="0"/></w:num>`, bulletNumID)
	for i := 1; i <= b.numLists; i++ {
		fmt.Fprintf(&s, `<w:num w:numId="%d"><w:abstractNumId w:val="1"/><w:lvlOverride w:ilvl="0"><w:startOverride w:val="1"/></w:lvlOverride></w:num>`, bulletNumID+i)
	}
	s.WriteString(`</w:numbering>`)
	return s.String()
}

func headerPart(meta Meta) string {
	return xmlHeader + `<w:hdr xmlns:w="` + nsW + `" xmlns:r="` + nsR + `">` +
		`<w:p><w:pPr><w:pStyle w:val="Header"/><w:jc w:val="right"/></w:pPr>` + textRun(meta.HeaderText()) + `</w:p></w:hdr>`
}

func footerPart(meta Meta) string {
	return xmlHeader + `<w:ftr xmlns:w="` + nsW + `" xmlns:r="` + nsR + `">` +
		`<w:p><w:pPr><w:pStyle w:val="Footer"/><w:tabs><w:tab w:val="right" w:pos="` + fmt.Sprint(textWidthTwips) + `"/></w:tabs></w:pPr>` +
		textRun("Generated on "+meta.FooterDate()) +
		`<w:r><w:tab/></w:r>` + textRun("Page ") +
		`<w:fldSimple w:instr=" PAGE "><w:r><w:t>1</w:t></w:r></w:fldSimple>` +
		textRun(" / ") +
		`<w:fldSimple w:instr=" NUMPAGES "><w:r><w:t>1</w:t></w:r></w:fldSimple>` +
		`</w:p></w:ftr>`
}

func coreProps(meta Meta) string {
	created := meta.GeneratedAt.UTC().Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + esc(meta.Title) + `</dc:title>` +
		`<dc:subject>` + esc(meta.Reference) + `</dc:subject>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + created + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + created + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

const packageRels = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

const appProps = xmlHeader +
	`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"><Application>opentender</Application></Properties>`

const docxStyles = xmlHeader +
	`<w:styles xmlns:w="` + nsW + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:eastAsia="Calibri" w:cs="Calibri"/><w:sz w:val="22"/><w:szCs w:val="22"/><w:lang w:val="fr-FR"/></w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="120" w:line="276" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:jc w:val="center"/><w:spacing w:after="480"/></w:pPr><w:rPr><w:b/><w:color w:val="1F3864"/><w:sz w:val="56"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Subtitle"><w:name w:val="Subtitle"/><w:basedOn w:val="Normal"/><w:qFormat/><w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:color w:val="595959"/><w:sz w:val="28"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:spacing w:before="240" w:after="240"/><w:pBdr><w:bottom w:val="single" w:sz="8" w:space="4" w:color="1F3864"/></w:pBdr><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:color w:val="1F3864"/><w:sz w:val="36"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:color w:val="2F5496"/><w:sz w:val="30"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:spacing w:before="200" w:after="100"/><w:outlineLvl w:val="2"/></w:pPr><w:rPr><w:b/><w:color w:val="2F5496"/><w:sz w:val="26"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading4"><w:name w:val="heading 4"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:outlineLvl w:val="3"/></w:pPr><w:rPr><w:b/><w:i/><w:sz w:val="24"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading5"><w:name w:val="heading 5"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:outlineLvl w:val="4"/></w:pPr><w:rPr><w:i/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Quote"><w:name w:val="Quote"/><w:basedOn w:val="Normal"/><w:pPr><w:ind w:left="567"/><w:pBdr><w:left w:val="single" w:sz="18" w:space="8" w:color="A6A6A6"/></w:pBdr></w:pPr><w:rPr><w:i/><w:color w:val="404040"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Code"><w:name w:val="Code"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="0" w:line="240" w:lineRule="auto"/><w:shd w:val="clear" w:color="auto" w:fill="F2F2F2"/></w:pPr><w:rPr><w:rFonts w:ascii="Consolas" w:hAnsi="Consolas"/><w:sz w:val="18"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="60"/><w:ind w:left="720"/><w:contextualSpacing/></w:pPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Caption"><w:name w:val="caption"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:i/><w:color w:val="595959"/><w:sz w:val="18"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="TableHeader"><w:name w:val="Table Header"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="0"/></w:pPr><w:rPr><w:b/><w:color w:val="FFFFFF"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Header"><w:name w:val="header"/><w:basedOn w:val="Normal"/><w:rPr><w:color w:val="7F7F7F"/><w:sz w:val="18"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Footer"><w:name w:val="footer"/><w:basedOn w:val="Normal"/><w:rPr><w:color w:val="7F7F7F"/><w:sz w:val="18"/></w:rPr></w:style>` +
	`<w:style w:type="character" w:styleId="Hyperlink"><w:name w:val="Hyperlink"/><w:rPr><w:color w:val="0563C1"/><w:u w:val="single"/></w:rPr></w:style>` +
	`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders>` +
	`<w:top w:val="single" w:sz="4" w:space="0" w:color="BFBFBF"/><w:left w:val="single" w:sz="4" w:space="0" w:color="BFBFBF"/>` +
	`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="BFBFBF"/><w:right w:val="single" w:sz="4" w:space="0" w:color="BFBFBF"/>` +
	`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="BFBFBF"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="BFBFBF"/>` +
	`</w:tblBorders><w:tblCellMar><w:left w:w="108" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>` +
	`</w:styles>`

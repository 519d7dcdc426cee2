package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/pkg/markdown"
	"k8s.io/klog/v2"
)

// HTMLRenderer 生成可打印的 HTML，分页和页眉页脚由 CSS paged media 控制
type HTMLRenderer struct {
	lowerer *markdown.Lowerer
	now     func() time.Time
}

func NewHTMLRenderer(lowerer *markdown.Lowerer) *HTMLRenderer {
	return &HTMLRenderer{lowerer: lowerer, now: time.Now}
}

type htmlSection struct {
	Anchor string
	Title  string
	Body   template.HTML
}

type htmlPage struct {
	Meta     Meta
	Sections []htmlSection
}

// Render 实现 Renderer 接口
func (r *HTMLRenderer) Render(ctx context.Context, doc domain.Document) ([]byte, error) {
	sections, err := Prepare(ctx, doc, r.lowerer)
	if err != nil {
		return nil, err
	}
	page := htmlPage{
		Meta: Meta{Title: doc.Title, Reference: doc.Reference, ClientName: doc.ClientName, GeneratedAt: r.now()},
	}
	for _, sec := range sections {
		page.Sections = append(page.Sections, htmlSection{
			Anchor: "section-" + sec.Key,
			Title:  sec.DisplayTitle(),
			Body:   renderBlocksHTML(sec.Blocks),
		})
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("execute html template: %w", err)
	}
	klog.V(6).Infof("[render.HTML] 渲染完成: docID=%d, sections=%d, bytes=%d", doc.ID, len(sections), buf.Len())
	return buf.Bytes(), nil
}

// renderBlocksHTML 所有文本经过转义，结果可以直接放进模板
func renderBlocksHTML(blocks []markdown.Block) template.HTML {
	var s strings.Builder
	for _, b := range blocks {
		switch b.Kind {
		case markdown.BlockHeading:
			// 章节标题占用 h1，正文标题从 h2 开始
			level := min(b.Level+1, 5)
			fmt.Fprintf(&s, "<h%d>%s</h%d>\n", level, inlineHTML(b.Spans), level)
		case markdown.BlockParagraph:
			fmt.Fprintf(&s, "<p>%s</p>\n", inlineHTML(b.Spans))
		case markdown.BlockQuote:
			fmt.Fprintf(&s, "<blockquote>%s</blockquote>\n", inlineHTML(b.Spans))
		case markdown.BlockList:
			tag := "ul"
			if b.Ordered {
				tag = "ol"
			}
			fmt.Fprintf(&s, "<%s>\n", tag)
			for _, item := range b.Items {
				fmt.Fprintf(&s, "<li>%s</li>\n", inlineHTML(item))
			}
			fmt.Fprintf(&s, "</%s>\n", tag)
		case markdown.BlockTable:
			s.WriteString("<table>\n<thead><tr>")
			for _, cell := range b.Header {
				fmt.Fprintf(&s, "<th>%s</th>", inlineHTML(cell))
			}
			s.WriteString("</tr></thead>\n<tbody>\n")
			for _, row := range b.Rows {
				s.WriteString("<tr>")
				for i := range b.Header {
					var cell markdown.Cell
					if i < len(row) {
						cell = row[i]
					}
					fmt.Fprintf(&s, "<td>%s</td>", inlineHTML(cell))
				}
				s.WriteString("</tr>\n")
			}
			s.WriteString("</tbody>\n</table>\n")
		case markdown.BlockCode:
			class := ""
			if b.Lang != "" {
				class = fmt.Sprintf(` class="language-%s"`, template.HTMLEscapeString(b.Lang))
			}
			fmt.Fprintf(&s, "<pre><code%s>%s</code></pre>\n", class, template.HTMLEscapeString(b.Code))
		case markdown.BlockRule:
			s.WriteString("<hr>\n")
		case markdown.BlockImage:
			if !safeURL(b.URL) {
				id := b.AssetID
				if id == "" {
					id = b.URL
				}
				fmt.Fprintf(&s, "<p class=\"diagnostic\">%s</p>\n", template.HTMLEscapeString(markdown.UnavailableImage(id)))
				continue
			}
			fmt.Fprintf(&s, "<figure><img src=\"%s\" alt=\"%s\">", template.HTMLEscapeString(b.URL), template.HTMLEscapeString(b.Alt))
			if b.Alt != "" {
				fmt.Fprintf(&s, "<figcaption>%s</figcaption>", template.HTMLEscapeString(b.Alt))
			}
			s.WriteString("</figure>\n")
		}
	}
	return template.HTML(s.String())
}

func inlineHTML(spans []markdown.Span) string {
	var s strings.Builder
	for _, span := range spans {
		text := template.HTMLEscapeString(span.Text)
		switch span.Kind {
		case markdown.SpanBold:
			s.WriteString("<strong>" + text + "</strong>")
		case markdown.SpanItalic:
			s.WriteString("<em>" + text + "</em>")
		case markdown.SpanBoldItalic:
			s.WriteString("<strong><em>" + text + "</em></strong>")
		case markdown.SpanCode:
			s.WriteString("<code>" + text + "</code>")
		case markdown.SpanLink:
			if !safeURL(span.URL) {
				s.WriteString(text)
				continue
			}
			if text == "" {
				text = template.HTMLEscapeString(span.URL)
			}
			fmt.Fprintf(&s, `<a href="%s">%s</a>`, template.HTMLEscapeString(span.URL), text)
		case markdown.SpanImage:
			if !safeURL(span.URL) {
				s.WriteString(text)
				continue
			}
			fmt.Fprintf(&s, `<img class="inline" src="%s" alt="%s">`, template.HTMLEscapeString(span.URL), text)
		default:
			s.WriteString(text)
		}
	}
	return s.String()
}

// safeURL 只允许 http(s) 和内嵌图片
func safeURL(u string) bool {
	lower := strings.ToLower(strings.TrimSpace(u))
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:image/")
}

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Meta.Title}}</title>
<style>
@page {
  size: A4;
  margin: 25mm 25mm 22mm 25mm;
  @top-right { content: "{{.Meta.HeaderText}}"; font-size: 9pt; color: #7f7f7f; }
  @bottom-left { content: "Generated on {{.Meta.FooterDate}}"; font-size: 9pt; color: #7f7f7f; }
  @bottom-right { content: "Page " counter(page) " / " counter(pages); font-size: 9pt; color: #7f7f7f; }
}
@page :first { @top-right { content: none; } @bottom-left { content: none; } @bottom-right { content: none; } }
body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; line-height: 1.4; color: #222; }
.cover { text-align: center; padding-top: 80mm; page-break-after: always; }
.cover h1 { font-size: 28pt; color: #1f3864; border: none; }
.cover p { font-size: 14pt; color: #595959; margin: 4mm 0; }
section { page-break-before: always; }
section:first-of-type { page-break-before: auto; }
h1 { font-size: 18pt; color: #1f3864; border-bottom: 1.5pt solid #1f3864; padding-bottom: 2mm; }
h2 { font-size: 15pt; color: #2f5496; }
h3 { font-size: 13pt; color: #2f5496; }
h4, h5 { font-size: 12pt; font-style: italic; }
h1, h2, h3, h4, h5 { page-break-after: avoid; }
table { border-collapse: collapse; width: 100%; margin: 3mm 0; page-break-inside: auto; }
thead { display: table-header-group; }
tr { page-break-inside: avoid; }
th { background: #1f3864; color: #fff; text-align: left; }
th, td { border: 0.5pt solid #bfbfbf; padding: 1.5mm 2mm; vertical-align: top; }
blockquote { margin: 3mm 0 3mm 10mm; padding-left: 4mm; border-left: 3pt solid #a6a6a6; color: #404040; font-style: italic; }
pre { background: #f2f2f2; padding: 3mm; font-size: 9pt; white-space: pre-wrap; }
code { font-family: Consolas, monospace; background: #f2f2f2; }
figure { text-align: center; margin: 4mm 0; page-break-inside: avoid; }
figure img { max-width: 100%; }
figcaption { font-size: 9pt; font-style: italic; color: #595959; }
img.inline { max-height: 1.2em; }
.diagnostic { color: #c00000; font-style: italic; }
.running-header, .running-footer { display: none; }
@media screen {
  body { max-width: 210mm; margin: 0 auto; padding: 10mm; }
  .running-header, .running-footer { display: block; color: #7f7f7f; font-size: 9pt; }
}
</style>
</head>
<body>
<div class="running-header">{{.Meta.HeaderText}}</div>
<div class="cover">
<h1>{{.Meta.Title}}</h1>
{{- if .Meta.Reference}}
<p>Reference: {{.Meta.Reference}}</p>
{{- end}}
{{- if .Meta.ClientName}}
<p>Client: {{.Meta.ClientName}}</p>
{{- end}}
<p>{{.Meta.FooterDate}}</p>
</div>
{{range .Sections}}
<section id="{{.Anchor}}">
<h1>{{.Title}}</h1>
{{.Body}}
</section>
{{end}}
<div class="running-footer">Generated on {{.Meta.FooterDate}}</div>
</body>
</html>
`))

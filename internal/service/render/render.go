// Package render 把已持久化的章节渲染为可下载的文档
package render

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/pkg/markdown"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNothingToExport 没有任何可导出的章节
var ErrNothingToExport = errors.New("nothing to export: no enabled section has content")

// Format 导出格式
type Format string

const (
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ContentType 导出文件的 MIME 类型
func (f Format) ContentType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat 解析导出格式
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDOCX, FormatHTML, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Renderer 渲染器
type Renderer interface {
	Render(ctx context.Context, doc domain.Document) ([]byte, error)
}

// Meta 页眉页脚和封面使用的文档信息
type Meta struct {
	Title       string
	Reference   string
	ClientName  string
	GeneratedAt time.Time
}

// HeaderText 页眉文本，标题后接编号
func (m Meta) HeaderText() string {
	if m.Reference == "" {
		return m.Title
	}
	return m.Title + " — " + m.Reference
}

// FooterDate 页脚中的生成日期
func (m Meta) FooterDate() string {
	return m.GeneratedAt.Format("02/01/2006")
}

// Section 一个待渲染章节：按启用章节中的位置重新编号
type Section struct {
	Key    string
	Number int
	Title  string
	Blocks []markdown.Block
}

// DisplayTitle "N. 标题"
func (s Section) DisplayTitle() string {
	return fmt.Sprintf("%d. %s", s.Number, s.Title)
}

// Renderable 过滤出启用且有内容的章节
func Renderable(sections []domain.Section) []domain.Section {
	return slice.Filter(sections, func(_ int, s domain.Section) bool {
		return s.Enabled && s.HasContent()
	})
}

// Prepare 过滤、重新编号并解析章节内容
func Prepare(ctx context.Context, doc domain.Document, lowerer *markdown.Lowerer) ([]Section, error) {
	enabled := Renderable(doc.Sections)
	if len(enabled) == 0 {
		return nil, ErrNothingToExport
	}

	out := make([]Section, 0, len(enabled))
	for i, s := range enabled {
		out = append(out, Section{
			Key:    s.Key,
			Number: i + 1,
			Title:  domain.StripNumberPrefix(s.Title),
			Blocks: lowerer.Lower(ctx, s.Content),
		})
	}
	return out, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Filename 由标题和时间生成文件名；先去掉重音，其余非字母数字字符替换为下划线
func Filename(title string, format Format, at time.Time) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(folded, "_"), "_")
	if name == "" {
		name = "document"
	}
	if len(name) > 80 {
		name = strings.TrimRight(name[:80], "_")
	}
	return fmt.Sprintf("%s_%s.%s", name, at.Format("20060102_150405"), format)
}

// Package markdown 把章节的 markdown 内容转换为与输出格式无关的块节点序列
package markdown

// BlockKind 块节点类型
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockList
	BlockTable
	BlockQuote
	BlockCode
	BlockRule
	BlockImage
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockList:
		return "list"
	case BlockTable:
		return "table"
	case BlockQuote:
		return "quote"
	case BlockCode:
		return "code"
	case BlockRule:
		return "rule"
	case BlockImage:
		return "image"
	default:
		return "unknown"
	}
}

// SpanKind 行内片段类型
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanBold
	SpanItalic
	SpanBoldItalic
	SpanCode
	SpanLink
	SpanImage
)

// Span 行内片段；链接和图片的地址放在 URL 中
type Span struct {
	Kind    SpanKind
	Text    string
	URL     string
	AssetID string // 由素材引用解析而来的图片
}

// Cell 表格单元格
type Cell []Span

// Block 块节点，按 Kind 使用对应字段
type Block struct {
	Kind BlockKind

	// Heading
	Level int

	// Heading, Paragraph, Quote
	Spans []Span

	// List
	Ordered bool
	Items   [][]Span

	// Table，Header 为首行
	Header []Cell
	Rows   [][]Cell

	// Code
	Lang string
	Code string

	// Image
	Alt     string
	URL     string
	AssetID string
}

// PlainText 拼接片段文本，用于标题、书签等只需要纯文本的场景
func PlainText(spans []Span) string {
	var n int
	for _, s := range spans {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range spans {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

package markdown

import (
	"html"
	"regexp"
	"strings"
)

// parseState 行分类状态机的状态
type parseState int

const (
	stateNone parseState = iota
	stateInTable
	stateInListBullet
	stateInListNumber
	stateInParagraph
	stateInCode
)

func (s parseState) String() string {
	switch s {
	case stateNone:
		return "NONE"
	case stateInTable:
		return "IN_TABLE"
	case stateInListBullet:
		return "IN_LIST_BULLET"
	case stateInListNumber:
		return "IN_LIST_NUMBER"
	case stateInParagraph:
		return "IN_PARAGRAPH"
	case stateInCode:
		return "IN_CODE"
	default:
		return "UNKNOWN"
	}
}

// lineKind 单行的分类结果
type lineKind int

const (
	lineBlank lineKind = iota
	lineFence
	lineTableRow
	lineTableSeparator
	lineHeading
	lineBullet
	lineNumber
	lineQuote
	lineRule
	lineImage
	lineText
)

var (
	fencePattern     = regexp.MustCompile("^\\s*(```|~~~)\\s*([\\w+#.-]*)\\s*$")
	headingPattern   = regexp.MustCompile(`^\s*(#{1,6})\s+(.*)$`)
	closingHashes    = regexp.MustCompile(`\s+#+\s*$`)
	bulletPattern    = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	numberPattern    = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	quotePattern     = regexp.MustCompile(`^\s*>\s?(.*)$`)
	rulePattern      = regexp.MustCompile(`^\s*(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)
	imageLinePattern = regexp.MustCompile(`^\s*!\[([^\]]*)\]\(([^)\s]+)\)\s*$`)
	separatorPattern = regexp.MustCompile(`^[\s|:\-]+$`)
)

// classifiedLine 分类后的行，payload 为去掉标记后的正文
type classifiedLine struct {
	kind    lineKind
	raw     string
	payload string
	level   int
	alt     string
	url     string
}

func classify(raw string) classifiedLine {
	line := classifiedLine{kind: lineText, raw: raw, payload: strings.TrimSpace(raw)}
	trimmed := line.payload

	if trimmed == "" {
		line.kind = lineBlank
		return line
	}
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		line.kind = lineFence
		line.payload = m[2]
		return line
	}
	if strings.Count(trimmed, "|") >= 2 {
		if separatorPattern.MatchString(trimmed) && strings.Contains(trimmed, "-") {
			line.kind = lineTableSeparator
		} else {
			line.kind = lineTableRow
		}
		return line
	}
	if m := headingPattern.FindStringSubmatch(raw); m != nil {
		line.kind = lineHeading
		line.level = min(len(m[1]), 4)
		line.payload = strings.TrimSpace(closingHashes.ReplaceAllString(m[2], ""))
		return line
	}
	if rulePattern.MatchString(raw) {
		line.kind = lineRule
		return line
	}
	if m := bulletPattern.FindStringSubmatch(raw); m != nil {
		line.kind = lineBullet
		line.payload = strings.TrimSpace(m[1])
		return line
	}
	if m := numberPattern.FindStringSubmatch(raw); m != nil {
		line.kind = lineNumber
		line.payload = strings.TrimSpace(m[1])
		return line
	}
	if m := quotePattern.FindStringSubmatch(raw); m != nil {
		line.kind = lineQuote
		line.payload = strings.TrimSpace(m[1])
		return line
	}
	if m := imageLinePattern.FindStringSubmatch(raw); m != nil {
		line.kind = lineImage
		line.alt = m[1]
		line.url = m[2]
		return line
	}
	return line
}

// machine 逐行推进的状态机，所有状态切换都经过 step
type machine struct {
	state  parseState
	blocks []Block

	para     []string
	table    [][]string
	list     [][]Span
	code     []string
	codeLang string

	assetIDs map[string]string
}

// Parse 将 markdown 文本转换为块节点序列，不解析素材引用
func Parse(content string) []Block {
	return parse(html.UnescapeString(content), nil)
}

// parse 输入必须已经完成实体解码
func parse(content string, assetIDs map[string]string) []Block {
	m := &machine{assetIDs: assetIDs}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	for _, raw := range strings.Split(content, "\n") {
		m.step(raw)
	}
	m.finish()
	return m.blocks
}

// step 状态转移函数
func (m *machine) step(raw string) {
	if m.state == stateInCode {
		if l := classify(raw); l.kind == lineFence {
			m.flushCode()
			m.state = stateNone
			return
		}
		m.code = append(m.code, raw)
		return
	}

	line := classify(raw)

	switch line.kind {
	case lineBlank:
		m.closeOpen()

	case lineFence:
		m.closeOpen()
		m.codeLang = line.payload
		m.state = stateInCode

	case lineTableRow, lineTableSeparator:
		if m.state != stateInTable {
			m.closeOpen()
			m.state = stateInTable
		}
		if line.kind == lineTableRow {
			m.table = append(m.table, splitRow(line.payload))
		}

	case lineBullet, lineNumber:
		want := stateInListBullet
		if line.kind == lineNumber {
			want = stateInListNumber
		}
		if m.state != want {
			m.closeOpen()
			m.state = want
		}
		m.list = append(m.list, m.inline(line.payload))

	case lineHeading:
		m.closeOpen()
		m.emit(Block{Kind: BlockHeading, Level: line.level, Spans: m.inline(line.payload)})

	case lineQuote:
		m.closeOpen()
		m.emit(Block{Kind: BlockQuote, Spans: m.inline(line.payload)})

	case lineRule:
		m.closeOpen()
		m.emit(Block{Kind: BlockRule})

	case lineImage:
		m.closeOpen()
		m.emit(Block{Kind: BlockImage, Alt: line.alt, URL: line.url, AssetID: m.assetIDs[line.url]})

	default:
		if m.state != stateInParagraph {
			m.closeOpen()
			m.state = stateInParagraph
		}
		m.para = append(m.para, line.payload)
	}
}

// finish 输入结束时尽力输出未闭合的结构
func (m *machine) finish() {
	if m.state == stateInCode {
		m.flushCode()
		m.state = stateNone
		return
	}
	m.closeOpen()
}

// closeOpen 关闭当前打开的表格、列表或段落，回到 NONE
func (m *machine) closeOpen() {
	switch m.state {
	case stateInTable:
		m.flushTable()
	case stateInListBullet, stateInListNumber:
		m.emit(Block{Kind: BlockList, Ordered: m.state == stateInListNumber, Items: m.list})
		m.list = nil
	case stateInParagraph:
		m.emit(Block{Kind: BlockParagraph, Spans: m.inline(joinLines(m.para))})
		m.para = nil
	}
	m.state = stateNone
}

func (m *machine) flushTable() {
	rows := m.table
	m.table = nil
	if len(rows) == 0 {
		return
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	toCells := func(r []string) []Cell {
		cells := make([]Cell, width)
		for i := range cells {
			if i < len(r) {
				cells[i] = m.inline(r[i])
			}
		}
		return cells
	}

	block := Block{Kind: BlockTable, Header: toCells(rows[0])}
	for _, r := range rows[1:] {
		block.Rows = append(block.Rows, toCells(r))
	}
	m.emit(block)
}

func (m *machine) flushCode() {
	m.emit(Block{Kind: BlockCode, Lang: m.codeLang, Code: strings.Join(m.code, "\n")})
	m.code = nil
	m.codeLang = ""
}

// inline 解析行内片段，并为已解析的素材图片补上素材 ID
func (m *machine) inline(text string) []Span {
	spans := ParseInline(text)
	for i, span := range spans {
		if span.Kind == SpanImage {
			spans[i].AssetID = m.assetIDs[span.URL]
		}
	}
	return spans
}

func (m *machine) emit(b Block) {
	m.blocks = append(m.blocks, b)
}

// splitRow 拆分表格行，去掉首尾的竖线
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

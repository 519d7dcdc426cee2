package markdown

import (
	"regexp"
	"strings"
)

// 同一位置上按顺序优先匹配：代码、图片、链接、粗斜体、粗体、斜体
var inlinePattern = regexp.MustCompile(
	"`([^`]+)`" +
		`|!\[([^\]]*)\]\(([^)\s]+)\)` +
		`|\[([^\]]+)\]\(([^)\s]+)\)` +
		`|\*\*\*(.+?)\*\*\*` +
		`|\b___(.+?)___\b` +
		`|\*\*(.+?)\*\*` +
		`|\b__(.+?)__\b` +
		`|\*([^*\s](?:[^*]*?[^*\s])?)\*` +
		`|\b_([^_\s](?:[^_]*?[^_\s])?)_\b`,
)

// ParseInline 识别行内强调、代码、链接和图片
func ParseInline(text string) []Span {
	if text == "" {
		return nil
	}

	var spans []Span
	rest := text
	for rest != "" {
		loc := inlinePattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			spans = appendText(spans, rest)
			break
		}
		if loc[0] > 0 {
			spans = appendText(spans, rest[:loc[0]])
		}
		spans = append(spans, spanFromMatch(rest, loc))
		rest = rest[loc[1]:]
	}
	return spans
}

func spanFromMatch(s string, loc []int) Span {
	group := func(i int) (string, bool) {
		if loc[2*i] < 0 {
			return "", false
		}
		return s[loc[2*i]:loc[2*i+1]], true
	}

	if v, ok := group(1); ok {
		return Span{Kind: SpanCode, Text: v}
	}
	if url, ok := group(3); ok {
		alt, _ := group(2)
		return Span{Kind: SpanImage, Text: alt, URL: url}
	}
	if url, ok := group(5); ok {
		label, _ := group(4)
		return Span{Kind: SpanLink, Text: label, URL: url}
	}
	for i, kind := range []SpanKind{SpanBoldItalic, SpanBoldItalic, SpanBold, SpanBold, SpanItalic, SpanItalic} {
		if v, ok := group(6 + i); ok {
			return Span{Kind: kind, Text: v}
		}
	}
	return Span{Kind: SpanText, Text: s[loc[0]:loc[1]]}
}

// appendText 合并相邻的纯文本片段
func appendText(spans []Span, text string) []Span {
	if text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].Kind == SpanText {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Kind: SpanText, Text: text})
}

// joinLines 段落内的软换行按空格拼接
func joinLines(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

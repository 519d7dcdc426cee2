package utils

import (
	"encoding/json"
	"regexp"
	"strings"

	"k8s.io/klog/v2"
)

var (
	openingFence = regexp.MustCompile("^```[ \\t]*(?i:markdown|md)?[ \\t]*\\r?\\n")
	closingFence = regexp.MustCompile("\\r?\\n```[ \\t]*$")
)

// ExtractMarkdown 去掉模型输出外层包裹的 ```markdown ... ``` 代码块
// 只有整段内容被包裹时才处理，正文中的代码块保持不变
func ExtractMarkdown(content string) string {
	trimmed := strings.TrimSpace(content)
	open := openingFence.FindStringIndex(trimmed)
	if open == nil {
		return trimmed
	}
	rest := trimmed[open[1]:]
	closing := closingFence.FindStringIndex(rest)
	if closing == nil {
		klog.V(6).Infof("[ExtractMarkdown] 代码块未闭合，返回原始内容")
		return trimmed
	}
	inner := rest[:closing[0]]
	// 内部还有未配对的围栏说明外层并不是包裹块
	if strings.Count(inner, "```")%2 != 0 {
		return trimmed
	}
	klog.V(6).Infof("[ExtractMarkdown] 提取到 Markdown 代码块，长度: %d", len(inner))
	return strings.TrimSpace(inner)
}

func ToJSON(v any) string {
	jsonData, err := json.Marshal(v)
	if err != nil {
		klog.Errorf("JSON序列化失败: %v", err)
		return ""
	}
	return string(jsonData)
}

package llm

import "strings"

// modelTokenCeilings 各模型公布的最大输出 token 数
// 按前缀匹配，取最长前缀
var modelTokenCeilings = map[string]int{
	"gpt-3.5-turbo":     4096,
	"gpt-4":             8192,
	"gpt-4-turbo":       4096,
	"gpt-4o":            16384,
	"gpt-4o-mini":       16384,
	"gpt-4.1":           32768,
	"gpt-4.1-mini":      32768,
	"gpt-5":             128000,
	"o1":                100000,
	"o1-mini":           65536,
	"o3":                100000,
	"o3-mini":           100000,
	"o4-mini":           100000,
	"claude-3-haiku":    4096,
	"claude-3-opus":     4096,
	"claude-3-5-sonnet": 8192,
	"claude-3-5-haiku":  8192,
	"claude-3-7-sonnet": 64000,
	"claude-sonnet-4":   64000,
	"claude-opus-4":     32000,
	"gemini-1.5-pro":    8192,
	"gemini-1.5-flash":  8192,
	"gemini-2.0-flash":  8192,
	"gemini-2.5-pro":    65536,
	"gemini-2.5-flash":  65536,
	"deepseek-chat":     8192,
	"deepseek-reasoner": 65536,
	"mistral-large":     131072,
}

// TokenCeiling 返回模型的输出上限，未知模型返回 false
func TokenCeiling(model string) (int, bool) {
	name := strings.ToLower(strings.TrimSpace(model))
	// 兼容 "openai/gpt-4o" 这类带厂商前缀的写法
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	best := ""
	for prefix := range modelTokenCeilings {
		if strings.HasPrefix(name, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0, false
	}
	return modelTokenCeilings[best], true
}

// ClampMaxTokens 把请求的最大输出 token 限制在模型上限内，未知模型原样返回
func ClampMaxTokens(model string, requested int) int {
	ceiling, ok := TokenCeiling(model)
	if !ok || requested <= ceiling {
		return requested
	}
	return ceiling
}

package llm

import "context"

// Provider 文本生成能力：输入提示词，输出生成文本
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request 一次生成请求，零值字段使用后端默认值
type Request struct {
	Prompt      string
	System      string
	Model       string
	Temperature *float64
	MaxTokens   int
	TopP        *float64
}

// Usage 用量计数
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 生成结果
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// ChatMessage OpenAI 兼容接口的消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest OpenAI 兼容接口的请求体
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
}

// ChatChoice 单个候选结果
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
}

// ChatResponse OpenAI 兼容接口的响应体
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Float 返回指针，便于填写可选参数
func Float(v float64) *float64 {
	return &v
}

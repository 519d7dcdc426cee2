package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind 生成失败的分类
type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindUnavailable ErrorKind = "unavailable"
	KindAuth        ErrorKind = "auth"
	KindMalformed   ErrorKind = "malformed"
	KindTimeout     ErrorKind = "timeout"
	KindOther       ErrorKind = "other"
)

// ErrEmptyResponse 服务端返回了空内容
var ErrEmptyResponse = errors.New("empty response from provider")

// ProviderError 生成请求最终失败，Raw 保存服务端原始诊断信息
type ProviderError struct {
	Kind       ErrorKind
	Provider   string
	Model      string
	StatusCode int
	Attempts   int
	Raw        string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s provider error (%s", e.Provider, e.Kind)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(", status %d", e.StatusCode)
	}
	if e.Attempts > 0 {
		msg += fmt.Sprintf(", %d attempts", e.Attempts)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Raw != "" {
		msg += ": " + truncate(e.Raw, 500)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable 只有限流和暂时不可用才重试
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindUnavailable
}

// KindFromStatus 根据 HTTP 状态码分类
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return KindUnavailable
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	default:
		return KindOther
	}
}

var rateLimitKeywords = []string{
	"429",
	"rate limit",
	"quota exceeded",
	"too many requests",
	"rate-limited",
	"request rate exceeded",
	"resource_exhausted",
}

var unavailableKeywords = []string{
	"503",
	"service unavailable",
	"temporarily unavailable",
	"overloaded",
}

var authKeywords = []string{
	"401",
	"403",
	"invalid api key",
	"incorrect api key",
	"unauthorized",
	"permission denied",
}

// ClassifyError 对只暴露错误文本的后端按关键字分类
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, ErrEmptyResponse) {
		return KindMalformed
	}

	lowerMsg := strings.ToLower(err.Error())
	for _, keyword := range rateLimitKeywords {
		if strings.Contains(lowerMsg, keyword) {
			return KindRateLimited
		}
	}
	for _, keyword := range unavailableKeywords {
		if strings.Contains(lowerMsg, keyword) {
			return KindUnavailable
		}
	}
	for _, keyword := range authKeywords {
		if strings.Contains(lowerMsg, keyword) {
			return KindAuth
		}
	}
	return KindOther
}

// asProviderError 把任意错误包装为 ProviderError
func asProviderError(err error, provider, model string) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{
		Kind:     ClassifyError(err),
		Provider: provider,
		Model:    model,
		Err:      err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opentender/backend/config"
	"k8s.io/klog/v2"
)

// Client OpenAI 兼容的 chat/completions HTTP 客户端
type Client struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	System      string
	Client      *http.Client
}

// NewClient 创建新的 LLM 客户端
func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(cfg.LLM.APIURL, "/"),
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
		System:      cfg.LLM.SystemPrompt,
		Client: &http.Client{
			// 单次请求的超时由调用方的 context 控制
			Timeout: 10 * time.Minute,
		},
	}
}

// Complete 实现 Provider 接口
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.Model
	}
	system := req.System
	if system == "" {
		system = c.System
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	temperature := req.Temperature
	if temperature == nil {
		temperature = Float(c.Temperature)
	}
	topP := req.TopP
	if topP == nil && c.TopP > 0 {
		topP = Float(c.TopP)
	}

	var messages []ChatMessage
	if system != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: req.Prompt})

	klog.V(6).Infof("Complete 请求: model=%s, promptLen=%d, maxTokens=%d", model, len(req.Prompt), maxTokens)
	resp, err := c.sendRequest(ctx, ChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &ProviderError{
			Kind:     KindMalformed,
			Provider: "http",
			Model:    model,
			Err:      ErrEmptyResponse,
		}
	}

	return &Response{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: resp.Usage,
	}, nil
}

// sendRequest 发送 HTTP 请求到 LLM API
func (c *Client) sendRequest(ctx context.Context, reqBody ChatRequest) (*ChatResponse, error) {
	url := c.BaseURL + "/chat/completions"
	klog.V(6).Infof("发送 LLM 请求: url=%s, model=%s", url, reqBody.Model)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Kind:     ClassifyError(err),
			Provider: "http",
			Model:    reqBody.Model,
			Err:      fmt.Errorf("request failed: %w", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Kind:       KindFromStatus(resp.StatusCode),
			Provider:   "http",
			Model:      reqBody.Model,
			StatusCode: resp.StatusCode,
			Raw:        string(body),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &ProviderError{
			Kind:     KindMalformed,
			Provider: "http",
			Model:    reqBody.Model,
			Raw:      string(body),
			Err:      fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	if chatResp.Error != nil {
		return nil, &ProviderError{
			Kind:     KindMalformed,
			Provider: "http",
			Model:    reqBody.Model,
			Raw:      string(body),
			Err:      fmt.Errorf("API error: %s", chatResp.Error.Message),
		}
	}

	return &chatResp, nil
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
	"k8s.io/klog/v2"
)

// GeminiProvider 通过 Google GenAI SDK 调用
type GeminiProvider struct {
	client      *genai.Client
	model       string
	system      string
	temperature float64
	topP        float64
	maxTokens   int
}

// GeminiOptions 创建 GeminiProvider 的参数
type GeminiOptions struct {
	APIKey      string
	Model       string
	System      string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// NewGeminiProvider 创建 Gemini 后端
func NewGeminiProvider(ctx context.Context, opts GeminiOptions) (*GeminiProvider, error) {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{
		client:      client,
		model:       opts.Model,
		system:      opts.System,
		temperature: opts.Temperature,
		topP:        opts.TopP,
		maxTokens:   opts.MaxTokens,
	}, nil
}

// Complete 实现 Provider 接口
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}
	system := req.System
	if system == "" {
		system = p.system
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(pick(req.Temperature, p.temperature))),
	}
	if topP := pick(req.TopP, p.topP); topP > 0 {
		config.TopP = genai.Ptr(float32(topP))
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	klog.V(6).Infof("[GeminiProvider] GenerateContent 开始: model=%s, promptLen=%d", modelName, len(req.Prompt))
	result, err := p.client.Models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		return nil, geminiError(err, modelName)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &ProviderError{Kind: KindMalformed, Provider: "gemini", Model: modelName, Err: ErrEmptyResponse}
	}

	resp := &Response{Text: text, Model: modelName}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func geminiError(err error, modelName string) *ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Kind:       KindFromStatus(apiErr.Code),
			Provider:   "gemini",
			Model:      modelName,
			StatusCode: apiErr.Code,
			Raw:        apiErr.Message,
			Err:        err,
		}
	}
	return asProviderError(err, "gemini", modelName)
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"
)

// EinoProvider 通过 eino 的 OpenAI ChatModel 调用
type EinoProvider struct {
	chatModel   model.BaseChatModel
	model       string
	system      string
	temperature float64
	topP        float64
	maxTokens   int
}

// EinoOptions 创建 EinoProvider 的参数
type EinoOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	System      string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// NewEinoProvider 创建基于 eino-ext openai 的后端
func NewEinoProvider(ctx context.Context, opts EinoOptions) (*EinoProvider, error) {
	klog.V(6).Infof("[EinoProvider] 创建 OpenAI ChatModel: model=%s, baseURL=%s", opts.Model, opts.BaseURL)

	config := &openai.ChatModelConfig{
		APIKey: opts.APIKey,
		Model:  opts.Model,
	}
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, config)
	if err != nil {
		klog.Errorf("[EinoProvider] 创建 ChatModel 失败: %v", err)
		return nil, fmt.Errorf("create eino chat model: %w", err)
	}
	return newEinoProvider(chatModel, opts), nil
}

func newEinoProvider(chatModel model.BaseChatModel, opts EinoOptions) *EinoProvider {
	return &EinoProvider{
		chatModel:   chatModel,
		model:       opts.Model,
		system:      opts.System,
		temperature: opts.Temperature,
		topP:        opts.TopP,
		maxTokens:   opts.MaxTokens,
	}
}

// Complete 实现 Provider 接口
func (p *EinoProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}
	system := req.System
	if system == "" {
		system = p.system
	}

	var input []*schema.Message
	if system != "" {
		input = append(input, schema.SystemMessage(system))
	}
	input = append(input, schema.UserMessage(req.Prompt))

	opts := []model.Option{model.WithModel(modelName)}
	temperature := p.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	opts = append(opts, model.WithTemperature(float32(temperature)))
	if topP := pick(req.TopP, p.topP); topP > 0 {
		opts = append(opts, model.WithTopP(float32(topP)))
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	if maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxTokens))
	}

	klog.V(6).Infof("[EinoProvider] Generate 开始: model=%s, promptLen=%d", modelName, len(req.Prompt))
	msg, err := p.chatModel.Generate(ctx, input, opts...)
	if err != nil {
		return nil, asProviderError(err, "eino", modelName)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, &ProviderError{Kind: KindMalformed, Provider: "eino", Model: modelName, Err: ErrEmptyResponse}
	}

	resp := &Response{Text: msg.Content, Model: modelName}
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		resp.Usage = Usage{
			PromptTokens:     msg.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: msg.ResponseMeta.Usage.CompletionTokens,
			TotalTokens:      msg.ResponseMeta.Usage.TotalTokens,
		}
	}
	klog.V(6).Infof("[EinoProvider] Generate 完成: responseLength=%d", len(msg.Content))
	return resp, nil
}

func pick(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	input []*schema.Message
	reply *schema.Message
	err   error
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.input = input
	return m.reply, m.err
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestEinoProviderComplete(t *testing.T) {
	cm := &fakeChatModel{reply: &schema.Message{
		Role:    schema.Assistant,
		Content: "## Approach",
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		},
	}}
	p := newEinoProvider(cm, EinoOptions{Model: "gpt-4o", System: "be concise"})

	resp, err := p.Complete(context.Background(), Request{Prompt: "write"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "## Approach" || resp.Usage.TotalTokens != 5 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(cm.input) != 2 || cm.input[0].Role != schema.System || cm.input[1].Content != "write" {
		t.Errorf("unexpected input messages: %+v", cm.input)
	}
}

func TestEinoProviderClassifiesErrors(t *testing.T) {
	p := newEinoProvider(&fakeChatModel{err: errors.New("error, status code: 429, message: Rate limit reached")}, EinoOptions{Model: "gpt-4o"})

	_, err := p.Complete(context.Background(), Request{Prompt: "write"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindRateLimited {
		t.Fatalf("expected rate limited provider error, got %v", err)
	}

	p = newEinoProvider(&fakeChatModel{reply: &schema.Message{Content: "  "}}, EinoOptions{Model: "gpt-4o"})
	_, err = p.Complete(context.Background(), Request{Prompt: "write"})
	if !errors.As(err, &pe) || pe.Kind != KindMalformed {
		t.Fatalf("expected malformed provider error, got %v", err)
	}
}

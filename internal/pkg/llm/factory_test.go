package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opentender/backend/config"
)

func TestNewProviderSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = ""
	p, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	if _, ok := p.backend.(*Client); !ok {
		t.Fatalf("expected http client backend, got %T", p.backend)
	}
	if p.name != "http" {
		t.Fatalf("expected provider name http, got %q", p.name)
	}

	cfg.LLM.Provider = "eino"
	cfg.LLM.APIKey = "sk-test"
	p, err = NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewProvider(eino) error: %v", err)
	}
	if _, ok := p.backend.(*EinoProvider); !ok {
		t.Fatalf("expected eino backend, got %T", p.backend)
	}
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "bogus"
	if _, err := NewProvider(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProviderClampsConfiguredMaxTokens(t *testing.T) {
	var got int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		got = req.MaxTokens
		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: ChatMessage{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.LLM.Provider = "http"
	cfg.LLM.APIURL = server.URL
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Model = "gpt-3.5-turbo"
	cfg.LLM.MaxTokens = 8192

	p, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	if _, err := p.Complete(context.Background(), Request{Prompt: "write the section"}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != 4096 {
		t.Fatalf("expected max_tokens clamped to 4096, got %d", got)
	}
}

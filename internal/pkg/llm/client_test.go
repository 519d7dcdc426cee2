package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opentender/backend/config"
)

func newTestClient(url string) *Client {
	cfg := config.Default()
	cfg.LLM.APIURL = url
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Model = "gpt-4"
	cfg.LLM.MaxTokens = 2000
	return NewClient(cfg)
}

func TestNewClient(t *testing.T) {
	client := newTestClient("https://api.example.com/")

	if client.BaseURL != "https://api.example.com" {
		t.Errorf("expected BaseURL https://api.example.com, got %s", client.BaseURL)
	}
	if client.APIKey != "test-key" {
		t.Errorf("expected APIKey test-key, got %s", client.APIKey)
	}
	if client.Model != "gpt-4" {
		t.Errorf("expected Model gpt-4, got %s", client.Model)
	}
	if client.MaxTokens != 2000 {
		t.Errorf("expected MaxTokens 2000, got %d", client.MaxTokens)
	}
	if client.Client == nil {
		t.Error("expected HTTP client to be initialized")
	}
}

func TestClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %s", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "write the section" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != 2000 {
			t.Errorf("expected default max tokens 2000, got %d", req.MaxTokens)
		}

		json.NewEncoder(w).Encode(ChatResponse{
			ID:    "test-id",
			Model: "gpt-4",
			Choices: []ChatChoice{{
				Message:      ChatMessage{Role: "assistant", Content: "This is a test response"},
				FinishReason: "stop",
			}},
			Usage: Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Complete(context.Background(), Request{Prompt: "write the section"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "This is a test response" {
		t.Errorf("unexpected text: %s", resp.Text)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestClientCompleteStatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		kind      ErrorKind
		retryable bool
	}{
		{http.StatusTooManyRequests, KindRateLimited, true},
		{http.StatusServiceUnavailable, KindUnavailable, true},
		{http.StatusUnauthorized, KindAuth, false},
		{http.StatusBadRequest, KindOther, false},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":{"message":"upstream says no"}}`))
		}))

		_, err := newTestClient(server.URL).Complete(context.Background(), Request{Prompt: "p"})
		server.Close()

		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("status %d: expected *ProviderError, got %v", tt.status, err)
		}
		if pe.Kind != tt.kind {
			t.Errorf("status %d: expected kind %s, got %s", tt.status, tt.kind, pe.Kind)
		}
		if pe.Retryable() != tt.retryable {
			t.Errorf("status %d: expected retryable=%v", tt.status, tt.retryable)
		}
		if !strings.Contains(pe.Raw, "upstream says no") {
			t.Errorf("status %d: expected raw body to be kept, got %q", tt.status, pe.Raw)
		}
	}
}

func TestClientCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{ID: "x"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), Request{Prompt: "p"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindMalformed {
		t.Fatalf("expected malformed provider error, got %v", err)
	}
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse in chain")
	}
}

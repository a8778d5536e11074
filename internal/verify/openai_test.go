package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_Verify_Success(t *testing.T) {
	// Mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var chatReq openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(chatReq.Messages) != 2 {
			t.Errorf("Expected system + user message, got %d messages", len(chatReq.Messages))
		}
		if !strings.Contains(chatReq.Messages[1].Content, "guaranteed cure") {
			t.Error("Expected prompt to contain the flagged span")
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: "VIOLATION\nThe claim promises a certain outcome with no qualification.",
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{
				PromptTokens:     200,
				CompletionTokens: 30,
				TotalTokens:      230,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Verify(context.Background(), Request{
		MatchedText:     "guaranteed cure",
		ContextWindow:   "our guaranteed cure works every time",
		RuleID:          "cure-guarantee",
		RuleDescription: "efficacy/guarantee: remove outcome guarantees",
		LegalBasis:      "Medical Advertising Act art. 56",
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if resp.Verdict != "confirm_violation" {
		t.Errorf("Expected confirm_violation, got %s", resp.Verdict)
	}
	if !strings.Contains(resp.Reasoning, "certain outcome") {
		t.Errorf("Unexpected reasoning: %s", resp.Reasoning)
	}
	if resp.TokensUsed != 230 {
		t.Errorf("Expected 230 tokens, got %d", resp.TokensUsed)
	}
	if resp.CostUSD <= 0 {
		t.Errorf("Expected positive cost estimate, got %f", resp.CostUSD)
	}
}

func TestOpenAIProvider_Verify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Verify(context.Background(), Request{MatchedText: "x", RuleID: "r"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestOpenAIProvider_Name(t *testing.T) {
	provider, err := NewOpenAIProvider(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("Expected openai, got %s", provider.Name())
	}
}

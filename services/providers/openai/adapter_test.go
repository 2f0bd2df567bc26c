package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/upb/paper-assistant-gateway/services/providers"
)

func TestNewClient(t *testing.T) {
	client := NewClient(nil, nil)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.httpClient.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.httpClient.Timeout, defaultTimeout)
	}
}

func TestClient_ChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer gsk_test" {
			t.Errorf("Authorization = %q", auth)
		}

		body, _ := io.ReadAll(r.Body)
		var req ChatCompletionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		if req.Temperature == nil || *req.Temperature != 0.7 {
			t.Errorf("temperature not forwarded")
		}
		if req.MaxTokens == nil || *req.MaxTokens != 2048 {
			t.Errorf("max_tokens not forwarded")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		resp := ChatCompletionResponse{
			ID:      "chatcmpl-test123",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   req.Model,
			Choices: []ChatChoice{
				{
					Index:        0,
					Message:      ChatMessage{Role: "assistant", Content: "The paper proposes a new method."},
					FinishReason: "stop",
				},
			},
			Usage: ChatUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.Client(), zaptest.NewLogger(t))

	req := &providers.ChatRequest{
		Model: "llama-3.3-70b-versatile",
		Messages: []providers.Message{
			{Role: "system", Content: "assistant"},
			{Role: "user", Content: "What is proposed?"},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	resp, err := client.ChatCompletion(context.Background(), server.URL+"/openai/v1/chat/completions", "gsk_test", req)
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}

	if resp.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %s", resp.Model)
	}
	if resp.FirstContent() != "The paper proposes a new method." {
		t.Errorf("Unexpected response content: %s", resp.FirstContent())
	}
	if resp.Usage.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", resp.Usage.TotalTokens)
	}
}

func TestClient_ChatCompletion_Error(t *testing.T) {
	longBody := `{"error":{"message":"` + strings.Repeat("x", 200) + `","type":"insufficient_quota"}}`

	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  string
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`, "invalid_api_key", false},
		{"service busy", http.StatusServiceUnavailable, "upstream overloaded", "http_error", true},
		{"quota", http.StatusTooManyRequests, longBody, "insufficient_quota", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := NewClient(server.Client(), nil)
			_, err := client.ChatCompletion(context.Background(), server.URL, "key", &providers.ChatRequest{Model: "m"})
			if err == nil {
				t.Fatal("Expected error but got none")
			}

			var provErr *providers.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("Expected ProviderError, got %T", err)
			}
			if provErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", provErr.StatusCode, tt.status)
			}
			if provErr.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", provErr.Code, tt.wantCode)
			}
			if provErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", provErr.Retryable, tt.retryable)
			}
			if provErr.Provider != "127.0.0.1" {
				t.Errorf("Provider = %s", provErr.Provider)
			}

			if !strings.HasPrefix(provErr.Message, "API request failed (") {
				t.Errorf("Message = %s", provErr.Message)
			}
			if snippet := strings.SplitN(provErr.Message, "): ", 2)[1]; len([]rune(snippet)) > errorSnippetLen {
				t.Errorf("snippet not truncated: %d runes", len([]rune(snippet)))
			}
		})
	}
}

func TestClient_ChatCompletion_SingleShot(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client(), nil)
	_, err := client.ChatCompletion(context.Background(), server.URL, "key", &providers.ChatRequest{Model: "m"})
	if err == nil {
		t.Fatal("Expected error but got none")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestClient_ChatCompletion_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(server.Client(), nil)
	_, err := client.ChatCompletion(ctx, server.URL, "key", &providers.ChatRequest{Model: "m"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

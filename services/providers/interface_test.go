package providers

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestChatRequest_JSON(t *testing.T) {
	req := &ChatRequest{
		Model: "llama-3.3-70b-versatile",
		Messages: []Message{
			{Role: "system", Content: "You are helpful"},
			{Role: "user", Content: "Hello"},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded["model"] != "llama-3.3-70b-versatile" {
		t.Errorf("model = %v", decoded["model"])
	}
	if decoded["temperature"] != 0.7 {
		t.Errorf("temperature = %v, want 0.7", decoded["temperature"])
	}
	if decoded["max_tokens"] != float64(2048) {
		t.Errorf("max_tokens = %v, want 2048", decoded["max_tokens"])
	}
}

func TestChatResponse_FirstContent(t *testing.T) {
	resp := &ChatResponse{
		Choices: []Choice{
			{Message: Message{Role: "assistant", Content: "first"}},
			{Message: Message{Role: "assistant", Content: "second"}},
		},
	}
	if got := resp.FirstContent(); got != "first" {
		t.Errorf("FirstContent() = %s, want first", got)
	}

	empty := &ChatResponse{}
	if got := empty.FirstContent(); got != "" {
		t.Errorf("FirstContent() on empty = %q", got)
	}

	var nilResp *ChatResponse
	if got := nilResp.FirstContent(); got != "" {
		t.Errorf("FirstContent() on nil = %q", got)
	}
}

func TestProviderError(t *testing.T) {
	t.Run("NewProviderError", func(t *testing.T) {
		cause := errors.New("connection failed")
		err := NewProviderError("groq", "http_error", "API request failed (503): busy", 503, true, cause)

		if err.Provider != "groq" {
			t.Errorf("Provider = %s, want groq", err.Provider)
		}
		if err.StatusCode != 503 {
			t.Errorf("StatusCode = %d, want 503", err.StatusCode)
		}
		if !err.Retryable {
			t.Error("Error should be retryable")
		}
		if err.Cause != cause {
			t.Error("Cause not set correctly")
		}
	})

	t.Run("ErrorMethod", func(t *testing.T) {
		err := NewProviderError("provider", "CODE", "message", 400, false, nil)
		if err.Error() != "message" {
			t.Errorf("Error() = %s, want message", err.Error())
		}

		err = NewProviderError("provider", "CODE", "message", 400, false, errors.New("cause"))
		if err.Error() != "message: cause" {
			t.Errorf("Error() = %s, want 'message: cause'", err.Error())
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewProviderError("provider", "CODE", "message", 500, true, cause)
		if !errors.Is(err, cause) {
			t.Error("errors.Is did not reach the cause")
		}
	})

	t.Run("IsRetryable", func(t *testing.T) {
		if !IsRetryable(NewProviderError("provider", "CODE", "message", 500, true, nil)) {
			t.Error("IsRetryable() = false, want true")
		}
		if IsRetryable(NewProviderError("provider", "CODE", "message", 400, false, nil)) {
			t.Error("IsRetryable() = true, want false")
		}
		if IsRetryable(errors.New("standard error")) {
			t.Error("IsRetryable() should return false for non-ProviderError")
		}
	})
}

func TestStatusRetryable(t *testing.T) {
	tests := map[int]bool{200: false, 400: false, 404: false, 429: true, 500: true, 503: true}
	for status, want := range tests {
		if got := StatusRetryable(status); got != want {
			t.Errorf("StatusRetryable(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate() = %s", got)
	}
	if got := Truncate("论文内容很长", 2); got != "论文" {
		t.Errorf("Truncate() = %s", got)
	}
}

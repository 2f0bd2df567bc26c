package providers

import (
	"context"

	"github.com/upb/paper-assistant-gateway/models"
)

// ChatBackend performs OpenAI-compatible chat completions
type ChatBackend interface {
	// ChatCompletion posts req to endpoint authenticated with apiKey
	ChatCompletion(ctx context.Context, endpoint, apiKey string, req *ChatRequest) (*ChatResponse, error)
}

// Translator converts text between languages through one backend
type Translator interface {
	// Name returns the backend id (e.g., "google", "bing", "libre")
	Name() string

	// Translate returns the translated text. from may be "auto".
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// CitationBackend fetches citation metadata and rendered citations by DOI
type CitationBackend interface {
	// WorkURL returns the metadata endpoint for a cleaned DOI
	WorkURL(doi string) string

	// CitationURL returns the content-negotiation endpoint for a cleaned DOI
	CitationURL(doi string) string

	// FetchWork retrieves and normalizes the metadata record of doi
	FetchWork(ctx context.Context, doi string) (*models.CitationData, error)

	// FetchCitation retrieves the citation text of doi rendered in style
	FetchCitation(ctx context.Context, doi string, style models.CitationStyle) (string, error)
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	// Model identifier (e.g., "llama-3.3-70b-versatile")
	Model string `json:"model"`

	// Messages in the conversation
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens limits the response length
	MaxTokens int `json:"max_tokens,omitempty"`
}

// Message represents a single message in a conversation
type Message struct {
	// Role can be "system", "user", or "assistant"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FirstContent returns the content of the first choice, or "" when there is none
func (r *ChatResponse) FirstContent() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ProviderError represents an error from a backend
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Retryable indicates if the request can be retried
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if provErr, ok := err.(*ProviderError); ok {
		return provErr.Retryable
	}
	return false
}

// StatusRetryable reports whether an HTTP status is worth retrying by the caller
func StatusRetryable(status int) bool {
	return status >= 500 || status == 429
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

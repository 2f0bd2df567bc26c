package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/services/providers"
)

const (
	defaultTimeout = 60 * time.Second

	// errorSnippetLen caps how much of an error body is kept in messages
	errorSnippetLen = 100
)

// Client speaks the OpenAI chat completions protocol to any compatible endpoint
// (Groq, Hugging Face router, OpenRouter, ...). Calls are single-shot.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a chat client. A nil httpClient gets a default with a 60s timeout.
func NewClient(httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// ChatCompletion performs a chat completion request against endpoint
func (c *Client) ChatCompletion(ctx context.Context, endpoint, apiKey string, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	startTime := time.Now()
	name := providerName(endpoint)

	reqBody, err := json.Marshal(buildChatRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(name, "marshal_error", "failed to marshal request", 0, false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewProviderError(name, "request_error", "failed to create request", 0, false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(name, "http_error", "HTTP request failed", 0, true, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(name, "read_error", "failed to read response", httpResp.StatusCode, false, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, handleErrorResponse(name, httpResp.StatusCode, respBody)
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, providers.NewProviderError(name, "unmarshal_error", "failed to unmarshal response", httpResp.StatusCode, false, err)
	}

	c.logger.Debug("chat completion finished",
		zap.String("provider", name),
		zap.String("model", req.Model),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
		zap.Duration("latency", time.Since(startTime)),
	)

	return convertResponse(&chatResp), nil
}

// buildChatRequest converts a chat request to the wire format
func buildChatRequest(req *providers.ChatRequest) *ChatCompletionRequest {
	wire := &ChatCompletionRequest{
		Model:    req.Model,
		Messages: make([]ChatMessage, len(req.Messages)),
	}
	for i, msg := range req.Messages {
		wire.Messages[i] = ChatMessage{Role: msg.Role, Content: msg.Content}
	}
	if req.MaxTokens > 0 {
		wire.MaxTokens = &req.MaxTokens
	}
	if req.Temperature > 0 {
		wire.Temperature = &req.Temperature
	}
	return wire
}

func convertResponse(wire *ChatCompletionResponse) *providers.ChatResponse {
	resp := &providers.ChatResponse{
		ID:      wire.ID,
		Model:   wire.Model,
		Choices: make([]providers.Choice, len(wire.Choices)),
		Usage: providers.Usage{
			PromptTokens:     wire.Usage.PromptTokens,
			CompletionTokens: wire.Usage.CompletionTokens,
			TotalTokens:      wire.Usage.TotalTokens,
		},
	}
	for i, choice := range wire.Choices {
		resp.Choices[i] = providers.Choice{
			Index:        choice.Index,
			Message:      providers.Message{Role: choice.Message.Role, Content: choice.Message.Content},
			FinishReason: choice.FinishReason,
		}
	}
	return resp
}

// handleErrorResponse keeps the status and the head of the raw body so the
// failure can be classified from either
func handleErrorResponse(name string, statusCode int, body []byte) error {
	code := "http_error"
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Error.Code != "":
			code = errResp.Error.Code
		case errResp.Error.Type != "":
			code = errResp.Error.Type
		}
	}

	return providers.NewProviderError(
		name,
		code,
		fmt.Sprintf("API request failed (%d): %s", statusCode, providers.Truncate(string(body), errorSnippetLen)),
		statusCode,
		providers.StatusRetryable(statusCode),
		nil,
	)
}

func providerName(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "openai-compatible"
	}
	return u.Hostname()
}

// Wire types

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

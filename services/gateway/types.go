package gateway

import (
	"time"

	"github.com/google/uuid"
)

// AskRequest is a question about a paper, optionally pinned to a provider and model
type AskRequest struct {
	// Context is the paper text the question refers to. May be empty.
	Context  string
	Question string

	ProviderID string
	ModelID    string
}

// Answer is the result of AskQuestion
type Answer struct {
	RequestID  uuid.UUID `json:"request_id"`
	Answer     string    `json:"answer"`
	Provider   string    `json:"provider"`
	ProviderID string    `json:"provider_id"`
	Model      string    `json:"model"`
	LatencyMs  int64     `json:"latency_ms"`
}

// TranslateRequest is a literal translation request. From may be "auto".
type TranslateRequest struct {
	Text       string
	From       string
	To         string
	ProviderID string
}

// Translation is the result of Translate
type Translation struct {
	TranslatedText string `json:"translatedText"`
	Provider       string `json:"provider"`

	// FellBack is set when the requested backend failed and its fallback served
	FellBack bool `json:"fell_back,omitempty"`
}

// Citation is a formatted citation in one style
type Citation struct {
	DOI   string `json:"doi"`
	Style string `json:"style"`
	Text  string `json:"text"`
}

// Served records which provider and model last served a request kind
type Served struct {
	ProviderID string    `json:"provider_id"`
	Provider   string    `json:"provider"`
	ModelID    string    `json:"model_id,omitempty"`
	At         time.Time `json:"at"`
}

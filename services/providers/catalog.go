package providers

import (
	"github.com/upb/paper-assistant-gateway/models"
)

// Kind is the request kind a provider serves
type Kind string

const (
	KindAI          Kind = "ai"
	KindTranslation Kind = "translation"
	KindCitation    Kind = "citation"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindAI, KindTranslation, KindCitation:
		return true
	}
	return false
}

// Model is one invocable variant of a provider
type Model struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
	UsageLimit  string `json:"usage_limit,omitempty" yaml:"usage_limit"`
}

// Provider is a backend capable of serving one request kind
type Provider struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Kind         Kind    `json:"kind" yaml:"kind"`
	Priority     int     `json:"priority" yaml:"priority"`
	RequiresKey  bool    `json:"requires_key" yaml:"requires_key"`
	Enabled      bool    `json:"enabled" yaml:"enabled"`
	Endpoint     string  `json:"endpoint" yaml:"endpoint"`
	Models       []Model `json:"models" yaml:"models"`
	DefaultModel string  `json:"default_model" yaml:"default_model"`
	APIKeyURL    string  `json:"api_key_url,omitempty" yaml:"api_key_url"`
	Description  string  `json:"description,omitempty" yaml:"description"`

	// Fallback names the translation backend used when this one fails
	Fallback string `json:"fallback,omitempty" yaml:"fallback"`
}

// Model returns the model with the given id
func (p *Provider) Model(id string) (*Model, bool) {
	for i := range p.Models {
		if p.Models[i].ID == id {
			return &p.Models[i], true
		}
	}
	return nil, false
}

// Catalog ids used by the gateway
const (
	ProviderGroq        = "groq"
	ProviderHuggingFace = "huggingface"
	ProviderGoogle      = "google"
	ProviderBing        = "bing"
	ProviderLibre       = "libre"
	ProviderCrossref    = "crossref"
)

const defaultTranslationModel = "default"

// DefaultCatalog returns the built-in provider catalog
func DefaultCatalog() []Provider {
	return []Provider{
		{
			ID:          ProviderGroq,
			Name:        "Groq",
			Kind:        KindAI,
			Priority:    1,
			RequiresKey: true,
			Enabled:     true,
			Endpoint:    "https://api.groq.com/openai/v1/chat/completions",
			Models: []Model{
				{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B", Description: "High performance"},
				{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B", Description: "Lightweight and fast"},
				{ID: "qwen/qwen3-32b", Name: "Qwen3 32B", Description: "Qwen"},
				{ID: "openai/gpt-oss-20b", Name: "GPT-OSS 20B", Description: "OpenAI open weights"},
			},
			DefaultModel: "llama-3.3-70b-versatile",
			APIKeyURL:    "https://console.groq.com/keys",
			Description:  "Fast inference, free tier",
		},
		{
			ID:          ProviderHuggingFace,
			Name:        "Hugging Face",
			Kind:        KindAI,
			Priority:    2,
			RequiresKey: true,
			Enabled:     true,
			Endpoint:    "https://router.huggingface.co/v1/chat/completions",
			Models: []Model{
				{ID: "Qwen/Qwen2.5-72B-Instruct", Name: "Qwen 2.5 72B", Description: "Alibaba large model"},
				{ID: "meta-llama/Llama-3.3-70B-Instruct", Name: "Llama 3.3 70B", Description: "Meta open weights"},
				{ID: "deepseek-ai/DeepSeek-V3", Name: "DeepSeek V3", Description: "DeepSeek large model"},
			},
			DefaultModel: "Qwen/Qwen2.5-72B-Instruct",
			APIKeyURL:    "https://huggingface.co/settings/tokens",
			Description:  "Wide choice of open models",
		},
		{
			ID:           ProviderGoogle,
			Name:         "Google Translate",
			Kind:         KindTranslation,
			Priority:     1,
			Enabled:      true,
			Endpoint:     "https://translate.googleapis.com/translate_a/single",
			Models:       []Model{{ID: defaultTranslationModel, Name: "Default"}},
			DefaultModel: defaultTranslationModel,
		},
		{
			ID:           ProviderBing,
			Name:         "Microsoft Translator",
			Kind:         KindTranslation,
			Priority:     2,
			Enabled:      true,
			Endpoint:     "https://www.bing.com/ttranslatev3",
			Models:       []Model{{ID: defaultTranslationModel, Name: "Default"}},
			DefaultModel: defaultTranslationModel,
			Fallback:     ProviderGoogle,
		},
		{
			ID:           ProviderLibre,
			Name:         "LibreTranslate",
			Kind:         KindTranslation,
			Priority:     3,
			Enabled:      true,
			Endpoint:     "https://libretranslate.com/translate",
			Models:       []Model{{ID: defaultTranslationModel, Name: "Default"}},
			DefaultModel: defaultTranslationModel,
			Fallback:     ProviderGoogle,
		},
		{
			ID:           ProviderCrossref,
			Name:         "Crossref",
			Kind:         KindCitation,
			Priority:     1,
			Enabled:      true,
			Endpoint:     "https://api.crossref.org",
			Models:       citationStyleModels(),
			DefaultModel: models.DefaultCitationStyle,
			Description:  "Citation metadata and formatted references",
		},
	}
}

func citationStyleModels() []Model {
	ids := models.CitationStyleIDs()
	out := make([]Model, 0, len(ids))
	for _, id := range ids {
		style, _ := models.LookupCitationStyle(id)
		out = append(out, Model{ID: style.ID, Name: style.Name})
	}
	return out
}

package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/services/providers"
)

// Bing posts a form to the ttranslatev3 web endpoint
type Bing struct {
	base
}

type bingResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// NewBing creates the Bing backend
func NewBing(endpoint string, httpClient *http.Client, logger *zap.Logger) *Bing {
	return &Bing{base: newBase(providers.ProviderBing, endpoint, httpClient, logger)}
}

// Translate implements providers.Translator
func (b *Bing) Translate(ctx context.Context, text, from, to string) (string, error) {
	if from == AutoDetect {
		from = "auto-detect"
	}
	form := url.Values{}
	form.Set("fromLang", from)
	form.Set("to", to)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := b.do(req)
	if err != nil {
		return "", err
	}

	var results []bingResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", b.malformed(err)
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", b.malformed(errors.New("no translations"))
	}
	return results[0].Translations[0].Text, nil
}

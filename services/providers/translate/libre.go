package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/services/providers"
)

// Libre calls a LibreTranslate instance
type Libre struct {
	base
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

// NewLibre creates the LibreTranslate backend
func NewLibre(endpoint string, httpClient *http.Client, logger *zap.Logger) *Libre {
	return &Libre{base: newBase(providers.ProviderLibre, endpoint, httpClient, logger)}
}

// Translate implements providers.Translator
func (l *Libre) Translate(ctx context.Context, text, from, to string) (string, error) {
	payload, err := json.Marshal(libreRequest{Q: text, Source: from, Target: to, Format: "text"})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := l.do(req)
	if err != nil {
		return "", err
	}

	var resp libreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", l.malformed(err)
	}
	if resp.TranslatedText == "" {
		return "", l.malformed(errors.New("empty translatedText"))
	}
	return resp.TranslatedText, nil
}

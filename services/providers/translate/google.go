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

// Google uses the public translate_a/single endpoint
type Google struct {
	base
}

// NewGoogle creates the Google backend
func NewGoogle(endpoint string, httpClient *http.Client, logger *zap.Logger) *Google {
	return &Google{base: newBase(providers.ProviderGoogle, endpoint, httpClient, logger)}
}

// Translate implements providers.Translator
func (g *Google) Translate(ctx context.Context, text, from, to string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", from)
	q.Set("tl", to)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	body, err := g.do(req)
	if err != nil {
		return "", err
	}
	return parseGoogle(body, g.malformed)
}

// parseGoogle joins the first element of every segment in the first array:
// [[["translated","source",...],...],...]
func parseGoogle(body []byte, malformed func(error) error) (string, error) {
	var data []json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return "", malformed(err)
	}
	if len(data) == 0 {
		return "", malformed(errors.New("empty response"))
	}

	var segments [][]interface{}
	if err := json.Unmarshal(data[0], &segments); err != nil {
		return "", malformed(err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}

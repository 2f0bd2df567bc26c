// Package translate holds the translation backends behind the gateway.
package translate

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/services/providers"
)

const defaultTimeout = 30 * time.Second

// AutoDetect is the source language that asks the backend to detect it
const AutoDetect = "auto"

// base carries what every backend needs to issue one HTTP call
type base struct {
	name       string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func newBase(name, endpoint string, httpClient *http.Client, logger *zap.Logger) base {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{
		name:       name,
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger.With(zap.String("translator", name)),
	}
}

// Name returns the backend id
func (b *base) Name() string {
	return b.name
}

// do sends req and returns the body of a 2xx response
func (b *base) do(req *http.Request) ([]byte, error) {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, providers.NewProviderError(b.name, "http_error", "translation request failed", 0, true, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.NewProviderError(b.name, "read_error", "failed to read translation response", resp.StatusCode, false, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.logger.Debug("translation backend rejected request", zap.Int("status", resp.StatusCode))
		return nil, providers.NewProviderError(
			b.name,
			"http_error",
			fmt.Sprintf("translation request failed (%d): %s", resp.StatusCode, providers.Truncate(string(body), 100)),
			resp.StatusCode,
			providers.StatusRetryable(resp.StatusCode),
			nil,
		)
	}
	return body, nil
}

func (b *base) malformed(cause error) error {
	return providers.NewProviderError(b.name, "malformed_response", "unexpected translation response format", 0, false, cause)
}

// NewBackends builds the translators named in catalog, using each entry's endpoint.
// Catalog entries without a known implementation are skipped.
func NewBackends(catalog []providers.Provider, httpClient *http.Client, logger *zap.Logger) map[string]providers.Translator {
	out := make(map[string]providers.Translator)
	for _, p := range catalog {
		if p.Kind != providers.KindTranslation {
			continue
		}
		switch p.ID {
		case providers.ProviderGoogle:
			out[p.ID] = NewGoogle(p.Endpoint, httpClient, logger)
		case providers.ProviderBing:
			out[p.ID] = NewBing(p.Endpoint, httpClient, logger)
		case providers.ProviderLibre:
			out[p.ID] = NewLibre(p.Endpoint, httpClient, logger)
		}
	}
	return out
}

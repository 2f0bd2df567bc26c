// Package crossref resolves DOIs to CSL metadata through the Crossref REST API
// and to formatted citations through doi.org content negotiation.
package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/models"
	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/providers"
)

const (
	DefaultBaseURL    = "https://api.crossref.org"
	DefaultDOIBaseURL = "https://doi.org"

	defaultTimeout = 30 * time.Second
)

// Config holds the endpoints and contact address used for polite-pool access
type Config struct {
	BaseURL      string
	DOIBaseURL   string
	ContactEmail string
}

// Client implements providers.CitationBackend
type Client struct {
	baseURL    string
	doiBaseURL string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Crossref client
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DOIBaseURL == "" {
		cfg.DOIBaseURL = DefaultDOIBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		doiBaseURL: strings.TrimRight(cfg.DOIBaseURL, "/"),
		userAgent:  UserAgent(cfg.ContactEmail),
		httpClient: httpClient,
		logger:     logger,
	}
}

// UserAgent builds the identifying User-Agent Crossref asks clients to send
func UserAgent(contactEmail string) string {
	if contactEmail == "" {
		return "PaperReadingAssistant/1.0"
	}
	return fmt.Sprintf("PaperReadingAssistant/1.0 (mailto:%s)", contactEmail)
}

// WorkURL returns the metadata endpoint of doi
func (c *Client) WorkURL(doi string) string {
	return c.baseURL + "/works/" + EscapeDOI(doi)
}

// CitationURL returns the content-negotiation endpoint of doi
func (c *Client) CitationURL(doi string) string {
	return c.doiBaseURL + "/" + EscapeDOI(doi)
}

// FetchWork retrieves the work record of doi and normalizes it to CSL-JSON
func (c *Client) FetchWork(ctx context.Context, doi string) (*models.CitationData, error) {
	status, body, err := c.get(ctx, c.WorkURL(doi), "application/json")
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, services.NewDomainError(services.ErrorTypeNotFound, "no work found for DOI "+doi, services.ErrNotFound).
			WithDetail("doi", doi)
	case status == http.StatusTooManyRequests:
		return nil, services.NewDomainError(services.ErrorTypeRateLimited, "Crossref is receiving too many requests, please retry later", nil)
	case status == http.StatusBadRequest:
		return nil, services.NewDomainError(services.ErrorTypeValidation, "invalid DOI format: "+doi, services.ErrInvalidDOI).
			WithDetail("doi", doi)
	case status < 200 || status >= 300:
		return nil, c.statusError(status, body)
	}

	var envelope workEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, providers.NewProviderError(providers.ProviderCrossref, "malformed_response", "failed to decode work record", status, false, err)
	}
	if envelope.Message == nil {
		return nil, providers.NewProviderError(providers.ProviderCrossref, "malformed_response", "work record is empty", status, false, errors.New("missing message"))
	}

	return ToCSL(envelope.Message), nil
}

// FetchCitation retrieves doi rendered in style, with surrounding whitespace removed
func (c *Client) FetchCitation(ctx context.Context, doi string, style models.CitationStyle) (string, error) {
	status, body, err := c.get(ctx, c.CitationURL(doi), style.Accept)
	if err != nil {
		return "", err
	}

	switch {
	case status == http.StatusNotFound:
		return "", services.NewDomainError(services.ErrorTypeNotFound, "DOI not found, please check that it is valid", services.ErrNotFound).
			WithDetail("doi", doi)
	case status == http.StatusNotAcceptable:
		return "", services.NewDomainError(services.ErrorTypeNotFound, "citation style not supported: "+style.Name, nil).
			WithDetail("style", style.ID)
	case status < 200 || status >= 300:
		return "", c.statusError(status, body)
	}

	return strings.TrimSpace(string(body)), nil
}

func (c *Client) get(ctx context.Context, url, accept string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, providers.NewProviderError(providers.ProviderCrossref, "http_error", "citation request failed", 0, true, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, providers.NewProviderError(providers.ProviderCrossref, "read_error", "failed to read citation response", resp.StatusCode, false, err)
	}

	c.logger.Debug("crossref request",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func (c *Client) statusError(status int, body []byte) error {
	return providers.NewProviderError(
		providers.ProviderCrossref,
		"http_error",
		fmt.Sprintf("citation request failed (%d): %s", status, providers.Truncate(string(body), 100)),
		status,
		providers.StatusRetryable(status),
		nil,
	)
}

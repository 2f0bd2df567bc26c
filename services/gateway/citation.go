package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/models"
	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/cache"
	"github.com/upb/paper-assistant-gateway/services/providers"
	"github.com/upb/paper-assistant-gateway/services/providers/crossref"
	"github.com/upb/paper-assistant-gateway/services/ratelimit"
)

const (
	fingerprintMetadata = "citation_metadata"
	fingerprintCitation = "citation_text"
)

// GetCitationMetadata returns the CSL record of a DOI. Cached records are
// returned without touching the rate limiter or the network.
func (s *Service) GetCitationMetadata(ctx context.Context, rawDOI string) (*models.CitationData, error) {
	doi, err := crossref.NormalizeDOI(rawDOI)
	if err != nil {
		return nil, err
	}
	p := s.citationProvider()

	fp := cache.Fingerprint(fingerprintMetadata, s.backends.Citations.WorkURL(doi), map[string]string{"doi": doi})
	if v, ok := s.cache.Get(fp); ok {
		if data, ok := v.(*models.CitationData); ok {
			s.logger.Debug("citation metadata cache hit", zap.String("doi", doi))
			s.recordServed(providers.KindCitation, p, "")
			return data, nil
		}
	}

	if err := s.limiter.Acquire(ctx, ratelimit.ServiceCrossref); err != nil {
		return nil, err
	}

	data, err := s.backends.Citations.FetchWork(ctx, doi)
	if err != nil {
		s.logger.Warn("citation metadata lookup failed", zap.String("doi", doi), zap.Error(err))
		return nil, s.classify(err, p.Name)
	}

	s.cache.Put(fp, data)
	s.recordServed(providers.KindCitation, p, "")
	return data, nil
}

// GetCitation returns the citation of a DOI rendered in styleID, the default
// style when styleID is empty. Results are cached like metadata.
func (s *Service) GetCitation(ctx context.Context, rawDOI, styleID string) (*Citation, error) {
	if styleID == "" {
		styleID = models.DefaultCitationStyle
	}
	style, ok := models.LookupCitationStyle(styleID)
	if !ok {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "unsupported citation style: "+styleID, services.ErrUnknownStyle).
			WithDetail("style", styleID)
	}

	doi, err := crossref.NormalizeDOI(rawDOI)
	if err != nil {
		return nil, err
	}
	p := s.citationProvider()

	fp := cache.Fingerprint(fingerprintCitation, s.backends.Citations.CitationURL(doi), map[string]string{
		"doi":    doi,
		"accept": style.Accept,
	})
	if v, ok := s.cache.Get(fp); ok {
		if text, ok := v.(string); ok {
			s.recordServed(providers.KindCitation, p, style.ID)
			return &Citation{DOI: doi, Style: style.ID, Text: text}, nil
		}
	}

	if err := s.limiter.Acquire(ctx, ratelimit.ServiceCrossref); err != nil {
		return nil, err
	}

	text, err := s.backends.Citations.FetchCitation(ctx, doi, style)
	if err != nil {
		s.logger.Warn("citation lookup failed",
			zap.String("doi", doi),
			zap.String("style", style.ID),
			zap.Error(err))
		return nil, s.classify(err, p.Name)
	}

	s.cache.Put(fp, text)
	s.recordServed(providers.KindCitation, p, style.ID)
	return &Citation{DOI: doi, Style: style.ID, Text: text}, nil
}

// citationProvider returns the catalog entry used for naming and bookkeeping
func (s *Service) citationProvider() *providers.Provider {
	if p, err := s.registry.Resolve(providers.KindCitation, providers.ProviderCrossref); err == nil {
		return p
	}
	return &providers.Provider{ID: providers.ProviderCrossref, Name: "Crossref", Kind: providers.KindCitation}
}

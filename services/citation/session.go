// Package citation holds per-widget citation state: the loaded DOI, its
// metadata and the styles already rendered for it.
package citation

import (
	"context"
	"errors"
	"sync"

	"github.com/upb/paper-assistant-gateway/models"
	"github.com/upb/paper-assistant-gateway/services/gateway"
)

// ErrNotLoaded is returned by Style before a DOI has been loaded
var ErrNotLoaded = errors.New("no DOI loaded")

// Lookup is the gateway surface a Session needs
type Lookup interface {
	GetCitationMetadata(ctx context.Context, doi string) (*models.CitationData, error)
	GetCitation(ctx context.Context, doi, style string) (*gateway.Citation, error)
}

// Session memoises rendered styles for one DOI. Loading a new DOI resets it.
type Session struct {
	lookup Lookup

	mu       sync.Mutex
	doi      string
	metadata *models.CitationData
	styles   map[string]string
}

// NewSession creates an empty session
func NewSession(lookup Lookup) *Session {
	return &Session{
		lookup: lookup,
		styles: make(map[string]string),
	}
}

// Load clears the memo, then fetches metadata and the first style for doi.
// An empty style means the default one. The DOI stays loaded when only the
// style fetch fails, so other styles can still be requested.
func (s *Session) Load(ctx context.Context, doi, style string) (*models.CitationData, string, error) {
	s.mu.Lock()
	s.doi = ""
	s.metadata = nil
	s.styles = make(map[string]string)
	s.mu.Unlock()

	metadata, err := s.lookup.GetCitationMetadata(ctx, doi)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	s.doi = doi
	if metadata.DOI != "" {
		s.doi = metadata.DOI
	}
	s.metadata = metadata
	s.mu.Unlock()

	text, err := s.Style(ctx, style)
	if err != nil {
		return metadata, "", err
	}
	return metadata, text, nil
}

// Style returns the loaded DOI rendered in style, fetching it on first use
func (s *Session) Style(ctx context.Context, style string) (string, error) {
	if style == "" {
		style = models.DefaultCitationStyle
	}

	s.mu.Lock()
	doi := s.doi
	text, ok := s.styles[style]
	s.mu.Unlock()

	if doi == "" {
		return "", ErrNotLoaded
	}
	if ok {
		return text, nil
	}

	c, err := s.lookup.GetCitation(ctx, doi, style)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.doi == doi {
		s.styles[c.Style] = c.Text
	}
	s.mu.Unlock()
	return c.Text, nil
}

// DOI returns the loaded DOI, empty before Load succeeds
func (s *Session) DOI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doi
}

// Metadata returns the metadata of the loaded DOI
func (s *Session) Metadata() *models.CitationData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

package providers

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrProviderNotFound is returned when a provider is not in the catalog
	ErrProviderNotFound = errors.New("provider not found")

	// ErrModelNotFound is returned when a model does not belong to a provider
	ErrModelNotFound = errors.New("model not found")

	// ErrProviderAlreadyRegistered is returned when a catalog repeats an id
	ErrProviderAlreadyRegistered = errors.New("provider already registered")

	// ErrInvalidCatalog is returned when a catalog entry breaks an invariant
	ErrInvalidCatalog = errors.New("invalid provider catalog")
)

// CredentialChecker reports whether a credential is held for a provider
type CredentialChecker interface {
	Has(providerID string) bool
}

// ProviderView is a provider as shown to callers, with its credential state
type ProviderView struct {
	Provider
	HasCredential bool `json:"has_credential"`
}

// Registry is the static provider catalog joined with live credential state.
// The catalog is fixed at construction; only the credential predicate changes.
type Registry struct {
	byKind map[Kind][]*Provider
	byID   map[string]*Provider
	creds  CredentialChecker
}

// NewRegistry validates catalog and builds a registry over it.
// Provider ids must be unique across all kinds because credentials are keyed by id.
func NewRegistry(catalog []Provider, creds CredentialChecker) (*Registry, error) {
	if creds == nil {
		return nil, errors.New("credential checker cannot be nil")
	}

	r := &Registry{
		byKind: make(map[Kind][]*Provider),
		byID:   make(map[string]*Provider),
		creds:  creds,
	}

	for i := range catalog {
		p := catalog[i]
		if err := validateProvider(&p); err != nil {
			return nil, err
		}
		if _, exists := r.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrProviderAlreadyRegistered, p.ID)
		}
		p.Models = append([]Model(nil), p.Models...)
		r.byID[p.ID] = &p
		r.byKind[p.Kind] = append(r.byKind[p.Kind], &p)
	}

	for _, p := range r.byID {
		if p.Fallback == "" {
			continue
		}
		target, ok := r.byID[p.Fallback]
		if !ok || target.Kind != p.Kind || target.ID == p.ID {
			return nil, fmt.Errorf("%w: %s has invalid fallback %q", ErrInvalidCatalog, p.ID, p.Fallback)
		}
		if target.Fallback != "" {
			return nil, fmt.Errorf("%w: fallback %s of %s must not fall back itself", ErrInvalidCatalog, target.ID, p.ID)
		}
	}

	for kind := range r.byKind {
		list := r.byKind[kind]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Priority != list[j].Priority {
				return list[i].Priority < list[j].Priority
			}
			return list[i].ID < list[j].ID
		})
	}

	return r, nil
}

func validateProvider(p *Provider) error {
	if p.ID == "" {
		return fmt.Errorf("%w: provider id cannot be empty", ErrInvalidCatalog)
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: provider %s has unknown kind %q", ErrInvalidCatalog, p.ID, p.Kind)
	}
	if len(p.Models) == 0 {
		return fmt.Errorf("%w: provider %s has no models", ErrInvalidCatalog, p.ID)
	}
	seen := make(map[string]struct{}, len(p.Models))
	for _, m := range p.Models {
		if m.ID == "" {
			return fmt.Errorf("%w: provider %s has a model without id", ErrInvalidCatalog, p.ID)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("%w: provider %s repeats model %s", ErrInvalidCatalog, p.ID, m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	if _, ok := seen[p.DefaultModel]; !ok {
		return fmt.Errorf("%w: default model %q of %s is not in its model list", ErrInvalidCatalog, p.DefaultModel, p.ID)
	}
	return nil
}

// HasCredential reports whether p can be called right now with respect to credentials
func (r *Registry) HasCredential(p *Provider) bool {
	return !p.RequiresKey || r.creds.Has(p.ID)
}

// ListProviders returns the providers of kind ordered by priority, ties broken by id
func (r *Registry) ListProviders(kind Kind) []ProviderView {
	list := r.byKind[kind]
	views := make([]ProviderView, 0, len(list))
	for _, p := range list {
		view := ProviderView{Provider: *p, HasCredential: r.HasCredential(p)}
		view.Models = append([]Model(nil), p.Models...)
		views = append(views, view)
	}
	return views
}

// Eligible returns the enabled, credentialed providers of kind in selection order
func (r *Registry) Eligible(kind Kind) []*Provider {
	var out []*Provider
	for _, p := range r.byKind[kind] {
		if p.Enabled && r.HasCredential(p) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve returns the provider id of kind
func (r *Registry) Resolve(kind Kind, id string) (*Provider, error) {
	p, ok := r.byID[id]
	if !ok || p.Kind != kind {
		return nil, fmt.Errorf("%w: %s/%s", ErrProviderNotFound, kind, id)
	}
	return p, nil
}

// Lookup returns the provider id regardless of kind
func (r *Registry) Lookup(id string) (*Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// DefaultModelOf returns the default model of p
func (r *Registry) DefaultModelOf(p *Provider) (*Model, error) {
	m, ok := p.Model(p.DefaultModel)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrModelNotFound, p.ID, p.DefaultModel)
	}
	return m, nil
}

// ResolveModel returns modelID of p, or its default model when modelID is empty
func (r *Registry) ResolveModel(p *Provider, modelID string) (*Model, error) {
	if modelID == "" {
		return r.DefaultModelOf(p)
	}
	m, ok := p.Model(modelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrModelNotFound, p.ID, modelID)
	}
	return m, nil
}

// Kinds returns the kinds that have at least one provider
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.byKind))
	for _, k := range []Kind{KindAI, KindTranslation, KindCitation} {
		if len(r.byKind[k]) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

package providers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogFile is the on-disk shape of catalog overrides
type CatalogFile struct {
	Providers []ProviderOverride `yaml:"providers"`
}

// ProviderOverride adds a provider or changes fields of a built-in one.
// Nil fields keep the built-in value.
type ProviderOverride struct {
	ID           string  `yaml:"id"`
	Kind         Kind    `yaml:"kind"`
	Name         *string `yaml:"name"`
	Priority     *int    `yaml:"priority"`
	RequiresKey  *bool   `yaml:"requires_key"`
	Enabled      *bool   `yaml:"enabled"`
	Endpoint     *string `yaml:"endpoint"`
	Models       []Model `yaml:"models"`
	DefaultModel *string `yaml:"default_model"`
	APIKeyURL    *string `yaml:"api_key_url"`
	Description  *string `yaml:"description"`
	Fallback     *string `yaml:"fallback"`
}

// LoadCatalogFile reads and parses a YAML catalog file
func LoadCatalogFile(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses YAML catalog overrides, rejecting unknown fields
func ParseCatalog(data []byte) (*CatalogFile, error) {
	var file CatalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, o := range file.Providers {
		if o.ID == "" {
			return nil, fmt.Errorf("%w: catalog entry %d has no id", ErrInvalidCatalog, i)
		}
	}
	return &file, nil
}

// MergeCatalog applies overrides to base and returns a new catalog.
// Entries with an unknown id are appended as new providers and must name a kind.
func MergeCatalog(base []Provider, overrides []ProviderOverride) ([]Provider, error) {
	out := make([]Provider, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.ID] = i
	}

	for _, o := range overrides {
		i, exists := index[o.ID]
		if !exists {
			if !o.Kind.Valid() {
				return nil, fmt.Errorf("%w: new provider %s needs a valid kind", ErrInvalidCatalog, o.ID)
			}
			out = append(out, Provider{ID: o.ID, Kind: o.Kind, Name: o.ID, Enabled: true})
			i = len(out) - 1
			index[o.ID] = i
		} else if o.Kind != "" && o.Kind != out[i].Kind {
			return nil, fmt.Errorf("%w: cannot change kind of %s", ErrInvalidCatalog, o.ID)
		}
		applyOverride(&out[i], o)
	}

	return out, nil
}

func applyOverride(p *Provider, o ProviderOverride) {
	if o.Name != nil {
		p.Name = *o.Name
	}
	if o.Priority != nil {
		p.Priority = *o.Priority
	}
	if o.RequiresKey != nil {
		p.RequiresKey = *o.RequiresKey
	}
	if o.Enabled != nil {
		p.Enabled = *o.Enabled
	}
	if o.Endpoint != nil {
		p.Endpoint = *o.Endpoint
	}
	if len(o.Models) > 0 {
		p.Models = append([]Model(nil), o.Models...)
		if o.DefaultModel == nil {
			p.DefaultModel = o.Models[0].ID
		}
	}
	if o.DefaultModel != nil {
		p.DefaultModel = *o.DefaultModel
	}
	if o.APIKeyURL != nil {
		p.APIKeyURL = *o.APIKeyURL
	}
	if o.Description != nil {
		p.Description = *o.Description
	}
	if o.Fallback != nil {
		p.Fallback = *o.Fallback
	}
}

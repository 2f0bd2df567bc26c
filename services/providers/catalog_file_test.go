package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
providers:
  - id: groq
    priority: 3
  - id: huggingface
    enabled: false
  - id: openrouter
    kind: ai
    name: OpenRouter
    priority: 1
    requires_key: true
    endpoint: https://openrouter.ai/api/v1/chat/completions
    models:
      - id: meta-llama/llama-3.3-70b-instruct:free
        name: Llama 3.3 70B
        usage_limit: 50 requests per day
`

func TestParseCatalog(t *testing.T) {
	file, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, file.Providers, 3)

	require.NotNil(t, file.Providers[0].Priority)
	assert.Equal(t, 3, *file.Providers[0].Priority)
	assert.Equal(t, "50 requests per day", file.Providers[2].Models[0].UsageLimit)
}

func TestParseCatalog_Errors(t *testing.T) {
	_, err := ParseCatalog([]byte("providers:\n  - id: groq\n    colour: blue\n"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = ParseCatalog([]byte("providers:\n  - name: nameless\n"))
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	file, err := ParseCatalog(nil)
	require.NoError(t, err)
	assert.Empty(t, file.Providers)
}

func TestMergeCatalog(t *testing.T) {
	file, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	merged, err := MergeCatalog(DefaultCatalog(), file.Providers)
	require.NoError(t, err)

	r, err := NewRegistry(merged, fakeCreds{ProviderGroq: true, ProviderHuggingFace: true, "openrouter": true})
	require.NoError(t, err)

	views := r.ListProviders(KindAI)
	require.Len(t, views, 3)
	assert.Equal(t, "openrouter", views[0].ID)
	assert.Equal(t, "meta-llama/llama-3.3-70b-instruct:free", views[0].DefaultModel)
	assert.Equal(t, ProviderHuggingFace, views[1].ID)
	assert.False(t, views[1].Enabled)
	assert.Equal(t, ProviderGroq, views[2].ID)

	eligible := r.Eligible(KindAI)
	require.Len(t, eligible, 2)
	assert.Equal(t, "openrouter", eligible[0].ID)

	// the built-in catalog is untouched
	assert.Equal(t, 1, DefaultCatalog()[0].Priority)
}

func TestMergeCatalog_Errors(t *testing.T) {
	_, err := MergeCatalog(DefaultCatalog(), []ProviderOverride{{ID: "new"}})
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = MergeCatalog(DefaultCatalog(), []ProviderOverride{{ID: ProviderGroq, Kind: KindTranslation}})
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	file, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Len(t, file.Providers, 3)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

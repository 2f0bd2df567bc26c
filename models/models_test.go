package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredential(t *testing.T) {
	cred := NewCredential("groq", "gsk_secret")

	assert.Equal(t, "groq", cred.ProviderID)
	assert.Equal(t, "gsk_secret", cred.Secret)
	assert.False(t, cred.UpdatedAt.IsZero())
	assert.Equal(t, "provider_credentials", cred.TableName())
}

func TestCredential_SecretNotSerialized(t *testing.T) {
	data, err := json.Marshal(NewCredential("groq", "gsk_secret"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "gsk_secret")
}

func TestCitationData_DropsEmptyFields(t *testing.T) {
	data, err := json.Marshal(&CitationData{
		ID:    "10.1000/xyz",
		Type:  "article-journal",
		Title: "On Things",
		Issued: &CitationDate{
			DateParts: [][]int{{2021}},
		},
	})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "On Things", raw["title"])
	assert.NotContains(t, raw, "volume")
	assert.NotContains(t, raw, "author")
	assert.NotContains(t, raw, "container-title")
	assert.Contains(t, raw, "issued")
}

func TestCitationData_Year(t *testing.T) {
	assert.Equal(t, 0, (&CitationData{}).Year())
	assert.Equal(t, 1999, (&CitationData{Issued: &CitationDate{DateParts: [][]int{{1999}}}}).Year())
}

func TestCitationStyles(t *testing.T) {
	style, ok := LookupCitationStyle("mla")
	require.True(t, ok)
	assert.Equal(t, "text/bibliography; style=modern-language-association", style.Accept)

	_, ok = LookupCitationStyle("unknown")
	assert.False(t, ok)

	ids := CitationStyleIDs()
	assert.Len(t, ids, len(CitationStyles))
	assert.Equal(t, DefaultCitationStyle, ids[0])
}

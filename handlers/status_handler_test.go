package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/services/cache"
	"github.com/upb/paper-assistant-gateway/services/gateway"
	"github.com/upb/paper-assistant-gateway/services/providers"
)

type fakeStatusSource struct {
	stats  cache.CacheStats
	served map[providers.Kind]gateway.Served
}

func (f fakeStatusSource) CacheStats() cache.CacheStats { return f.stats }

func (f fakeStatusSource) AllServed() map[providers.Kind]gateway.Served { return f.served }

func TestHandleStatus(t *testing.T) {
	source := fakeStatusSource{
		stats: cache.CacheStats{Size: 3, TTL: 10 * time.Minute, Hits: 4, Misses: 3, HitRate: 4.0 / 7.0},
		served: map[providers.Kind]gateway.Served{
			providers.KindCitation: {ProviderID: "crossref", Provider: "Crossref", ModelID: "apa"},
		},
	}
	handler := NewStatusHandler(source, "zh", true, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()

	handler.HandleStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, Version, data["version"])
	assert.Equal(t, "zh", data["locale"])
	assert.Equal(t, true, data["auth_enabled"])

	c := data["cache"].(map[string]interface{})
	assert.EqualValues(t, 3, c["size"])
	assert.EqualValues(t, 4, c["hits"])

	served := data["last_served"].(map[string]interface{})
	assert.Equal(t, "crossref", served["citation"].(map[string]interface{})["provider_id"])
}

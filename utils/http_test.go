package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteOK(w, map[string]string{"translatedText": "你好"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)

	var response SuccessResponse
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	dataMap := response.Data.(map[string]interface{})
	assert.Equal(t, "你好", dataMap["translatedText"])
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	WriteNoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter) error
		status   int
		category string
		message  string
	}{
		{
			name: "explicit category",
			write: func(w http.ResponseWriter) error {
				return WriteError(w, http.StatusPreconditionFailed, "configuration", "no provider configured", map[string]interface{}{"kind": "ai"})
			},
			status:   http.StatusPreconditionFailed,
			category: "configuration",
			message:  "no provider configured",
		},
		{
			name:     "bad request",
			write:    func(w http.ResponseWriter) error { return WriteBadRequest(w, "doi is required", nil) },
			status:   http.StatusBadRequest,
			category: "validation",
			message:  "doi is required",
		},
		{
			name:     "unauthorized default message",
			write:    func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			status:   http.StatusUnauthorized,
			category: "unauthorized",
			message:  "Authentication required",
		},
		{
			name:     "not found",
			write:    func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			status:   http.StatusNotFound,
			category: "not_found",
			message:  "Resource not found",
		},
		{
			name:     "internal",
			write:    func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			status:   http.StatusInternalServerError,
			category: "internal",
			message:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.status, w.Code)

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.category, response.Category)
			assert.Equal(t, tt.message, response.Error)
		})
	}
}

type decodeTarget struct {
	Question string `json:"question" validate:"required"`
	To       string `json:"to" validate:"omitempty,langtag"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"question":"why?","to":"zh-CN"}`))
		var dst decodeTarget
		require.NoError(t, DecodeJSON(r, &dst))
		assert.Equal(t, "why?", dst.Question)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst decodeTarget
		err := DecodeJSON(r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"question":`))
		var dst decodeTarget
		err := DecodeJSON(r, &dst)
		require.Error(t, err)
		assert.False(t, IsValidationError(err))
	})

	t.Run("fails validation", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"to":"not a tag"}`))
		var dst decodeTarget
		err := DecodeJSON(r, &dst)
		require.Error(t, err)
		fields := GetValidationFields(err)
		assert.Contains(t, fields, "question")
		assert.Contains(t, fields, "to")
	})
}

func TestRedactSecret(t *testing.T) {
	assert.Equal(t, "", RedactSecret(""))
	assert.Equal(t, "*****", RedactSecret("short"))
	assert.Equal(t, "gsk_****", RedactSecret("gsk_abcdefghijklmnop"))
	assert.NotContains(t, RedactSecret("hf_supersecretvalue"), "secret")
}

package classifier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/providers"
)

func statusErr(status int, body string) error {
	return providers.NewProviderError("groq", "http_error",
		fmt.Sprintf("API request failed (%d): %s", status, body), status, false, nil)
}

func TestClassify(t *testing.T) {
	c := New("en")

	tests := []struct {
		name    string
		err     error
		want    services.ErrorType
		message string
	}{
		{
			name:    "service busy",
			err:     statusErr(503, "overloaded"),
			want:    services.ErrorTypeServiceBusy,
			message: "Groq service is busy, please retry later",
		},
		{
			name:    "unauthorized",
			err:     statusErr(401, "invalid api key"),
			want:    services.ErrorTypeAuthInvalid,
			message: "Groq API key is invalid or expired, please check your settings",
		},
		{
			name: "forbidden",
			err:  statusErr(403, "forbidden"),
			want: services.ErrorTypeAuthInvalid,
		},
		{
			name:    "model missing",
			err:     statusErr(404, "model_not_found"),
			want:    services.ErrorTypeNotFound,
			message: "Groq model does not exist or has been retired, please try another model",
		},
		{
			name:    "rate limit with quota wording",
			err:     statusErr(429, "rate limit exceeded"),
			want:    services.ErrorTypeRateLimited,
			message: "Groq has reached its usage limit, please retry later or switch models",
		},
		{
			name:    "plain throttling",
			err:     statusErr(429, "slow down"),
			want:    services.ErrorTypeRateLimited,
			message: "Groq is receiving too many requests, please retry later",
		},
		{
			name:    "quota text without status",
			err:     errors.New("insufficient_quota"),
			want:    services.ErrorTypeQuotaExceeded,
			message: "Groq has reached its usage limit, please retry later or switch models",
		},
		{
			name:    "unknown keeps raw text",
			err:     errors.New("connection reset by peer"),
			want:    services.ErrorTypeUnknown,
			message: "Groq call failed: connection reset by peer",
		},
		{
			name: "status only in text",
			err:  errors.New("upstream returned 503"),
			want: services.ErrorTypeServiceBusy,
		},
		{
			name: "503 wins over 429 text",
			err:  statusErr(503, "429 too many"),
			want: services.ErrorTypeServiceBusy,
		},
		{
			name:    "known status ignores digits in body",
			err:     statusErr(429, `{"error":{"message":"Rate limit reached: Limit 6000, Used 5403, Requested 900"}}`),
			want:    services.ErrorTypeRateLimited,
			message: "Groq has reached its usage limit, please retry later or switch models",
		},
		{
			name: "server error with code-like digits",
			err:  statusErr(500, "queue position 15031"),
			want: services.ErrorTypeUnknown,
		},
		{
			name: "text codes need word boundaries",
			err:  errors.New("request 4031 failed"),
			want: services.ErrorTypeUnknown,
		},
		{
			name: "status without digits in text",
			err:  providers.NewProviderError("groq", "http_error", "overloaded", 503, true, nil),
			want: services.ErrorTypeServiceBusy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err, "Groq")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Type)
			if tt.message != "" {
				assert.Equal(t, tt.message, got.Message)
			}
			assert.Equal(t, "Groq", got.Details["provider"])
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_PassesThroughDomainErrors(t *testing.T) {
	c := New("en")
	original := services.Configurationf("please configure the %s API key", "Groq")

	got := c.Classify(fmt.Errorf("ask: %w", original), "Groq")
	assert.Same(t, original, got)
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, New("en").Classify(nil, "Groq"))
}

func TestNew_Locale(t *testing.T) {
	assert.Equal(t, language.English, New("en").Locale())
	assert.Equal(t, language.English, New("").Locale())
	assert.Equal(t, language.English, New("fr").Locale())
	assert.Equal(t, language.Chinese, New("zh-CN").Locale())

	zh := New("zh")
	got := zh.Classify(statusErr(503, ""), "Groq")
	assert.Equal(t, "Groq 服务繁忙，请稍后重试", got.Message)
}

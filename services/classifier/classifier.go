package classifier

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/providers"
)

// messages holds the provider-named templates for one locale
type messages struct {
	serviceBusy  string
	authInvalid  string
	notFound     string
	quotaReached string
	throttled    string
	failed       string
}

var supported = []language.Tag{language.English, language.Chinese}

var catalogs = []messages{
	{
		serviceBusy:  "%s service is busy, please retry later",
		authInvalid:  "%s API key is invalid or expired, please check your settings",
		notFound:     "%s model does not exist or has been retired, please try another model",
		quotaReached: "%s has reached its usage limit, please retry later or switch models",
		throttled:    "%s is receiving too many requests, please retry later",
		failed:       "%s call failed: %s",
	},
	{
		serviceBusy:  "%s 服务繁忙，请稍后重试",
		authInvalid:  "%s API Key 无效或已过期，请检查设置",
		notFound:     "%s 模型不存在或已下线，请尝试其他模型",
		quotaReached: "%s 已达到调用次数上限，请稍后再试或更换其他模型",
		throttled:    "%s 请求过于频繁，请稍后再试",
		failed:       "%s 调用失败: %s",
	},
}

var matcher = language.NewMatcher(supported)

// statusCodes are the codes recognized in error text when no status is known
var statusCodes = func() map[int]*regexp.Regexp {
	out := make(map[int]*regexp.Regexp)
	for _, code := range []int{401, 403, 404, 429, 503} {
		out[code] = regexp.MustCompile(`\b` + strconv.Itoa(code) + `\b`)
	}
	return out
}()

// Classifier maps raw transport failures to gateway error categories
type Classifier struct {
	msgs messages
	tag  language.Tag
}

// New creates a classifier whose messages follow the closest supported locale.
// Unparseable or unsupported locales fall back to English.
func New(locale string) *Classifier {
	_, idx, _ := matcher.Match(language.Make(locale))
	return &Classifier{
		msgs: catalogs[idx],
		tag:  supported[idx],
	}
}

// Locale returns the tag the classifier resolved to
func (c *Classifier) Locale() language.Tag {
	return c.tag
}

// Classify turns err into a categorized DomainError. The first matching rule wins:
// 503, 401/403, 404, 429, quota text, then unknown. A known HTTP status decides
// the status rules on its own; the text is searched for codes only when the
// status is unknown. Errors that are already DomainErrors are returned as they are.
func (c *Classifier) Classify(err error, providerName string) *services.DomainError {
	if err == nil {
		return nil
	}

	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	status := 0
	var provErr *providers.ProviderError
	if errors.As(err, &provErr) {
		status = provErr.StatusCode
	}
	text := err.Error()
	lower := strings.ToLower(text)

	matches := func(code int) bool {
		if status != 0 {
			return status == code
		}
		return statusCodes[code].MatchString(text)
	}

	var (
		errType services.ErrorType
		message string
	)
	switch {
	case matches(503):
		errType = services.ErrorTypeServiceBusy
		message = fmt.Sprintf(c.msgs.serviceBusy, providerName)
	case matches(401) || matches(403):
		errType = services.ErrorTypeAuthInvalid
		message = fmt.Sprintf(c.msgs.authInvalid, providerName)
	case matches(404):
		errType = services.ErrorTypeNotFound
		message = fmt.Sprintf(c.msgs.notFound, providerName)
	case matches(429):
		errType = services.ErrorTypeRateLimited
		if strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota") || strings.Contains(lower, "limit") {
			message = fmt.Sprintf(c.msgs.quotaReached, providerName)
		} else {
			message = fmt.Sprintf(c.msgs.throttled, providerName)
		}
	case strings.Contains(lower, "insufficient_quota") || strings.Contains(lower, "exceeded"):
		errType = services.ErrorTypeQuotaExceeded
		message = fmt.Sprintf(c.msgs.quotaReached, providerName)
	default:
		errType = services.ErrorTypeUnknown
		message = fmt.Sprintf(c.msgs.failed, providerName, text)
	}

	classified := services.NewDomainError(errType, message, err)
	classified.WithDetail("provider", providerName)
	if status != 0 {
		classified.WithDetail("status", status)
	}
	return classified
}

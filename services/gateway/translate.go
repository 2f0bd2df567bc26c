package gateway

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/providers"
	"github.com/upb/paper-assistant-gateway/services/providers/translate"
)

// DefaultTranslator serves translations that name no backend
const DefaultTranslator = providers.ProviderGoogle

// Translate translates text with the requested backend. A backend that has a
// designated fallback is retried once on that fallback after any failure; the
// fallback then counts as the serving provider.
func (s *Service) Translate(ctx context.Context, req TranslateRequest) (*Translation, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, services.Validationf("text cannot be empty")
	}
	if req.From == "" {
		req.From = translate.AutoDetect
	}
	if err := validateLangTag(req.From, true); err != nil {
		return nil, err
	}
	if err := validateLangTag(req.To, false); err != nil {
		return nil, err
	}
	if req.ProviderID == "" {
		req.ProviderID = DefaultTranslator
	}

	p, translator, err := s.translator(req.ProviderID)
	if err != nil {
		return nil, err
	}

	text, err := translator.Translate(ctx, req.Text, req.From, req.To)
	if err == nil {
		s.recordServed(providers.KindTranslation, p, "")
		return &Translation{TranslatedText: text, Provider: p.ID}, nil
	}
	if p.Fallback == "" || ctx.Err() != nil {
		s.logger.Warn("translation failed", zap.String("provider", p.ID), zap.Error(err))
		return nil, s.classify(err, p.Name)
	}

	s.logger.Warn("translation failed, using fallback",
		zap.String("provider", p.ID),
		zap.String("fallback", p.Fallback),
		zap.Error(err))

	fb, fbTranslator, fbErr := s.translator(p.Fallback)
	if fbErr != nil {
		return nil, s.classify(err, p.Name)
	}
	text, err = fbTranslator.Translate(ctx, req.Text, req.From, req.To)
	if err != nil {
		s.logger.Warn("fallback translation failed", zap.String("provider", fb.ID), zap.Error(err))
		return nil, s.classify(err, fb.Name)
	}

	s.recordServed(providers.KindTranslation, fb, "")
	return &Translation{TranslatedText: text, Provider: fb.ID, FellBack: true}, nil
}

func (s *Service) translator(id string) (*providers.Provider, providers.Translator, error) {
	p, err := s.registry.Resolve(providers.KindTranslation, id)
	if err != nil {
		return nil, nil, services.NewDomainError(services.ErrorTypeConfiguration,
			"unsupported translation service: "+id, services.ErrUnsupportedTranslator).
			WithDetail("provider", id)
	}
	t, ok := s.backends.Translators[p.ID]
	if !ok {
		return nil, nil, services.NewDomainError(services.ErrorTypeConfiguration,
			"unsupported translation service: "+id, services.ErrUnsupportedTranslator).
			WithDetail("provider", id)
	}
	return p, t, nil
}

// validateLangTag accepts BCP 47 tags such as "en", "zh-CN" or "pt-BR"
func validateLangTag(tag string, allowAuto bool) error {
	if allowAuto && tag == translate.AutoDetect {
		return nil
	}
	if tag == "" {
		return services.NewDomainError(services.ErrorTypeValidation, "target language is required", services.ErrInvalidLangTag)
	}
	if _, err := language.Parse(tag); err != nil {
		return services.NewDomainError(services.ErrorTypeValidation, "invalid language tag: "+tag, err).
			WithDetail("lang", tag)
	}
	return nil
}

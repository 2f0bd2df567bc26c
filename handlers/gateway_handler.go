package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/paper-assistant-gateway/middleware"
	"github.com/upb/paper-assistant-gateway/models"
	"github.com/upb/paper-assistant-gateway/services/gateway"
	"github.com/upb/paper-assistant-gateway/services/providers"
	"github.com/upb/paper-assistant-gateway/utils"
	"go.uber.org/zap"
)

// GatewayService defines the gateway operations exposed over HTTP
type GatewayService interface {
	AskQuestion(ctx context.Context, req gateway.AskRequest) (*gateway.Answer, error)
	Translate(ctx context.Context, req gateway.TranslateRequest) (*gateway.Translation, error)
	GetCitationMetadata(ctx context.Context, doi string) (*models.CitationData, error)
	GetCitation(ctx context.Context, doi, style string) (*gateway.Citation, error)
	ListProviders(kind providers.Kind) ([]providers.ProviderView, error)
	LastServed(kind providers.Kind) (gateway.Served, bool)
	SetCredential(ctx context.Context, providerID, secret string) error
	ClearCredential(ctx context.Context, providerID string) error
}

// AskRequest is the body of POST /api/v1/ai/ask
type AskRequest struct {
	Context    string `json:"context"`
	Question   string `json:"question" validate:"required"`
	ProviderID string `json:"providerId,omitempty"`
	ModelID    string `json:"modelId,omitempty"`
}

// TranslateRequest is the body of POST /api/v1/translate
type TranslateRequest struct {
	Text     string `json:"text" validate:"required"`
	From     string `json:"from,omitempty" validate:"omitempty,langtag"`
	To       string `json:"to" validate:"required,langtag"`
	Provider string `json:"provider,omitempty"`
}

// CredentialRequest is the body of PUT /api/v1/providers/{id}/credential
type CredentialRequest struct {
	Value string `json:"value" validate:"required"`
}

// ProvidersResponse is the providers listing of one kind
type ProvidersResponse struct {
	Kind       providers.Kind           `json:"kind"`
	Providers  []providers.ProviderView `json:"providers"`
	LastServed *gateway.Served          `json:"last_served,omitempty"`
}

// GatewayHandler handles the command surface of the gateway
type GatewayHandler struct {
	service GatewayService
	logger  *zap.Logger
}

// NewGatewayHandler creates a new GatewayHandler
func NewGatewayHandler(service GatewayService, logger *zap.Logger) *GatewayHandler {
	return &GatewayHandler{
		service: service,
		logger:  logger,
	}
}

// HandleAsk handles POST /api/v1/ai/ask
func (h *GatewayHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req AskRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid ask request",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	answer, err := h.service.AskQuestion(ctx, gateway.AskRequest{
		Context:    req.Context,
		Question:   req.Question,
		ProviderID: req.ProviderID,
		ModelID:    req.ModelID,
	})
	if err != nil {
		h.logger.Warn("ask failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("question answered",
		zap.String("request_id", requestID),
		zap.String("provider", answer.ProviderID),
		zap.String("model", answer.Model),
		zap.Int64("latency_ms", answer.LatencyMs))

	h.writeOK(w, requestID, answer)
}

// HandleTranslate handles POST /api/v1/translate
func (h *GatewayHandler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req TranslateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.Translate(ctx, gateway.TranslateRequest{
		Text:       req.Text,
		From:       req.From,
		To:         req.To,
		ProviderID: req.Provider,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeOK(w, requestID, result)
}

// HandleCitationMetadata handles GET /api/v1/citations/metadata?doi=
func (h *GatewayHandler) HandleCitationMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	doi := r.URL.Query().Get("doi")
	if err := utils.ValidateRequired(doi, "doi"); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	data, err := h.service.GetCitationMetadata(ctx, doi)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeOK(w, requestID, data)
}

// HandleCitationText handles GET /api/v1/citations/text?doi=&style=
func (h *GatewayHandler) HandleCitationText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	q := r.URL.Query()
	doi := q.Get("doi")
	if err := utils.ValidateRequired(doi, "doi"); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	citation, err := h.service.GetCitation(ctx, doi, q.Get("style"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeOK(w, requestID, citation)
}

// HandleListProviders handles GET /api/v1/providers?kind=
func (h *GatewayHandler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	kind := providers.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = providers.KindAI
	}
	if err := utils.ValidateOneOf(string(kind), "kind", kindNames()); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	resp, err := h.providersResponse(kind)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeOK(w, requestID, resp)
}

// HandleSetCredential handles PUT /api/v1/providers/{id}/credential
func (h *GatewayHandler) HandleSetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	providerID := chi.URLParam(r, "id")

	var req CredentialRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := h.service.SetCredential(ctx, providerID, req.Value); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// HandleClearCredential handles DELETE /api/v1/providers/{id}/credential
func (h *GatewayHandler) HandleClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCredential(r.Context(), chi.URLParam(r, "id")); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

func (h *GatewayHandler) providersResponse(kind providers.Kind) (*ProvidersResponse, error) {
	views, err := h.service.ListProviders(kind)
	if err != nil {
		return nil, err
	}
	resp := &ProvidersResponse{Kind: kind, Providers: views}
	if served, ok := h.service.LastServed(kind); ok {
		resp.LastServed = &served
	}
	return resp, nil
}

func (h *GatewayHandler) writeOK(w http.ResponseWriter, requestID string, data interface{}) {
	if err := utils.WriteOK(w, data); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

func kindNames() []string {
	return []string{string(providers.KindAI), string(providers.KindTranslation), string(providers.KindCitation)}
}

package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/upb/paper-assistant-gateway/middleware"
	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/gateway"
	"github.com/upb/paper-assistant-gateway/services/providers"
	"github.com/upb/paper-assistant-gateway/utils"
	"go.uber.org/zap"
)

// Message actions
const (
	ActionAskQuestion         = "askQuestion"
	ActionGetTranslation      = "getTranslation"
	ActionGetCitationMetadata = "getCitationMetadata"
	ActionGetCitation         = "getCitation"
	ActionGetProviders        = "getProviders"
	ActionSetCredential       = "setCredential"
	ActionClearCredential     = "clearCredential"
)

// Message is a typed command. Only the fields of the named action are read.
type Message struct {
	Action string `json:"action" validate:"required"`

	// askQuestion
	Context    string `json:"context,omitempty"`
	Question   string `json:"question,omitempty"`
	ProviderID string `json:"providerId,omitempty"`
	ModelID    string `json:"modelId,omitempty"`

	// getTranslation
	Text     string `json:"text,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Provider string `json:"provider,omitempty"`

	// getCitationMetadata, getCitation
	DOI   string `json:"doi,omitempty"`
	Style string `json:"style,omitempty"`

	// getProviders
	Kind string `json:"kind,omitempty"`

	// setCredential
	Value string `json:"value,omitempty"`
}

type actionFunc func(ctx context.Context, msg *Message) (interface{}, error)

// MessageHandler dispatches POST /api/v1/messages through a fixed action table
type MessageHandler struct {
	gw      *GatewayHandler
	auth    func(*http.Request) bool
	actions map[string]actionFunc
	logger  *zap.Logger
}

// NewMessageHandler creates a dispatcher over the gateway handler. authorized
// gates the credential-mutating actions; nil allows them.
func NewMessageHandler(gw *GatewayHandler, authorized func(*http.Request) bool, logger *zap.Logger) *MessageHandler {
	h := &MessageHandler{gw: gw, auth: authorized, logger: logger}
	h.actions = map[string]actionFunc{
		ActionAskQuestion:         h.askQuestion,
		ActionGetTranslation:      h.getTranslation,
		ActionGetCitationMetadata: h.getCitationMetadata,
		ActionGetCitation:         h.getCitation,
		ActionGetProviders:        h.getProviders,
		ActionSetCredential:       h.setCredential,
		ActionClearCredential:     h.clearCredential,
	}
	return h
}

// Actions returns the registered action names
func (h *MessageHandler) Actions() []string {
	names := make([]string, 0, len(h.actions))
	for name := range h.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HandleMessage handles POST /api/v1/messages
func (h *MessageHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var msg Message
	if err := utils.DecodeJSON(r, &msg); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	action, ok := h.actions[msg.Action]
	if !ok {
		HandleServiceError(w, services.Validationf("unknown action: %s", msg.Action).
			WithDetail("actions", h.Actions()), h.logger)
		return
	}

	if isCredentialAction(msg.Action) && h.auth != nil && !h.auth(r) {
		_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
		return
	}

	h.logger.Debug("dispatching message",
		zap.String("request_id", requestID),
		zap.String("action", msg.Action))

	result, err := action(ctx, &msg)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if result == nil {
		result = map[string]bool{"success": true}
	}

	h.gw.writeOK(w, requestID, result)
}

func isCredentialAction(action string) bool {
	return action == ActionSetCredential || action == ActionClearCredential
}

func (h *MessageHandler) askQuestion(ctx context.Context, msg *Message) (interface{}, error) {
	if err := utils.ValidateRequired(msg.Question, "question"); err != nil {
		return nil, services.Validationf("%s", err.Error())
	}
	return h.gw.service.AskQuestion(ctx, gateway.AskRequest{
		Context:    msg.Context,
		Question:   msg.Question,
		ProviderID: msg.ProviderID,
		ModelID:    msg.ModelID,
	})
}

func (h *MessageHandler) getTranslation(ctx context.Context, msg *Message) (interface{}, error) {
	return h.gw.service.Translate(ctx, gateway.TranslateRequest{
		Text:       msg.Text,
		From:       msg.From,
		To:         msg.To,
		ProviderID: msg.Provider,
	})
}

func (h *MessageHandler) getCitationMetadata(ctx context.Context, msg *Message) (interface{}, error) {
	return h.gw.service.GetCitationMetadata(ctx, msg.DOI)
}

func (h *MessageHandler) getCitation(ctx context.Context, msg *Message) (interface{}, error) {
	return h.gw.service.GetCitation(ctx, msg.DOI, msg.Style)
}

func (h *MessageHandler) getProviders(ctx context.Context, msg *Message) (interface{}, error) {
	kind := providers.Kind(msg.Kind)
	if kind == "" {
		kind = providers.KindAI
	}
	return h.gw.providersResponse(kind)
}

func (h *MessageHandler) setCredential(ctx context.Context, msg *Message) (interface{}, error) {
	if err := h.gw.service.SetCredential(ctx, msg.ProviderID, msg.Value); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *MessageHandler) clearCredential(ctx context.Context, msg *Message) (interface{}, error) {
	if err := h.gw.service.ClearCredential(ctx, msg.ProviderID); err != nil {
		return nil, err
	}
	return nil, nil
}

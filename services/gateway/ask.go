package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/providers"
)

const (
	systemPrompt = `You are a professional assistant for reading academic papers. Your task is to:
1. Understand the paper content the user provides accurately
2. Answer questions in professional but accessible language
3. Support your answers by citing specific passages of the paper
4. Say so honestly when a question goes beyond the paper
5. Keep answers concise and focused on the key points

Always stay professional and objective.`

	answerTemperature = 0.7
	answerMaxTokens   = 2048

	noAnswer = "No answer was returned"
)

// AskQuestion answers a question about a paper. The call is single-shot: a
// failing provider is reported to the caller and never replaced by another.
func (s *Service) AskQuestion(ctx context.Context, req AskRequest) (*Answer, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, services.ErrEmptyQuestion
	}

	requestID := uuid.New()
	p, model, err := s.selectProvider(providers.KindAI, req.ProviderID, req.ModelID)
	if err != nil {
		s.logger.Info("ai provider selection failed",
			zap.String("request_id", requestID.String()),
			zap.String("pinned_provider", req.ProviderID),
			zap.Error(err))
		return nil, err
	}

	apiKey, _ := s.creds.Get(p.ID)

	s.logger.Info("asking question",
		zap.String("request_id", requestID.String()),
		zap.String("provider", p.ID),
		zap.String("model", model.ID),
		zap.Bool("pinned", req.ProviderID != ""),
		zap.Int("context_len", len(req.Context)))

	start := time.Now()
	resp, err := s.backends.Chat.ChatCompletion(ctx, p.Endpoint, apiKey, buildChatRequest(model.ID, req.Context, req.Question))
	if err != nil {
		s.logger.Warn("ai provider call failed",
			zap.String("request_id", requestID.String()),
			zap.String("provider", p.ID),
			zap.Error(err))
		return nil, s.classify(err, p.Name)
	}

	answer := resp.FirstContent()
	if answer == "" {
		answer = noAnswer
	}

	s.recordServed(providers.KindAI, p, model.ID)

	return &Answer{
		RequestID:  requestID,
		Answer:     answer,
		Provider:   p.Name,
		ProviderID: p.ID,
		Model:      model.ID,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

func buildChatRequest(modelID, paperContext, question string) *providers.ChatRequest {
	user := question
	if strings.TrimSpace(paperContext) != "" {
		user = fmt.Sprintf("Paper content:\n%s\n\nQuestion: %s", paperContext, question)
	}
	return &providers.ChatRequest{
		Model: modelID,
		Messages: []providers.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	}
}

package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/parley-sim/parley/domain"
	"github.com/parley-sim/parley/internal/adapter/llm"
	"github.com/parley-sim/parley/internal/behavior"
	"github.com/parley-sim/parley/internal/prompt"
)

// StartExchange persists the inbound user message and kicks off generation
// as a detached task. The caller gets the persisted user message back
// immediately; all generated output reaches observers through the hub.
func (s *Service) StartExchange(ctx context.Context, sessionID, content string, metadata json.RawMessage) (*domain.Message, error) {
	userMsg, err := s.AppendMessage(ctx, sessionID, domain.RoleUser, content, metadata)
	if err != nil {
		return nil, err
	}

	go s.runExchange(sessionID)

	return userMsg, nil
}

// runExchange drives one generation exchange. It runs on a background
// context: subscriber disconnects never cancel it, and it publishes token
// events followed by exactly one terminal event.
func (s *Service) runExchange(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.GenerationTimeout)
	defer cancel()

	start := time.Now()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		s.publishError(sessionID, err)
		return
	}

	history, err := s.store.GetMessages(ctx, sessionID, 0)
	if err != nil {
		s.publishError(sessionID, &domain.GenerationError{SessionID: sessionID, Err: err})
		return
	}

	metrics := behavior.Score(history)
	modifier, err := s.policy.SelectModifier(ctx, metrics)
	if err != nil {
		s.publishError(sessionID, &domain.GenerationError{SessionID: sessionID, Err: err})
		return
	}
	s.log.Debug().
		Str("session_id", sessionID).
		Str("modifier", string(modifier)).
		Float64("evasiveness", metrics.Evasiveness).
		Float64("contradiction", metrics.Contradiction).
		Float64("sentiment", metrics.Sentiment).
		Msg("behavior modifier selected")

	recent := history
	if len(recent) > prompt.RecentWindow {
		recent = recent[len(recent)-prompt.RecentWindow:]
	}
	preset, _ := prompt.LookupPreset(session.Preset)
	systemPrompt, userPrompt := prompt.Compose(preset, modifier, recent)

	req := &llm.CompletionRequest{
		Model:    s.config.LLMModel,
		Messages: buildModelInput(systemPrompt, userPrompt, recent),
	}

	var tokens []string
	var firstTokenAt time.Time
	err = s.llm.CreateCompletionStream(ctx, req, func(chunk *llm.Chunk) error {
		if chunk.Content == "" {
			return nil
		}
		event := domain.StreamEvent{
			Type:     domain.StreamEventToken,
			Data:     chunk.Content,
			Metadata: &domain.EventMetadata{SessionID: sessionID},
		}
		if firstTokenAt.IsZero() {
			firstTokenAt = time.Now()
			event.Metadata.Latency = &domain.Latency{
				TimeToFirstToken: firstTokenAt.Sub(start).Milliseconds(),
			}
		}
		tokens = append(tokens, chunk.Content)
		s.hub.Publish(sessionID, event)
		return nil
	})
	if err != nil {
		s.publishError(sessionID, &domain.GenerationError{SessionID: sessionID, Err: err})
		return
	}

	full := strings.Join(tokens, "")
	assistantMsg, err := s.AppendMessage(ctx, sessionID, domain.RoleAssistant, full, nil)
	if err != nil {
		// The session left ACTIVE while we were generating; nothing is
		// persisted for this turn.
		s.publishError(sessionID, err)
		return
	}

	s.hub.Publish(sessionID, domain.StreamEvent{
		Type: domain.StreamEventDone,
		Data: full,
		Metadata: &domain.EventMetadata{
			SessionID: sessionID,
			MessageID: assistantMsg.MessageID,
			Latency: &domain.Latency{
				TotalTime: time.Since(start).Milliseconds(),
			},
		},
	})
}

// publishError emits the single terminal error event for a failed exchange.
func (s *Service) publishError(sessionID string, err error) {
	s.log.Warn().Str("session_id", sessionID).Err(err).Msg("exchange failed")
	s.hub.Publish(sessionID, domain.StreamEvent{
		Type:     domain.StreamEventError,
		Data:     err.Error(),
		Metadata: &domain.EventMetadata{SessionID: sessionID},
	})
}

// buildModelInput assembles the message list sent to the generation backend:
// the composed system prompt, the prior turns, then the composed user prompt
// as the final turn.
func buildModelInput(systemPrompt, userPrompt string, recent []domain.Message) []llm.ChatMessage {
	msgs := make([]llm.ChatMessage, 0, len(recent)+2)
	msgs = append(msgs, llm.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})

	lastUser := -1
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Role == domain.RoleUser {
			lastUser = i
			break
		}
	}
	for i, m := range recent {
		if i == lastUser {
			continue
		}
		msgs = append(msgs, llm.ChatMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, llm.ChatMessage{Role: domain.RoleUser, Content: userPrompt})
	return msgs
}

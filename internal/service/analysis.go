package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/parley-sim/parley/domain"
	"github.com/parley-sim/parley/internal/adapter/llm"
	"github.com/parley-sim/parley/internal/behavior"
	"github.com/parley-sim/parley/internal/queue"
)

const analysisSystemPrompt = `You are reviewing the transcript of a completed pressure-simulation conversation. Summarize in a short paragraph how the subject held up: what they conceded, what they withheld, and how their tone shifted over the session.`

// HandleAnalysisJob consumes one analysis job from the queue. A result that
// already exists makes the job a no-op, so retried and duplicate jobs are
// harmless. Failures return AnalysisJobError and are retried by the queue.
func (s *Service) HandleAnalysisJob(ctx context.Context, job *queue.Job) error {
	existing, err := s.store.GetAnalysisResult(ctx, job.SessionID)
	if err != nil {
		return &domain.AnalysisJobError{SessionID: job.SessionID, Err: err}
	}
	if existing != nil {
		s.log.Debug().Str("session_id", job.SessionID).Msg("analysis already present, skipping")
		return nil
	}

	session, err := s.store.GetSession(ctx, job.SessionID)
	if err != nil {
		return &domain.AnalysisJobError{SessionID: job.SessionID, Err: err}
	}
	if session == nil {
		return &domain.AnalysisJobError{SessionID: job.SessionID, Err: &domain.NotFoundError{Kind: "session", ID: job.SessionID}}
	}

	messages, err := s.store.GetMessages(ctx, job.SessionID, 0)
	if err != nil {
		return &domain.AnalysisJobError{SessionID: job.SessionID, Err: err}
	}

	resp, err := s.llm.CreateCompletion(ctx, &llm.CompletionRequest{
		Model: s.config.LLMModel,
		Messages: []llm.ChatMessage{
			{Role: domain.RoleSystem, Content: analysisSystemPrompt},
			{Role: domain.RoleUser, Content: renderTranscript(messages)},
		},
	})
	if err != nil {
		return &domain.AnalysisJobError{SessionID: job.SessionID, Err: err}
	}

	metrics, err := json.Marshal(behavior.Score(messages))
	if err != nil {
		return &domain.AnalysisJobError{SessionID: job.SessionID, Err: err}
	}

	result := &domain.AnalysisResult{
		SessionID: job.SessionID,
		Summary:   resp.Content,
		Metrics:   metrics,
		Model:     s.config.LLMModel,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateAnalysisResult(ctx, result); err != nil {
		return &domain.AnalysisJobError{SessionID: job.SessionID, Err: err}
	}

	s.log.Info().Str("session_id", job.SessionID).Msg("analysis stored")
	return nil
}

func renderTranscript(messages []domain.Message) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return b.String()
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parley-sim/parley/domain"
	"github.com/parley-sim/parley/internal/prompt"
	"github.com/parley-sim/parley/internal/queue"
)

// CreateSession creates a new session in PENDING status. An unknown preset
// reference falls back to the default preset.
func (s *Service) CreateSession(ctx context.Context, name, presetRef string) (*domain.Session, error) {
	preset, known := prompt.LookupPreset(presetRef)
	if !known && presetRef != "" {
		s.log.Warn().Str("preset", presetRef).Msg("unknown preset, using default")
	}

	session := &domain.Session{
		SessionID: "sess_" + uuid.New().String()[:8],
		Name:      name,
		Preset:    preset.ID,
		Status:    domain.SessionStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession returns a session and its messages.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, []domain.Message, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.store.GetMessages(ctx, sessionID, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return session, messages, nil
}

// StartSession transitions PENDING -> ACTIVE and stamps startedAt.
func (s *Service) StartSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	now := time.Now()
	return s.transition(ctx, sessionID, domain.SessionStatusActive, &now, nil, func(from domain.SessionStatus) bool {
		return from == domain.SessionStatusPending
	})
}

// PauseSession transitions ACTIVE -> PAUSED.
func (s *Service) PauseSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.transition(ctx, sessionID, domain.SessionStatusPaused, nil, nil, nil)
}

// ResumeSession transitions PAUSED -> ACTIVE without touching startedAt.
func (s *Service) ResumeSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.transition(ctx, sessionID, domain.SessionStatusActive, nil, nil, func(from domain.SessionStatus) bool {
		return from == domain.SessionStatusPaused
	})
}

// EndSession transitions an ACTIVE or PAUSED session to COMPLETED, or to
// ERROR when errored is true, and stamps completedAt. Completing a session
// schedules its analysis job; errored sessions are never analyzed.
func (s *Service) EndSession(ctx context.Context, sessionID string, errored bool) (*domain.Session, error) {
	target := domain.SessionStatusCompleted
	if errored {
		target = domain.SessionStatusError
	}
	now := time.Now()
	session, err := s.transition(ctx, sessionID, target, nil, &now, nil)
	if err != nil {
		return nil, err
	}

	if !errored {
		s.queue.Enqueue(&queue.Job{
			SessionID:   sessionID,
			MaxAttempts: s.config.AnalysisMaxAttempts,
		})
	}
	return session, nil
}

// AppendMessage persists a message on an ACTIVE session.
func (s *Service) AppendMessage(ctx context.Context, sessionID, role, content string, metadata json.RawMessage) (*domain.Message, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusActive {
		return nil, &domain.InvalidStateTransitionError{
			SessionID: sessionID,
			From:      session.Status,
			Op:        "appendMessage",
		}
	}

	msg := &domain.Message{
		MessageID: "msg_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return msg, nil
}

// GetAnalysis returns the analysis result for a session.
func (s *Service) GetAnalysis(ctx context.Context, sessionID string) (*domain.AnalysisResult, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}
	result, err := s.store.GetAnalysisResult(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis result: %w", err)
	}
	if result == nil {
		return nil, &domain.NotFoundError{Kind: "analysis for session", ID: sessionID}
	}
	return result, nil
}

// loadSession fetches a session, mapping absence to NotFoundError.
func (s *Service) loadSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, &domain.NotFoundError{Kind: "session", ID: sessionID}
	}
	return session, nil
}

// transition applies one lifecycle edge. The stored status is left untouched
// when the edge is not in the state table or allowed rejects the source
// status.
func (s *Service) transition(ctx context.Context, sessionID string, to domain.SessionStatus, startedAt, completedAt *time.Time, allowed func(from domain.SessionStatus) bool) (*domain.Session, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(to) || (allowed != nil && !allowed(session.Status)) {
		return nil, &domain.InvalidStateTransitionError{
			SessionID: sessionID,
			From:      session.Status,
			To:        to,
		}
	}

	if err := s.store.UpdateSessionStatus(ctx, sessionID, to, startedAt, completedAt); err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}

	session.Status = to
	if startedAt != nil {
		session.StartedAt = startedAt
	}
	if completedAt != nil {
		session.CompletedAt = completedAt
	}
	return session, nil
}

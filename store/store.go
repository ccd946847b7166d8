// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"time"

	"github.com/parley-sim/parley/domain"
)

// Store defines the interface for data persistence. Lookups return nil with a
// nil error when the record is absent; callers decide whether absence is an
// error.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus, startedAt, completedAt *time.Time) error

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// Analysis operations
	CreateAnalysisResult(ctx context.Context, result *domain.AnalysisResult) error
	GetAnalysisResult(ctx context.Context, sessionID string) (*domain.AnalysisResult, error)

	// Lifecycle
	Close() error
}

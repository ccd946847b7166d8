package domain

import "fmt"

// NotFoundError indicates a referenced session does not exist. It surfaces
// synchronously to the caller and is never retried.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InvalidStateTransitionError indicates a lifecycle operation that violates
// the session state table. It signals stale client state and is never retried.
type InvalidStateTransitionError struct {
	SessionID string
	From      SessionStatus
	To        SessionStatus
	Op        string
}

func (e *InvalidStateTransitionError) Error() string {
	if e.To != "" {
		return fmt.Sprintf("invalid state transition for session %s: %s -> %s", e.SessionID, e.From, e.To)
	}
	return fmt.Sprintf("operation %s not allowed for session %s in status %s", e.Op, e.SessionID, e.From)
}

// GenerationError indicates the generation collaborator failed. It reaches
// callers only as a terminal error stream event; no assistant message is
// persisted for the failed turn.
type GenerationError struct {
	SessionID string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for session %s: %v", e.SessionID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// AnalysisJobError indicates the post-session analysis handler failed. The
// queue retries it with capped exponential backoff up to the job's attempt
// budget.
type AnalysisJobError struct {
	SessionID string
	Err       error
}

func (e *AnalysisJobError) Error() string {
	return fmt.Sprintf("analysis failed for session %s: %v", e.SessionID, e.Err)
}

func (e *AnalysisJobError) Unwrap() error { return e.Err }

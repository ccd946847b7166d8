package domain

import (
	"encoding/json"
	"time"
)

// AnalysisResult is the persisted outcome of the post-session analysis job.
// At most one result exists per session; its presence makes the analysis job
// idempotent.
type AnalysisResult struct {
	SessionID string          `json:"session_id"`
	Summary   string          `json:"summary"`
	Metrics   json.RawMessage `json:"metrics,omitempty"`
	Model     string          `json:"model,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

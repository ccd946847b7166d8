package domain

// StreamEventType represents the type of a stream event.
type StreamEventType string

const (
	StreamEventToken StreamEventType = "token"
	StreamEventDone  StreamEventType = "done"
	StreamEventError StreamEventType = "error"
)

// Terminal reports whether the event ends its exchange's stream.
func (t StreamEventType) Terminal() bool {
	return t == StreamEventDone || t == StreamEventError
}

// Latency carries timing measurements for one exchange, in milliseconds.
type Latency struct {
	TimeToFirstToken int64 `json:"timeToFirstToken,omitempty"`
	TotalTime        int64 `json:"totalTime,omitempty"`
}

// EventMetadata identifies the session and message an event belongs to.
type EventMetadata struct {
	SessionID string   `json:"sessionId"`
	MessageID string   `json:"messageId,omitempty"`
	Latency   *Latency `json:"latency,omitempty"`
}

// StreamEvent is one unit of real-time output. Events are ephemeral and never
// persisted; a subscriber only sees events published while it is attached.
type StreamEvent struct {
	Type     StreamEventType `json:"type"`
	Data     string          `json:"data"`
	Metadata *EventMetadata  `json:"metadata,omitempty"`
}

// BehaviorModifier is a discrete generation adjustment chosen from observed
// conversational metrics.
type BehaviorModifier string

const (
	ModifierNormal     BehaviorModifier = "normal"
	ModifierEscalate   BehaviorModifier = "escalate"
	ModifierDeEscalate BehaviorModifier = "de-escalate"
	ModifierRepeat     BehaviorModifier = "repeat"
)

// Package hub provides in-memory event broadcast keyed by session id.
//
// Delivery is synchronous and unbuffered: Publish hands each event directly
// to every subscriber attached at that moment, so a slow subscriber holds up
// the publisher until it receives or detaches. Events published while nobody
// is attached are lost.
package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/parley-sim/parley/domain"
)

// Subscription is one client's attachment to a session channel.
type Subscription struct {
	SessionID string
	ClientID  string

	events    chan domain.StreamEvent
	done      chan struct{}
	closeOnce sync.Once
}

// Events returns the channel the subscriber receives on.
func (s *Subscription) Events() <-chan domain.StreamEvent {
	return s.events
}

func (s *Subscription) detach() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Hub fans stream events out to session subscribers.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Subscription
	log      zerolog.Logger
}

// New creates a new Hub.
func New(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[string]*Subscription),
		log:      log.With().Str("component", "hub").Logger(),
	}
}

// Subscribe attaches clientID to the session channel and returns its
// subscription. Subscribing an already-attached client is a no-op that
// returns the existing subscription.
func (h *Hub) Subscribe(sessionID, clientID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.sessions[sessionID]
	if subs == nil {
		subs = make(map[string]*Subscription)
		h.sessions[sessionID] = subs
	}
	if sub, ok := subs[clientID]; ok {
		return sub
	}

	sub := &Subscription{
		SessionID: sessionID,
		ClientID:  clientID,
		events:    make(chan domain.StreamEvent),
		done:      make(chan struct{}),
	}
	subs[clientID] = sub
	h.log.Debug().Str("session_id", sessionID).Str("client_id", clientID).Msg("subscribed")
	return sub
}

// Unsubscribe detaches clientID from the session channel. Detaching unblocks
// any publisher currently waiting on this subscriber. Unknown ids are a
// no-op; an emptied subscriber set is purged.
func (h *Hub) Unsubscribe(sessionID, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.sessions[sessionID]
	if subs == nil {
		return
	}
	sub, ok := subs[clientID]
	if !ok {
		return
	}
	sub.detach()
	delete(subs, clientID)
	if len(subs) == 0 {
		delete(h.sessions, sessionID)
	}
	h.log.Debug().Str("session_id", sessionID).Str("client_id", clientID).Msg("unsubscribed")
}

// Publish delivers event to every subscriber currently attached to the
// session channel. A subscriber attached after Publish starts never receives
// the event.
func (h *Hub) Publish(sessionID string, event domain.StreamEvent) {
	h.mu.RLock()
	snapshot := make([]*Subscription, 0, len(h.sessions[sessionID]))
	for _, sub := range h.sessions[sessionID] {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	for _, sub := range snapshot {
		select {
		case sub.events <- event:
		case <-sub.done:
		}
	}
}

// HasSubscribers reports whether a session has any attached subscribers.
func (h *Hub) HasSubscribers(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID]) > 0
}

// SessionCount returns the number of session channels with subscribers.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

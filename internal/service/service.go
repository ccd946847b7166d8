// Package service implements the session lifecycle controller, the streaming
// delivery coordinator, and the post-session analysis handler.
package service

import (
	"github.com/rs/zerolog"

	"github.com/parley-sim/parley/config"
	"github.com/parley-sim/parley/internal/adapter/llm"
	"github.com/parley-sim/parley/internal/hub"
	"github.com/parley-sim/parley/internal/queue"
	"github.com/parley-sim/parley/policy"
	"github.com/parley-sim/parley/store"
)

type Service struct {
	store  store.Store
	hub    *hub.Hub
	queue  *queue.Queue
	llm    llm.Client
	policy *policy.Engine
	config *config.Config
	log    zerolog.Logger
}

func New(st store.Store, h *hub.Hub, q *queue.Queue, llmClient llm.Client, policyEngine *policy.Engine, cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{
		store:  st,
		hub:    h,
		queue:  q,
		llm:    llmClient,
		policy: policyEngine,
		config: cfg,
		log:    log.With().Str("component", "service").Logger(),
	}
}

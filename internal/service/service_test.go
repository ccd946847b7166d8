package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parley-sim/parley/config"
	"github.com/parley-sim/parley/internal/adapter/llm"
	"github.com/parley-sim/parley/internal/hub"
	"github.com/parley-sim/parley/internal/queue"
	"github.com/parley-sim/parley/policy"
	"github.com/parley-sim/parley/store"
)

// newTestService wires a service against an in-memory store and the mock
// generation client. No queue handler is registered, so enqueued analysis
// jobs stay visible to assertions.
func newTestService(t *testing.T, client llm.Client) (*Service, *hub.Hub, *queue.Queue) {
	t.Helper()

	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	if client == nil {
		client = llm.NewMockClient(0)
	}

	cfg := &config.Config{
		LLMModel:            "mock",
		GenerationTimeout:   5 * time.Second,
		AnalysisMaxAttempts: 3,
	}

	h := hub.New(zerolog.Nop())
	q := queue.New(zerolog.Nop())
	svc := New(db, h, q, client, engine, cfg, zerolog.Nop())
	return svc, h, q
}

package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/parley-sim/parley/config"
	"github.com/parley-sim/parley/domain"
	"github.com/parley-sim/parley/internal/adapter/llm"
	"github.com/parley-sim/parley/internal/hub"
	"github.com/parley-sim/parley/internal/queue"
	"github.com/parley-sim/parley/internal/service"
	"github.com/parley-sim/parley/policy"
	"github.com/parley-sim/parley/store"
)

func newTestHandler(t *testing.T) (*Handler, *service.Service, *hub.Hub) {
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

	cfg := &config.Config{
		LLMModel:            "mock",
		GenerationTimeout:   5 * time.Second,
		AnalysisMaxAttempts: 3,
	}

	h := hub.New(zerolog.Nop())
	q := queue.New(zerolog.Nop())
	svc := service.New(db, h, q, llm.NewMockClient(0), engine, cfg, zerolog.Nop())
	return NewHandler(svc, h, zerolog.Nop()), svc, h
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func createTestSession(t *testing.T, svc *service.Service, start bool) *domain.Session {
	t.Helper()
	session, err := svc.CreateSession(context.Background(), "run", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if start {
		if _, err := svc.StartSession(context.Background(), session.SessionID); err != nil {
			t.Fatalf("StartSession failed: %v", err)
		}
	}
	return session
}

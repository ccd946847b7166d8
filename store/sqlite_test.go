package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/parley-sim/parley/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStoreSessionAndMessages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	session := &domain.Session{
		SessionID: "sess_1",
		Name:      "checkpoint run",
		Preset:    "border-check",
		Status:    domain.SessionStatusPending,
		CreatedAt: time.Now(),
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := store.GetSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.Name != "checkpoint run" || got.Status != domain.SessionStatusPending {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.StartedAt != nil || got.CompletedAt != nil {
		t.Fatalf("expected nil timestamps, got %+v", got)
	}

	msg := &domain.Message{
		MessageID: "msg_1",
		SessionID: "sess_1",
		Role:      domain.RoleUser,
		Content:   "where are you traveling to?",
		CreatedAt: time.Now(),
		Metadata:  json.RawMessage(`{"channel":"web"}`),
	}
	if err := store.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	messages, err := store.GetMessages(ctx, "sess_1", 0)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if string(messages[0].Metadata) != `{"channel":"web"}` {
		t.Fatalf("unexpected metadata: %s", messages[0].Metadata)
	}
}

func TestSQLiteStoreGetSessionMissing(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	got, err := store.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing session, got %+v", got)
	}
}

func TestSQLiteStoreUpdateSessionStatus(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	session := &domain.Session{
		SessionID: "sess_1",
		Name:      "n",
		Preset:    "border-check",
		Status:    domain.SessionStatusPending,
		CreatedAt: time.Now(),
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	started := time.Now()
	if err := store.UpdateSessionStatus(ctx, "sess_1", domain.SessionStatusActive, &started, nil); err != nil {
		t.Fatalf("UpdateSessionStatus failed: %v", err)
	}

	got, err := store.GetSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != domain.SessionStatusActive || got.StartedAt == nil {
		t.Fatalf("unexpected session after start: %+v", got)
	}

	// A status-only update must not touch existing timestamps.
	if err := store.UpdateSessionStatus(ctx, "sess_1", domain.SessionStatusPaused, nil, nil); err != nil {
		t.Fatalf("UpdateSessionStatus failed: %v", err)
	}
	got, err = store.GetSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != domain.SessionStatusPaused || got.StartedAt == nil {
		t.Fatalf("pause lost started_at: %+v", got)
	}

	completed := time.Now()
	if err := store.UpdateSessionStatus(ctx, "sess_1", domain.SessionStatusCompleted, nil, &completed); err != nil {
		t.Fatalf("UpdateSessionStatus failed: %v", err)
	}
	got, err = store.GetSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != domain.SessionStatusCompleted || got.CompletedAt == nil {
		t.Fatalf("unexpected session after completion: %+v", got)
	}
}

func TestSQLiteStoreMessagesOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	session := &domain.Session{
		SessionID: "sess_1",
		Name:      "n",
		Preset:    "border-check",
		Status:    domain.SessionStatusActive,
		CreatedAt: time.Now(),
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	base := time.Now()
	for i := 0; i < 3; i++ {
		msg := &domain.Message{
			MessageID: "msg_" + string(rune('a'+i)),
			SessionID: "sess_1",
			Role:      domain.RoleUser,
			Content:   "turn",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	messages, err := store.GetMessages(ctx, "sess_1", 0)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Fatalf("messages out of order: %+v", messages)
		}
	}

	limited, err := store.GetMessages(ctx, "sess_1", 2)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(limited))
	}
}

func TestSQLiteStoreAnalysisResults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	session := &domain.Session{
		SessionID: "sess_1",
		Name:      "n",
		Preset:    "border-check",
		Status:    domain.SessionStatusCompleted,
		CreatedAt: time.Now(),
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	missing, err := store.GetAnalysisResult(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetAnalysisResult failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing result, got %+v", missing)
	}

	result := &domain.AnalysisResult{
		SessionID: "sess_1",
		Summary:   "the subject held firm under pressure",
		Metrics:   json.RawMessage(`{"evasiveness":0.5,"contradiction":0,"sentiment":-0.1}`),
		Model:     "gpt-4o-mini",
		CreatedAt: time.Now(),
	}
	if err := store.CreateAnalysisResult(ctx, result); err != nil {
		t.Fatalf("CreateAnalysisResult failed: %v", err)
	}

	got, err := store.GetAnalysisResult(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetAnalysisResult failed: %v", err)
	}
	if got == nil || got.Summary != result.Summary || got.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected result: %+v", got)
	}

	// session_id is the primary key: a second insert must fail.
	if err := store.CreateAnalysisResult(ctx, result); err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-sim/parley/domain"
)

func TestCreateSessionDefaults(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "first run", "")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusPending, session.Status)
	assert.Equal(t, "border-check", session.Preset)
	assert.Contains(t, session.SessionID, "sess_")

	// Unknown presets fall back to the default.
	other, err := svc.CreateSession(ctx, "second run", "no-such-preset")
	require.NoError(t, err)
	assert.Equal(t, "border-check", other.Preset)

	named, err := svc.CreateSession(ctx, "third run", "hr-exit")
	require.NoError(t, err)
	assert.Equal(t, "hr-exit", named.Preset)
}

func TestSessionLifecycleRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "run", "")
	require.NoError(t, err)

	started, err := svc.StartSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, started.Status)
	require.NotNil(t, started.StartedAt)

	paused, err := svc.PauseSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusPaused, paused.Status)

	resumed, err := svc.ResumeSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, resumed.Status)
	require.NotNil(t, resumed.StartedAt, "resume must not clear startedAt")

	ended, err := svc.EndSession(ctx, session.SessionID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, ended.Status)
	require.NotNil(t, ended.CompletedAt)
}

func TestInvalidTransitionsLeaveStatusUnchanged(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "run", "")
	require.NoError(t, err)

	// PENDING cannot pause, resume, or complete.
	for _, op := range []func() error{
		func() error { _, err := svc.PauseSession(ctx, session.SessionID); return err },
		func() error { _, err := svc.ResumeSession(ctx, session.SessionID); return err },
	} {
		err := op()
		var invalid *domain.InvalidStateTransitionError
		require.ErrorAs(t, err, &invalid)

		got, _, err := svc.GetSession(ctx, session.SessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionStatusPending, got.Status)
	}

	// Terminal states accept nothing.
	_, err = svc.StartSession(ctx, session.SessionID)
	require.NoError(t, err)
	_, err = svc.EndSession(ctx, session.SessionID, false)
	require.NoError(t, err)

	_, err = svc.StartSession(ctx, session.SessionID)
	var invalid *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &invalid)

	_, err = svc.EndSession(ctx, session.SessionID, true)
	require.ErrorAs(t, err, &invalid)

	got, _, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, got.Status)
}

func TestEndPausedSession(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "run", "")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, session.SessionID)
	require.NoError(t, err)
	_, err = svc.PauseSession(ctx, session.SessionID)
	require.NoError(t, err)

	ended, err := svc.EndSession(ctx, session.SessionID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, ended.Status)
}

func TestEndSessionSchedulesAnalysis(t *testing.T) {
	svc, _, q := newTestService(t, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "run", "")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, session.SessionID)
	require.NoError(t, err)
	_, err = svc.EndSession(ctx, session.SessionID, false)
	require.NoError(t, err)

	assert.Equal(t, 1, q.Len(), "completion must enqueue one analysis job")
}

func TestEndSessionErroredSkipsAnalysis(t *testing.T) {
	svc, _, q := newTestService(t, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "run", "")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, session.SessionID)
	require.NoError(t, err)

	ended, err := svc.EndSession(ctx, session.SessionID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusError, ended.Status)
	assert.Equal(t, 0, q.Len(), "errored sessions are never analyzed")
}

func TestAppendMessageRequiresActive(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "run", "")
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, session.SessionID, domain.RoleUser, "hello", nil)
	var invalid *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &invalid)

	_, err = svc.StartSession(ctx, session.SessionID)
	require.NoError(t, err)

	msg, err := svc.AppendMessage(ctx, session.SessionID, domain.RoleUser, "hello", nil)
	require.NoError(t, err)
	assert.Contains(t, msg.MessageID, "msg_")

	_, messages, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestGetSessionNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, _, err := svc.GetSession(context.Background(), "sess_missing")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "sess_missing", notFound.ID)
}

func TestGetAnalysisNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "run", "")
	require.NoError(t, err)

	_, err = svc.GetAnalysis(ctx, session.SessionID)
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

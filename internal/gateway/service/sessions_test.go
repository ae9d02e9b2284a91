package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.sessions.CreateUser(ctx, "alice", "correct-horse")
	require.NoError(t, err)

	tests := []struct {
		name, user, pass string
	}{
		{"wrong password", "alice", "battery-staple"},
		{"unknown user", "mallory", "correct-horse"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sessions.Login(ctx, tt.user, tt.pass)
			require.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}

	l, err := e.sessions.Login(ctx, " alice ", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, e.clock.Now().Add(time.Hour), l.ExpiresAt)

	sess, err := e.sessions.Get(ctx, l.SessionID)
	require.NoError(t, err)
	require.Equal(t, "alice", sess.ProtocolUserID)
	require.NotEmpty(t, sess.ProtocolSecret)

	raw, err := e.store.Sessions().GetSession(ctx, l.SessionID)
	require.NoError(t, err)
	require.NotEqual(t, sess.ProtocolSecret, raw.ProtocolSecret, "secret must be sealed at rest")
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.sessions.CreateUser(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	_, err = e.sessions.CreateUser(ctx, "alice", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidRequest)
	_, err = e.sessions.CreateUser(ctx, "bob", "short")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBootstrapOnlyOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.sessions.Bootstrap(ctx, "admin", "correct-horse")
	require.NoError(t, err)
	require.True(t, created)

	created, err = e.sessions.Bootstrap(ctx, "other", "correct-horse")
	require.NoError(t, err)
	require.False(t, created)
}

func TestLogoutAndExpiry(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sess := e.login(t, "alice")
	require.NoError(t, e.sessions.Logout(ctx, sess.ID))
	_, err := e.sessions.Get(ctx, sess.ID)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.ErrorIs(t, e.sessions.Logout(ctx, sess.ID), ErrSessionExpired)

	sess = e.login(t, "bob")
	e.clock.Advance(time.Hour)
	_, err = e.sessions.Get(ctx, sess.ID)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestHousekeepingSweep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess := e.login(t, "alice")

	_, err := e.payments.Initiate(ctx, sess, paymentRequest())
	require.NoError(t, err)

	hk := NewHousekeepingService(e.correlations, e.sessions, slogx.Discard(), time.Minute)
	e.clock.Advance(2 * time.Hour)
	hk.Sweep(ctx)

	_, err = e.store.Sessions().GetSession(ctx, sess.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingStartStop(t *testing.T) {
	e := newEnv(t)

	hk := NewHousekeepingService(e.correlations, e.sessions, slogx.Discard(), 0)
	require.Equal(t, time.Minute, hk.Interval)
	hk.Start()
	hk.Stop()
}

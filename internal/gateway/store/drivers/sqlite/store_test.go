package sqlite

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/idx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

// seedSession creates a bank, a user and a session and returns the session.
func seedSession(t *testing.T, s *Store) domain.Session {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Banks().UpsertBank(ctx, domain.Bank{
		ID:       "bank-a",
		Name:     "Bank A",
		Protocol: domain.ProtocolREST,
		Endpoint: "https://bank-a.example",
	}))

	user := domain.User{ID: idx.NewString(), Username: "alice-" + idx.NewString(), PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Users().CreateUser(ctx, user))

	sess := domain.Session{
		ID:             idx.NewString(),
		UserID:         user.ID,
		ProtocolUserID: "psu-1",
		ProtocolSecret: "sealed",
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))
	return sess
}

func newPayment(sessionID, ref, psid string, at time.Time) domain.Payment {
	return domain.Payment{
		ID:                idx.NewString(),
		SessionID:         sessionID,
		BankID:            "bank-a",
		AccountID:         "acc-1",
		CorrelationRef:    ref,
		ProtocolSessionID: psid,
		State:             domain.StatePending,
		CreditorIBAN:      "DE89370400440532013000",
		CreditorName:      "Bob",
		DebtorIBAN:        "DE02120300000000202051",
		Amount:            "10.00",
		Currency:          "EUR",
		Product:           "sepa-credit-transfers",
		CreatedAt:         at,
		UpdatedAt:         at,
	}
}

func TestBanksReplaceActions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedSession(t, s)

	actions := []domain.BankAction{
		{
			BankID:  "bank-a",
			Kind:    domain.ActionAuthorization,
			Handler: "",
			SubActions: []domain.BankSubAction{
				{Kind: domain.SubActionFromASPSPRedirect, Handler: "rest.from_aspsp_redirect"},
			},
		},
		{BankID: "bank-a", Kind: domain.ActionListAccounts, Handler: "rest.list_accounts", ConsentRequired: true},
	}
	require.NoError(t, s.Banks().ReplaceActions(ctx, "bank-a", actions))

	// Replacing again must not trip the unique constraint.
	require.NoError(t, s.Banks().ReplaceActions(ctx, "bank-a", actions))

	got, err := s.Banks().ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byKind := map[domain.ActionKind]domain.BankAction{}
	for _, a := range got {
		byKind[a.Kind] = a
	}
	require.True(t, byKind[domain.ActionListAccounts].ConsentRequired)
	require.Len(t, byKind[domain.ActionAuthorization].SubActions, 1)
	require.Equal(t, "rest.from_aspsp_redirect", byKind[domain.ActionAuthorization].SubActions[0].Handler)

	t.Run("duplicate kinds roll back", func(t *testing.T) {
		dup := []domain.BankAction{
			{BankID: "bank-a", Kind: domain.ActionGetPaymentStatus, Handler: "rest.get_payment_status"},
			{BankID: "bank-a", Kind: domain.ActionGetPaymentStatus, Handler: "rest.get_payment_status"},
		}
		err := s.Banks().ReplaceActions(ctx, "bank-a", dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		got, err := s.Banks().ListActions(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
	})
}

func TestCorrelationConsumeOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	require.NoError(t, s.Correlations().CreateCorrelation(ctx, domain.RedirectCorrelation{
		CodeHash:  "hash-1",
		SessionID: sess.ID,
		OkURL:     "/done",
		NokURL:    "/failed",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Minute),
	}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.Correlations().ConsumeCorrelation(ctx, "hash-1", now)
			if err == nil {
				assert.Equal(t, sess.ID, c.SessionID)
				assert.NotNil(t, c.ConsumedAt)
				wins.Add(1)
				return
			}
			assert.ErrorIs(t, err, store.ErrNotFound)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func TestCorrelationExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	require.NoError(t, s.Correlations().CreateCorrelation(ctx, domain.RedirectCorrelation{
		CodeHash:  "stale",
		SessionID: sess.ID,
		OkURL:     "/ok",
		NokURL:    "/nok",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Second),
	}))
	require.NoError(t, s.Payments().CreatePayment(ctx, newPayment(sess.ID, "stale", "pay-1", now)))

	later := now.Add(2 * time.Second)

	_, err := s.Correlations().ConsumeCorrelation(ctx, "stale", later)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Payments().ExpireStale(ctx, later, now.Add(-time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.Correlations().DeleteExpiredCorrelations(ctx, later)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	p, err := s.Payments().GetPaymentByCorrelationRef(ctx, "stale")
	require.NoError(t, err)
	require.Equal(t, domain.StateExpired, p.State)
	require.False(t, p.Confirmed)
}

func TestConsumedCorrelationExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	require.NoError(t, s.Correlations().CreateCorrelation(ctx, domain.RedirectCorrelation{
		CodeHash:  "consumed",
		SessionID: sess.ID,
		OkURL:     "/ok",
		NokURL:    "/nok",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Minute),
	}))
	require.NoError(t, s.Payments().CreatePayment(ctx, newPayment(sess.ID, "consumed", "pay-1", now)))

	_, err := s.Correlations().ConsumeCorrelation(ctx, "consumed", now)
	require.NoError(t, err)

	// Consumed after the cutoff: still waiting on its callback.
	n, err := s.Payments().ExpireStale(ctx, now, now.Add(-time.Minute))
	require.NoError(t, err)
	require.Zero(t, n)

	later := now.Add(10 * time.Minute)
	n, err = s.Payments().ExpireStale(ctx, later, later.Add(-5*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	p, err := s.Payments().GetPaymentByCorrelationRef(ctx, "consumed")
	require.NoError(t, err)
	require.Equal(t, domain.StateExpired, p.State)
}

func TestPaymentTransitionState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	p := newPayment(sess.ID, "ref-1", "pay-1", now)
	require.NoError(t, s.Payments().CreatePayment(ctx, p))

	require.NoError(t, s.Payments().TransitionState(ctx, p.ID, domain.StatePending, domain.StateAuthorizing, now))

	err := s.Payments().TransitionState(ctx, p.ID, domain.StatePending, domain.StateDenied, now)
	require.ErrorIs(t, err, store.ErrConflict)

	err = s.Payments().TransitionState(ctx, "missing", domain.StatePending, domain.StateDenied, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Payments().TransitionState(ctx, p.ID, domain.StateAuthorizing, domain.StateConfirmed, now))

	got, err := s.Payments().GetPayment(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StateConfirmed, got.State)
	require.True(t, got.Confirmed)

	list, err := s.Payments().ListConfirmedPayments(ctx, sess.ID, "bank-a", "acc-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, p.ID, list[0].ID)

	byPSID, err := s.Payments().GetPaymentByProtocolSessionID(ctx, "bank-a", "pay-1")
	require.NoError(t, err)
	require.Equal(t, p.ID, byPSID.ID)
}

func TestConfirmedCannotBeCleared(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	p := newPayment(sess.ID, "ref-1", "pay-1", now)
	require.NoError(t, s.Payments().CreatePayment(ctx, p))
	require.NoError(t, s.Payments().TransitionState(ctx, p.ID, domain.StatePending, domain.StateConfirmed, now))

	_, err := s.db.ExecContext(ctx, `UPDATE payments SET confirmed = 0 WHERE id = ?`, p.ID)
	require.Error(t, err)

	got, err := s.Payments().GetPayment(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, got.Confirmed)
}

func TestPaymentsAlreadyExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	require.NoError(t, s.Payments().CreatePayment(ctx, newPayment(sess.ID, "ref-1", "pay-1", now)))

	err := s.Payments().CreatePayment(ctx, newPayment(sess.ID, "ref-2", "pay-1", now))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestConsents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	_, err := s.Consents().GetConfirmedConsent(ctx, sess.ID, "bank-a")
	require.ErrorIs(t, err, store.ErrNotFound)

	c := domain.Consent{
		ID:                idx.NewString(),
		SessionID:         sess.ID,
		BankID:            "bank-a",
		CorrelationRef:    "consent-ref",
		ProtocolSessionID: "consent-1",
		State:             domain.StatePending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, s.Consents().CreateConsent(ctx, c))
	require.NoError(t, s.Consents().TransitionState(ctx, c.ID, domain.StatePending, domain.StateConfirmed, now))

	got, err := s.Consents().GetConfirmedConsent(ctx, sess.ID, "bank-a")
	require.NoError(t, err)
	require.Equal(t, "consent-1", got.ProtocolSessionID)

	err = s.Consents().TransitionState(ctx, c.ID, domain.StatePending, domain.StateDenied, now)
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestDeleteSessionCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	require.NoError(t, s.Correlations().CreateCorrelation(ctx, domain.RedirectCorrelation{
		CodeHash: "h", SessionID: sess.ID, OkURL: "/ok", NokURL: "/nok", CreatedAt: now, ExpiresAt: now.Add(time.Minute),
	}))
	p := newPayment(sess.ID, "h", "pay-1", now)
	require.NoError(t, s.Payments().CreatePayment(ctx, p))

	require.NoError(t, s.Sessions().DeleteSession(ctx, sess.ID))
	require.ErrorIs(t, s.Sessions().DeleteSession(ctx, sess.ID), store.ErrNotFound)

	_, err := s.Payments().GetPayment(ctx, p.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Correlations().ConsumeCorrelation(ctx, "h", now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := seedSession(t, s)
	now := time.Now()

	p := newPayment(sess.ID, "ref-1", "pay-1", now)
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Payments().CreatePayment(ctx, p); err != nil {
			return err
		}
		return store.ErrConflict
	})
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = s.Payments().GetPayment(ctx, p.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite/gen"
)

type consentsRepo struct {
	q *gen.Queries
}

func (r *consentsRepo) CreateConsent(ctx context.Context, c domain.Consent) error {
	err := r.q.CreateConsent(ctx, gen.CreateConsentParams{
		ID:                c.ID,
		SessionID:         c.SessionID,
		BankID:            c.BankID,
		CorrelationRef:    c.CorrelationRef,
		ProtocolSessionID: c.ProtocolSessionID,
		State:             string(c.State),
		Confirmed:         boolToInt(c.Confirmed),
		CreatedAt:         toMillis(c.CreatedAt),
		UpdatedAt:         toMillis(c.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *consentsRepo) GetConsent(ctx context.Context, id string) (domain.Consent, error) {
	row, err := r.q.GetConsent(ctx, id)
	if err != nil {
		return domain.Consent{}, mapNotFound(err)
	}
	return mapConsent(row), nil
}

func (r *consentsRepo) GetConsentByCorrelationRef(ctx context.Context, ref string) (domain.Consent, error) {
	row, err := r.q.GetConsentByCorrelationRef(ctx, ref)
	if err != nil {
		return domain.Consent{}, mapNotFound(err)
	}
	return mapConsent(row), nil
}

func (r *consentsRepo) GetConsentByProtocolSessionID(ctx context.Context, bankID, protocolSessionID string) (domain.Consent, error) {
	row, err := r.q.GetConsentByProtocolSessionID(ctx, gen.GetConsentByProtocolSessionIDParams{
		BankID:            bankID,
		ProtocolSessionID: protocolSessionID,
	})
	if err != nil {
		return domain.Consent{}, mapNotFound(err)
	}
	return mapConsent(row), nil
}

func (r *consentsRepo) GetConfirmedConsent(ctx context.Context, sessionID, bankID string) (domain.Consent, error) {
	row, err := r.q.GetConfirmedConsent(ctx, gen.GetConfirmedConsentParams{
		SessionID: sessionID,
		BankID:    bankID,
	})
	if err != nil {
		return domain.Consent{}, mapNotFound(err)
	}
	return mapConsent(row), nil
}

func (r *consentsRepo) TransitionState(ctx context.Context, id string, from, to domain.AuthorizationState, at time.Time) error {
	n, err := r.q.TransitionConsentState(ctx, gen.TransitionConsentStateParams{
		ToState:   string(to),
		UpdatedAt: toMillis(at),
		ID:        id,
		FromState: string(from),
	})
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.q.GetConsent(ctx, id); err != nil {
		return mapNotFound(err)
	}
	return store.ErrConflict
}

func (r *consentsRepo) ExpireStale(ctx context.Context, now, consumedBefore time.Time) (int64, error) {
	return r.q.ExpireStaleConsents(ctx, gen.ExpireStaleConsentsParams{
		Now:            toMillis(now),
		ConsumedBefore: toMillis(consumedBefore),
	})
}

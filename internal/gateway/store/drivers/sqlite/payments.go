package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite/gen"
)

type paymentsRepo struct {
	q *gen.Queries
}

func (r *paymentsRepo) CreatePayment(ctx context.Context, p domain.Payment) error {
	err := r.q.CreatePayment(ctx, gen.CreatePaymentParams{
		ID:                p.ID,
		SessionID:         p.SessionID,
		BankID:            p.BankID,
		AccountID:         p.AccountID,
		CorrelationRef:    p.CorrelationRef,
		ProtocolSessionID: p.ProtocolSessionID,
		State:             string(p.State),
		Confirmed:         boolToInt(p.Confirmed),
		CreditorIban:      p.CreditorIBAN,
		CreditorName:      p.CreditorName,
		DebtorIban:        p.DebtorIBAN,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Remittance:        p.Remittance,
		Instant:           boolToInt(p.Instant),
		Product:           p.Product,
		CreatedAt:         toMillis(p.CreatedAt),
		UpdatedAt:         toMillis(p.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *paymentsRepo) GetPayment(ctx context.Context, id string) (domain.Payment, error) {
	row, err := r.q.GetPayment(ctx, id)
	if err != nil {
		return domain.Payment{}, mapNotFound(err)
	}
	return mapPayment(row), nil
}

func (r *paymentsRepo) GetPaymentByCorrelationRef(ctx context.Context, ref string) (domain.Payment, error) {
	row, err := r.q.GetPaymentByCorrelationRef(ctx, ref)
	if err != nil {
		return domain.Payment{}, mapNotFound(err)
	}
	return mapPayment(row), nil
}

func (r *paymentsRepo) GetPaymentByProtocolSessionID(ctx context.Context, bankID, protocolSessionID string) (domain.Payment, error) {
	row, err := r.q.GetPaymentByProtocolSessionID(ctx, gen.GetPaymentByProtocolSessionIDParams{
		BankID:            bankID,
		ProtocolSessionID: protocolSessionID,
	})
	if err != nil {
		return domain.Payment{}, mapNotFound(err)
	}
	return mapPayment(row), nil
}

func (r *paymentsRepo) ListConfirmedPayments(ctx context.Context, sessionID, bankID, accountID string) ([]domain.Payment, error) {
	rows, err := r.q.ListConfirmedPayments(ctx, gen.ListConfirmedPaymentsParams{
		SessionID: sessionID,
		BankID:    bankID,
		AccountID: accountID,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPayment(row))
	}
	return out, nil
}

func (r *paymentsRepo) TransitionState(ctx context.Context, id string, from, to domain.AuthorizationState, at time.Time) error {
	n, err := r.q.TransitionPaymentState(ctx, gen.TransitionPaymentStateParams{
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

	// Nothing matched: tell a missing row apart from a lost race.
	if _, err := r.q.GetPayment(ctx, id); err != nil {
		return mapNotFound(err)
	}
	return store.ErrConflict
}

func (r *paymentsRepo) ExpireStale(ctx context.Context, now, consumedBefore time.Time) (int64, error) {
	return r.q.ExpireStalePayments(ctx, gen.ExpireStalePaymentsParams{
		Now:            toMillis(now),
		ConsumedBefore: toMillis(consumedBefore),
	})
}

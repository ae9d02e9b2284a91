package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

// StatusUnavailable is reported for a payment whose bank query failed.
const StatusUnavailable = "unavailable"

const defaultStatusConcurrency = 4

// PaymentStatus is one row of the uniform status list.
type PaymentStatus struct {
	Payment domain.Payment
	Status  string
	Error   string
}

// StatusService re-queries the bank status of confirmed payments.
type StatusService struct {
	Store   store.Store
	Catalog *catalog.Catalog

	// Concurrency bounds in-flight bank calls per List.
	Concurrency int
}

// List returns the bank status of every confirmed payment for an account,
// oldest first. A failed query marks only its own row unavailable.
func (s *StatusService) List(ctx context.Context, sess domain.Session, bankID, accountID string) ([]PaymentStatus, error) {
	payments, err := s.Store.Payments().ListConfirmedPayments(ctx, sess.ID, bankID, accountID)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return []PaymentStatus{}, nil
	}

	getter, action, err := catalog.ResolveAs[protocol.PaymentStatusGetter](s.Catalog, bankID, domain.ActionGetPaymentStatus)
	if err != nil {
		return nil, err
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultStatusConcurrency
	}

	out := make([]PaymentStatus, len(payments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range payments {
		g.Go(func() error {
			out[i] = s.query(gctx, getter, newCall(action.Bank, sess), p)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (s *StatusService) query(ctx context.Context, getter protocol.PaymentStatusGetter, call protocol.Call, p domain.Payment) PaymentStatus {
	st, err := getter.GetPaymentStatus(ctx, call, p.Product, p.ProtocolSessionID)
	if err != nil {
		slogx.FromContext(ctx).Warn("payment status unavailable",
			slog.String("payment_id", p.ID),
			slog.String("request_id", call.RequestID.String()),
			slog.Any("error", err),
		)
		return PaymentStatus{Payment: p, Status: StatusUnavailable, Error: err.Error()}
	}
	return PaymentStatus{Payment: p, Status: st.TransactionStatus}
}

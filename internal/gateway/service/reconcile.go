package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/idx"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// Accepted is a bank response that needs SCA, bound to the correlation code
// that will bring the browser back.
type Accepted struct {
	Session domain.Session
	BankID  string
	Code    string
	Result  protocol.Result

	// Payment carries the request details for PIS. Ignored for AIS.
	Payment *domain.Payment
}

// Redirect tells the caller where to send the browser next.
type Redirect struct {
	Location   string // bank SCA target
	Code       string
	ResourceID string // payment or consent id
}

// AcceptedReconciler persists the local record for an accepted-pending
// response. It makes no protocol calls. st may be a transaction.
type AcceptedReconciler interface {
	Reconcile(ctx context.Context, st store.Store, in Accepted) (Redirect, error)
}

// PaymentRecorder is the PIS reconciler.
type PaymentRecorder struct {
	Now func() time.Time
}

func (r PaymentRecorder) Reconcile(ctx context.Context, st store.Store, in Accepted) (Redirect, error) {
	if in.Payment == nil {
		return Redirect{}, fmt.Errorf("%w: payment details missing", ErrInvalidRequest)
	}
	now := nowOr(r.Now)

	p := *in.Payment
	p.ID = idx.NewString()
	p.SessionID = in.Session.ID
	p.BankID = in.BankID
	p.CorrelationRef = cryptox.FingerprintToken(in.Code)
	p.ProtocolSessionID = in.Result.ProtocolSessionID
	p.State = domain.StatePending
	p.Confirmed = false
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := st.Payments().CreatePayment(ctx, p); err != nil {
		return Redirect{}, fmt.Errorf("record payment: %w", err)
	}

	slogx.FromContext(ctx).Info("payment pending authorization",
		slog.String("payment_id", p.ID),
		slog.String("bank_id", p.BankID),
	)
	return Redirect{Location: in.Result.ScaRedirect, Code: in.Code, ResourceID: p.ID}, nil
}

// ConsentRecorder is the AIS reconciler.
type ConsentRecorder struct {
	Now func() time.Time
}

func (r ConsentRecorder) Reconcile(ctx context.Context, st store.Store, in Accepted) (Redirect, error) {
	now := nowOr(r.Now)
	c := domain.Consent{
		ID:                idx.NewString(),
		SessionID:         in.Session.ID,
		BankID:            in.BankID,
		CorrelationRef:    cryptox.FingerprintToken(in.Code),
		ProtocolSessionID: in.Result.ProtocolSessionID,
		State:             domain.StatePending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := st.Consents().CreateConsent(ctx, c); err != nil {
		return Redirect{}, fmt.Errorf("record consent: %w", err)
	}

	slogx.FromContext(ctx).Info("consent pending authorization",
		slog.String("consent_id", c.ID),
		slog.String("bank_id", c.BankID),
	)
	return Redirect{Location: in.Result.ScaRedirect, Code: in.Code, ResourceID: c.ID}, nil
}

// accept registers the correlation and reconciles in one transaction, so a
// correlation never exists without its record.
func accept(ctx context.Context, cs *CorrelationService, rec AcceptedReconciler, res Reservation, ok, nok string, in Accepted) (Redirect, error) {
	if in.Result.Outcome != protocol.OutcomeAcceptedPending || in.Result.ProtocolSessionID == "" {
		return Redirect{}, fmt.Errorf("%w: %s response without a bank reference", ErrUnexpectedProtocolResponse, in.Result.Outcome)
	}
	in.Code = res.Code

	var out Redirect
	err := cs.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := cs.registerCode(ctx, tx, res.Code, in.Session.ID, ok, nok); err != nil {
			return err
		}
		var err error
		out, err = rec.Reconcile(ctx, tx, in)
		return err
	})
	if err != nil {
		return Redirect{}, err
	}
	return out, nil
}

// newCall is the protocol call for a session at a bank.
func newCall(bank domain.Bank, sess domain.Session) protocol.Call {
	return protocol.NewCall(bank, protocol.Credentials{
		PSUID:  sess.ProtocolUserID,
		Secret: sess.ProtocolSecret,
	})
}

func nowOr(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now()
}

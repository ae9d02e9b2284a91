package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// Authorization is the SCA view of a payment or consent.
type Authorization struct {
	ResourceID  string
	State       domain.AuthorizationState
	ScaStatus   protocol.ScaStatus // empty when the bank was not asked
	ScaRedirect string
}

// CallbackResult is where to send the browser after a bank redirect.
type CallbackResult struct {
	Location   string
	ResourceID string
	State      domain.AuthorizationState
}

// AuthorizationService drives the SCA lifecycle through the catalog's
// AUTHORIZATION sub-actions. Every transition is a compare-and-set on the
// stored state, so concurrent steps cannot both win.
type AuthorizationService struct {
	Store        store.Store
	Catalog      *catalog.Catalog
	Sessions     *SessionService
	Correlations *CorrelationService
	Now          func() time.Time
}

// target is a payment or consent under authorization.
type target struct {
	typ     domain.ConsentType
	id      string
	session string
	bank    string
	psid    string
	product string
	state   domain.AuthorizationState
}

func paymentTarget(p domain.Payment) target {
	return target{
		typ:     domain.ConsentPIS,
		id:      p.ID,
		session: p.SessionID,
		bank:    p.BankID,
		psid:    p.ProtocolSessionID,
		product: p.Product,
		state:   p.State,
	}
}

func consentTarget(c domain.Consent) target {
	return target{
		typ:     domain.ConsentAIS,
		id:      c.ID,
		session: c.SessionID,
		bank:    c.BankID,
		psid:    c.ProtocolSessionID,
		state:   c.State,
	}
}

func (t target) ref() protocol.AuthorizationRef {
	return protocol.AuthorizationRef{Type: t.typ, Product: t.product, ProtocolSessionID: t.psid}
}

// State polls the bank's SCA status. Terminal payments answer locally.
func (s *AuthorizationService) State(ctx context.Context, sess domain.Session, bankID, paymentID string) (Authorization, error) {
	p, err := ownedPayment(ctx, s.Store, sess, bankID, paymentID)
	if err != nil {
		return Authorization{}, err
	}
	t := paymentTarget(p)
	if t.state.Terminal() {
		return Authorization{ResourceID: t.id, State: t.state}, nil
	}

	getter, sub, err := catalog.ResolveSubActionAs[protocol.AuthorizationStateGetter](s.Catalog, bankID, domain.SubActionGetAuthorizationState)
	if err != nil {
		return Authorization{}, err
	}
	st, err := getter.GetAuthorizationState(ctx, newCall(sub.Bank, sess), t.ref())
	if err != nil {
		return Authorization{}, fmt.Errorf("%w: authorization state: %w", ErrUnexpectedProtocolResponse, err)
	}
	return Authorization{ResourceID: t.id, State: t.state, ScaStatus: st.ScaStatus, ScaRedirect: st.ScaRedirect}, nil
}

// Update sends an SCA step to the bank. A finalised step confirms the
// payment, a failed one denies it, anything else leaves it AUTHORIZING.
func (s *AuthorizationService) Update(ctx context.Context, sess domain.Session, bankID, paymentID string, in protocol.ScaInput) (Authorization, error) {
	p, err := ownedPayment(ctx, s.Store, sess, bankID, paymentID)
	if err != nil {
		return Authorization{}, err
	}
	t := paymentTarget(p)
	if t.state.Terminal() {
		return Authorization{}, fmt.Errorf("%w: payment is %s", ErrInvalidStateTransition, t.state)
	}

	updater, sub, err := catalog.ResolveSubActionAs[protocol.AuthorizationUpdater](s.Catalog, bankID, domain.SubActionUpdateAuthorization)
	if err != nil {
		return Authorization{}, err
	}
	st, err := updater.UpdateAuthorization(ctx, newCall(sub.Bank, sess), t.ref(), in)
	if err != nil {
		return Authorization{}, fmt.Errorf("%w: update authorization: %w", ErrUnexpectedProtocolResponse, err)
	}

	next := domain.StateAuthorizing
	switch {
	case st.ScaStatus.Succeeded():
		next = domain.StateConfirmed
	case st.ScaStatus == protocol.ScaFailed:
		next = domain.StateDenied
	}
	if err := s.transition(ctx, s.Store, t, next); err != nil {
		return Authorization{}, err
	}
	return Authorization{ResourceID: t.id, State: next, ScaStatus: st.ScaStatus, ScaRedirect: st.ScaRedirect}, nil
}

// Deny cancels the authorization at the bank and marks the payment DENIED.
func (s *AuthorizationService) Deny(ctx context.Context, sess domain.Session, bankID, paymentID string) (Authorization, error) {
	p, err := ownedPayment(ctx, s.Store, sess, bankID, paymentID)
	if err != nil {
		return Authorization{}, err
	}
	t := paymentTarget(p)
	if t.state.Terminal() {
		return Authorization{}, fmt.Errorf("%w: payment is %s", ErrInvalidStateTransition, t.state)
	}

	denier, sub, err := catalog.ResolveSubActionAs[protocol.AuthorizationDenier](s.Catalog, bankID, domain.SubActionDenyAuthorization)
	if err != nil {
		return Authorization{}, err
	}
	if err := denier.DenyAuthorization(ctx, newCall(sub.Bank, sess), t.ref()); err != nil {
		return Authorization{}, fmt.Errorf("%w: deny authorization: %w", ErrUnexpectedProtocolResponse, err)
	}
	if err := s.transition(ctx, s.Store, t, domain.StateDenied); err != nil {
		return Authorization{}, err
	}
	return Authorization{ResourceID: t.id, State: domain.StateDenied}, nil
}

// FromRedirect handles the browser coming back from the bank. The code is
// consumed first, so a replayed callback fails with ErrCorrelationNotFound.
// Once the code is consumed, failures still return the caller's nok URL
// alongside the error.
func (s *AuthorizationService) FromRedirect(ctx context.Context, code string, outcome protocol.RedirectOutcome) (CallbackResult, error) {
	if outcome != protocol.RedirectOK && outcome != protocol.RedirectNOK {
		return CallbackResult{}, fmt.Errorf("%w: outcome %q", ErrInvalidRequest, outcome)
	}

	corr, err := s.Correlations.Consume(ctx, code)
	if err != nil {
		return CallbackResult{}, err
	}
	ctx = slogx.WithSession(ctx, corr.SessionID)
	l := slogx.FromContext(ctx)
	fail := CallbackResult{Location: corr.NokURL}

	sess, err := s.Sessions.Get(ctx, corr.SessionID)
	if err != nil {
		return fail, err
	}

	t, err := s.targetByCorrelation(ctx, cryptox.FingerprintToken(code))
	if err != nil {
		return fail, err
	}
	fail.ResourceID = t.id
	fail.State = t.state
	if t.session != corr.SessionID {
		return fail, ErrNotFound
	}
	t, err = s.targetByProtocolSession(ctx, t)
	if err != nil {
		return fail, err
	}
	fail.State = t.state

	if t.state.Terminal() {
		return s.callbackFor(corr, t.id, t.state), nil
	}

	handler, sub, err := catalog.ResolveSubActionAs[protocol.RedirectHandler](s.Catalog, t.bank, domain.SubActionFromASPSPRedirect)
	if err != nil {
		return fail, err
	}
	st, err := handler.FromRedirect(ctx, newCall(sub.Bank, sess), t.ref(), outcome)
	if err != nil {
		l.Warn("redirect status check failed", slog.String("resource_id", t.id), slog.Any("error", err))
		return fail, fmt.Errorf("%w: redirect status: %w", ErrUnexpectedProtocolResponse, err)
	}

	next := domain.StateDenied
	if st.ScaStatus.Succeeded() {
		next = domain.StateConfirmed
	}
	if err := s.transition(ctx, s.Store, t, next); err != nil {
		return fail, err
	}

	l.Info("authorization completed",
		slog.String("resource_id", t.id),
		slog.String("type", string(t.typ)),
		slog.String("state", string(next)),
	)
	return s.callbackFor(corr, t.id, next), nil
}

func (s *AuthorizationService) callbackFor(corr domain.RedirectCorrelation, id string, state domain.AuthorizationState) CallbackResult {
	loc := corr.NokURL
	if state == domain.StateConfirmed {
		loc = corr.OkURL
	}
	return CallbackResult{Location: loc, ResourceID: id, State: state}
}

func (s *AuthorizationService) targetByCorrelation(ctx context.Context, ref string) (target, error) {
	p, err := s.Store.Payments().GetPaymentByCorrelationRef(ctx, ref)
	if err == nil {
		return paymentTarget(p), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return target{}, err
	}

	c, err := s.Store.Consents().GetConsentByCorrelationRef(ctx, ref)
	if err == nil {
		return consentTarget(c), nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return target{}, ErrNotFound
	}
	return target{}, err
}

// targetByProtocolSession reloads t by the id the bank assigned to it. A
// record that does not match t is refused.
func (s *AuthorizationService) targetByProtocolSession(ctx context.Context, t target) (target, error) {
	var (
		fresh target
		err   error
	)
	if t.typ == domain.ConsentAIS {
		var c domain.Consent
		c, err = s.Store.Consents().GetConsentByProtocolSessionID(ctx, t.bank, t.psid)
		fresh = consentTarget(c)
	} else {
		var p domain.Payment
		p, err = s.Store.Payments().GetPaymentByProtocolSessionID(ctx, t.bank, t.psid)
		fresh = paymentTarget(p)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return target{}, ErrNotFound
	case err != nil:
		return target{}, err
	}
	if fresh.id != t.id || fresh.session != t.session {
		return target{}, fmt.Errorf("%w: protocol session %s does not belong to %s", ErrUnexpectedProtocolResponse, t.psid, t.id)
	}
	return fresh, nil
}

// transition applies t.state -> to, checking the table before the store's
// compare-and-set.
func (s *AuthorizationService) transition(ctx context.Context, st store.Store, t target, to domain.AuthorizationState) error {
	if !t.state.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, t.state, to)
	}

	at := nowOr(s.Now)
	var err error
	if t.typ == domain.ConsentAIS {
		err = st.Consents().TransitionState(ctx, t.id, t.state, to, at)
	} else {
		err = st.Payments().TransitionState(ctx, t.id, t.state, to, at)
	}
	switch {
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %s is no longer %s", ErrInvalidStateTransition, t.id, t.state)
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return err
	}
	return nil
}

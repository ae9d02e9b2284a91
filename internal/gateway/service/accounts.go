package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
)

// ConsentURLs are the caller URLs used when the bank first asks for consent.
type ConsentURLs struct {
	OkURL  string
	NokURL string
}

// AccountsResult holds either data or, when the bank still needs consent,
// the SCA redirect that will obtain it.
type AccountsResult struct {
	Accounts []protocol.Account
	Redirect *Redirect
}

type TransactionsResult struct {
	Transactions []protocol.Transaction
	Redirect     *Redirect
}

// AccountService serves account information. When an action requires
// consent and the session holds none for the bank, the bank's consent
// request goes through the correlation engine like a payment does.
type AccountService struct {
	Store        store.Store
	Catalog      *catalog.Catalog
	Correlations *CorrelationService
	Redirects    RedirectPolicy

	// Recorder defaults to ConsentRecorder.
	Recorder AcceptedReconciler
}

func (s *AccountService) recorder() AcceptedReconciler {
	if s.Recorder == nil {
		return ConsentRecorder{Now: s.Correlations.Now}
	}
	return s.Recorder
}

func (s *AccountService) ListAccounts(ctx context.Context, sess domain.Session, bankID string, urls ConsentURLs) (AccountsResult, error) {
	lister, action, err := catalog.ResolveAs[protocol.AccountLister](s.Catalog, bankID, domain.ActionListAccounts)
	if err != nil {
		return AccountsResult{}, err
	}
	call, res, err := s.prepare(ctx, sess, action, urls)
	if err != nil {
		return AccountsResult{}, err
	}

	list, err := lister.ListAccounts(ctx, call)
	if err != nil {
		return AccountsResult{}, fmt.Errorf("%w: list accounts: %w", ErrUnexpectedProtocolResponse, err)
	}
	redirect, err := s.finish(ctx, sess, call, res, urls, list.Result)
	if err != nil || redirect != nil {
		return AccountsResult{Redirect: redirect}, err
	}
	if list.Accounts == nil {
		list.Accounts = []protocol.Account{}
	}
	return AccountsResult{Accounts: list.Accounts}, nil
}

func (s *AccountService) ListTransactions(ctx context.Context, sess domain.Session, bankID, accountID string, urls ConsentURLs) (TransactionsResult, error) {
	if accountID == "" {
		return TransactionsResult{}, fmt.Errorf("%w: account is required", ErrInvalidRequest)
	}
	lister, action, err := catalog.ResolveAs[protocol.TransactionLister](s.Catalog, bankID, domain.ActionListTransactions)
	if err != nil {
		return TransactionsResult{}, err
	}
	call, res, err := s.prepare(ctx, sess, action, urls)
	if err != nil {
		return TransactionsResult{}, err
	}

	list, err := lister.ListTransactions(ctx, call, accountID)
	if err != nil {
		return TransactionsResult{}, fmt.Errorf("%w: list transactions: %w", ErrUnexpectedProtocolResponse, err)
	}
	redirect, err := s.finish(ctx, sess, call, res, urls, list.Result)
	if err != nil || redirect != nil {
		return TransactionsResult{Redirect: redirect}, err
	}
	if list.Transactions == nil {
		list.Transactions = []protocol.Transaction{}
	}
	return TransactionsResult{Transactions: list.Transactions}, nil
}

// prepare builds the call. Without a confirmed consent it also reserves a
// correlation so the bank can redirect back.
func (s *AccountService) prepare(ctx context.Context, sess domain.Session, action catalog.Action, urls ConsentURLs) (protocol.Call, *Reservation, error) {
	call := newCall(action.Bank, sess)
	call.ConsentRequired = action.ConsentRequired
	if !action.ConsentRequired {
		return call, nil, nil
	}

	c, err := s.Store.Consents().GetConfirmedConsent(ctx, sess.ID, action.Bank.ID)
	switch {
	case err == nil:
		call.ConsentID = c.ProtocolSessionID
		return call, nil, nil
	case !errors.Is(err, store.ErrNotFound):
		return protocol.Call{}, nil, err
	}

	if err := s.Redirects.ValidatePair(urls.OkURL, urls.NokURL); err != nil {
		return protocol.Call{}, nil, err
	}
	res, err := s.Correlations.Reserve()
	if err != nil {
		return protocol.Call{}, nil, err
	}
	call.RedirectOK = res.CallbackOK
	call.RedirectNOK = res.CallbackNOK
	return call, &res, nil
}

// finish records a pending consent when the bank asked for one.
func (s *AccountService) finish(ctx context.Context, sess domain.Session, call protocol.Call, res *Reservation, urls ConsentURLs, result protocol.Result) (*Redirect, error) {
	if result.Outcome != protocol.OutcomeAcceptedPending {
		return nil, nil
	}
	switch {
	case res == nil && !call.ConsentRequired:
		return nil, fmt.Errorf("%w: bank requested consent for an action that does not require it", ErrUnexpectedProtocolResponse)
	case res == nil:
		return nil, fmt.Errorf("%w: bank requested consent that is already held", ErrUnexpectedProtocolResponse)
	}
	out, err := accept(ctx, s.Correlations, s.recorder(), *res, urls.OkURL, urls.NokURL, Accepted{
		Session: sess,
		BankID:  call.Bank.ID,
		Result:  result,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

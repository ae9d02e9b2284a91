package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/stretchr/testify/require"
)

func TestAccountsConsentRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess := e.login(t, "alice")
	urls := ConsentURLs{OkURL: "/accounts", NokURL: "/denied"}

	res, err := e.accounts.ListAccounts(ctx, sess, "bank-a", urls)
	require.NoError(t, err)
	require.Nil(t, res.Accounts)
	require.NotNil(t, res.Redirect)
	require.NotEmpty(t, res.Redirect.Location)

	c, err := e.store.Consents().GetConsent(ctx, res.Redirect.ResourceID)
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, c.State)

	var ref protocol.AuthorizationRef
	e.bank.RedirectFunc = func(_ protocol.Call, r protocol.AuthorizationRef, _ protocol.RedirectOutcome) (protocol.AuthorizationStatus, error) {
		ref = r
		return protocol.AuthorizationStatus{ScaStatus: protocol.ScaFinalised}, nil
	}
	cb, err := e.auth.FromRedirect(ctx, res.Redirect.Code, protocol.RedirectOK)
	require.NoError(t, err)
	require.Equal(t, "/accounts", cb.Location)
	require.Equal(t, domain.ConsentAIS, ref.Type)
	require.Equal(t, c.ProtocolSessionID, ref.ProtocolSessionID)

	var consentID string
	e.bank.AccountsFunc = func(call protocol.Call) (protocol.AccountList, error) {
		consentID = call.ConsentID
		return protocol.AccountList{Accounts: []protocol.Account{{ResourceID: "acc-1", IBAN: "DE89370400440532013000", Currency: "EUR"}}}, nil
	}
	res, err = e.accounts.ListAccounts(ctx, sess, "bank-a", ConsentURLs{})
	require.NoError(t, err)
	require.Nil(t, res.Redirect)
	require.Len(t, res.Accounts, 1)
	require.Equal(t, c.ProtocolSessionID, consentID)

	txs, err := e.accounts.ListTransactions(ctx, sess, "bank-a", "acc-1", ConsentURLs{})
	require.NoError(t, err)
	require.Nil(t, txs.Redirect)
	require.Len(t, txs.Transactions, 1)
}

func TestAccountsNeedRedirectURLsWithoutConsent(t *testing.T) {
	e := newEnv(t)
	sess := e.login(t, "alice")

	_, err := e.accounts.ListAccounts(context.Background(), sess, "bank-a", ConsentURLs{})
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.Empty(t, e.bank.Calls())
}

func TestAccountsDeniedConsentIsNotUsed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess := e.login(t, "alice")
	urls := ConsentURLs{OkURL: "/accounts", NokURL: "/denied"}

	res, err := e.accounts.ListTransactions(ctx, sess, "bank-a", "acc-1", urls)
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)

	cb, err := e.auth.FromRedirect(ctx, res.Redirect.Code, protocol.RedirectNOK)
	require.NoError(t, err)
	require.Equal(t, "/denied", cb.Location)

	res, err = e.accounts.ListTransactions(ctx, sess, "bank-a", "acc-1", urls)
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)
}

func TestAccountsConsentAlreadyHeldButRequested(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess := e.login(t, "alice")
	urls := ConsentURLs{OkURL: "/accounts", NokURL: "/denied"}

	res, err := e.accounts.ListAccounts(ctx, sess, "bank-a", urls)
	require.NoError(t, err)
	_, err = e.auth.FromRedirect(ctx, res.Redirect.Code, protocol.RedirectOK)
	require.NoError(t, err)

	e.bank.AccountsFunc = func(protocol.Call) (protocol.AccountList, error) {
		return protocol.AccountList{Result: protocol.Result{Outcome: protocol.OutcomeAcceptedPending, ProtocolSessionID: "c-2"}}, nil
	}
	_, err = e.accounts.ListAccounts(ctx, sess, "bank-a", urls)
	require.ErrorIs(t, err, ErrUnexpectedProtocolResponse)
	require.ErrorContains(t, err, "already held")
}

func TestAccountsConsentNotRequiredButRequested(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess := e.login(t, "alice")

	e.bank.AccountsFunc = func(protocol.Call) (protocol.AccountList, error) {
		return protocol.AccountList{Result: protocol.Result{Outcome: protocol.OutcomeAcceptedPending, ProtocolSessionID: "c-1"}}, nil
	}
	_, err := e.accounts.ListAccounts(ctx, sess, "bank-b", ConsentURLs{})
	require.ErrorIs(t, err, ErrUnexpectedProtocolResponse)
	require.ErrorContains(t, err, "does not require it")
}

func TestTransactionsRequireAccount(t *testing.T) {
	e := newEnv(t)
	sess := e.login(t, "alice")

	_, err := e.accounts.ListTransactions(context.Background(), sess, "bank-a", "", ConsentURLs{})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

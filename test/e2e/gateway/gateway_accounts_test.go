package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAccountConsentAndTransactions walks the consent redirect, then pays
// from a consented account and finds the booking in its transactions.
func TestAccountConsentAndTransactions(t *testing.T) {
	g := setupGateway(t)
	session := g.login(t)

	accounts, redirect, err := session.ListAccounts(t.Context(), sandboxBank, "/accounts/ok", "/accounts/nok")
	require.NoError(t, err)
	require.Nil(t, accounts)
	require.NotNil(t, redirect)

	callback := g.approve(t, redirect.Location)
	location, err := g.client.FollowCallback(t.Context(), callback)
	require.NoError(t, err)
	require.Equal(t, "/accounts/ok", location)

	accounts, redirect, err = session.ListAccounts(t.Context(), sandboxBank, "", "")
	require.NoError(t, err)
	require.Nil(t, redirect)
	require.Len(t, accounts.Accounts, 2)
	account := accounts.Accounts[0]

	req := samplePayment()
	req.DebtorIBAN = account.IBAN
	payment, err := session.InitiatePayment(t.Context(), sandboxBank, account.ResourceID, req)
	require.NoError(t, err)
	_, err = g.client.FollowCallback(t.Context(), g.approve(t, payment.Location))
	require.NoError(t, err)

	txs, redirect, err := session.ListTransactions(t.Context(), sandboxBank, account.ResourceID, "", "")
	require.NoError(t, err)
	require.Nil(t, redirect)

	var found bool
	for _, tx := range txs.Transactions {
		if tx.Amount == "-25.00" && tx.Counterparty == "Bob" {
			found = true
			require.Equal(t, "invoice 42", tx.Remittance)
		}
	}
	require.True(t, found, "payment should be booked on the debtor account")
}

/*
Package gatewaysdk is a client for the bankgate payment gateway.

# Overview

A Client talks to public endpoints and logs in; a Session carries the
bearer token for everything else:

	client := gatewaysdk.NewClient("https://gateway.example.com")

	session, err := client.Login(ctx, "alice", "correct-horse")
	if err != nil {
		return err
	}
	defer session.Logout(ctx)

# Payments

Initiating a payment never completes it. The gateway answers with the bank's
SCA target, which the user's browser must visit:

	redirect, err := session.InitiatePayment(ctx, "bank-a", "acc-1", gatewaysdk.PaymentInitiationRequest{
		CreditorIBAN: "DE89370400440532013000",
		CreditorName: "Bob",
		DebtorIBAN:   "DE02120300000000202051",
		Amount:       "10.00",
		OkURL:        "/payments/done",
		NokURL:       "/payments/failed",
	})
	// send the browser to redirect.Location

After the bank redirects back, confirmed payments show up in ListPayments
with their current bank status.

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the gateway error code:

	var apiErr *gatewaysdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == gatewaysdk.ErrorCodeUnsupportedAction {
		// the bank cannot do this
	}
*/
package gatewaysdk

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBank(t *testing.T, h http.HandlerFunc) protocol.Call {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	call := protocol.NewCall(
		domain.Bank{ID: "bank-a", Protocol: domain.ProtocolREST, Endpoint: srv.URL + "/psd2"},
		protocol.Credentials{PSUID: "psu-1", Secret: "s3cret"},
	)
	return call
}

func TestHandlersCoverEveryKind(t *testing.T) {
	reg := protocol.NewRegistry()
	require.NoError(t, Register(reg, NewClient(time.Second)))

	for _, k := range domain.ActionKinds {
		if k == domain.ActionAuthorization {
			continue
		}
		h, ok := reg.Lookup(protocol.HandlerName(domain.ProtocolREST, k))
		require.True(t, ok, k)
		require.True(t, protocol.Satisfies(h, k), k)
	}
	for _, k := range domain.SubActionKinds {
		h, ok := reg.Lookup(protocol.HandlerName(domain.ProtocolREST, k))
		require.True(t, ok, k)
		require.True(t, protocol.SatisfiesSub(h, k), k)
	}
}

func TestInitiatePayment(t *testing.T) {
	var got PaymentInitiationRequest
	call := newBank(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/psd2/v1/payments/instant-sepa-credit-transfers", r.URL.Path)
		assert.Equal(t, "psu-1", r.Header.Get(HeaderPSUID))
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		assert.Equal(t, "https://gw.example/v1/redirect/abc/ok", r.Header.Get(HeaderRedirectURI))
		assert.Equal(t, "https://gw.example/v1/redirect/abc/nok", r.Header.Get(HeaderNokRedirectURI))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(PaymentInitiationResponse{
			TransactionStatus: "RCVD",
			PaymentID:         "pay-42",
			Links:             Links{ScaRedirect: &Href{Href: "https://bank.example/sca/pay-42"}},
		})
	})
	call.RedirectOK = "https://gw.example/v1/redirect/abc/ok"
	call.RedirectNOK = "https://gw.example/v1/redirect/abc/nok"

	res, err := paymentInitiator{NewClient(time.Second)}.InitiatePayment(context.Background(), call, protocol.PaymentRequest{
		Product:         "sepa-credit-transfers",
		DebtorAccount:   protocol.AccountReference{IBAN: "DE02120300000000202051"},
		CreditorAccount: protocol.AccountReference{IBAN: "DE89370400440532013000"},
		CreditorName:    "Bob",
		Amount:          protocol.Amount{Currency: "EUR", Value: "10.00"},
		Instant:         true,
	})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeAcceptedPending, res.Outcome)
	require.Equal(t, "pay-42", res.ProtocolSessionID)
	require.Equal(t, "https://bank.example/sca/pay-42", res.ScaRedirect)
	require.Equal(t, "10.00", got.InstructedAmount.Amount)
	require.Equal(t, "Bob", got.CreditorName)
}

func TestInitiatePaymentWithoutRedirectIsFinal(t *testing.T) {
	call := newBank(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(PaymentInitiationResponse{TransactionStatus: "ACSC", PaymentID: "pay-1"})
	})

	res, err := paymentInitiator{NewClient(time.Second)}.InitiatePayment(context.Background(), call, protocol.PaymentRequest{Product: "sepa-credit-transfers"})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeFinal, res.Outcome)
	require.Equal(t, "ACSC", res.Status)
}

func TestBankErrors(t *testing.T) {
	call := newBank(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(ErrorResponse{TppMessages: []TppMessage{{Category: "ERROR", Code: "FORMAT_ERROR", Text: "bad iban"}}})
	})

	_, err := paymentStatusGetter{NewClient(time.Second)}.GetPaymentStatus(context.Background(), call, "sepa-credit-transfers", "pay-1")
	require.ErrorIs(t, err, protocol.ErrBankRejected)

	var bankErr *BankError
	require.True(t, errors.As(err, &bankErr))
	require.Equal(t, http.StatusBadRequest, bankErr.Status)
	require.Equal(t, "FORMAT_ERROR", bankErr.Messages[0].Code)
}

func TestListAccountsRequestsConsent(t *testing.T) {
	call := newBank(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/psd2/v1/consents":
			var req ConsentRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "allAccounts", req.Access.AllPsd2)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(ConsentResponse{
				ConsentStatus: "received",
				ConsentID:     "consent-7",
				Links:         Links{ScaRedirect: &Href{Href: "https://bank.example/sca/consent-7"}},
			})
		case "/psd2/v1/accounts":
			assert.Equal(t, "consent-7", r.Header.Get(HeaderConsentID))
			_ = json.NewEncoder(w).Encode(AccountListResponse{Accounts: []AccountDetails{{ResourceID: "acc-1", IBAN: "DE89370400440532013000", Currency: "EUR"}}})
		default:
			http.NotFound(w, r)
		}
	})
	call.ConsentRequired = true
	h := accountLister{NewClient(time.Second)}

	list, err := h.ListAccounts(context.Background(), call)
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeAcceptedPending, list.Outcome)
	require.Equal(t, "consent-7", list.ProtocolSessionID)
	require.Empty(t, list.Accounts)

	call.ConsentID = "consent-7"
	list, err = h.ListAccounts(context.Background(), call)
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeFinal, list.Outcome)
	require.Len(t, list.Accounts, 1)
}

func TestAuthorisationSubActions(t *testing.T) {
	var methods []string
	call := newBank(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/psd2/v1/payments/sepa-credit-transfers/pay-1/authorisation", r.URL.Path)
		methods = append(methods, r.Method)
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(ScaStatusResponse{ScaStatus: "started"})
		case http.MethodPut:
			var in UpdateAuthorisationRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "123456", in.ScaAuthenticationData)
			_ = json.NewEncoder(w).Encode(ScaStatusResponse{ScaStatus: "finalised"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()
	c := NewClient(time.Second)
	ref := protocol.AuthorizationRef{Type: domain.ConsentPIS, Product: "sepa-credit-transfers", ProtocolSessionID: "pay-1"}

	st, err := authorizationStateGetter{c}.GetAuthorizationState(ctx, call, ref)
	require.NoError(t, err)
	require.Equal(t, protocol.ScaStarted, st.ScaStatus)

	st, err = authorizationUpdater{c}.UpdateAuthorization(ctx, call, ref, protocol.ScaInput{TAN: "123456"})
	require.NoError(t, err)
	require.True(t, st.ScaStatus.Succeeded())

	st, err = redirectHandler{c}.FromRedirect(ctx, call, ref, protocol.RedirectNOK)
	require.NoError(t, err)
	require.Equal(t, protocol.ScaFailed, st.ScaStatus)

	require.NoError(t, authorizationDenier{c}.DenyAuthorization(ctx, call, ref))
	require.Equal(t, []string{http.MethodGet, http.MethodPut, http.MethodGet, http.MethodDelete}, methods)
}

func TestConsentAuthorisationPath(t *testing.T) {
	ref := protocol.AuthorizationRef{Type: domain.ConsentAIS, ProtocolSessionID: "consent-1"}
	require.Equal(t, "v1/consents/consent-1/authorisation", authorisationPath(ref))
}

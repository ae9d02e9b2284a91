package http

import (
	"net/http"

	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
)

// AccountsHandler serves account information. Both endpoints answer 202
// with a redirect when the bank first needs the user's consent.
type AccountsHandler struct {
	Sessions *service.SessionService
	Accounts *service.AccountService
}

func consentURLs(r *http.Request) service.ConsentURLs {
	q := r.URL.Query()
	return service.ConsentURLs{OkURL: q.Get("ok_url"), NokURL: q.Get("nok_url")}
}

func writeConsentRedirect(w http.ResponseWriter, redirect service.Redirect) {
	w.Header().Set("Location", redirect.Location)
	httpx.WriteJSON(w, http.StatusAccepted, toRedirect(redirect))
}

// HandleListAccounts handles GET /v1/banks/{bankID}/accounts
//
//	@Summary		List Accounts
//	@Description	Lists the user's accounts at the bank. Without a consent the answer is a 202 redirect to the
//	@Description	bank's consent page, which returns the browser to ok_url or nok_url.
//	@Tags			Accounts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bankID	path		string							true	"Bank id"
//	@Param			ok_url	query		string							false	"Where to send the browser once consent is given"
//	@Param			nok_url	query		string							false	"Where to send the browser if consent fails"
//	@Success		200		{object}	gatewaysdk.AccountListResponse	"accounts"
//	@Success		202		{object}	gatewaysdk.RedirectResponse		"consent redirect"
//	@Failure		400		{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Failure		502		{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Router			/v1/banks/{bankID}/accounts [get].
func (h *AccountsHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Sessions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.Accounts.ListAccounts(r.Context(), sess, r.PathValue("bankID"), consentURLs(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.Redirect != nil {
		writeConsentRedirect(w, *res.Redirect)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.AccountListResponse{Accounts: toAccounts(res.Accounts)})
}

// HandleListTransactions handles GET /v1/banks/{bankID}/accounts/{accountID}/transactions
//
//	@Summary		List Transactions
//	@Description	Lists booked transactions of an account. Consent works as for List Accounts.
//	@Tags			Accounts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bankID		path		string								true	"Bank id"
//	@Param			accountID	path		string								true	"Account id"
//	@Param			ok_url		query		string								false	"Where to send the browser once consent is given"
//	@Param			nok_url		query		string								false	"Where to send the browser if consent fails"
//	@Success		200			{object}	gatewaysdk.TransactionListResponse	"transactions"
//	@Success		202			{object}	gatewaysdk.RedirectResponse			"consent redirect"
//	@Failure		400			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		401			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		404			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Router			/v1/banks/{bankID}/accounts/{accountID}/transactions [get].
func (h *AccountsHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Sessions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.Accounts.ListTransactions(r.Context(), sess, r.PathValue("bankID"), r.PathValue("accountID"), consentURLs(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.Redirect != nil {
		writeConsentRedirect(w, *res.Redirect)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.TransactionListResponse{Transactions: toTransactions(res.Transactions)})
}

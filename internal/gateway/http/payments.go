package http

import (
	"net/http"

	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// PaymentsHandler serves payment initiation, the status list and payment
// details.
type PaymentsHandler struct {
	Sessions *service.SessionService
	Payments *service.PaymentService
	Status   *service.StatusService
}

// HandleInitiate handles POST /v1/banks/{bankID}/accounts/{accountID}/payments
//
//	@Summary		Initiate Payment
//	@Description	Sends a single payment to the bank. The bank always asks for SCA, so the answer is a redirect
//	@Description	to the bank's authorization page. The browser comes back to ok_url or nok_url when it is done.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bankID		path		string								true	"Bank id"
//	@Param			accountID	path		string								true	"Debtor account id"
//	@Param			request		body		gatewaysdk.PaymentInitiationRequest	true	"Payment"
//	@Success		202			{object}	gatewaysdk.RedirectResponse			"SCA redirect"
//	@Header			202			{string}	Location							"Bank SCA page"
//	@Failure		400			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		401			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		404			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		500			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Router			/v1/banks/{bankID}/accounts/{accountID}/payments [post].
func (h *PaymentsHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := currentSession(r, h.Sessions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req gatewaysdk.PaymentInitiationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		gatewaysdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	redirect, err := h.Payments.Initiate(ctx, sess, service.InitiateRequest{
		BankID:                 r.PathValue("bankID"),
		AccountID:              r.PathValue("accountID"),
		CreditorIBAN:           req.CreditorIBAN,
		CreditorName:           req.CreditorName,
		DebtorIBAN:             req.DebtorIBAN,
		Amount:                 req.Amount,
		Currency:               req.Currency,
		Remittance:             req.Remittance,
		Instant:                req.Instant,
		OkURL:                  req.OkURL,
		NokURL:                 req.NokURL,
		AuthenticationRequired: req.AuthenticationRequired,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("payment awaiting authorization",
		"bank_id", r.PathValue("bankID"),
		"payment_id", redirect.ResourceID,
	)
	w.Header().Set("Location", redirect.Location)
	httpx.WriteJSON(w, http.StatusAccepted, toRedirect(redirect))
}

// HandleList handles GET /v1/banks/{bankID}/accounts/{accountID}/payments
//
//	@Summary		List Payment Statuses
//	@Description	Returns the bank status of every confirmed payment from the account, oldest first.
//	@Description	A payment whose status could not be fetched is listed with status "unavailable" and an error.
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bankID		path		string							true	"Bank id"
//	@Param			accountID	path		string							true	"Debtor account id"
//	@Success		200			{object}	gatewaysdk.PaymentListResponse	"payments"
//	@Failure		401			{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Failure		404			{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Failure		500			{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Router			/v1/banks/{bankID}/accounts/{accountID}/payments [get].
func (h *PaymentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Sessions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	statuses, err := h.Status.List(r.Context(), sess, r.PathValue("bankID"), r.PathValue("accountID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := gatewaysdk.PaymentListResponse{Payments: make([]gatewaysdk.PaymentStatus, 0, len(statuses))}
	for _, s := range statuses {
		out.Payments = append(out.Payments, gatewaysdk.PaymentStatus{
			Payment: toPayment(s.Payment),
			Status:  s.Status,
			Error:   s.Error,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /v1/banks/{bankID}/payments/{paymentID}
//
//	@Summary		Get Payment
//	@Description	Returns the local payment record merged with the bank's view of it.
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bankID		path		string									true	"Bank id"
//	@Param			paymentID	path		string									true	"Payment id"
//	@Success		200			{object}	gatewaysdk.PaymentInformationResponse	"payment"
//	@Failure		401			{object}	gatewaysdk.ErrorResponse				"error, error_description"
//	@Failure		404			{object}	gatewaysdk.ErrorResponse				"error, error_description"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse				"error, error_description"
//	@Router			/v1/banks/{bankID}/payments/{paymentID} [get].
func (h *PaymentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Sessions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	details, err := h.Payments.Information(r.Context(), sess, r.PathValue("bankID"), r.PathValue("paymentID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.PaymentInformationResponse{
		Payment:           toPayment(details.Payment),
		TransactionStatus: details.Bank.TransactionStatus,
		BankCreditorName:  details.Bank.CreditorName,
		BankAmount:        details.Bank.Amount.Value,
		BankCurrency:      details.Bank.Amount.Currency,
	})
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
)

// AuthorizationHandler exposes the SCA steps that do not involve a browser
// redirect.
type AuthorizationHandler struct {
	Sessions      *service.SessionService
	Authorization *service.AuthorizationService
}

// HandleGet handles GET /v1/banks/{bankID}/payments/{paymentID}/authorization
//
//	@Summary		Get Authorization State
//	@Description	Returns the payment's authorization state. Pending payments are checked with the bank.
//	@Tags			Authorization
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bankID		path		string								true	"Bank id"
//	@Param			paymentID	path		string								true	"Payment id"
//	@Success		200			{object}	gatewaysdk.AuthorizationResponse	"state"
//	@Failure		401			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		404			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Router			/v1/banks/{bankID}/payments/{paymentID}/authorization [get].
func (h *AuthorizationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Sessions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	a, err := h.Authorization.State(r.Context(), sess, r.PathValue("bankID"), r.PathValue("paymentID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAuthorization(a))
}

// HandleUpdate handles PUT /v1/banks/{bankID}/payments/{paymentID}/authorization
//
//	@Summary		Update Authorization
//	@Description	Sends an SCA step to the bank: a method selection or a TAN.
//	@Tags			Authorization
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bankID		path		string									true	"Bank id"
//	@Param			paymentID	path		string									true	"Payment id"
//	@Param			request		body		gatewaysdk.UpdateAuthorizationRequest	true	"SCA input"
//	@Success		200			{object}	gatewaysdk.AuthorizationResponse		"state"
//	@Failure		400			{object}	gatewaysdk.ErrorResponse				"error, error_description"
//	@Failure		401			{object}	gatewaysdk.ErrorResponse				"error, error_description"
//	@Failure		404			{object}	gatewaysdk.ErrorResponse				"error, error_description"
//	@Failure		409			{object}	gatewaysdk.ErrorResponse				"error, error_description"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse				"error, error_description"
//	@Router			/v1/banks/{bankID}/payments/{paymentID}/authorization [put].
func (h *AuthorizationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Sessions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req gatewaysdk.UpdateAuthorizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		gatewaysdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.MethodID == "" && req.TAN == "" {
		gatewaysdk.ErrInvalidRequest.WithDescription("method_id or tan is required").WriteError(w)
		return
	}

	a, err := h.Authorization.Update(r.Context(), sess, r.PathValue("bankID"), r.PathValue("paymentID"), protocol.ScaInput{
		MethodID: req.MethodID,
		TAN:      req.TAN,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAuthorization(a))
}

// HandleDeny handles DELETE /v1/banks/{bankID}/payments/{paymentID}/authorization
//
//	@Summary		Deny Authorization
//	@Description	Cancels a pending authorization at the bank and marks the payment denied.
//	@Tags			Authorization
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bankID		path		string								true	"Bank id"
//	@Param			paymentID	path		string								true	"Payment id"
//	@Success		200			{object}	gatewaysdk.AuthorizationResponse	"state"
//	@Failure		401			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		404			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		409			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse			"error, error_description"
//	@Router			/v1/banks/{bankID}/payments/{paymentID}/authorization [delete].
func (h *AuthorizationHandler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Sessions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	a, err := h.Authorization.Deny(r.Context(), sess, r.PathValue("bankID"), r.PathValue("paymentID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAuthorization(a))
}

package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// CallbackHandler receives the browser back from the bank's SCA page.
type CallbackHandler struct {
	Authorization *service.AuthorizationService
}

// ServeHTTP godoc
//
//	@Summary		Bank Redirect Callback
//	@Description	The bank returns the browser here after SCA. The gateway settles the payment or consent and
//	@Description	redirects to the caller's ok or nok URL. Each link works once and expires.
//	@Tags			Authorization
//	@Param			code	path	string	true	"Correlation code"
//	@Param			outcome	path	string	true	"Bank outcome"	Enums(ok, nok)
//	@Success		303		"Redirect to the caller's ok or nok URL"
//	@Header			303		{string}	Location					"Caller URL"
//	@Failure		400		{object}	gatewaysdk.ErrorResponse	"error, error_description"
//	@Failure		410		{object}	gatewaysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/redirect/{code}/{outcome} [get].
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	outcome := protocol.RedirectOutcome(r.PathValue("outcome"))
	res, err := h.Authorization.FromRedirect(ctx, r.PathValue("code"), outcome)
	switch {
	case err == nil:
		log.Info("authorization settled",
			"resource_id", res.ResourceID,
			"state", string(res.State),
		)
	case errors.Is(err, service.ErrCorrelationNotFound):
		gatewaysdk.ErrCorrelationGone.WriteError(w)
		return
	case res.Location != "":
		// The code is spent; the caller learns the outcome from its nok page.
		log.Warn("authorization callback failed", "error", err)
	default:
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, res.Location, http.StatusSeeOther)
}

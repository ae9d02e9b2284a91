package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// writeServiceError maps a service error onto its API error. Anything not
// recognised is logged and hidden behind server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apiError(err)
	if apiErr == gatewaysdk.ErrServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	} else {
		slogx.FromContext(r.Context()).Debug("request rejected", "error", err, "code", apiErr.Code)
	}
	apiErr.WriteError(w)
}

func apiError(err error) *gatewaysdk.APIError {
	switch {
	case errors.Is(err, service.ErrCorrelationNotFound):
		return gatewaysdk.ErrNotFound.WithDescription("authorization link not found")
	case errors.Is(err, service.ErrInvalidRequest):
		return gatewaysdk.ErrInvalidRequest.WithDescription(strings.TrimPrefix(err.Error(), service.ErrInvalidRequest.Error()+": "))
	case errors.Is(err, service.ErrInvalidCredentials):
		return gatewaysdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrSessionExpired):
		return gatewaysdk.ErrSessionExpired
	case errors.Is(err, service.ErrNotFound), errors.Is(err, catalog.ErrUnknownBank):
		return gatewaysdk.ErrNotFound
	case errors.Is(err, service.ErrInvalidStateTransition):
		return gatewaysdk.ErrInvalidStateTransition
	case errors.Is(err, catalog.ErrUnsupportedAction):
		return gatewaysdk.ErrUnsupportedAction
	case errors.Is(err, catalog.ErrUnsupportedSubAction):
		return gatewaysdk.ErrUnsupportedSubAction
	case errors.Is(err, service.ErrUnexpectedProtocolResponse):
		return gatewaysdk.ErrUnexpectedProtocolResponse
	default:
		return gatewaysdk.ErrServerError
	}
}

package gatewaysdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/bankgate/pkg/httpx"
)

// Gateway error codes.
const (
	ErrorCodeInvalidRequest             = "invalid_request"
	ErrorCodeInvalidCredentials         = "invalid_credentials"
	ErrorCodeInvalidToken               = "invalid_token"
	ErrorCodeSessionExpired             = "session_expired"
	ErrorCodeNotFound                   = "not_found"
	ErrorCodeCorrelationNotFound        = "correlation_not_found"
	ErrorCodeInvalidStateTransition     = "invalid_state_transition"
	ErrorCodeUnsupportedAction          = "unsupported_action"
	ErrorCodeUnsupportedSubAction       = "unsupported_sub_action"
	ErrorCodeUnexpectedProtocolResponse = "unexpected_protocol_response"
	ErrorCodeRateLimited                = "rate_limit_exceeded"
	ErrorCodeServerError                = "server_error"
)

// APIError is a gateway error response. Handlers write it; the client
// returns it for every non-2xx answer.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as the response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy of e with a more specific description.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidFormBody = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid form body",
	}

	ErrInvalidJSONBody = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid JSON body",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid username or password",
	}

	ErrSessionExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeSessionExpired,
		Description: "the session has ended, log in again",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	// ErrCorrelationGone is the bank callback answer for an unknown,
	// consumed or expired code.
	ErrCorrelationGone = &APIError{
		StatusCode:  http.StatusGone,
		Code:        ErrorCodeCorrelationNotFound,
		Description: "this authorization link has expired or was already used",
	}

	ErrInvalidStateTransition = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeInvalidStateTransition,
		Description: "the authorization is already complete",
	}

	ErrUnsupportedAction = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeUnsupportedAction,
		Description: "the bank does not support this action",
	}

	ErrUnsupportedSubAction = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeUnsupportedSubAction,
		Description: "the bank does not support this authorization step",
	}

	ErrUnexpectedProtocolResponse = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        ErrorCodeUnexpectedProtocolResponse,
		Description: "the bank returned an unexpected response",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates an error with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("unexpected status %d", resp.StatusCode),
	}
}

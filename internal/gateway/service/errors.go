package service

import "errors"

var (
	// ErrUnexpectedProtocolResponse is returned when a bank answers an
	// action with an outcome the gateway cannot continue from.
	ErrUnexpectedProtocolResponse = errors.New("unexpected_protocol_response")

	// ErrCorrelationNotFound covers unknown, consumed and expired codes alike.
	ErrCorrelationNotFound = errors.New("correlation_not_found")

	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	ErrInvalidRequest         = errors.New("invalid_request")
	ErrNotFound               = errors.New("not_found")
	ErrInvalidCredentials     = errors.New("invalid_credentials")
	ErrSessionExpired         = errors.New("session_expired")
)

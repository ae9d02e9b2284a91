package domain

// AuthorizationState is the SCA lifecycle of a payment or consent.
type AuthorizationState string

const (
	StatePending     AuthorizationState = "PENDING"
	StateAuthorizing AuthorizationState = "AUTHORIZING"
	StateConfirmed   AuthorizationState = "CONFIRMED"
	StateDenied      AuthorizationState = "DENIED"
	StateExpired     AuthorizationState = "EXPIRED"
)

// Terminal reports whether no transition leaves s.
func (s AuthorizationState) Terminal() bool {
	switch s {
	case StateConfirmed, StateDenied, StateExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> to is a legal step.
// AUTHORIZING -> AUTHORIZING is allowed for multi-step SCA.
func (s AuthorizationState) CanTransitionTo(to AuthorizationState) bool {
	switch s {
	case StatePending:
		return to == StateAuthorizing || to.Terminal()
	case StateAuthorizing:
		return to == StateAuthorizing || to.Terminal()
	default:
		return false
	}
}

// ActiveStates are the states the expiry sweep may move to EXPIRED.
var ActiveStates = []AuthorizationState{StatePending, StateAuthorizing}

package domain

// ProtocolFamily names the wire protocol a bank speaks.
type ProtocolFamily string

const (
	ProtocolREST    ProtocolFamily = "rest"
	ProtocolMessage ProtocolFamily = "message"
)

func (p ProtocolFamily) Valid() bool {
	return p == ProtocolREST || p == ProtocolMessage
}

// Bank is catalog reference data.
type Bank struct {
	ID       string
	Name     string
	Protocol ProtocolFamily
	Endpoint string // base URL for rest, host:port for message
}

// ActionKind is a protocol-agnostic logical action.
type ActionKind string

const (
	ActionListAccounts          ActionKind = "LIST_ACCOUNTS"
	ActionListTransactions      ActionKind = "LIST_TRANSACTIONS"
	ActionAuthorization         ActionKind = "AUTHORIZATION"
	ActionSinglePayment         ActionKind = "SINGLE_PAYMENT"
	ActionGetPaymentInformation ActionKind = "GET_PAYMENT_INFORMATION"
	ActionGetPaymentStatus      ActionKind = "GET_PAYMENT_STATUS"
)

// ActionKinds lists every action kind in catalog order.
var ActionKinds = []ActionKind{
	ActionListAccounts,
	ActionListTransactions,
	ActionAuthorization,
	ActionSinglePayment,
	ActionGetPaymentInformation,
	ActionGetPaymentStatus,
}

// SubActionKind is a step of the AUTHORIZATION action.
type SubActionKind string

const (
	SubActionGetAuthorizationState SubActionKind = "GET_AUTHORIZATION_STATE"
	SubActionUpdateAuthorization   SubActionKind = "UPDATE_AUTHORIZATION"
	SubActionFromASPSPRedirect     SubActionKind = "FROM_ASPSP_REDIRECT"
	SubActionDenyAuthorization     SubActionKind = "DENY_AUTHORIZATION"
)

// SubActionKinds lists the sub-actions every AUTHORIZATION action must define.
var SubActionKinds = []SubActionKind{
	SubActionGetAuthorizationState,
	SubActionUpdateAuthorization,
	SubActionFromASPSPRedirect,
	SubActionDenyAuthorization,
}

// BankAction is a catalog row. Handler is empty for AUTHORIZATION.
type BankAction struct {
	ID              int64
	BankID          string
	Kind            ActionKind
	Handler         string
	ConsentRequired bool
	SubActions      []BankSubAction
}

// BankSubAction is a catalog row under an AUTHORIZATION action.
type BankSubAction struct {
	ID       int64
	ActionID int64
	Kind     SubActionKind
	Handler  string
}

// Package protocol defines the contract between the gateway core and the
// per-protocol bank adapters. Adapters implement one capability interface
// per logical action; the catalog binds each bank action to one of them.
package protocol

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/google/uuid"
)

// ErrBankRejected is wrapped by adapters when the bank answered but refused
// the request. Transport failures are returned unwrapped.
var ErrBankRejected = errors.New("protocol: bank rejected request")

// Credentials identify the session's user to the bank.
type Credentials struct {
	PSUID  string
	Secret string
}

// Call carries what every outbound bank request needs.
type Call struct {
	Bank        domain.Bank
	RequestID   uuid.UUID
	Credentials Credentials

	ConsentRequired        bool
	ConsentID              string // confirmed AIS consent, if any
	AuthenticationRequired bool

	// Gateway callback URLs the bank SCA UI returns the browser to.
	RedirectOK  string
	RedirectNOK string
}

// NewCall builds a Call with a fresh request id.
func NewCall(bank domain.Bank, creds Credentials) Call {
	return Call{Bank: bank, RequestID: uuid.New(), Credentials: creds}
}

// Outcome classifies a bank response.
type Outcome int

const (
	// OutcomeFinal: the bank completed the request without further SCA.
	OutcomeFinal Outcome = iota
	// OutcomeAcceptedPending: the bank accepted the request and requires SCA.
	OutcomeAcceptedPending
)

func (o Outcome) String() string {
	if o == OutcomeAcceptedPending {
		return "accepted-pending"
	}
	return "final"
}

// Result is returned by actions that may require SCA.
type Result struct {
	Outcome           Outcome
	ScaRedirect       string
	ProtocolSessionID string
	Status            string // bank transaction or consent status, if reported
}

type AccountReference struct {
	IBAN     string `json:"iban"`
	Currency string `json:"currency,omitempty"`
}

type Amount struct {
	Currency string `json:"currency"`
	Value    string `json:"amount"`
}

// PaymentRequest is the protocol-neutral single payment.
type PaymentRequest struct {
	Product               string
	DebtorAccount         AccountReference
	CreditorAccount       AccountReference
	CreditorName          string
	Amount                Amount
	RemittanceInformation string
	Instant               bool
}

// PaymentStatus is a bank-reported payment status using ISO 20022 codes
// (ACSC, ACCP, PDNG, RJCT, CANC...).
type PaymentStatus struct {
	TransactionStatus string
}

// PaymentInformation is the bank's view of a payment.
type PaymentInformation struct {
	TransactionStatus     string
	CreditorIBAN          string
	CreditorName          string
	DebtorIBAN            string
	Amount                Amount
	RemittanceInformation string
}

type Account struct {
	ResourceID string `json:"resource_id"`
	IBAN       string `json:"iban"`
	Currency   string `json:"currency"`
	Name       string `json:"name,omitempty"`
}

type Transaction struct {
	TransactionID string `json:"transaction_id"`
	BookingDate   string `json:"booking_date"`
	Amount        Amount `json:"amount"`
	Counterparty  string `json:"counterparty,omitempty"`
	Remittance    string `json:"remittance,omitempty"`
}

// AccountList is returned by LIST_ACCOUNTS. When consent is still needed,
// Result.Outcome is OutcomeAcceptedPending and Accounts is empty.
type AccountList struct {
	Result
	Accounts []Account
}

type TransactionList struct {
	Result
	Transactions []Transaction
}

// AuthorizationRef names the bank resource an SCA belongs to.
type AuthorizationRef struct {
	Type              domain.ConsentType
	Product           string
	ProtocolSessionID string
}

// ScaStatus follows the Berlin Group SCA status vocabulary.
type ScaStatus string

const (
	ScaReceived       ScaStatus = "received"
	ScaStarted        ScaStatus = "started"
	ScaMethodSelected ScaStatus = "scaMethodSelected"
	ScaFinalised      ScaStatus = "finalised"
	ScaFailed         ScaStatus = "failed"
	ScaExempted       ScaStatus = "exempted"
)

// Succeeded reports whether the SCA completed successfully.
func (s ScaStatus) Succeeded() bool {
	return s == ScaFinalised || s == ScaExempted
}

// AuthorizationStatus is the bank's answer to an SCA query or step.
type AuthorizationStatus struct {
	ScaStatus   ScaStatus
	ScaRedirect string // next step, if the bank wants the browser back
}

// ScaInput is caller-supplied data for an UPDATE_AUTHORIZATION step.
type ScaInput struct {
	MethodID string
	TAN      string
}

// RedirectOutcome is which gateway callback URL the bank sent the browser to.
type RedirectOutcome string

const (
	RedirectOK  RedirectOutcome = "ok"
	RedirectNOK RedirectOutcome = "nok"
)

// Handler is implemented by every adapter action.
type Handler interface {
	Name() string
	Protocol() domain.ProtocolFamily
}

type PaymentInitiator interface {
	Handler
	InitiatePayment(ctx context.Context, call Call, req PaymentRequest) (Result, error)
}

type PaymentStatusGetter interface {
	Handler
	GetPaymentStatus(ctx context.Context, call Call, product, protocolSessionID string) (PaymentStatus, error)
}

type PaymentInformationGetter interface {
	Handler
	GetPaymentInformation(ctx context.Context, call Call, product, protocolSessionID string) (PaymentInformation, error)
}

type AccountLister interface {
	Handler
	ListAccounts(ctx context.Context, call Call) (AccountList, error)
}

type TransactionLister interface {
	Handler
	ListTransactions(ctx context.Context, call Call, accountID string) (TransactionList, error)
}

type AuthorizationStateGetter interface {
	Handler
	GetAuthorizationState(ctx context.Context, call Call, ref AuthorizationRef) (AuthorizationStatus, error)
}

type AuthorizationUpdater interface {
	Handler
	UpdateAuthorization(ctx context.Context, call Call, ref AuthorizationRef, in ScaInput) (AuthorizationStatus, error)
}

type RedirectHandler interface {
	Handler
	FromRedirect(ctx context.Context, call Call, ref AuthorizationRef, outcome RedirectOutcome) (AuthorizationStatus, error)
}

type AuthorizationDenier interface {
	Handler
	DenyAuthorization(ctx context.Context, call Call, ref AuthorizationRef) error
}

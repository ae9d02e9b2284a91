package gatewaysdk

import "time"

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Catalog  string `json:"catalog"`
}

// ============================================================================
// Sessions
// ============================================================================

// LoginResponse is returned by POST /v1/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	SessionID   string `json:"session_id"`
}

// ============================================================================
// Catalog
// ============================================================================

type Bank struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Protocol string   `json:"protocol"`
	Actions  []string `json:"actions"`
}

type BankListResponse struct {
	Banks []Bank `json:"banks"`
}

// ============================================================================
// Payments
// ============================================================================

// PaymentInitiationRequest is the body of a payment initiation.
type PaymentInitiationRequest struct {
	CreditorIBAN string `json:"creditor_iban"`
	CreditorName string `json:"creditor_name,omitempty"`
	DebtorIBAN   string `json:"debtor_iban"`
	Amount       string `json:"amount" example:"10.00"`
	Currency     string `json:"currency,omitempty" example:"EUR"`
	Remittance   string `json:"remittance,omitempty"`
	Instant      bool   `json:"instant,omitempty"`

	// Where the browser lands after SCA. Relative paths or allowed origins.
	OkURL  string `json:"ok_url" example:"/payments/done"`
	NokURL string `json:"nok_url" example:"/payments/failed"`

	AuthenticationRequired bool `json:"authentication_required,omitempty"`
}

// RedirectResponse accompanies a 202: the browser must visit Location.
type RedirectResponse struct {
	Location   string `json:"location"`
	ResourceID string `json:"resource_id"`
}

type Payment struct {
	ID           string    `json:"id"`
	BankID       string    `json:"bank_id"`
	AccountID    string    `json:"account_id"`
	State        string    `json:"state"`
	Confirmed    bool      `json:"confirmed"`
	CreditorIBAN string    `json:"creditor_iban"`
	CreditorName string    `json:"creditor_name,omitempty"`
	DebtorIBAN   string    `json:"debtor_iban"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	Remittance   string    `json:"remittance,omitempty"`
	Instant      bool      `json:"instant"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaymentStatus is one row of the payment status list. Status is the bank's
// ISO 20022 transaction status, or "unavailable" with Error set.
type PaymentStatus struct {
	Payment
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type PaymentListResponse struct {
	Payments []PaymentStatus `json:"payments"`
}

// PaymentInformationResponse merges the local record with the bank's view.
type PaymentInformationResponse struct {
	Payment
	TransactionStatus string `json:"transaction_status"`
	BankCreditorName  string `json:"bank_creditor_name,omitempty"`
	BankAmount        string `json:"bank_amount,omitempty"`
	BankCurrency      string `json:"bank_currency,omitempty"`
}

// ============================================================================
// Authorization
// ============================================================================

type AuthorizationResponse struct {
	PaymentID   string `json:"payment_id"`
	State       string `json:"state"`
	ScaStatus   string `json:"sca_status,omitempty"`
	ScaRedirect string `json:"sca_redirect,omitempty"`
}

// UpdateAuthorizationRequest carries one embedded SCA step.
type UpdateAuthorizationRequest struct {
	MethodID string `json:"method_id,omitempty"`
	TAN      string `json:"tan,omitempty"`
}

// ============================================================================
// Accounts
// ============================================================================

type Account struct {
	ResourceID string `json:"resource_id"`
	IBAN       string `json:"iban"`
	Currency   string `json:"currency"`
	Name       string `json:"name,omitempty"`
}

type AccountListResponse struct {
	Accounts []Account `json:"accounts"`
}

type Transaction struct {
	TransactionID string `json:"transaction_id"`
	BookingDate   string `json:"booking_date"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Counterparty  string `json:"counterparty,omitempty"`
	Remittance    string `json:"remittance,omitempty"`
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
}

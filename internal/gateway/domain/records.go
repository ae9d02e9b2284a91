package domain

import "time"

// ConsentType distinguishes what an authorization grants.
type ConsentType string

const (
	ConsentPIS ConsentType = "PIS" // payment initiation
	ConsentAIS ConsentType = "AIS" // account information
)

type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2id PHC
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a logged-in user and the identity it presents to banks.
type Session struct {
	ID             string
	UserID         string
	ProtocolUserID string
	ProtocolSecret string // plaintext in memory, sealed at rest
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Payment struct {
	ID                string
	SessionID         string
	BankID            string
	AccountID         string
	CorrelationRef    string // fingerprint of the correlation code
	ProtocolSessionID string
	State             AuthorizationState
	Confirmed         bool

	CreditorIBAN string
	CreditorName string
	DebtorIBAN   string
	Amount       string
	Currency     string
	Remittance   string
	Instant      bool
	Product      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Consent is a bank grant for account information access.
type Consent struct {
	ID                string
	SessionID         string
	BankID            string
	CorrelationRef    string
	ProtocolSessionID string // bank consent id
	State             AuthorizationState
	Confirmed         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RedirectCorrelation ties a browser SCA round trip back to its session.
type RedirectCorrelation struct {
	CodeHash   string
	SessionID  string
	OkURL      string
	NokURL     string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

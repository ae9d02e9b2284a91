package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned by compare-and-set updates whose expected
	// current value no longer holds.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Sub-repositories are methods so a
// Tx-scoped Store exposes the same surface as the root one.
type Store interface {
	Banks() Banks
	Users() Users
	Sessions() Sessions
	Payments() Payments
	Consents() Consents
	Correlations() Correlations

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Banks holds the action catalog rows.
type Banks interface {
	// UpsertBank inserts or replaces a bank's reference data.
	UpsertBank(ctx context.Context, b domain.Bank) error

	GetBank(ctx context.Context, id string) (domain.Bank, error)

	// ListBanks returns all banks ordered by id.
	ListBanks(ctx context.Context) ([]domain.Bank, error)

	// ReplaceActions swaps a bank's actions and sub-actions for the given set.
	ReplaceActions(ctx context.Context, bankID string, actions []domain.BankAction) error

	// ListActions returns every action with its sub-actions, ordered by bank then kind.
	ListActions(ctx context.Context) ([]domain.BankAction, error)
}

type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// IsEmpty reports whether no users exist yet.
	IsEmpty(ctx context.Context) (bool, error)
}

type Sessions interface {
	// CreateSession stores s with its protocol secret already sealed.
	CreateSession(ctx context.Context, s domain.Session) error

	GetSession(ctx context.Context, id string) (domain.Session, error)

	// DeleteSession cascades to payments, consents and correlations.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions removes sessions whose expiry is at or before now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type Payments interface {
	CreatePayment(ctx context.Context, p domain.Payment) error
	GetPayment(ctx context.Context, id string) (domain.Payment, error)

	// GetPaymentByCorrelationRef finds the payment created with a correlation code.
	GetPaymentByCorrelationRef(ctx context.Context, ref string) (domain.Payment, error)

	// GetPaymentByProtocolSessionID finds a payment by the id the bank assigned.
	GetPaymentByProtocolSessionID(ctx context.Context, bankID, protocolSessionID string) (domain.Payment, error)

	// ListConfirmedPayments returns confirmed payments, oldest first.
	ListConfirmedPayments(ctx context.Context, sessionID, bankID, accountID string) ([]domain.Payment, error)

	// TransitionState moves a payment from -> to. It returns ErrConflict when
	// the payment is not in from, and ErrNotFound when it does not exist.
	// Reaching CONFIRMED sets confirmed; nothing ever clears it.
	TransitionState(ctx context.Context, id string, from, to domain.AuthorizationState, at time.Time) error

	// ExpireStale moves active payments to EXPIRED when their correlation
	// expired unconsumed, or was consumed before consumedBefore without the
	// payment settling.
	ExpireStale(ctx context.Context, now, consumedBefore time.Time) (int64, error)
}

type Consents interface {
	CreateConsent(ctx context.Context, c domain.Consent) error
	GetConsent(ctx context.Context, id string) (domain.Consent, error)
	GetConsentByCorrelationRef(ctx context.Context, ref string) (domain.Consent, error)
	GetConsentByProtocolSessionID(ctx context.Context, bankID, protocolSessionID string) (domain.Consent, error)

	// GetConfirmedConsent returns the newest confirmed consent for a session at a bank.
	GetConfirmedConsent(ctx context.Context, sessionID, bankID string) (domain.Consent, error)

	// TransitionState has the same contract as Payments.TransitionState.
	TransitionState(ctx context.Context, id string, from, to domain.AuthorizationState, at time.Time) error

	ExpireStale(ctx context.Context, now, consumedBefore time.Time) (int64, error)
}

type Correlations interface {
	// CreateCorrelation stores a correlation keyed by its code fingerprint.
	CreateCorrelation(ctx context.Context, c domain.RedirectCorrelation) error

	// ConsumeCorrelation atomically marks an unconsumed, unexpired
	// correlation consumed and returns it. Any other case is ErrNotFound.
	ConsumeCorrelation(ctx context.Context, codeHash string, now time.Time) (domain.RedirectCorrelation, error)

	// DeleteExpiredCorrelations removes unconsumed correlations past expiry.
	DeleteExpiredCorrelations(ctx context.Context, now time.Time) (int64, error)

	// DeleteConsumedCorrelations removes correlations consumed before cutoff.
	DeleteConsumedCorrelations(ctx context.Context, cutoff time.Time) (int64, error)
}

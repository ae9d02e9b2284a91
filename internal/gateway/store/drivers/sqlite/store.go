package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite/gen"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection: writers serialize and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, committing when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Banks() store.Banks               { return &banksRepo{q: s.q, db: s.db} }
func (s *Store) Users() store.Users               { return &usersRepo{q: s.q} }
func (s *Store) Sessions() store.Sessions         { return &sessionsRepo{q: s.q} }
func (s *Store) Payments() store.Payments         { return &paymentsRepo{q: s.q} }
func (s *Store) Consents() store.Consents         { return &consentsRepo{q: s.q} }
func (s *Store) Correlations() store.Correlations { return &correlationsRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns unique and primary key violations into ErrAlreadyExists.
func mapConstraint(err error) error {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	return err
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func mapNullMillisPtr(n sql.NullInt64) *time.Time {
	if n.Valid {
		t := fromMillis(n.Int64)
		return &t
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func mapBank(row gen.Bank) domain.Bank {
	return domain.Bank{
		ID:       row.ID,
		Name:     row.Name,
		Protocol: domain.ProtocolFamily(row.Protocol),
		Endpoint: row.Endpoint,
	}
}

func mapUser(row gen.User) domain.User {
	return domain.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    fromMillis(row.CreatedAt),
		UpdatedAt:    fromMillis(row.UpdatedAt),
	}
}

func mapSession(row gen.Session) domain.Session {
	return domain.Session{
		ID:             row.ID,
		UserID:         row.UserID,
		ProtocolUserID: row.ProtocolUserID,
		ProtocolSecret: row.ProtocolSecret,
		CreatedAt:      fromMillis(row.CreatedAt),
		ExpiresAt:      fromMillis(row.ExpiresAt),
	}
}

func mapCorrelation(row gen.RedirectCorrelation) domain.RedirectCorrelation {
	return domain.RedirectCorrelation{
		CodeHash:   row.CodeHash,
		SessionID:  row.SessionID,
		OkURL:      row.OkUrl,
		NokURL:     row.NokUrl,
		CreatedAt:  fromMillis(row.CreatedAt),
		ExpiresAt:  fromMillis(row.ExpiresAt),
		ConsumedAt: mapNullMillisPtr(row.ConsumedAt),
	}
}

func mapPayment(row gen.Payment) domain.Payment {
	return domain.Payment{
		ID:                row.ID,
		SessionID:         row.SessionID,
		BankID:            row.BankID,
		AccountID:         row.AccountID,
		CorrelationRef:    row.CorrelationRef,
		ProtocolSessionID: row.ProtocolSessionID,
		State:             domain.AuthorizationState(row.State),
		Confirmed:         row.Confirmed == 1,
		CreditorIBAN:      row.CreditorIban,
		CreditorName:      row.CreditorName,
		DebtorIBAN:        row.DebtorIban,
		Amount:            row.Amount,
		Currency:          row.Currency,
		Remittance:        row.Remittance,
		Instant:           row.Instant == 1,
		Product:           row.Product,
		CreatedAt:         fromMillis(row.CreatedAt),
		UpdatedAt:         fromMillis(row.UpdatedAt),
	}
}

func mapConsent(row gen.Consent) domain.Consent {
	return domain.Consent{
		ID:                row.ID,
		SessionID:         row.SessionID,
		BankID:            row.BankID,
		CorrelationRef:    row.CorrelationRef,
		ProtocolSessionID: row.ProtocolSessionID,
		State:             domain.AuthorizationState(row.State),
		Confirmed:         row.Confirmed == 1,
		CreatedAt:         fromMillis(row.CreatedAt),
		UpdatedAt:         fromMillis(row.UpdatedAt),
	}
}

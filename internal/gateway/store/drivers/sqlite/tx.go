package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite/gen"
)

type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{
		tx: tx,
		q:  gen.New(tx),
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Banks() store.Banks               { return &banksRepo{q: t.q} }
func (t *txStore) Users() store.Users               { return &usersRepo{q: t.q} }
func (t *txStore) Sessions() store.Sessions         { return &sessionsRepo{q: t.q} }
func (t *txStore) Payments() store.Payments         { return &paymentsRepo{q: t.q} }
func (t *txStore) Consents() store.Consents         { return &consentsRepo{q: t.q} }
func (t *txStore) Correlations() store.Correlations { return &correlationsRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil } // applied before any tx starts

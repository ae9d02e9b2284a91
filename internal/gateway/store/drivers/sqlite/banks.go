package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite/gen"
)

type banksRepo struct {
	q *gen.Queries

	// db is set on the root store so ReplaceActions can open its own tx.
	db *sql.DB
}

func (r *banksRepo) UpsertBank(ctx context.Context, b domain.Bank) error {
	return r.q.UpsertBank(ctx, gen.UpsertBankParams{
		ID:        b.ID,
		Name:      b.Name,
		Protocol:  string(b.Protocol),
		Endpoint:  b.Endpoint,
		UpdatedAt: toMillis(time.Now()),
	})
}

func (r *banksRepo) GetBank(ctx context.Context, id string) (domain.Bank, error) {
	row, err := r.q.GetBank(ctx, id)
	if err != nil {
		return domain.Bank{}, mapNotFound(err)
	}
	return mapBank(row), nil
}

func (r *banksRepo) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	rows, err := r.q.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Bank, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapBank(row))
	}
	return out, nil
}

func (r *banksRepo) ReplaceActions(ctx context.Context, bankID string, actions []domain.BankAction) error {
	if r.db == nil {
		return replaceActions(ctx, r.q, bankID, actions)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceActions(ctx, r.q.WithTx(tx), bankID, actions); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceActions(ctx context.Context, q *gen.Queries, bankID string, actions []domain.BankAction) error {
	if err := q.DeleteBankActions(ctx, bankID); err != nil {
		return err
	}

	for _, a := range actions {
		id, err := q.CreateBankAction(ctx, gen.CreateBankActionParams{
			BankID:          bankID,
			Kind:            string(a.Kind),
			Handler:         a.Handler,
			ConsentRequired: boolToInt(a.ConsentRequired),
		})
		if err != nil {
			return fmt.Errorf("action %s: %w", a.Kind, mapConstraint(err))
		}

		for _, sub := range a.SubActions {
			err := q.CreateBankSubAction(ctx, gen.CreateBankSubActionParams{
				ActionID: id,
				Kind:     string(sub.Kind),
				Handler:  sub.Handler,
			})
			if err != nil {
				return fmt.Errorf("action %s sub-action %s: %w", a.Kind, sub.Kind, mapConstraint(err))
			}
		}
	}
	return nil
}

func (r *banksRepo) ListActions(ctx context.Context) ([]domain.BankAction, error) {
	rows, err := r.q.ListBankActions(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := r.q.ListBankSubActions(ctx)
	if err != nil {
		return nil, err
	}

	byAction := make(map[int64][]domain.BankSubAction, len(rows))
	for _, s := range subs {
		byAction[s.ActionID] = append(byAction[s.ActionID], domain.BankSubAction{
			ID:       s.ID,
			ActionID: s.ActionID,
			Kind:     domain.SubActionKind(s.Kind),
			Handler:  s.Handler,
		})
	}

	out := make([]domain.BankAction, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.BankAction{
			ID:              row.ID,
			BankID:          row.BankID,
			Kind:            domain.ActionKind(row.Kind),
			Handler:         row.Handler,
			ConsentRequired: row.ConsentRequired == 1,
			SubActions:      byAction[row.ID],
		})
	}
	return out, nil
}

package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite/gen"
)

type correlationsRepo struct {
	q *gen.Queries
}

func (r *correlationsRepo) CreateCorrelation(ctx context.Context, c domain.RedirectCorrelation) error {
	err := r.q.CreateCorrelation(ctx, gen.CreateCorrelationParams{
		CodeHash:  c.CodeHash,
		SessionID: c.SessionID,
		OkUrl:     c.OkURL,
		NokUrl:    c.NokURL,
		CreatedAt: toMillis(c.CreatedAt),
		ExpiresAt: toMillis(c.ExpiresAt),
	})
	return mapConstraint(err)
}

// ConsumeCorrelation is a single conditional UPDATE, so of two concurrent
// callers only one gets a row back.
func (r *correlationsRepo) ConsumeCorrelation(ctx context.Context, codeHash string, now time.Time) (domain.RedirectCorrelation, error) {
	row, err := r.q.ConsumeCorrelation(ctx, gen.ConsumeCorrelationParams{
		Now:      toMillis(now),
		CodeHash: codeHash,
	})
	if err != nil {
		return domain.RedirectCorrelation{}, mapNotFound(err)
	}
	return mapCorrelation(row), nil
}

func (r *correlationsRepo) DeleteExpiredCorrelations(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredCorrelations(ctx, toMillis(now))
}

func (r *correlationsRepo) DeleteConsumedCorrelations(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.DeleteConsumedCorrelations(ctx, toMillis(cutoff))
}

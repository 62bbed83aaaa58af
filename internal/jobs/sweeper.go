// Package jobs hosts the background poller that drives reconciliation.
// The exchange core is scheduler-free; this is the external caller that
// re-checks every open transaction on an interval.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/zilix-space/adapix-backend/internal/models"
	repo "github.com/zilix-space/adapix-backend/internal/repository"
	"github.com/zilix-space/adapix-backend/internal/worker"
)

type Reconciler interface {
	Reconcile(ctx context.Context, id string) (models.Transaction, error)
}

type Sweeper struct {
	trx      repo.Transactions
	rec      Reconciler
	pool     *worker.Pool
	interval time.Duration
}

func NewSweeper(trx repo.Transactions, rec Reconciler, pool *worker.Pool, interval time.Duration) *Sweeper {
	return &Sweeper{trx: trx, rec: rec, pool: pool, interval: interval}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep lists open transactions and queues one reconcile per id.
// Reconcile failures are transient by design; they are logged and
// retried on the next tick.
func (s *Sweeper) Sweep(ctx context.Context) {
	pending, err := s.trx.ListPending(ctx)
	if err != nil {
		slog.Warn("sweep list failed", "err", err)
		return
	}
	for _, tx := range pending {
		id := tx.ID
		s.pool.Submit(func() {
			cctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := s.rec.Reconcile(cctx, id); err != nil {
				slog.Warn("sweep reconcile", "tx", id, "err", err)
			}
		})
	}
}

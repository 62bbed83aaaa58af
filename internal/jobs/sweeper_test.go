package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zilix-space/adapix-backend/internal/models"
	"github.com/zilix-space/adapix-backend/internal/worker"
)

type stubTransactions struct {
	pending []models.Transaction
	err     error
}

func (s *stubTransactions) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	return tx, nil
}
func (s *stubTransactions) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return models.Transaction{}, nil
}
func (s *stubTransactions) Update(ctx context.Context, id string, upd models.TransactionUpdate) (models.Transaction, error) {
	return models.Transaction{}, nil
}
func (s *stubTransactions) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	return nil, nil
}
func (s *stubTransactions) ListPending(ctx context.Context) ([]models.Transaction, error) {
	return s.pending, s.err
}

type stubReconciler struct {
	mu  sync.Mutex
	ids []string
}

func (s *stubReconciler) Reconcile(ctx context.Context, id string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return models.Transaction{ID: id}, nil
}

func TestSweepQueuesEveryPendingTransaction(t *testing.T) {
	trx := &stubTransactions{pending: []models.Transaction{
		{ID: "a", Status: models.TxnPendingDeposit},
		{ID: "b", Status: models.TxnPendingExchange},
	}}
	rec := &stubReconciler{}
	pool := worker.NewPool(2)

	s := NewSweeper(trx, rec, pool, time.Minute)
	s.Sweep(context.Background())
	pool.Stop() // drain

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.ids) != 2 {
		t.Fatalf("reconciled %d ids, want 2: %v", len(rec.ids), rec.ids)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	trx := &stubTransactions{}
	pool := worker.NewPool(1)
	defer pool.Stop()

	s := NewSweeper(trx, &stubReconciler{}, pool, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop on cancel")
	}
}

package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/zilix-space/adapix-backend/internal/metrics"
	"github.com/zilix-space/adapix-backend/internal/models"
	"github.com/zilix-space/adapix-backend/internal/providers"
)

// Reconcile re-queries both legs' remote status and advances the stored
// record monotonically. It is idempotent and safe to call on every read
// or poll tick. Gating is asymmetric and deliberate:
//
//	withdraw: the crypto leg drives the walk; the fiat payout is the
//	          final gate into completed
//	deposit:  the fiat charge gates everything; the crypto leg is not
//	          even queried until the user has paid
//
// On a gateway query failure the stored record is returned unchanged
// together with the error; nothing is written, so the next call resumes
// cleanly.
func (s *Service) Reconcile(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if tx.Status.Terminal() {
		// no outbound calls for settled records
		return tx, nil
	}

	var next models.TransactionStatus
	var settledOut float64
	switch tx.Type {
	case models.TxnWithdraw:
		next, err = s.nextWithdrawStatus(ctx, tx)
	case models.TxnDeposit:
		next, settledOut, err = s.nextDepositStatus(ctx, tx)
	default:
		return tx, fmt.Errorf("unknown transaction type %q", tx.Type)
	}
	if err != nil {
		metrics.ReconcileFailures.Inc()
		return tx, fmt.Errorf("%w: %v", ErrReconcileQuery, err)
	}

	return s.advance(ctx, tx, next, settledOut)
}

// nextWithdrawStatus: the crypto swap's canonical status is the record's
// status, except that completed additionally requires the fiat payout to
// have settled — crypto finishing only means the bridge funds reached
// the gateway, not that the user was paid.
func (s *Service) nextWithdrawStatus(ctx context.Context, tx models.Transaction) (models.TransactionStatus, error) {
	cs, err := s.crypto.Status(ctx, tx.ExchangeID)
	if err != nil {
		return "", fmt.Errorf("crypto leg %s: %w", tx.ExchangeID, err)
	}
	next := cs.Status
	if next != models.TxnPendingPayment && next != models.TxnCompleted {
		return next, nil
	}

	fs, err := s.fiat.Status(ctx, tx.PaymentID)
	if err != nil {
		return "", fmt.Errorf("fiat leg %s: %w", tx.PaymentID, err)
	}
	if next == models.TxnCompleted && fs == providers.FiatCompleted {
		return models.TxnCompleted, nil
	}
	// payout still in flight; hold at the payment gate
	return models.TxnPendingPayment, nil
}

// nextDepositStatus: until the fiat charge settles the user simply has
// not paid, so the crypto leg is not queried at all. Once paid, the
// record advances to pending_exchange and the swap's completion carries
// it the rest of the way, finalizing the settled output amount.
func (s *Service) nextDepositStatus(ctx context.Context, tx models.Transaction) (models.TransactionStatus, float64, error) {
	fs, err := s.fiat.Status(ctx, tx.PaymentID)
	if err != nil {
		return "", 0, fmt.Errorf("fiat leg %s: %w", tx.PaymentID, err)
	}
	switch fs {
	case providers.FiatFailed:
		return models.TxnExpired, 0, nil
	case providers.FiatCompleted:
	default:
		return models.TxnPendingDeposit, 0, nil
	}

	cs, err := s.crypto.Status(ctx, tx.ExchangeID)
	if err != nil {
		return "", 0, fmt.Errorf("crypto leg %s: %w", tx.ExchangeID, err)
	}
	switch cs.Status {
	case models.TxnCompleted:
		return models.TxnCompleted, cs.OutAmount, nil
	case models.TxnExpired:
		return models.TxnExpired, 0, nil
	default:
		return models.TxnPendingExchange, 0, nil
	}
}

// advance applies the computed status with the monotonic guard: the
// stored status never moves backwards in the walk, only the transition
// into expired is unconditional.
func (s *Service) advance(ctx context.Context, tx models.Transaction, next models.TransactionStatus, settledOut float64) (models.Transaction, error) {
	if next == tx.Status || !tx.Status.Before(next) {
		return tx, nil
	}

	upd := models.TransactionUpdate{Status: &next}
	if next == models.TxnCompleted {
		now := time.Now().UTC()
		upd.CompletedAt = &now
		if settledOut > 0 {
			upd.ToAmount = &settledOut
		}
	}
	updated, err := s.trx.Update(ctx, tx.ID, upd)
	if err != nil {
		return tx, err
	}
	s.audit(ctx, tx.ID, "status_change", fmt.Sprintf("%s -> %s", tx.Status, next))
	metrics.Reconciliations.WithLabelValues(string(next)).Inc()
	return updated, nil
}

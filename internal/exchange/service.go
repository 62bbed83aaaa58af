// Package exchange implements the cross-provider transaction engine:
// forward quotes (estimate), the two-legged creation saga (create) and
// the status-convergence reconciler (reconcile). The fiat and crypto
// gateways are independent systems with no shared transaction boundary;
// everything here works by ordering calls and merging polled state.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zilix-space/adapix-backend/internal/config"
	"github.com/zilix-space/adapix-backend/internal/models"
	"github.com/zilix-space/adapix-backend/internal/providers"
	repo "github.com/zilix-space/adapix-backend/internal/repository"
)

// expiryWindow is how long the user has to act on the deposit-pending leg.
const expiryWindow = 15 * time.Minute

type Service struct {
	cfg    config.Config
	quotes providers.MarketQuoteSource
	fiat   providers.FiatGateway
	crypto providers.CryptoExchange
	trx    repo.Transactions
	users  repo.Users
	log    repo.AuditLogs
}

func NewService(cfg config.Config, q providers.MarketQuoteSource, f providers.FiatGateway, c providers.CryptoExchange, t repo.Transactions, u repo.Users, l repo.AuditLogs) *Service {
	return &Service{cfg: cfg, quotes: q, fiat: f, crypto: c, trx: t, users: u, log: l}
}

func (s *Service) audit(ctx context.Context, txID, action, details string) {
	var det map[string]any
	if details != "" {
		det = map[string]any{"message": details}
	}
	if err := s.log.Create(ctx, models.AuditLog{
		EntityType: "transaction",
		EntityID:   &txID,
		Action:     action,
		Details:    det,
	}); err != nil {
		slog.Warn("audit write failed", "tx", txID, "action", action, "err", err)
	}
}

// checkMinimum rejects sub-minimum amounts before any outbound call.
// Buy amounts are fiat, sell amounts are crypto.
func (s *Service) checkMinimum(dir providers.Direction, amount float64) error {
	min := s.cfg.MinWithdraw
	if dir == providers.DirectionBuy {
		min = s.cfg.MinDeposit
	}
	if amount <= 0 || amount < min {
		return fmt.Errorf("%w: got %v, minimum %v", ErrAmountTooLow, amount, min)
	}
	return nil
}

// ----------------- Queries -----------------

func (s *Service) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := s.trx.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx, err
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	return s.trx.ListByUser(ctx, userID, limit, offset)
}

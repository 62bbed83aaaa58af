package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zilix-space/adapix-backend/internal/metrics"
	"github.com/zilix-space/adapix-backend/internal/models"
	"github.com/zilix-space/adapix-backend/internal/providers"
)

// Create runs the two-legged creation saga. The call order is reversed
// between directions because the side that determines the other side's
// required amount differs:
//
//	sell: crypto estimate → fiat payout open → crypto swap open
//	buy:  fiat estimate → crypto rate lock → crypto swap open → fiat charge open
//
// The record is persisted only after both legs exist; if the second open
// fails, the first leg's remote object is left dangling (the gateways
// expose no cancel API) and nothing durable references it.
func (s *Service) Create(ctx context.Context, userID string, dir providers.Direction, amount float64, address string) (models.Transaction, error) {
	if err := s.checkMinimum(dir, amount); err != nil {
		return models.Transaction{}, err
	}
	if address == "" {
		return models.Transaction{}, fmt.Errorf("destination address required")
	}

	var (
		tx  models.Transaction
		err error
	)
	switch dir {
	case providers.DirectionSell:
		tx, err = s.createWithdraw(ctx, userID, amount, address)
	case providers.DirectionBuy:
		tx, err = s.createDeposit(ctx, userID, amount, address)
	default:
		return models.Transaction{}, fmt.Errorf("unknown direction %q", dir)
	}
	if err != nil {
		metrics.ExchangesFailed.Inc()
		return models.Transaction{}, err
	}

	now := time.Now().UTC()
	exp := now.Add(expiryWindow)
	tx.ID = uuid.NewString()
	tx.UserID = userID
	tx.Status = models.TxnPendingDeposit
	tx.AddressToReceive = address
	tx.CreatedAt = now
	tx.UpdatedAt = now
	tx.ExpiresAt = &exp

	// the single durable write, terminal step of creation
	tx, err = s.trx.Create(ctx, tx)
	if err != nil {
		metrics.ExchangesFailed.Inc()
		return models.Transaction{}, err
	}
	s.audit(ctx, tx.ID, "created", fmt.Sprintf("%s %v %s -> %s", tx.Type, tx.FromAmount, tx.FromCurrency, tx.ToCurrency))
	metrics.ExchangesTotal.WithLabelValues(string(tx.Type)).Inc()
	return tx, nil
}

// createWithdraw opens the sell legs: the fiat payout must exist first
// because its payin address is the crypto swap's recipient.
func (s *Service) createWithdraw(ctx context.Context, userID string, amount float64, pixKey string) (models.Transaction, error) {
	cryptoEst, err := s.crypto.Estimate(ctx, amount, s.cfg.CryptoCurrency, s.cfg.BridgeAsset)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: crypto estimate: %v", ErrGatewayOpenFailed, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("load user %s: %w", userID, err)
	}

	payout, err := s.fiat.Open(ctx, providers.DirectionSell, cryptoEst.OutAmount, pixKey, user.Identity())
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: fiat payout: %v", ErrGatewayOpenFailed, err)
	}

	swap, err := s.crypto.Open(ctx, payout.Address, amount, s.cfg.CryptoCurrency, s.cfg.BridgeAsset, cryptoEst.RateID)
	if err != nil {
		// payout exists remotely but is unreferenced; no cancel API
		slog.Error("withdraw saga aborted after fiat leg", "user", userID, "payment_id", payout.ID, "err", err)
		metrics.DanglingLegs.Inc()
		return models.Transaction{}, fmt.Errorf("%w: crypto swap: %v", ErrGatewayOpenFailed, err)
	}

	return models.Transaction{
		Type:            models.TxnWithdraw,
		FromAmount:      swap.FromAmount,
		FromCurrency:    s.cfg.CryptoCurrency,
		ToAmount:        payout.Estimate.TotalInFiat,
		ToCurrency:      s.cfg.FiatCurrency,
		ExchangeID:      swap.ID,
		ExchangeAddress: swap.DepositAddress,
		PaymentID:       payout.ID,
		PaymentAddress:  payout.Address,
	}, nil
}

// createDeposit opens the buy legs: the crypto swap must exist first
// because its deposit address is the fiat charge's payin target, so the
// user's payment flows straight into the swap.
func (s *Service) createDeposit(ctx context.Context, userID string, amount float64, wallet string) (models.Transaction, error) {
	fiatEst, err := s.fiat.Estimate(ctx, providers.DirectionBuy, amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: fiat estimate: %v", ErrGatewayOpenFailed, err)
	}

	cryptoEst, err := s.crypto.Estimate(ctx, fiatEst.AmountInBridge, s.cfg.BridgeAsset, s.cfg.CryptoCurrency)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: crypto estimate: %v", ErrGatewayOpenFailed, err)
	}

	swap, err := s.crypto.Open(ctx, wallet, fiatEst.AmountInBridge, s.cfg.BridgeAsset, s.cfg.CryptoCurrency, cryptoEst.RateID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: crypto swap: %v", ErrGatewayOpenFailed, err)
	}

	charge, err := s.fiat.Open(ctx, providers.DirectionBuy, swap.FromAmount, swap.DepositAddress, models.Identity{})
	if err != nil {
		slog.Error("deposit saga aborted after crypto leg", "user", userID, "exchange_id", swap.ID, "err", err)
		metrics.DanglingLegs.Inc()
		return models.Transaction{}, fmt.Errorf("%w: fiat charge: %v", ErrGatewayOpenFailed, err)
	}

	return models.Transaction{
		Type:            models.TxnDeposit,
		FromAmount:      amount,
		FromCurrency:    s.cfg.FiatCurrency,
		ToAmount:        swap.ToAmount, // provisional; finalized when the swap settles
		ToCurrency:      s.cfg.CryptoCurrency,
		ExchangeID:      swap.ID,
		ExchangeAddress: swap.DepositAddress,
		PaymentID:       charge.ID,
		PaymentAddress:  charge.Address,
	}, nil
}

// Package providers defines the leaf clients the exchange core depends
// on. Each provider translates its own status vocabulary into the
// canonical models.TransactionStatus at this boundary; raw provider
// strings never cross into the core.
package providers

import (
	"context"
	"time"

	"github.com/zilix-space/adapix-backend/internal/models"
)

type Direction string

const (
	DirectionBuy  Direction = "buy"  // user pays fiat, receives crypto
	DirectionSell Direction = "sell" // user pays crypto, receives fiat
)

// MarketQuoteSource returns the spot price of one unit of base in quote
// terms (e.g. ADA/BRL).
type MarketQuoteSource interface {
	Quote(ctx context.Context, base, quote string) (float64, error)
}

// FiatEstimate is the fiat gateway's quote for one leg. Amounts are in
// the gateway's fiat currency except the bridge-asset fields.
type FiatEstimate struct {
	PriceInFiat    float64
	TotalInFiat    float64
	FeeInFiat      float64
	SendInFiat     float64
	SendInBridge   float64
	AmountInBridge float64
	Timeout        time.Duration
}

// FiatOperation is an opened PIX charge (buy) or payout (sell).
type FiatOperation struct {
	ID       string
	Address  string // PIX copy-paste code for a charge, payin wallet for a payout
	Estimate FiatEstimate
}

type FiatStatus string

const (
	FiatCompleted FiatStatus = "completed"
	FiatFailed    FiatStatus = "failed"
	FiatPending   FiatStatus = "pending"
)

type FiatGateway interface {
	Estimate(ctx context.Context, dir Direction, amount float64) (FiatEstimate, error)
	// Open creates the fiat-side operation. For a buy, target is the
	// bridge-asset address the paid-in funds are forwarded to; for a
	// sell, target is the user's PIX key and identity carries the KYC
	// fields the payout requires.
	Open(ctx context.Context, dir Direction, amount float64, target string, identity models.Identity) (FiatOperation, error)
	Status(ctx context.Context, id string) (FiatStatus, error)
}

// CryptoEstimate is a rate-locked quote for a bridge↔crypto swap.
type CryptoEstimate struct {
	InAmount   float64
	OutAmount  float64
	NetworkFee float64 // in bridge-asset units
	RateID     string
	ValidUntil time.Time
}

// CryptoSwap is an opened exchange-side swap.
type CryptoSwap struct {
	ID             string
	DepositAddress string
	FromAmount     float64
	ToAmount       float64
}

// CryptoSwapStatus carries the canonical status; the provider client
// owns the raw→canonical mapping table.
type CryptoSwapStatus struct {
	ID        string
	Status    models.TransactionStatus
	OutAmount float64 // settled output, only once the swap finished
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CryptoExchange interface {
	Estimate(ctx context.Context, amount float64, from, to string) (CryptoEstimate, error)
	Open(ctx context.Context, recipient string, amount float64, from, to, rateID string) (CryptoSwap, error)
	Status(ctx context.Context, id string) (CryptoSwapStatus, error)
}

package models

import "time"

type TransactionType string

const (
	TxnDeposit  TransactionType = "deposit"  // fiat in, crypto out
	TxnWithdraw TransactionType = "withdraw" // crypto in, fiat out
)

type TransactionStatus string

const (
	TxnPendingDeposit  TransactionStatus = "pending_deposit"
	TxnPendingExchange TransactionStatus = "pending_exchange"
	TxnPendingPayment  TransactionStatus = "pending_payment"
	TxnCompleted       TransactionStatus = "completed"
	TxnExpired         TransactionStatus = "expired"
)

// statusRank is the canonical forward order. Expired sits outside the
// walk: it is reachable from any non-terminal state.
var statusRank = map[TransactionStatus]int{
	TxnPendingDeposit:  0,
	TxnPendingExchange: 1,
	TxnPendingPayment:  2,
	TxnCompleted:       3,
}

func (s TransactionStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

func (s TransactionStatus) Terminal() bool {
	return s == TxnCompleted || s == TxnExpired
}

// Before reports whether s comes strictly earlier in the forward walk
// than other. Expired counts as later than every non-terminal state so
// the monotonic guard never blocks the transition into it; terminal
// states come before nothing.
func (s TransactionStatus) Before(other TransactionStatus) bool {
	if other == TxnExpired {
		return !s.Terminal()
	}
	if s == TxnExpired {
		return false
	}
	return s.Rank() < other.Rank()
}

type Transaction struct {
	ID     string            `json:"id"`
	UserID string            `json:"user_id"`
	Type   TransactionType   `json:"type"`
	Status TransactionStatus `json:"status"`

	FromAmount   float64 `json:"from_amount"`
	FromCurrency string  `json:"from_currency"`
	ToAmount     float64 `json:"to_amount"`
	ToCurrency   string  `json:"to_currency"`

	// crypto-exchange leg
	ExchangeID      string `json:"exchange_id"`
	ExchangeAddress string `json:"exchange_address"`

	// fiat (PIX) leg
	PaymentID      string `json:"payment_id"`
	PaymentAddress string `json:"payment_address"`

	// caller-supplied destination: wallet address for a deposit,
	// PIX key for a withdraw
	AddressToReceive string `json:"address_to_receive"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// TransactionUpdate is a partial update; nil fields keep the stored value.
type TransactionUpdate struct {
	Status      *TransactionStatus
	ToAmount    *float64
	CompletedAt *time.Time
}

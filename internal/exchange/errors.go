package exchange

import "errors"

var (
	// ErrQuoteUnavailable: a market or gateway estimate call failed.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrGatewayOpenFailed: a gateway create call failed during the
	// creation saga; no record was persisted.
	ErrGatewayOpenFailed = errors.New("gateway open failed")
	// ErrNotFound: unknown transaction id.
	ErrNotFound = errors.New("transaction not found")
	// ErrReconcileQuery: a status query failed; the stored record was
	// left at its last known good status.
	ErrReconcileQuery = errors.New("reconciliation query failed")
	// ErrAmountTooLow: amount below the provider minimum, rejected
	// before any outbound call.
	ErrAmountTooLow = errors.New("amount below minimum")
)

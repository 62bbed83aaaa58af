package models

import "testing"

func TestStatusForwardWalk(t *testing.T) {
	walk := []TransactionStatus{TxnPendingDeposit, TxnPendingExchange, TxnPendingPayment, TxnCompleted}
	for i, s := range walk {
		for j, o := range walk {
			if got := s.Before(o); got != (i < j) {
				t.Errorf("%s.Before(%s) = %v, want %v", s, o, got, i < j)
			}
		}
	}
}

func TestExpiredReachableFromAnywhere(t *testing.T) {
	for _, s := range []TransactionStatus{TxnPendingDeposit, TxnPendingExchange, TxnPendingPayment} {
		if !s.Before(TxnExpired) {
			t.Errorf("%s.Before(expired) = false", s)
		}
	}
	// terminal states stay put
	if TxnCompleted.Before(TxnExpired) {
		t.Error("completed.Before(expired) = true")
	}
	if TxnExpired.Before(TxnExpired) {
		t.Error("expired.Before(expired) = true")
	}
	if TxnExpired.Before(TxnCompleted) {
		t.Error("expired.Before(completed) = true")
	}
}

func TestTerminal(t *testing.T) {
	cases := map[TransactionStatus]bool{
		TxnPendingDeposit:  false,
		TxnPendingExchange: false,
		TxnPendingPayment:  false,
		TxnCompleted:       true,
		TxnExpired:         true,
	}
	for s, want := range cases {
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, s.Terminal(), want)
		}
	}
}

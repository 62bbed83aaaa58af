package changenow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zilix-space/adapix-backend/internal/models"
)

func TestStatusMapping(t *testing.T) {
	cases := map[string]models.TransactionStatus{
		"new":        models.TxnPendingDeposit,
		"waiting":    models.TxnPendingDeposit,
		"confirming": models.TxnPendingDeposit,
		"exchanging": models.TxnPendingExchange,
		"sending":    models.TxnPendingPayment,
		"finished":   models.TxnCompleted,
		"expired":    models.TxnExpired,
		"failed":     models.TxnExpired,
		"refunded":   models.TxnExpired,
	}
	for raw, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"id":"x1","status":%q,"amountTo":12.5}`, raw)
		}))
		c := New(srv.URL, "key", nil)
		st, err := c.Status(context.Background(), "x1")
		srv.Close()
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if st.Status != want {
			t.Errorf("%s -> %s, want %s", raw, st.Status, want)
		}
	}
}

func TestStatusUnknownIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"x1","status":"verifying"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", nil)
	if _, err := c.Status(context.Background(), "x1"); err == nil {
		t.Fatal("unknown raw status mapped silently")
	}
}

func TestEstimateRequest(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		if r.Header.Get("x-changenow-api-key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"fromAmount":19,"toAmount":38,"rateId":"r1","withdrawalFee":0.4}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", nil)
	est, err := c.Estimate(context.Background(), 19, "USDT", "ADA")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.OutAmount != 38 || est.RateID != "r1" || est.NetworkFee != 0.4 {
		t.Fatalf("estimate = %+v", est)
	}
	if gotQuery["fromCurrency"] != "usdt" || gotQuery["toCurrency"] != "ada" {
		t.Fatalf("currencies = %v", gotQuery)
	}
	if gotQuery["fromNetwork"] != "trx" || gotQuery["toNetwork"] != "ada" {
		t.Fatalf("networks = %v", gotQuery)
	}
	if gotQuery["flow"] != "fixed-rate" || gotQuery["useRateId"] != "true" {
		t.Fatalf("rate lock params = %v", gotQuery)
	}
}

func TestOpen(t *testing.T) {
	var got openRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/exchange" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"id":"ex-1","payinAddress":"addr1-deposit","fromAmount":50,"toAmount":24.5}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", nil)
	swap, err := c.Open(context.Background(), "0xrecipient", 50, "ADA", "USDT", "r1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if swap.ID != "ex-1" || swap.DepositAddress != "addr1-deposit" {
		t.Fatalf("swap = %+v", swap)
	}
	if got.Address != "0xrecipient" || got.RateID != "r1" || got.FromAmount != 50 {
		t.Fatalf("request = %+v", got)
	}
	if got.FromCurrency != "ada" || got.ToCurrency != "usdt" {
		t.Fatalf("currencies = %+v", got)
	}
}

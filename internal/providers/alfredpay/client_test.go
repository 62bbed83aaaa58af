package alfredpay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zilix-space/adapix-backend/internal/models"
	"github.com/zilix-space/adapix-backend/internal/providers"
)

func TestEstimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/quotes" || r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"priceInFiat":5.2,"totalInFiat":95,"feeInFiat":5,"amountInBridge":19,"timeout":900}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	est, err := c.Estimate(context.Background(), providers.DirectionBuy, 100)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.AmountInBridge != 19 || est.FeeInFiat != 5 {
		t.Fatalf("estimate = %+v", est)
	}
	if est.Timeout != 900*time.Second {
		t.Fatalf("timeout = %v", est.Timeout)
	}
}

func TestOpenChargeAndPayout(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"id":"op-1","address":"pix-code-or-payin"}`)
	}))
	defer srv.Close()
	c := New(srv.URL, "key")

	op, err := c.Open(context.Background(), providers.DirectionBuy, 19, "0xswap-deposit", models.Identity{})
	if err != nil {
		t.Fatalf("open charge: %v", err)
	}
	if gotPath != "/v1/charges" {
		t.Fatalf("charge path = %s", gotPath)
	}
	if gotBody["address"] != "0xswap-deposit" {
		t.Fatalf("charge body = %v", gotBody)
	}
	if op.ID != "op-1" {
		t.Fatalf("op = %+v", op)
	}

	id := models.Identity{Name: "Maria Souza", Document: "12345678900", Phone: "+5511999990000", Address: "Rua A 1"}
	_, err = c.Open(context.Background(), providers.DirectionSell, 24.5, "maria@pix.br", id)
	if err != nil {
		t.Fatalf("open payout: %v", err)
	}
	if gotPath != "/v1/payouts" {
		t.Fatalf("payout path = %s", gotPath)
	}
	if gotBody["pixKey"] != "maria@pix.br" {
		t.Fatalf("payout body = %v", gotBody)
	}
	ident, _ := gotBody["identity"].(map[string]any)
	if ident["document"] != "12345678900" {
		t.Fatalf("payout identity = %v", ident)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := map[string]providers.FiatStatus{
		"PAID":       providers.FiatCompleted,
		"settled":    providers.FiatCompleted,
		"FAILED":     providers.FiatFailed,
		"EXPIRED":    providers.FiatFailed,
		"PROCESSING": providers.FiatPending,
	}
	for raw, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"id":"op-1","status":%q}`, raw)
		}))
		c := New(srv.URL, "key")
		st, err := c.Status(context.Background(), "op-1")
		srv.Close()
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if st != want {
			t.Errorf("%s -> %s, want %s", raw, st, want)
		}
	}
}

func TestStatusUnknownIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"op-1","status":"LIMBO"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	if _, err := c.Status(context.Background(), "op-1"); err == nil {
		t.Fatal("unknown raw status mapped silently")
	}
}

// Package changenow implements the crypto-exchange provider against the
// ChangeNOW v2 API. Raw ChangeNOW status strings are translated into
// the canonical transaction status here and nowhere else.
package changenow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zilix-space/adapix-backend/internal/models"
	"github.com/zilix-space/adapix-backend/internal/providers"
)

// statusMap is the raw → canonical table. Anything not listed is an
// error, never a silent guess.
var statusMap = map[string]models.TransactionStatus{
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

// defaultNetworks picks the transfer network per currency ticker.
var defaultNetworks = map[string]string{
	"USDT": "trx",
	"ADA":  "ada",
}

type Client struct {
	baseURL  string
	apiKey   string
	networks map[string]string
	http     *http.Client
}

func New(baseURL, apiKey string, networks map[string]string) *Client {
	if networks == nil {
		networks = defaultNetworks
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		networks: networks,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) network(currency string) string {
	if n, ok := c.networks[strings.ToUpper(currency)]; ok {
		return n
	}
	return strings.ToLower(currency)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-changenow-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("changenow %s %s: status %d", method, path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type estimateResponse struct {
	FromAmount    float64   `json:"fromAmount"`
	ToAmount      float64   `json:"toAmount"`
	RateID        string    `json:"rateId"`
	ValidUntil    time.Time `json:"validUntil"`
	DepositFee    float64   `json:"depositFee"`
	WithdrawalFee float64   `json:"withdrawalFee"`
}

func (c *Client) Estimate(ctx context.Context, amount float64, from, to string) (providers.CryptoEstimate, error) {
	q := url.Values{}
	q.Set("fromCurrency", strings.ToLower(from))
	q.Set("toCurrency", strings.ToLower(to))
	q.Set("fromNetwork", c.network(from))
	q.Set("toNetwork", c.network(to))
	q.Set("fromAmount", fmt.Sprintf("%g", amount))
	q.Set("flow", "fixed-rate")
	q.Set("useRateId", "true")

	var body estimateResponse
	if err := c.do(ctx, http.MethodGet, "/v2/exchange/estimated-amount?"+q.Encode(), nil, &body); err != nil {
		return providers.CryptoEstimate{}, err
	}
	return providers.CryptoEstimate{
		InAmount:   body.FromAmount,
		OutAmount:  body.ToAmount,
		NetworkFee: body.WithdrawalFee,
		RateID:     body.RateID,
		ValidUntil: body.ValidUntil,
	}, nil
}

type openRequest struct {
	FromCurrency string  `json:"fromCurrency"`
	ToCurrency   string  `json:"toCurrency"`
	FromNetwork  string  `json:"fromNetwork"`
	ToNetwork    string  `json:"toNetwork"`
	FromAmount   float64 `json:"fromAmount"`
	Address      string  `json:"address"`
	Flow         string  `json:"flow"`
	RateID       string  `json:"rateId,omitempty"`
}

type openResponse struct {
	ID           string  `json:"id"`
	PayinAddress string  `json:"payinAddress"`
	FromAmount   float64 `json:"fromAmount"`
	ToAmount     float64 `json:"toAmount"`
}

func (c *Client) Open(ctx context.Context, recipient string, amount float64, from, to, rateID string) (providers.CryptoSwap, error) {
	reqBody := openRequest{
		FromCurrency: strings.ToLower(from),
		ToCurrency:   strings.ToLower(to),
		FromNetwork:  c.network(from),
		ToNetwork:    c.network(to),
		FromAmount:   amount,
		Address:      recipient,
		Flow:         "fixed-rate",
		RateID:       rateID,
	}
	var body openResponse
	if err := c.do(ctx, http.MethodPost, "/v2/exchange", reqBody, &body); err != nil {
		return providers.CryptoSwap{}, err
	}
	return providers.CryptoSwap{
		ID:             body.ID,
		DepositAddress: body.PayinAddress,
		FromAmount:     body.FromAmount,
		ToAmount:       body.ToAmount,
	}, nil
}

type statusResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	AmountTo  float64   `json:"amountTo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Client) Status(ctx context.Context, id string) (providers.CryptoSwapStatus, error) {
	var body statusResponse
	if err := c.do(ctx, http.MethodGet, "/v2/exchange/by-id?id="+url.QueryEscape(id), nil, &body); err != nil {
		return providers.CryptoSwapStatus{}, err
	}
	canonical, ok := statusMap[body.Status]
	if !ok {
		return providers.CryptoSwapStatus{}, fmt.Errorf("changenow: unknown status %q for %s", body.Status, id)
	}
	return providers.CryptoSwapStatus{
		ID:        body.ID,
		Status:    canonical,
		OutAmount: body.AmountTo,
		CreatedAt: body.CreatedAt,
		UpdatedAt: body.UpdatedAt,
	}, nil
}

// Package alfredpay implements the fiat gateway provider: PIX charges
// (on-ramp) and PIX payouts (off-ramp) denominated in the bridge asset.
// Raw gateway statuses are mapped to the canonical fiat status at this
// boundary.
package alfredpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zilix-space/adapix-backend/internal/models"
	"github.com/zilix-space/adapix-backend/internal/providers"
)

var statusMap = map[string]providers.FiatStatus{
	"PAID":       providers.FiatCompleted,
	"SETTLED":    providers.FiatCompleted,
	"COMPLETED":  providers.FiatCompleted,
	"FAILED":     providers.FiatFailed,
	"EXPIRED":    providers.FiatFailed,
	"CANCELED":   providers.FiatFailed,
	"PENDING":    providers.FiatPending,
	"PROCESSING": providers.FiatPending,
	"CREATED":    providers.FiatPending,
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("alfredpay %s %s: status %d", method, path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type estimateBody struct {
	PriceInFiat    float64 `json:"priceInFiat"`
	TotalInFiat    float64 `json:"totalInFiat"`
	FeeInFiat      float64 `json:"feeInFiat"`
	SendInFiat     float64 `json:"sendInFiat"`
	SendInBridge   float64 `json:"sendInBridge"`
	AmountInBridge float64 `json:"amountInBridge"`
	TimeoutSeconds int     `json:"timeout"`
}

func (e estimateBody) toEstimate() providers.FiatEstimate {
	return providers.FiatEstimate{
		PriceInFiat:    e.PriceInFiat,
		TotalInFiat:    e.TotalInFiat,
		FeeInFiat:      e.FeeInFiat,
		SendInFiat:     e.SendInFiat,
		SendInBridge:   e.SendInBridge,
		AmountInBridge: e.AmountInBridge,
		Timeout:        time.Duration(e.TimeoutSeconds) * time.Second,
	}
}

func (c *Client) Estimate(ctx context.Context, dir providers.Direction, amount float64) (providers.FiatEstimate, error) {
	req := map[string]any{"direction": string(dir), "amount": amount}
	var body estimateBody
	if err := c.do(ctx, http.MethodPost, "/v1/quotes", req, &body); err != nil {
		return providers.FiatEstimate{}, err
	}
	return body.toEstimate(), nil
}

type openResponse struct {
	ID       string       `json:"id"`
	Address  string       `json:"address"`
	Estimate estimateBody `json:"estimate"`
}

// Open creates a PIX charge (buy: amount is the bridge-asset quantity to
// deliver to target) or a PIX payout (sell: target is the user's PIX
// key, identity carries the KYC fields the payout requires).
func (c *Client) Open(ctx context.Context, dir providers.Direction, amount float64, target string, identity models.Identity) (providers.FiatOperation, error) {
	path := "/v1/charges"
	req := map[string]any{"amount": amount, "address": target}
	if dir == providers.DirectionSell {
		path = "/v1/payouts"
		req = map[string]any{
			"amount": amount,
			"pixKey": target,
			"identity": map[string]string{
				"name":     identity.Name,
				"document": identity.Document,
				"phone":    identity.Phone,
				"address":  identity.Address,
			},
		}
	}
	var body openResponse
	if err := c.do(ctx, http.MethodPost, path, req, &body); err != nil {
		return providers.FiatOperation{}, err
	}
	return providers.FiatOperation{
		ID:       body.ID,
		Address:  body.Address,
		Estimate: body.Estimate.toEstimate(),
	}, nil
}

type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) Status(ctx context.Context, id string) (providers.FiatStatus, error) {
	var body statusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/operations/"+id, nil, &body); err != nil {
		return "", err
	}
	st, ok := statusMap[strings.ToUpper(body.Status)]
	if !ok {
		return "", fmt.Errorf("alfredpay: unknown status %q for %s", body.Status, id)
	}
	return st, nil
}

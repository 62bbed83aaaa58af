// Package market implements the spot price source on top of the Binance
// public ticker, with an optional Redis cache in front of it.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type BinanceSource struct {
	baseURL string
	http    *http.Client
}

func NewBinanceSource(baseURL string) *BinanceSource {
	return &BinanceSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (s *BinanceSource) Quote(ctx context.Context, base, quote string) (float64, error) {
	symbol := strings.ToUpper(base) + strings.ToUpper(quote)
	url := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", s.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ticker %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ticker %s: status %d", symbol, resp.StatusCode)
	}

	var body tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("ticker %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(body.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("ticker %s: bad price %q", symbol, body.Price)
	}
	if price <= 0 {
		return 0, fmt.Errorf("ticker %s: non-positive price", symbol)
	}
	return price, nil
}

package exchange

import (
	"context"
	"fmt"

	"github.com/zilix-space/adapix-backend/internal/providers"
)

// Estimate is a forward-looking quote. All side-effect-free: no gateway
// objects are created.
type Estimate struct {
	FromAmount   float64 `json:"from_amount"`
	FromCurrency string  `json:"from_currency"`
	ToAmount     float64 `json:"to_amount"`
	ToCurrency   string  `json:"to_currency"`
	Fee          float64 `json:"fee"` // fiat terms
	SpotPrice    float64 `json:"spot_price"`
}

// Estimate composes the spot price with both gateways' estimate calls.
// The bridge asset connects the two hops: for a sell the crypto amount
// must be quoted before the fiat side can be asked, for a buy the order
// is reversed. Any leg failure fails the whole estimate.
func (s *Service) Estimate(ctx context.Context, dir providers.Direction, amount float64) (Estimate, error) {
	if err := s.checkMinimum(dir, amount); err != nil {
		return Estimate{}, err
	}

	spot, err := s.quotes.Quote(ctx, s.cfg.CryptoCurrency, s.cfg.FiatCurrency)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: spot %s/%s: %v", ErrQuoteUnavailable, s.cfg.CryptoCurrency, s.cfg.FiatCurrency, err)
	}

	var (
		fiatEst   providers.FiatEstimate
		cryptoEst providers.CryptoEstimate
		out       Estimate
	)
	switch dir {
	case providers.DirectionSell:
		cryptoEst, err = s.crypto.Estimate(ctx, amount, s.cfg.CryptoCurrency, s.cfg.BridgeAsset)
		if err != nil {
			return Estimate{}, fmt.Errorf("%w: crypto leg: %v", ErrQuoteUnavailable, err)
		}
		fiatEst, err = s.fiat.Estimate(ctx, dir, cryptoEst.OutAmount)
		if err != nil {
			return Estimate{}, fmt.Errorf("%w: fiat leg: %v", ErrQuoteUnavailable, err)
		}
		out = Estimate{
			FromAmount:   amount,
			FromCurrency: s.cfg.CryptoCurrency,
			ToAmount:     fiatEst.TotalInFiat,
			ToCurrency:   s.cfg.FiatCurrency,
		}
	case providers.DirectionBuy:
		fiatEst, err = s.fiat.Estimate(ctx, dir, amount)
		if err != nil {
			return Estimate{}, fmt.Errorf("%w: fiat leg: %v", ErrQuoteUnavailable, err)
		}
		cryptoEst, err = s.crypto.Estimate(ctx, fiatEst.AmountInBridge, s.cfg.BridgeAsset, s.cfg.CryptoCurrency)
		if err != nil {
			return Estimate{}, fmt.Errorf("%w: crypto leg: %v", ErrQuoteUnavailable, err)
		}
		out = Estimate{
			FromAmount:   amount,
			FromCurrency: s.cfg.FiatCurrency,
			ToAmount:     cryptoEst.OutAmount,
			ToCurrency:   s.cfg.CryptoCurrency,
		}
	default:
		return Estimate{}, fmt.Errorf("unknown direction %q", dir)
	}

	// Network fee is charged in bridge units; surface the total in fiat.
	out.Fee = fiatEst.FeeInFiat + cryptoEst.NetworkFee*spot
	out.SpotPrice = spot
	return out, nil
}

package wallet

import (
	"errors"

	"github.com/shopspring/decimal"
)

// TokenRate is the fixed conversion between platform tokens and a real
// currency, expressed as the currency price of one token (e.g. 0.05 USD).
type TokenRate struct {
	// PricePerToken is in currency major units.
	PricePerToken decimal.Decimal
	// Currency is the ISO code of the real currency.
	Currency string
	// MinorScale is the currency's minor-unit scale (2 for USD cents).
	MinorScale int32
}

var ErrInvalidTokenRate = errors.New("invalid token rate")

func NewTokenRate(pricePerToken string, currency string, minorScale int32) (TokenRate, error) {
	d, err := decimal.NewFromString(pricePerToken)
	if err != nil || !d.IsPositive() {
		return TokenRate{}, ErrInvalidTokenRate
	}
	if currency == "" || minorScale < 0 {
		return TokenRate{}, ErrInvalidTokenRate
	}
	return TokenRate{PricePerToken: d, Currency: currency, MinorScale: minorScale}, nil
}

// TokensToMinor converts a token amount to currency minor units, rounding
// half up. Charging rounds in the platform's favor at sub-minor precision.
func (r TokenRate) TokensToMinor(tokens int64) int64 {
	if tokens <= 0 {
		return 0
	}
	amount := decimal.NewFromInt(tokens).Mul(r.PricePerToken)
	return amount.Shift(r.MinorScale).Round(0).IntPart()
}

// MinorToTokens converts currency minor units to whole tokens, truncating.
// Partial tokens are never granted.
func (r TokenRate) MinorToTokens(minor int64) int64 {
	if minor <= 0 {
		return 0
	}
	major := decimal.NewFromInt(minor).Shift(-r.MinorScale)
	return major.Div(r.PricePerToken).Truncate(0).IntPart()
}

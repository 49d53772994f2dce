package service

import (
	"math"
	"sort"
	"time"

	"booking-finance-engine/config"
	"booking-finance-engine/internal/core/ports"
	"booking-finance-engine/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Fractional digits per currency class. The base currency is a zero-decimal
// currency; every display currency renders with two.
const (
	baseFractionDigits    = 0
	displayFractionDigits = 2
)

// RateServiceImpl implements ports.RateService over a fixed rate table.
// Rates are static per deployment; there is no network call.
type RateServiceImpl struct {
	base  string
	rates map[string]decimal.Decimal
	asOf  time.Time
}

// NewRateService builds the service from deployment configuration.
// The base currency's rate is defined as 1.
func NewRateService(cfg config.CurrencyConfig) *RateServiceImpl {
	rates := make(map[string]decimal.Decimal, len(cfg.Rates)+1)
	rates[cfg.Base] = decimal.NewFromInt(1)
	for code, rate := range cfg.Rates {
		rates[code] = decimal.NewFromFloat(rate)
	}
	return &RateServiceImpl{
		base:  cfg.Base,
		rates: rates,
		asOf:  time.Now().UTC(),
	}
}

// Rate returns the deployed rate for a currency. Unknown currencies fall back
// to the base rate of 1, so conversion never fails.
func (s *RateServiceImpl) Rate(currency string) ports.Rate {
	if r, ok := s.rates[currency]; ok {
		return ports.Rate{Currency: currency, PerUnit: r, AsOf: s.asOf}
	}
	return ports.Rate{Currency: currency, PerUnit: decimal.NewFromInt(1), AsOf: s.asOf}
}

// ToDisplay re-expresses a base-currency amount in a display currency.
// Division only; rounding is deferred to Format.
func (s *RateServiceImpl) ToDisplay(baseAmount int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(baseAmount).Div(s.Rate(currency).PerUnit)
}

// ToBase converts a display-currency amount back to base units. Base units
// are whole, so the product rounds to the nearest integer.
func (s *RateServiceImpl) ToBase(displayAmount decimal.Decimal, currency string) int64 {
	return displayAmount.Mul(s.Rate(currency).PerUnit).Round(0).IntPart()
}

// Format renders an amount with the currency's fractional-digit count.
// Non-finite amounts are coerced to zero rather than failing the render.
func (s *RateServiceImpl) Format(amount float64, currency string) (string, error) {
	if !s.Supports(currency) {
		return "", apperror.ErrUnsupportedCurrency(currency)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	digits := int32(displayFractionDigits)
	if currency == s.base {
		digits = baseFractionDigits
	}
	return decimal.NewFromFloat(amount).StringFixed(digits) + " " + currency, nil
}

// Supports reports whether a currency code is configured.
func (s *RateServiceImpl) Supports(currency string) bool {
	_, ok := s.rates[currency]
	return ok
}

// Supported returns the configured currency codes, base currency first.
func (s *RateServiceImpl) Supported() []string {
	codes := make([]string, 0, len(s.rates))
	for code := range s.rates {
		if code != s.base {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return append([]string{s.base}, codes...)
}

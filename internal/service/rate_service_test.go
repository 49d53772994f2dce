package service

import (
	"math"
	"testing"

	"booking-finance-engine/config"
	"booking-finance-engine/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCurrencyConfig() config.CurrencyConfig {
	return config.CurrencyConfig{
		Base: "JPY",
		Rates: map[string]float64{
			"USD": 146.5,
			"EUR": 158.2,
		},
	}
}

func TestRateService_Rate(t *testing.T) {
	svc := NewRateService(testCurrencyConfig())

	base := svc.Rate("JPY")
	assert.True(t, base.PerUnit.Equal(decimal.NewFromInt(1)), "base currency rate is defined as 1")
	assert.False(t, base.AsOf.IsZero())

	usd := svc.Rate("USD")
	assert.True(t, usd.PerUnit.Equal(decimal.RequireFromString("146.5")))
	assert.Equal(t, "USD", usd.Currency)
}

func TestRateService_Rate_UnknownFallsBackToBase(t *testing.T) {
	svc := NewRateService(testCurrencyConfig())

	r := svc.Rate("XXX")
	assert.True(t, r.PerUnit.Equal(decimal.NewFromInt(1)), "unknown currency converts 1:1")
}

func TestRateService_ToDisplay(t *testing.T) {
	svc := NewRateService(testCurrencyConfig())

	// 11,000 JPY at 146.5 JPY per USD.
	got := svc.ToDisplay(11000, "USD")
	assert.InDelta(t, 75.0853, got.InexactFloat64(), 0.0001)

	// Base currency passes through.
	assert.True(t, svc.ToDisplay(11000, "JPY").Equal(decimal.NewFromInt(11000)))
}

func TestRateService_ToBase(t *testing.T) {
	svc := NewRateService(testCurrencyConfig())

	// 75.09 USD back to whole base units: 75.09 * 146.5 = 11000.685 -> 11001.
	assert.Equal(t, int64(11001), svc.ToBase(decimal.RequireFromString("75.09"), "USD"))

	assert.Equal(t, int64(500), svc.ToBase(decimal.NewFromInt(500), "JPY"))
}

func TestRateService_Format(t *testing.T) {
	svc := NewRateService(testCurrencyConfig())

	tests := []struct {
		name     string
		amount   float64
		currency string
		want     string
	}{
		{"base currency uses zero digits", 11000, "JPY", "11000 JPY"},
		{"base currency drops fraction", 11000.4, "JPY", "11000 JPY"},
		{"display currency uses two digits", 75.085, "USD", "75.09 USD"},
		{"whole display amount padded", 75, "USD", "75.00 USD"},
		{"nan coerced to zero", math.NaN(), "USD", "0.00 USD"},
		{"positive infinity coerced to zero", math.Inf(1), "EUR", "0.00 EUR"},
		{"negative infinity coerced to zero", math.Inf(-1), "JPY", "0 JPY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Format(tt.amount, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateService_Format_UnsupportedCurrency(t *testing.T) {
	svc := NewRateService(testCurrencyConfig())

	_, err := svc.Format(10, "XXX")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CUR_001", appErr.Code)
}

func TestRateService_Supports(t *testing.T) {
	svc := NewRateService(testCurrencyConfig())

	assert.True(t, svc.Supports("JPY"))
	assert.True(t, svc.Supports("USD"))
	assert.False(t, svc.Supports("usd"), "codes are case-sensitive, config normalizes")
	assert.False(t, svc.Supports("XXX"))
}

func TestRateService_Supported_BaseFirst(t *testing.T) {
	svc := NewRateService(testCurrencyConfig())

	assert.Equal(t, []string{"JPY", "EUR", "USD"}, svc.Supported())
}

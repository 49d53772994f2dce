package domain

import "github.com/shopspring/decimal"

// SplitTolerance is the rounding slack, in base-currency units, allowed
// between commission + net and total.
const SplitTolerance = 1

// PriceBreakdown is the value object produced by the pricing engine for one
// quote. It is never persisted on its own; the ledger copies its money fields
// into a Transaction at initiation.
type PriceBreakdown struct {
	Currency string          `json:"currency"` // display currency code
	Rate     decimal.Decimal `json:"rate"`     // base-currency units per one display unit
	Nights   int             `json:"nights"`   // stay length in billing units, >= 1

	// All amounts below are base-currency units.
	BaseCost   int64 `json:"base_cost"`
	OptionCost int64 `json:"option_cost"`
	Total      int64 `json:"total"`
	Commission int64 `json:"commission"`
	Net        int64 `json:"net"`

	DisplayTotal decimal.Decimal `json:"display_total"` // total re-expressed in Currency
}

// SplitBalanced reports whether commission + net matches total within
// SplitTolerance. The ledger refuses to record a breakdown that fails this.
func (b *PriceBreakdown) SplitBalanced() bool {
	diff := b.Commission + b.Net - b.Total
	if diff < 0 {
		diff = -diff
	}
	return diff <= SplitTolerance
}

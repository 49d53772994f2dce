package service

import (
	"math"
	"time"

	"booking-finance-engine/config"
	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"

	"github.com/shopspring/decimal"
)

// PricingServiceImpl implements ports.PricingService. Pure calculation:
// no state, no side effects, deterministic for fixed inputs.
type PricingServiceImpl struct {
	rates      ports.RateService
	commission config.CommissionConfig
}

// NewPricingService creates a PricingServiceImpl with the deployed
// commission constants.
func NewPricingService(rates ports.RateService, commission config.CommissionConfig) *PricingServiceImpl {
	return &PricingServiceImpl{rates: rates, commission: commission}
}

// Price produces the full breakdown for one stay.
func (s *PricingServiceImpl) Price(req ports.PriceRequest) *domain.PriceBreakdown {
	nights := stayLength(req.Start, req.End)
	baseCost := req.Listing.NightlyPrice * int64(nights)

	var optionCost int64
	for _, id := range req.OptionIDs {
		opt, ok := req.Listing.Option(id)
		if !ok {
			// Unknown option ids are ignored, not an error.
			continue
		}
		switch opt.Mode {
		case domain.ChargeModePerDay:
			optionCost += opt.Price * int64(nights)
		default:
			optionCost += opt.Price
		}
	}

	total := baseCost + optionCost
	commission := s.commissionFor(total, req.Listing.SellerClass)
	rate := s.rates.Rate(req.Currency)

	return &domain.PriceBreakdown{
		Currency:     req.Currency,
		Rate:         rate.PerUnit,
		Nights:       nights,
		BaseCost:     baseCost,
		OptionCost:   optionCost,
		Total:        total,
		Commission:   commission,
		Net:          total - commission,
		DisplayTotal: s.rates.ToDisplay(total, req.Currency),
	}
}

// commissionFor applies the seller-class percentage plus the flat
// per-transaction fee. The percentage cut rounds to whole base units before
// the fee is added, so commission + net always lands within tolerance of total.
func (s *PricingServiceImpl) commissionFor(total int64, class domain.SellerClass) int64 {
	pct := s.commission.IndividualRate
	if class == domain.SellerClassProfessional {
		pct = s.commission.ProfessionalRate
	}
	cut := decimal.NewFromInt(total).Mul(decimal.NewFromFloat(pct)).Round(0).IntPart()
	return cut + s.commission.FlatFee
}

// stayLength returns the billable nights between two dates: the ceiling of
// the whole-day difference, floored at one billing unit. A same-day or
// inverted range still bills for one unit; rejecting it is the caller's job.
func stayLength(start, end time.Time) int {
	nights := int(math.Ceil(end.Sub(start).Hours() / 24))
	if nights < 1 {
		return 1
	}
	return nights
}

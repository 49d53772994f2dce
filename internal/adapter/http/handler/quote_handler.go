package handler

import (
	"strings"

	"booking-finance-engine/internal/adapter/http/dto"
	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"
	"booking-finance-engine/pkg/apperror"
	"booking-finance-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteHandler handles price quote endpoints.
type QuoteHandler struct {
	rateSvc    ports.RateService
	pricingSvc ports.PricingService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(rateSvc ports.RateService, pricingSvc ports.PricingService) *QuoteHandler {
	return &QuoteHandler{rateSvc: rateSvc, pricingSvc: pricingSvc}
}

// Quote handles POST /api/v1/quotes.
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	currency := strings.ToUpper(req.Currency)
	if !h.rateSvc.Supports(currency) {
		response.Error(c, apperror.ErrUnsupportedCurrency(currency))
		return
	}

	start, end, err := dto.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	listing, err := toListing(req.Listing)
	if err != nil {
		response.Error(c, err)
		return
	}

	breakdown := h.pricingSvc.Price(ports.PriceRequest{
		Listing:   listing,
		Start:     start,
		End:       end,
		OptionIDs: req.OptionIDs,
		Currency:  currency,
	})

	formatted, err := h.rateSvc.Format(breakdown.DisplayTotal.InexactFloat64(), currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.QuoteResponse{
		Currency:       breakdown.Currency,
		Rate:           breakdown.Rate.String(),
		Nights:         breakdown.Nights,
		BaseCost:       breakdown.BaseCost,
		OptionCost:     breakdown.OptionCost,
		Total:          breakdown.Total,
		Commission:     breakdown.Commission,
		Net:            breakdown.Net,
		DisplayTotal:   breakdown.DisplayTotal.String(),
		FormattedTotal: formatted,
	})
}

// toListing converts the wire listing into its domain form. UUID fields are
// already format-checked by binding; parse errors here mean a bug upstream.
func toListing(p dto.ListingPayload) (domain.Listing, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return domain.Listing{}, apperror.Validation("listing id must be a UUID")
	}
	sellerID, err := uuid.Parse(p.SellerID)
	if err != nil {
		return domain.Listing{}, apperror.Validation("seller id must be a UUID")
	}

	options := make([]domain.RentalOption, 0, len(p.Options))
	for _, opt := range p.Options {
		options = append(options, domain.RentalOption{
			ID:    opt.ID,
			Label: opt.Label,
			Price: opt.Price,
			Mode:  domain.ChargeMode(opt.Mode),
		})
	}

	return domain.Listing{
		ID:           id,
		SellerID:     sellerID,
		SellerClass:  domain.SellerClass(p.SellerClass),
		NightlyPrice: p.NightlyPrice,
		Options:      options,
	}, nil
}

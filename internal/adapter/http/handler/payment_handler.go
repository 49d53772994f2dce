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
	"github.com/shopspring/decimal"
)

// PaymentHandler handles transaction lifecycle endpoints.
type PaymentHandler struct {
	ledgerSvc ports.LedgerService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ledgerSvc ports.LedgerService) *PaymentHandler {
	return &PaymentHandler{ledgerSvc: ledgerSvc}
}

// Initiate handles POST /api/v1/payments.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	buyerID, err := uuid.Parse(req.BuyerID)
	if err != nil {
		response.Error(c, apperror.Validation("buyer_id must be a UUID"))
		return
	}
	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		response.Error(c, apperror.Validation("seller_id must be a UUID"))
		return
	}

	breakdown, err := toBreakdown(req.Breakdown)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.Initiate(c.Request.Context(), ports.InitiateRequest{
		BookingID: req.BookingID,
		Breakdown: breakdown,
		BuyerID:   buyerID,
		SellerID:  sellerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// Confirm handles POST /api/v1/payments/:id/confirm.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("transaction id must be a UUID"))
		return
	}

	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.ledgerSvc.Confirm(c.Request.Context(), id, req.ExternalRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// Get handles GET /api/v1/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("transaction id must be a UUID"))
		return
	}

	txn, err := h.ledgerSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// toBreakdown converts the wire breakdown into its domain form.
func toBreakdown(p dto.BreakdownPayload) (domain.PriceBreakdown, error) {
	rate, err := decimal.NewFromString(p.Rate)
	if err != nil || !rate.IsPositive() {
		return domain.PriceBreakdown{}, apperror.Validation("rate must be a positive decimal")
	}
	displayTotal, err := decimal.NewFromString(p.DisplayTotal)
	if err != nil {
		return domain.PriceBreakdown{}, apperror.Validation("display_total must be a decimal")
	}

	return domain.PriceBreakdown{
		Currency:     strings.ToUpper(p.Currency),
		Rate:         rate,
		Nights:       p.Nights,
		BaseCost:     p.BaseCost,
		OptionCost:   p.OptionCost,
		Total:        p.Total,
		Commission:   p.Commission,
		Net:          p.Net,
		DisplayTotal: displayTotal,
	}, nil
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              tx.ID.String(),
		BookingID:       tx.BookingID,
		SellerID:        tx.SellerID.String(),
		BuyerID:         tx.BuyerID.String(),
		Total:           tx.Total,
		Commission:      tx.Commission,
		Net:             tx.Net,
		DisplayCurrency: tx.DisplayCurrency,
		DisplayAmount:   tx.DisplayAmount.String(),
		Rate:            tx.Rate.String(),
		Status:          string(tx.Status),
		ExternalRef:     tx.ExternalRef,
		CreatedAt:       tx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       tx.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

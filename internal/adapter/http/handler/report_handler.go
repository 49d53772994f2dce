package handler

import (
	"math"
	"strconv"

	"booking-finance-engine/internal/adapter/http/dto"
	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"
	"booking-finance-engine/pkg/apperror"
	"booking-finance-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportHandler handles ledger reporting endpoints.
type ReportHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportingSvc ports.ReportingService) *ReportHandler {
	return &ReportHandler{reportingSvc: reportingSvc}
}

// ListTransactions handles GET /api/v1/transactions.
func (h *ReportHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.TransactionListParams{
		Page:     page,
		PageSize: pageSize,
	}

	if s := c.Query("seller_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.Error(c, apperror.Validation("seller_id must be a UUID"))
			return
		}
		params.SellerID = &id
	}
	if b := c.Query("buyer_id"); b != "" {
		id, err := uuid.Parse(b)
		if err != nil {
			response.Error(c, apperror.Validation("buyer_id must be a UUID"))
			return
		}
		params.BuyerID = &id
	}
	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetStats handles GET /api/v1/stats.
func (h *ReportHandler) GetStats(c *gin.Context) {
	var sellerID *uuid.UUID
	if s := c.Query("seller_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.Error(c, apperror.Validation("seller_id must be a UUID"))
			return
		}
		sellerID = &id
	}

	stats, err := h.reportingSvc.GetLedgerStats(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LedgerStatsResponse{
		TotalTransactions: stats.TotalTransactions,
		Initiated:         stats.Initiated,
		Captured:          stats.Captured,
		GrossVolume:       stats.GrossVolume,
		CommissionEarned:  stats.CommissionEarned,
		SellerPayout:      stats.SellerPayout,
	})
}

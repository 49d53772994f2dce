package dto

// OptionPayload is one rental option inside a quote request's listing.
type OptionPayload struct {
	ID    string `json:"id" binding:"required,safe_id,max=64"`
	Label string `json:"label" binding:"max=100"`
	Price int64  `json:"price" binding:"gte=0"`
	Mode  string `json:"mode" binding:"required,oneof=FIXED PER_DAY"`
}

// ListingPayload is the pricing slice of a catalog listing. The catalog
// service owns the full record; callers send only what pricing needs.
type ListingPayload struct {
	ID           string          `json:"id" binding:"required,uuid"`
	SellerID     string          `json:"seller_id" binding:"required,uuid"`
	SellerClass  string          `json:"seller_class" binding:"required,oneof=INDIVIDUAL PROFESSIONAL"`
	NightlyPrice int64           `json:"nightly_price" binding:"required,gt=0"`
	Options      []OptionPayload `json:"options,omitempty" binding:"dive"`
}

// QuoteRequest is the request body for price quotes.
type QuoteRequest struct {
	Listing   ListingPayload `json:"listing" binding:"required"`
	StartDate string         `json:"start_date" binding:"required"`
	EndDate   string         `json:"end_date" binding:"required"`
	OptionIDs []string       `json:"option_ids,omitempty" binding:"dive,safe_id"`
	Currency  string         `json:"currency" binding:"required,len=3"`
}

// QuoteResponse is the response body for a computed price breakdown.
// Integer amounts are base-currency units; decimal fields are strings to
// avoid float precision loss in transit.
type QuoteResponse struct {
	Currency       string `json:"currency"`
	Rate           string `json:"rate"`
	Nights         int    `json:"nights"`
	BaseCost       int64  `json:"base_cost"`
	OptionCost     int64  `json:"option_cost"`
	Total          int64  `json:"total"`
	Commission     int64  `json:"commission"`
	Net            int64  `json:"net"`
	DisplayTotal   string `json:"display_total"`
	FormattedTotal string `json:"formatted_total"`
}

// BreakdownPayload is a previously quoted breakdown echoed back on payment
// initiation. The ledger re-checks the commission split before recording.
type BreakdownPayload struct {
	Currency     string `json:"currency" binding:"required,len=3"`
	Rate         string `json:"rate" binding:"required"`
	Nights       int    `json:"nights" binding:"required,gt=0"`
	BaseCost     int64  `json:"base_cost" binding:"gte=0"`
	OptionCost   int64  `json:"option_cost" binding:"gte=0"`
	Total        int64  `json:"total" binding:"required,gt=0"`
	Commission   int64  `json:"commission" binding:"gte=0"`
	Net          int64  `json:"net" binding:"gte=0"`
	DisplayTotal string `json:"display_total" binding:"required"`
}

// InitiatePaymentRequest is the request body for transaction initiation.
type InitiatePaymentRequest struct {
	BookingID string           `json:"booking_id" binding:"required,safe_id,max=100"`
	BuyerID   string           `json:"buyer_id" binding:"required,uuid"`
	SellerID  string           `json:"seller_id" binding:"required,uuid"`
	Breakdown BreakdownPayload `json:"breakdown" binding:"required"`
}

// ConfirmPaymentRequest is the request body for payment confirmation.
type ConfirmPaymentRequest struct {
	ExternalRef string `json:"external_ref" binding:"required,max=100"`
}

// TransactionResponse is the response body for ledger records.
type TransactionResponse struct {
	ID              string  `json:"id"`
	BookingID       string  `json:"booking_id"`
	SellerID        string  `json:"seller_id"`
	BuyerID         string  `json:"buyer_id"`
	Total           int64   `json:"total"`
	Commission      int64   `json:"commission"`
	Net             int64   `json:"net"`
	DisplayCurrency string  `json:"display_currency"`
	DisplayAmount   string  `json:"display_amount"`
	Rate            string  `json:"rate"`
	Status          string  `json:"status"`
	ExternalRef     *string `json:"external_ref,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// LedgerStatsResponse is the response for aggregated ledger statistics.
type LedgerStatsResponse struct {
	TotalTransactions int64 `json:"total_transactions"`
	Initiated         int64 `json:"initiated"`
	Captured          int64 `json:"captured"`
	GrossVolume       int64 `json:"gross_volume"`
	CommissionEarned  int64 `json:"commission_earned"`
	SellerPayout      int64 `json:"seller_payout"`
}

package domain

import "github.com/google/uuid"

// SellerClass selects the commission tier applied to a listing's transactions.
type SellerClass string

const (
	SellerClassIndividual   SellerClass = "INDIVIDUAL"
	SellerClassProfessional SellerClass = "PROFESSIONAL"
)

// ChargeMode describes how a rental option is billed over a stay.
type ChargeMode string

const (
	ChargeModeFixed  ChargeMode = "FIXED"   // charged once per stay
	ChargeModePerDay ChargeMode = "PER_DAY" // charged per billing unit
)

// RentalOption is an add-on attached to a listing's rental configuration.
// Immutable; owned by the listing.
type RentalOption struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Price int64      `json:"price"` // base-currency units
	Mode  ChargeMode `json:"mode"`
}

// Listing carries the pricing inputs of a catalog listing. Catalog storage and
// search own the full record; the engine only ever sees this slice of it.
type Listing struct {
	ID           uuid.UUID      `json:"id"`
	SellerID     uuid.UUID      `json:"seller_id"`
	SellerClass  SellerClass    `json:"seller_class"`
	NightlyPrice int64          `json:"nightly_price"` // base-currency units per billing unit
	Options      []RentalOption `json:"options,omitempty"`
}

// Option returns the configured rental option with the given id.
func (l *Listing) Option(id string) (RentalOption, bool) {
	for _, opt := range l.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return RentalOption{}, false
}

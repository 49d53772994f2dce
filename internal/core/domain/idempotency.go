package domain

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/shopspring/decimal"
)

// BuildIdempotencyKey derives the deterministic key identifying one distinct
// (booking, display amount, display currency) triple. Hashing keeps the key
// fixed-width regardless of how the collaborating checkout flow shapes its
// booking ids.
func BuildIdempotencyKey(bookingID string, displayAmount decimal.Decimal, currency string) string {
	sum := sha256.Sum256([]byte(bookingID + "|" + displayAmount.String() + "|" + currency))
	return hex.EncodeToString(sum[:])
}

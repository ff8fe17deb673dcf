package models

import (
	"fmt"

	"github.com/boardhaven/commerce/models/enum"
)

type CartItem struct {
	ID         string           `json:"id"`
	Type       enum.ProductType `json:"type"`
	PriceCents int64            `json:"price_cents"`
	Quantity   int64            `json:"quantity,omitempty"`
}

// LineTotal treats a missing quantity as one unit.
func (ci CartItem) LineTotal() int64 {
	qty := ci.Quantity
	if qty <= 0 {
		qty = 1
	}
	return ci.PriceCents * qty
}

// FormatCents renders an amount of cents as a dollar string, e.g. 2999 -> "$29.99".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

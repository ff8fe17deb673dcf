package models

import (
	"time"

	"github.com/boardhaven/commerce/models/enum"
)

type Product struct {
	ID         string           `json:"id"`
	Type       enum.ProductType `json:"type"`
	Name       string           `json:"name"`
	PriceCents int64            `json:"price_cents"`
	Barcode    string           `json:"barcode,omitempty"`
	SKU        string           `json:"sku,omitempty"`
	Active     bool             `json:"active"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

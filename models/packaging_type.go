package models

import "time"

// PackagingType is a catalog entry for a shippable box or envelope SKU,
// matched by barcode/SKU equality independently of order contents.
type PackagingType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

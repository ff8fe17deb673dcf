package models

import (
	"time"

	"github.com/boardhaven/commerce/models/enum"
)

type Order struct {
	ID              string           `json:"id"`
	Status          enum.OrderStatus `json:"status"`
	UserID          string           `json:"user_id,omitempty"`
	Email           string           `json:"email"`
	SubtotalCents   int64            `json:"subtotal_cents"`
	DiscountCents   int64            `json:"discount_cents"`
	TotalCents      int64            `json:"total_cents"`
	PromoCodeID     string           `json:"promo_code_id,omitempty"`
	PromoCode       string           `json:"promo_code,omitempty"`
	PackagingTypeID string           `json:"packaging_type_id,omitempty"`
	StripeSessionID string           `json:"stripe_session_id,omitempty"`
	Items           []*OrderItem     `json:"items,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type OrderItem struct {
	ID             string           `json:"id"`
	OrderID        string           `json:"order_id"`
	ProductID      string           `json:"product_id"`
	ProductType    enum.ProductType `json:"product_type"`
	Name           string           `json:"name"`
	UnitPriceCents int64            `json:"unit_price_cents"`
	Quantity       int64            `json:"quantity"`
	Barcode        string           `json:"barcode,omitempty"`
	SKU            string           `json:"sku,omitempty"`
}

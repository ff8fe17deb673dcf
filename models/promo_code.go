package models

import (
	"time"

	"github.com/boardhaven/commerce/models/enum"
)

// PromoCode is a discount coupon with usage limits and scope restrictions.
// Codes are matched case-insensitively; once expired they are immutable.
type PromoCode struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	Description      string            `json:"description,omitempty"`
	Active           bool              `json:"active"`
	DiscountType     enum.DiscountType `json:"discount_type"`
	PercentOff       int64             `json:"percent_off,omitempty"`
	AmountOffCents   int64             `json:"amount_off_cents,omitempty"`
	MaxDiscountCents int64             `json:"max_discount_cents,omitempty"`
	MinOrderCents    int64             `json:"min_order_cents,omitempty"`
	StartsAt         *time.Time        `json:"starts_at,omitempty"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
	MaxUses          int               `json:"max_uses,omitempty"`
	CurrentUses      int               `json:"current_uses"`
	MaxUsesPerUser   int               `json:"max_uses_per_user,omitempty"`
	AppliesToGames   bool              `json:"applies_to_games"`
	AppliesToMerch   bool              `json:"applies_to_merch"`
	IncludedProducts []string          `json:"included_products,omitempty"`
	ExcludedProducts []string          `json:"excluded_products,omitempty"`
	NewCustomersOnly bool              `json:"new_customers_only"`
	SpecificUserIDs  []string          `json:"specific_user_ids,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// PromoCodeUsage records one successful redemption. Rows are append-only and
// exist solely to enforce per-user caps, including the client-IP fallback that
// stops guests from rotating email addresses.
type PromoCodeUsage struct {
	ID          string    `json:"id"`
	PromoCodeID string    `json:"promo_code_id"`
	UserID      string    `json:"user_id,omitempty"`
	UserEmail   string    `json:"user_email,omitempty"`
	ClientIP    string    `json:"client_ip,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ValidatePromoRequest struct {
	Code      string     `json:"code"`
	CartItems []CartItem `json:"cart_items"`
	UserEmail string     `json:"user_email,omitempty"`

	// Filled in by the handler from the session and request headers, never
	// trusted from the body.
	UserID   string `json:"-"`
	ClientIP string `json:"-"`
}

type ValidatePromoResponse struct {
	Valid     bool               `json:"valid"`
	Error     string             `json:"error,omitempty"`
	PromoCode *PromoCode         `json:"promo_code,omitempty"`
	Discount  *DiscountBreakdown `json:"discount,omitempty"`
	Message   string             `json:"message,omitempty"`
}

type DiscountBreakdown struct {
	Cents             int64  `json:"cents"`
	Formatted         string `json:"formatted"`
	EligibleItemCount int    `json:"eligible_item_count"`
}

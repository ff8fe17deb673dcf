package models

type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CheckoutRequest struct {
	Items     []CheckoutItem `json:"items"`
	Email     string         `json:"email"`
	PromoCode string         `json:"promo_code,omitempty"`

	UserID   string `json:"-"`
	ClientIP string `json:"-"`
}

type CheckoutSession struct {
	OrderID    string `json:"order_id"`
	SessionID  string `json:"session_id"`
	SessionURL string `json:"session_url"`
}

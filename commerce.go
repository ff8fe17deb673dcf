package commerce

import (
	"context"

	"github.com/boardhaven/commerce/models"
)

// Commerce is the storefront-facing facade: checkout session creation against
// Stripe plus webhook consumption. Admin and warehouse surfaces talk to the
// entity services directly.
type Commerce interface {
	CreateCheckoutSession(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutSession, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	RecentWebhookEvents() []WebhookRecord
	Close()
}

// CheckoutError is a business-rule rejection of a checkout request, reported
// to the client as a 400 rather than a 500.
type CheckoutError struct {
	Message string
}

func (e *CheckoutError) Error() string {
	return e.Message
}

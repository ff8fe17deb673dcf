package server

import (
	"context"
	"testing"

	commerce "github.com/boardhaven/commerce"
	"github.com/boardhaven/commerce/config"
	"github.com/boardhaven/commerce/models"
)

type stubCommerce struct {
	closed bool
}

func (s *stubCommerce) CreateCheckoutSession(context.Context, *models.CheckoutRequest) (*models.CheckoutSession, error) {
	return nil, nil
}

func (s *stubCommerce) HandleStripeWebhook(context.Context, []byte, string) error { return nil }

func (s *stubCommerce) RecentWebhookEvents() []commerce.WebhookRecord { return nil }

func (s *stubCommerce) Close() { s.closed = true }

func TestShutdown_DrainsCommerce(t *testing.T) {
	stub := &stubCommerce{}
	srv := NewServer(&config.Config{}, stub, nil, nil, nil, nil, nil, nil, nil, nil)

	if err := srv.shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if !stub.closed {
		t.Error("Expected shutdown to close the commerce facade and drain its workers")
	}
}

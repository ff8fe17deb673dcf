package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/catalog"
	"github.com/boardhaven/commerce/config"
	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/order"
	"github.com/boardhaven/commerce/promo"
)

type StripeCommerce struct {
	client        *client.API
	webhookSecret string
	successURL    string
	cancelURL     string

	catalog    catalog.Service
	order      order.Service
	promo      promo.Service
	workerPool *WorkerPool
	webhookLog *WebhookLog
	logger     *zap.Logger
}

func NewStripeCommerce(
	cfg *config.Config,
	catalogService catalog.Service,
	orderService order.Service,
	promoService promo.Service,
	logger *zap.Logger,
) Commerce {
	sc := &StripeCommerce{
		client:        client.New(cfg.Stripe.SecretKey, nil),
		webhookSecret: cfg.Stripe.WebhookSecret,
		successURL:    cfg.Stripe.SuccessURL,
		cancelURL:     cfg.Stripe.CancelURL,
		catalog:       catalogService,
		order:         orderService,
		promo:         promoService,
		webhookLog:    NewWebhookLog(webhookLogCapacity),
		logger:        logger,
	}

	sc.workerPool = NewWorkerPool(4, 1000, sc, logger)
	sc.workerPool.Start()

	return sc
}

// CreateCheckoutSession prices the cart server-side, validates any promo code
// against it, creates the pending order, and opens a Stripe Checkout Session
// carrying the discount. Payment capture itself stays with Stripe.
func (sc *StripeCommerce) CreateCheckoutSession(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutSession, error) {
	if len(req.Items) == 0 {
		return nil, &CheckoutError{Message: "Cart is empty"}
	}
	if req.Email == "" {
		return nil, &CheckoutError{Message: "Email is required"}
	}

	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := sc.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[string]*models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	var subtotal int64
	orderItems := make([]*models.OrderItem, 0, len(req.Items))
	cartItems := make([]models.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok || !product.Active {
			return nil, &CheckoutError{Message: fmt.Sprintf("Product %s is not available", item.ProductID)}
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		subtotal += product.PriceCents * qty
		orderItems = append(orderItems, &models.OrderItem{
			ProductID:      product.ID,
			ProductType:    product.Type,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       qty,
			Barcode:        product.Barcode,
			SKU:            product.SKU,
		})
		cartItems = append(cartItems, models.CartItem{
			ID:         product.ID,
			Type:       product.Type,
			PriceCents: product.PriceCents,
			Quantity:   qty,
		})
	}

	var discountCents int64
	var promoCodeID string
	if req.PromoCode != "" {
		validation, err := sc.promo.Validate(ctx, &models.ValidatePromoRequest{
			Code:      req.PromoCode,
			CartItems: cartItems,
			UserEmail: req.Email,
			UserID:    req.UserID,
			ClientIP:  req.ClientIP,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to validate promo code: %w", err)
		}
		if !validation.Valid {
			return nil, &CheckoutError{Message: validation.Error}
		}
		discountCents = validation.Discount.Cents
		promoCodeID = validation.PromoCode.ID
	}

	newOrder := &models.Order{
		UserID:        req.UserID,
		Email:         req.Email,
		SubtotalCents: subtotal,
		DiscountCents: discountCents,
		TotalCents:    subtotal - discountCents,
		PromoCodeID:   promoCodeID,
		PromoCode:     req.PromoCode,
		Items:         orderItems,
	}
	if err = sc.order.Create(ctx, newOrder); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(sc.successURL),
		CancelURL:     stripe.String(sc.cancelURL),
		CustomerEmail: stripe.String(req.Email),
	}
	for _, item := range orderItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(item.UnitPriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	if discountCents > 0 {
		coupon, err := sc.client.Coupons.New(&stripe.CouponParams{
			AmountOff: stripe.Int64(discountCents),
			Currency:  stripe.String(string(stripe.CurrencyUSD)),
			Duration:  stripe.String(string(stripe.CouponDurationOnce)),
			Name:      stripe.String(newOrder.PromoCode),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Stripe coupon: %w", err)
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(coupon.ID)},
		}
	}

	params.AddMetadata("order_id", newOrder.ID)
	params.AddMetadata("promo_code_id", promoCodeID)
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("user_email", req.Email)
	params.AddMetadata("client_ip", req.ClientIP)

	session, err := sc.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create Stripe checkout session: %w", err)
	}

	return &models.CheckoutSession{
		OrderID:    newOrder.ID,
		SessionID:  session.ID,
		SessionURL: session.URL,
	}, nil
}

// HandleStripeWebhook verifies the signature, records the delivery in the
// diagnostics ring, and hands the event to the worker pool.
func (sc *StripeCommerce) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, sc.webhookSecret)
	if err != nil {
		return fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	sc.webhookLog.Record(WebhookRecord{
		EventID:    event.ID,
		EventType:  string(event.Type),
		ReceivedAt: time.Now(),
	})

	// Processing happens off the request path; detach from the request context.
	sc.workerPool.Submit(context.WithoutCancel(ctx), &event)
	return nil
}

func (sc *StripeCommerce) processEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return sc.handleCheckoutCompleted(ctx, event)
	default:
		sc.logger.Debug("ignoring webhook event", zap.String("event_type", string(event.Type)))
		return nil
	}
}

func (sc *StripeCommerce) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	orderID := session.Metadata["order_id"]
	if orderID == "" {
		return fmt.Errorf("checkout session %s carries no order_id", session.ID)
	}

	transitioned, err := sc.order.MarkPaid(ctx, orderID, session.ID)
	if err != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
	}

	// Promo usage is consumed exactly once, on the delivery that actually
	// transitioned the order.
	if promoCodeID := session.Metadata["promo_code_id"]; transitioned && promoCodeID != "" {
		identity := promo.Identity{
			UserID:   session.Metadata["user_id"],
			Email:    session.Metadata["user_email"],
			ClientIP: session.Metadata["client_ip"],
		}
		if err = sc.promo.Redeem(ctx, promoCodeID, identity, orderID); err != nil {
			return fmt.Errorf("failed to redeem promo code for order %s: %w", orderID, err)
		}
	}

	return nil
}

func (sc *StripeCommerce) RecentWebhookEvents() []WebhookRecord {
	return sc.webhookLog.Recent()
}

func (sc *StripeCommerce) Close() {
	sc.workerPool.Stop()
}

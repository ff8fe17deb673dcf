package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, order *models.Order) error
	GetWithItems(ctx context.Context, tx pgx.Tx, id string) (*models.Order, error)
	List(ctx context.Context, tx pgx.Tx, limit, offset uint64) ([]*models.Order, error)
	SetStatus(ctx context.Context, tx pgx.Tx, id string, status enum.OrderStatus) error
	SetPackaging(ctx context.Context, tx pgx.Tx, id, packagingTypeID string) error
	MarkPaid(ctx context.Context, tx pgx.Tx, id, stripeSessionID string) error
	CreateStatusEvent(ctx context.Context, tx pgx.Tx, orderID string, from, to enum.OrderStatus) error
	HasCompletedOrders(ctx context.Context, tx pgx.Tx, userID, email string) (bool, error)
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

func (r *repository) Create(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	const query = `
    INSERT INTO orders (id, status, user_id, email, subtotal_cents, discount_cents, total_cents,
        promo_code_id, promo_code, created_at, updated_at)
    VALUES (@id, @status, @user_id, @email, @subtotal_cents, @discount_cents, @total_cents,
        @promo_code_id, @promo_code, NOW(), NOW())
    `

	args := pgx.NamedArgs{
		"id":             order.ID,
		"status":         order.Status,
		"user_id":        order.UserID,
		"email":          order.Email,
		"subtotal_cents": order.SubtotalCents,
		"discount_cents": order.DiscountCents,
		"total_cents":    order.TotalCents,
		"promo_code_id":  nullable(order.PromoCodeID),
		"promo_code":     order.PromoCode,
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	const itemQuery = `
    INSERT INTO order_items (id, order_id, product_id, product_type, name, unit_price_cents, quantity, barcode, sku)
    VALUES (@id, @order_id, @product_id, @product_type, @name, @unit_price_cents, @quantity, @barcode, @sku)
    `

	for _, item := range order.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = order.ID
		itemArgs := pgx.NamedArgs{
			"id":               item.ID,
			"order_id":         item.OrderID,
			"product_id":       item.ProductID,
			"product_type":     item.ProductType,
			"name":             item.Name,
			"unit_price_cents": item.UnitPriceCents,
			"quantity":         item.Quantity,
			"barcode":          item.Barcode,
			"sku":              item.SKU,
		}
		if _, err := tx.Exec(ctx, itemQuery, itemArgs); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

func (r *repository) GetWithItems(ctx context.Context, tx pgx.Tx, id string) (*models.Order, error) {
	const query = `
    SELECT id, status, user_id, email, subtotal_cents, discount_cents, total_cents,
        promo_code_id, promo_code, packaging_type_id, stripe_session_id, created_at, updated_at
    FROM orders WHERE id = @id
    `

	order, err := scanOrder(tx.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
	if err != nil {
		return nil, err
	}

	const itemQuery = `
    SELECT id, order_id, product_id, product_type, name, unit_price_cents, quantity, barcode, sku
    FROM order_items WHERE order_id = @order_id ORDER BY id
    `

	rows, err := tx.Query(ctx, itemQuery, pgx.NamedArgs{"order_id": id})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var barcode, sku *string
		if err = rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductType,
			&item.Name, &item.UnitPriceCents, &item.Quantity, &barcode, &sku); err != nil {
			return nil, err
		}
		if barcode != nil {
			item.Barcode = *barcode
		}
		if sku != nil {
			item.SKU = *sku
		}
		order.Items = append(order.Items, &item)
	}

	return order, rows.Err()
}

func (r *repository) List(ctx context.Context, tx pgx.Tx, limit, offset uint64) ([]*models.Order, error) {
	const query = `
    SELECT id, status, user_id, email, subtotal_cents, discount_cents, total_cents,
        promo_code_id, promo_code, packaging_type_id, stripe_session_id, created_at, updated_at
    FROM orders ORDER BY created_at DESC LIMIT @limit OFFSET @offset
    `

	rows, err := tx.Query(ctx, query, pgx.NamedArgs{"limit": limit, "offset": offset})
	if err != nil {
		r.logger.Error("error listing orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *repository) SetStatus(ctx context.Context, tx pgx.Tx, id string, status enum.OrderStatus) error {
	const query = `UPDATE orders SET status = @status, updated_at = @updated_at WHERE id = @id`
	args := pgx.NamedArgs{"id": id, "status": status, "updated_at": time.Now()}
	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
	}
	return nil
}

func (r *repository) SetPackaging(ctx context.Context, tx pgx.Tx, id, packagingTypeID string) error {
	const query = `UPDATE orders SET packaging_type_id = @packaging_type_id, updated_at = @updated_at WHERE id = @id`
	args := pgx.NamedArgs{"id": id, "packaging_type_id": packagingTypeID, "updated_at": time.Now()}
	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to set order packaging: %w", err)
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, tx pgx.Tx, id, stripeSessionID string) error {
	const query = `
    UPDATE orders SET status = @status, stripe_session_id = @stripe_session_id, updated_at = @updated_at
    WHERE id = @id
    `
	args := pgx.NamedArgs{
		"id":                id,
		"status":            enum.OrderStatusPaid,
		"stripe_session_id": stripeSessionID,
		"updated_at":        time.Now(),
	}
	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}

func (r *repository) CreateStatusEvent(ctx context.Context, tx pgx.Tx, orderID string, from, to enum.OrderStatus) error {
	const query = `
    INSERT INTO order_status_events (id, order_id, from_status, to_status, created_at)
    VALUES (@id, @order_id, @from_status, @to_status, NOW())
    `
	args := pgx.NamedArgs{
		"id":          uuid.NewString(),
		"order_id":    orderID,
		"from_status": from,
		"to_status":   to,
	}
	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to record order status event: %w", err)
	}
	return nil
}

// HasCompletedOrders reports whether the identity has any prior order that is
// neither pending nor cancelled. Used by the promo validator's
// new-customers-only check.
func (r *repository) HasCompletedOrders(ctx context.Context, tx pgx.Tx, userID, email string) (bool, error) {
	const query = `
    SELECT EXISTS (
        SELECT 1 FROM orders
        WHERE status NOT IN ('pending', 'cancelled')
          AND ((@user_id <> '' AND user_id = @user_id) OR (@email <> '' AND LOWER(email) = LOWER(@email)))
    )
    `

	var exists bool
	if err := tx.QueryRow(ctx, query, pgx.NamedArgs{"user_id": userID, "email": email}).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check order history: %w", err)
	}

	return exists, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	var promoCodeID, packagingTypeID, stripeSessionID *string
	err := row.Scan(
		&order.ID,
		&order.Status,
		&order.UserID,
		&order.Email,
		&order.SubtotalCents,
		&order.DiscountCents,
		&order.TotalCents,
		&promoCodeID,
		&order.PromoCode,
		&packagingTypeID,
		&stripeSessionID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if promoCodeID != nil {
		order.PromoCodeID = *promoCodeID
	}
	if packagingTypeID != nil {
		order.PackagingTypeID = *packagingTypeID
	}
	if stripeSessionID != nil {
		order.StripeSessionID = *stripeSessionID
	}
	return &order, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.Fulfillment, error)
	GetByOrderID(ctx context.Context, tx pgx.Tx, orderID string) (*models.Fulfillment, error)
	Create(ctx context.Context, tx pgx.Tx, fulfillment *models.Fulfillment) error
	SetPackaging(ctx context.Context, tx pgx.Tx, id, packagingTypeID string) error
	SetStatus(ctx context.Context, tx pgx.Tx, id string, status enum.FulfillmentStatus) error
	CreateScan(ctx context.Context, tx pgx.Tx, scan *models.FulfillmentScan) error
	ListScans(ctx context.Context, tx pgx.Tx, fulfillmentID string) ([]*models.FulfillmentScan, error)
	DeleteScan(ctx context.Context, tx pgx.Tx, id string) (string, error)
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

// GetByID returns (nil, nil) when no such fulfillment exists.
func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.Fulfillment, error) {
	const query = `
    SELECT id, order_id, status, packaging_type_id, created_at, updated_at
    FROM fulfillments WHERE id = @id
    `
	return scanFulfillment(tx.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
}

// GetByOrderID returns (nil, nil) when the order has no fulfillment yet.
func (r *repository) GetByOrderID(ctx context.Context, tx pgx.Tx, orderID string) (*models.Fulfillment, error) {
	const query = `
    SELECT id, order_id, status, packaging_type_id, created_at, updated_at
    FROM fulfillments WHERE order_id = @order_id
    `
	return scanFulfillment(tx.QueryRow(ctx, query, pgx.NamedArgs{"order_id": orderID}))
}

func scanFulfillment(row pgx.Row) (*models.Fulfillment, error) {
	var f models.Fulfillment
	var packagingTypeID *string
	err := row.Scan(&f.ID, &f.OrderID, &f.Status, &packagingTypeID, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fulfillment: %w", err)
	}
	if packagingTypeID != nil {
		f.PackagingTypeID = *packagingTypeID
	}

	return &f, nil
}

func (r *repository) Create(ctx context.Context, tx pgx.Tx, fulfillment *models.Fulfillment) error {
	const query = `
    INSERT INTO fulfillments (id, order_id, status, created_at, updated_at)
    VALUES (@id, @order_id, @status, NOW(), NOW())
    `

	args := pgx.NamedArgs{
		"id":       fulfillment.ID,
		"order_id": fulfillment.OrderID,
		"status":   fulfillment.Status,
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to create fulfillment: %w", err)
	}

	return nil
}

func (r *repository) SetPackaging(ctx context.Context, tx pgx.Tx, id, packagingTypeID string) error {
	const query = `UPDATE fulfillments SET packaging_type_id = @packaging_type_id, updated_at = @updated_at WHERE id = @id`
	args := pgx.NamedArgs{"id": id, "packaging_type_id": packagingTypeID, "updated_at": time.Now()}
	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to set fulfillment packaging: %w", err)
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, tx pgx.Tx, id string, status enum.FulfillmentStatus) error {
	const query = `UPDATE fulfillments SET status = @status, updated_at = @updated_at WHERE id = @id`
	args := pgx.NamedArgs{"id": id, "status": status, "updated_at": time.Now()}
	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to set fulfillment status: %w", err)
	}
	return nil
}

func (r *repository) CreateScan(ctx context.Context, tx pgx.Tx, scan *models.FulfillmentScan) error {
	const query = `
    INSERT INTO fulfillment_scans (id, fulfillment_id, order_item_id, barcode, quantity, matched, error_message, created_at)
    VALUES (@id, @fulfillment_id, @order_item_id, @barcode, @quantity, @matched, @error_message, NOW())
    `

	var orderItemID *string
	if scan.OrderItemID != "" {
		orderItemID = &scan.OrderItemID
	}

	args := pgx.NamedArgs{
		"id":             scan.ID,
		"fulfillment_id": scan.FulfillmentID,
		"order_item_id":  orderItemID,
		"barcode":        scan.Barcode,
		"quantity":       scan.Quantity,
		"matched":        scan.Matched,
		"error_message":  scan.ErrorMessage,
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to record fulfillment scan: %w", err)
	}

	return nil
}

func (r *repository) ListScans(ctx context.Context, tx pgx.Tx, fulfillmentID string) ([]*models.FulfillmentScan, error) {
	const query = `
    SELECT id, fulfillment_id, order_item_id, barcode, quantity, matched, error_message, created_at
    FROM fulfillment_scans WHERE fulfillment_id = @fulfillment_id ORDER BY created_at
    `

	rows, err := tx.Query(ctx, query, pgx.NamedArgs{"fulfillment_id": fulfillmentID})
	if err != nil {
		r.logger.Error("error listing fulfillment scans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var scans []*models.FulfillmentScan
	for rows.Next() {
		var scan models.FulfillmentScan
		var orderItemID, errorMessage *string
		if err = rows.Scan(&scan.ID, &scan.FulfillmentID, &orderItemID, &scan.Barcode,
			&scan.Quantity, &scan.Matched, &errorMessage, &scan.CreatedAt); err != nil {
			return nil, err
		}
		if orderItemID != nil {
			scan.OrderItemID = *orderItemID
		}
		if errorMessage != nil {
			scan.ErrorMessage = *errorMessage
		}
		scans = append(scans, &scan)
	}

	return scans, rows.Err()
}

// DeleteScan removes one scan row and returns the owning fulfillment ID, or
// "" when no such scan existed.
func (r *repository) DeleteScan(ctx context.Context, tx pgx.Tx, id string) (string, error) {
	const query = `DELETE FROM fulfillment_scans WHERE id = @id RETURNING fulfillment_id`

	var fulfillmentID string
	err := tx.QueryRow(ctx, query, pgx.NamedArgs{"id": id}).Scan(&fulfillmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete fulfillment scan: %w", err)
	}
	return fulfillmentID, nil
}

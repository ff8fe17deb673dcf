package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, product *models.Product) error
	GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, tx pgx.Tx, ids []string) ([]*models.Product, error)
	Update(ctx context.Context, tx pgx.Tx, product *models.Product) error
	Delete(ctx context.Context, tx pgx.Tx, id string) error
	List(ctx context.Context, tx pgx.Tx, limit, offset uint64, activeOnly bool) ([]*models.Product, error)
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

func (r *repository) Create(ctx context.Context, tx pgx.Tx, product *models.Product) error {
	const query = `
    INSERT INTO products (id, type, name, price_cents, barcode, sku, active, created_at, updated_at)
    VALUES (@id, @type, @name, @price_cents, @barcode, @sku, @active, NOW(), NOW())
    `

	args := pgx.NamedArgs{
		"id":          product.ID,
		"type":        product.Type,
		"name":        product.Name,
		"price_cents": product.PriceCents,
		"barcode":     product.Barcode,
		"sku":         product.SKU,
		"active":      product.Active,
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.Product, error) {
	const query = `
    SELECT id, type, name, price_cents, barcode, sku, active, created_at, updated_at
    FROM products WHERE id = @id
    `
	return scanProduct(tx.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
}

func (r *repository) GetByIDs(ctx context.Context, tx pgx.Tx, ids []string) ([]*models.Product, error) {
	const query = `
    SELECT id, type, name, price_cents, barcode, sku, active, created_at, updated_at
    FROM products WHERE id = ANY(@ids)
    `

	rows, err := tx.Query(ctx, query, pgx.NamedArgs{"ids": ids})
	if err != nil {
		r.logger.Error("error fetching products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *repository) Update(ctx context.Context, tx pgx.Tx, product *models.Product) error {
	const query = `
    UPDATE products SET
        type = @type,
        name = @name,
        price_cents = @price_cents,
        barcode = @barcode,
        sku = @sku,
        active = @active,
        updated_at = @updated_at
    WHERE id = @id
    `

	args := pgx.NamedArgs{
		"id":          product.ID,
		"type":        product.Type,
		"name":        product.Name,
		"price_cents": product.PriceCents,
		"barcode":     product.Barcode,
		"sku":         product.SKU,
		"active":      product.Active,
		"updated_at":  time.Now(),
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, tx pgx.Tx, limit, offset uint64, activeOnly bool) ([]*models.Product, error) {
	const query = `
    SELECT id, type, name, price_cents, barcode, sku, active, created_at, updated_at
    FROM products
    WHERE (NOT @active_only OR active)
    ORDER BY name LIMIT @limit OFFSET @offset
    `

	rows, err := tx.Query(ctx, query, pgx.NamedArgs{"limit": limit, "offset": offset, "active_only": activeOnly})
	if err != nil {
		r.logger.Error("error listing products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var product models.Product
	err := row.Scan(
		&product.ID,
		&product.Type,
		&product.Name,
		&product.PriceCents,
		&product.Barcode,
		&product.SKU,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

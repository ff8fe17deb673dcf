package packaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, packagingType *models.PackagingType) error
	GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.PackagingType, error)
	GetActiveBySKU(ctx context.Context, tx pgx.Tx, sku string) (*models.PackagingType, error)
	Update(ctx context.Context, tx pgx.Tx, packagingType *models.PackagingType) error
	List(ctx context.Context, tx pgx.Tx) ([]*models.PackagingType, error)
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

func (r *repository) Create(ctx context.Context, tx pgx.Tx, packagingType *models.PackagingType) error {
	const query = `
    INSERT INTO packaging_types (id, name, sku, active, created_at, updated_at)
    VALUES (@id, @name, @sku, @active, NOW(), NOW())
    `

	args := pgx.NamedArgs{
		"id":     packagingType.ID,
		"name":   packagingType.Name,
		"sku":    packagingType.SKU,
		"active": packagingType.Active,
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to create packaging type: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.PackagingType, error) {
	const query = `
    SELECT id, name, sku, active, created_at, updated_at
    FROM packaging_types WHERE id = @id
    `
	return scanPackagingType(tx.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
}

// GetActiveBySKU matches case-insensitively and returns (nil, nil) when no
// active packaging type carries the SKU.
func (r *repository) GetActiveBySKU(ctx context.Context, tx pgx.Tx, sku string) (*models.PackagingType, error) {
	const query = `
    SELECT id, name, sku, active, created_at, updated_at
    FROM packaging_types WHERE active AND UPPER(sku) = UPPER(@sku)
    `

	packagingType, err := scanPackagingType(tx.QueryRow(ctx, query, pgx.NamedArgs{"sku": sku}))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return packagingType, err
}

func (r *repository) Update(ctx context.Context, tx pgx.Tx, packagingType *models.PackagingType) error {
	const query = `
    UPDATE packaging_types SET name = @name, sku = @sku, active = @active, updated_at = @updated_at
    WHERE id = @id
    `

	args := pgx.NamedArgs{
		"id":         packagingType.ID,
		"name":       packagingType.Name,
		"sku":        packagingType.SKU,
		"active":     packagingType.Active,
		"updated_at": time.Now(),
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to update packaging type: %w", err)
	}

	return nil
}

func (r *repository) List(ctx context.Context, tx pgx.Tx) ([]*models.PackagingType, error) {
	const query = `SELECT id, name, sku, active, created_at, updated_at FROM packaging_types ORDER BY name`

	rows, err := tx.Query(ctx, query)
	if err != nil {
		r.logger.Error("error listing packaging types", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var packagingTypes []*models.PackagingType
	for rows.Next() {
		packagingType, err := scanPackagingType(rows)
		if err != nil {
			return nil, err
		}
		packagingTypes = append(packagingTypes, packagingType)
	}

	return packagingTypes, rows.Err()
}

func scanPackagingType(row pgx.Row) (*models.PackagingType, error) {
	var packagingType models.PackagingType
	err := row.Scan(
		&packagingType.ID,
		&packagingType.Name,
		&packagingType.SKU,
		&packagingType.Active,
		&packagingType.CreatedAt,
		&packagingType.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &packagingType, nil
}

package promo

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
	Create(ctx context.Context, tx pgx.Tx, code *models.PromoCode) error
	GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.PromoCode, error)
	GetByCode(ctx context.Context, tx pgx.Tx, code string) (*models.PromoCode, error)
	Update(ctx context.Context, tx pgx.Tx, code *models.PromoCode) error
	Delete(ctx context.Context, tx pgx.Tx, id string) error
	List(ctx context.Context, tx pgx.Tx, limit, offset uint64) ([]*models.PromoCode, error)
	IncrementUses(ctx context.Context, tx pgx.Tx, id string) error
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

const promoCodeColumns = `
    id, code, description, active, discount_type, percent_off, amount_off_cents,
    max_discount_cents, min_order_cents, starts_at, expires_at, max_uses,
    current_uses, max_uses_per_user, applies_to_games, applies_to_merch,
    included_products, excluded_products, new_customers_only, specific_user_ids,
    created_at, updated_at`

func (r *repository) Create(ctx context.Context, tx pgx.Tx, code *models.PromoCode) error {
	const query = `
    INSERT INTO promo_codes (id, code, description, active, discount_type, percent_off,
        amount_off_cents, max_discount_cents, min_order_cents, starts_at, expires_at,
        max_uses, current_uses, max_uses_per_user, applies_to_games, applies_to_merch,
        included_products, excluded_products, new_customers_only, specific_user_ids,
        created_at, updated_at)
    VALUES (@id, @code, @description, @active, @discount_type, @percent_off,
        @amount_off_cents, @max_discount_cents, @min_order_cents, @starts_at, @expires_at,
        @max_uses, @current_uses, @max_uses_per_user, @applies_to_games, @applies_to_merch,
        @included_products, @excluded_products, @new_customers_only, @specific_user_ids,
        NOW(), NOW())
    `

	args := pgx.NamedArgs{
		"id":                 code.ID,
		"code":               code.Code,
		"description":        code.Description,
		"active":             code.Active,
		"discount_type":      code.DiscountType,
		"percent_off":        code.PercentOff,
		"amount_off_cents":   code.AmountOffCents,
		"max_discount_cents": code.MaxDiscountCents,
		"min_order_cents":    code.MinOrderCents,
		"starts_at":          code.StartsAt,
		"expires_at":         code.ExpiresAt,
		"max_uses":           code.MaxUses,
		"current_uses":       code.CurrentUses,
		"max_uses_per_user":  code.MaxUsesPerUser,
		"applies_to_games":   code.AppliesToGames,
		"applies_to_merch":   code.AppliesToMerch,
		"included_products":  code.IncludedProducts,
		"excluded_products":  code.ExcludedProducts,
		"new_customers_only": code.NewCustomersOnly,
		"specific_user_ids":  code.SpecificUserIDs,
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.PromoCode, error) {
	query := `SELECT` + promoCodeColumns + ` FROM promo_codes WHERE id = @id`
	row := tx.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	return scanPromoCode(row)
}

// GetByCode matches case-insensitively on the trimmed code and returns
// (nil, nil) when no such code exists.
func (r *repository) GetByCode(ctx context.Context, tx pgx.Tx, code string) (*models.PromoCode, error) {
	query := `SELECT` + promoCodeColumns + ` FROM promo_codes WHERE LOWER(code) = LOWER(TRIM(@code))`
	row := tx.QueryRow(ctx, query, pgx.NamedArgs{"code": code})

	promoCode, err := scanPromoCode(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return promoCode, err
}

func (r *repository) Update(ctx context.Context, tx pgx.Tx, code *models.PromoCode) error {
	const query = `
    UPDATE promo_codes SET
        code = @code,
        description = @description,
        active = @active,
        discount_type = @discount_type,
        percent_off = @percent_off,
        amount_off_cents = @amount_off_cents,
        max_discount_cents = @max_discount_cents,
        min_order_cents = @min_order_cents,
        starts_at = @starts_at,
        expires_at = @expires_at,
        max_uses = @max_uses,
        max_uses_per_user = @max_uses_per_user,
        applies_to_games = @applies_to_games,
        applies_to_merch = @applies_to_merch,
        included_products = @included_products,
        excluded_products = @excluded_products,
        new_customers_only = @new_customers_only,
        specific_user_ids = @specific_user_ids,
        updated_at = @updated_at
    WHERE id = @id
    `

	args := pgx.NamedArgs{
		"id":                 code.ID,
		"code":               code.Code,
		"description":        code.Description,
		"active":             code.Active,
		"discount_type":      code.DiscountType,
		"percent_off":        code.PercentOff,
		"amount_off_cents":   code.AmountOffCents,
		"max_discount_cents": code.MaxDiscountCents,
		"min_order_cents":    code.MinOrderCents,
		"starts_at":          code.StartsAt,
		"expires_at":         code.ExpiresAt,
		"max_uses":           code.MaxUses,
		"max_uses_per_user":  code.MaxUsesPerUser,
		"applies_to_games":   code.AppliesToGames,
		"applies_to_merch":   code.AppliesToMerch,
		"included_products":  code.IncludedProducts,
		"excluded_products":  code.ExcludedProducts,
		"new_customers_only": code.NewCustomersOnly,
		"specific_user_ids":  code.SpecificUserIDs,
		"updated_at":         time.Now(),
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to update promo code: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM promo_codes WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, tx pgx.Tx, limit, offset uint64) ([]*models.PromoCode, error) {
	query := `SELECT` + promoCodeColumns + ` FROM promo_codes ORDER BY created_at DESC LIMIT @limit OFFSET @offset`
	rows, err := tx.Query(ctx, query, pgx.NamedArgs{"limit": limit, "offset": offset})
	if err != nil {
		r.logger.Error("error listing promo codes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var codes []*models.PromoCode
	for rows.Next() {
		code, err := scanPromoCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

func (r *repository) IncrementUses(ctx context.Context, tx pgx.Tx, id string) error {
	const query = `UPDATE promo_codes SET current_uses = current_uses + 1, updated_at = NOW() WHERE id = @id`
	if _, err := tx.Exec(ctx, query, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("failed to increment promo code uses: %w", err)
	}
	return nil
}

func scanPromoCode(row pgx.Row) (*models.PromoCode, error) {
	var code models.PromoCode
	err := row.Scan(
		&code.ID,
		&code.Code,
		&code.Description,
		&code.Active,
		&code.DiscountType,
		&code.PercentOff,
		&code.AmountOffCents,
		&code.MaxDiscountCents,
		&code.MinOrderCents,
		&code.StartsAt,
		&code.ExpiresAt,
		&code.MaxUses,
		&code.CurrentUses,
		&code.MaxUsesPerUser,
		&code.AppliesToGames,
		&code.AppliesToMerch,
		&code.IncludedProducts,
		&code.ExcludedProducts,
		&code.NewCustomersOnly,
		&code.SpecificUserIDs,
		&code.CreatedAt,
		&code.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

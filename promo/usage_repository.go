package promo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
)

var _ UsageRepository = (*usageRepository)(nil)

type UsageRepository interface {
	Create(ctx context.Context, tx pgx.Tx, usage *models.PromoCodeUsage) error
	CountByIdentity(ctx context.Context, tx pgx.Tx, promoCodeID string, identity Identity) (int, error)
}

type usageRepository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

func NewUsageRepository(conn driver.PostgresPool, logger *zap.Logger) UsageRepository {
	return &usageRepository{
		conn:   conn,
		logger: logger,
	}
}

func (r *usageRepository) Create(ctx context.Context, tx pgx.Tx, usage *models.PromoCodeUsage) error {
	const query = `
    INSERT INTO promo_code_usages (id, promo_code_id, user_id, user_email, client_ip, order_id, created_at)
    VALUES (@id, @promo_code_id, @user_id, @user_email, @client_ip, @order_id, NOW())
    `

	args := pgx.NamedArgs{
		"id":            usage.ID,
		"promo_code_id": usage.PromoCodeID,
		"user_id":       usage.UserID,
		"user_email":    usage.UserEmail,
		"client_ip":     usage.ClientIP,
		"order_id":      usage.OrderID,
	}

	if _, err := tx.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("failed to record promo code usage: %w", err)
	}

	return nil
}

// CountByIdentity counts prior redemptions by user ID or email. The client-IP
// clause only participates for guests, which is what blocks a guest from
// bypassing per-user caps with fresh email addresses.
func (r *usageRepository) CountByIdentity(ctx context.Context, tx pgx.Tx, promoCodeID string, identity Identity) (int, error) {
	const query = `
    SELECT COUNT(*) FROM promo_code_usages
    WHERE promo_code_id = @promo_code_id
      AND (
          (@user_id <> '' AND user_id = @user_id)
          OR (@user_email <> '' AND user_email = @user_email)
          OR (@is_guest AND @client_ip <> '' AND client_ip = @client_ip)
      )
    `

	args := pgx.NamedArgs{
		"promo_code_id": promoCodeID,
		"user_id":       identity.UserID,
		"user_email":    identity.Email,
		"client_ip":     identity.ClientIP,
		"is_guest":      identity.IsGuest(),
	}

	var count int
	if err := tx.QueryRow(ctx, query, args).Scan(&count); err != nil {
		r.logger.Error("error counting promo code usage", zap.Error(err))
		return 0, fmt.Errorf("failed to count promo code usage: %w", err)
	}

	return count, nil
}

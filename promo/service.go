package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
)

var ErrPromoCodeNotFound = errors.New("promo code not found")

// OrderHistory is the slice of the order store the validator needs: whether an
// identity has any prior order that is neither pending nor cancelled.
type OrderHistory interface {
	HasCompletedOrders(ctx context.Context, tx pgx.Tx, userID, email string) (bool, error)
}

type Service interface {
	Validate(ctx context.Context, req *models.ValidatePromoRequest) (*models.ValidatePromoResponse, error)
	Redeem(ctx context.Context, promoCodeID string, identity Identity, orderID string) error

	Create(ctx context.Context, code *models.PromoCode) error
	GetByID(ctx context.Context, id string) (*models.PromoCode, error)
	Update(ctx context.Context, code *models.PromoCode) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset uint64) ([]*models.PromoCode, error)
}

type service struct {
	repo               Repository
	usageRepo          UsageRepository
	orders             OrderHistory
	transactionManager *driver.TransactionManager
	logger             *zap.Logger
}

func NewService(repo Repository, usageRepo UsageRepository, orders OrderHistory, tm *driver.TransactionManager, logger *zap.Logger) Service {
	return &service{
		repo:               repo,
		usageRepo:          usageRepo,
		orders:             orders,
		transactionManager: tm,
		logger:             logger,
	}
}

// Validate fetches the code and the identity's usage history in one
// transaction, then runs the pure predicate chain over the snapshot. It never
// consumes a use; redemption happens at order completion.
func (s *service) Validate(ctx context.Context, req *models.ValidatePromoRequest) (*models.ValidatePromoResponse, error) {
	identity := Identity{
		UserID:   req.UserID,
		Email:    strings.TrimSpace(strings.ToLower(req.UserEmail)),
		ClientIP: req.ClientIP,
	}

	var resp *models.ValidatePromoResponse
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		code, err := s.repo.GetByCode(ctx, tx, req.Code)
		if err != nil {
			return err
		}
		if code == nil {
			resp = rejectionResponse(reject(ReasonNotFound))
			return nil
		}

		ec := &EvalContext{
			Code:     code,
			Items:    req.CartItems,
			Identity: identity,
			Now:      time.Now(),
		}

		if code.MaxUsesPerUser > 0 {
			ec.TimesUsed, err = s.usageRepo.CountByIdentity(ctx, tx, code.ID, identity)
			if err != nil {
				return err
			}
		}

		if code.NewCustomersOnly {
			ec.HasOrdered, err = s.orders.HasCompletedOrders(ctx, tx, identity.UserID, identity.Email)
			if err != nil {
				return err
			}
		}

		discount, rejection := Evaluate(ec)
		if rejection != nil {
			resp = rejectionResponse(rejection)
			return nil
		}

		resp = &models.ValidatePromoResponse{
			Valid:     true,
			PromoCode: code,
			Discount:  discount,
			Message:   "Promo code applied",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func rejectionResponse(rej *Rejection) *models.ValidatePromoResponse {
	return &models.ValidatePromoResponse{
		Valid: false,
		Error: rej.Message(),
	}
}

// Redeem consumes one use at order completion: the counter bump and the usage
// row land in the same transaction.
func (s *service) Redeem(ctx context.Context, promoCodeID string, identity Identity, orderID string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.IncrementUses(ctx, tx, promoCodeID); err != nil {
			return err
		}
		return s.usageRepo.Create(ctx, tx, &models.PromoCodeUsage{
			ID:          uuid.NewString(),
			PromoCodeID: promoCodeID,
			UserID:      identity.UserID,
			UserEmail:   identity.Email,
			ClientIP:    identity.ClientIP,
			OrderID:     orderID,
		})
	})
}

func (s *service) Create(ctx context.Context, code *models.PromoCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	code.Code = strings.TrimSpace(code.Code)
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.Create(ctx, tx, code)
	})
}

func (s *service) GetByID(ctx context.Context, id string) (*models.PromoCode, error) {
	var code *models.PromoCode
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		code, err = s.repo.GetByID(ctx, tx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPromoCodeNotFound
		}
		return err
	})
	return code, err
}

func (s *service) Update(ctx context.Context, code *models.PromoCode) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := s.repo.GetByID(ctx, tx, code.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPromoCodeNotFound
		}
		if err != nil {
			return err
		}

		// Expired codes are immutable.
		if existing.ExpiresAt != nil && time.Now().After(*existing.ExpiresAt) {
			return errors.New("cannot edit an expired promo code")
		}

		code.Code = strings.TrimSpace(code.Code)
		return s.repo.Update(ctx, tx, code)
	})
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *service) List(ctx context.Context, limit, offset uint64) ([]*models.PromoCode, error) {
	var codes []*models.PromoCode
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		codes, err = s.repo.List(ctx, tx, limit, offset)
		return err
	})
	return codes, err
}

package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

var allowedTransitions = map[enum.OrderStatus][]enum.OrderStatus{
	enum.OrderStatusPending:    {enum.OrderStatusPaid, enum.OrderStatusCancelled},
	enum.OrderStatusPaid:       {enum.OrderStatusProcessing, enum.OrderStatusCancelled},
	enum.OrderStatusProcessing: {enum.OrderStatusShipped, enum.OrderStatusCancelled},
	enum.OrderStatusShipped:    {enum.OrderStatusDelivered},
}

type Service interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, limit, offset uint64) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status enum.OrderStatus) (*models.Order, error)
	MarkPaid(ctx context.Context, id, stripeSessionID string) (bool, error)
}

type service struct {
	repo               Repository
	transactionManager *driver.TransactionManager
	logger             *zap.Logger
}

func NewService(repo Repository, tm *driver.TransactionManager, logger *zap.Logger) Service {
	return &service{
		repo:               repo,
		transactionManager: tm,
		logger:             logger,
	}
}

func (s *service) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = enum.OrderStatusPending
	}
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.Create(ctx, tx, order)
	})
}

func (s *service) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order *models.Order
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.repo.GetWithItems(ctx, tx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	})
	return order, err
}

func (s *service) List(ctx context.Context, limit, offset uint64) ([]*models.Order, error) {
	var orders []*models.Order
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		orders, err = s.repo.List(ctx, tx, limit, offset)
		return err
	})
	return orders, err
}

// UpdateStatus validates the transition, updates the order, and appends an
// audit event, all in one transaction.
func (s *service) UpdateStatus(ctx context.Context, id string, status enum.OrderStatus) (*models.Order, error) {
	var updated *models.Order
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.repo.GetWithItems(ctx, tx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if !transitionAllowed(order.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
		}

		if err = s.repo.SetStatus(ctx, tx, id, status); err != nil {
			return err
		}
		if err = s.repo.CreateStatusEvent(ctx, tx, id, order.Status, status); err != nil {
			return err
		}

		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// MarkPaid flips a pending order to paid and reports whether it transitioned.
// Webhook deliveries can repeat; a second completed event is a no-op and
// returns false so the caller does not redeem the promo code twice.
func (s *service) MarkPaid(ctx context.Context, id, stripeSessionID string) (bool, error) {
	var transitioned bool
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.repo.GetWithItems(ctx, tx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if order.Status != enum.OrderStatusPending {
			return nil
		}

		if err = s.repo.MarkPaid(ctx, tx, id, stripeSessionID); err != nil {
			return err
		}
		if err = s.repo.CreateStatusEvent(ctx, tx, id, order.Status, enum.OrderStatusPaid); err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	return transitioned, err
}

func transitionAllowed(from, to enum.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
)

var ErrProductNotFound = errors.New("product not found")

type Service interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset uint64, activeOnly bool) ([]*models.Product, error)
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

func (s *service) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.Create(ctx, tx, product)
	})
}

func (s *service) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product *models.Product
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		product, err = s.repo.GetByID(ctx, tx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	})
	return product, err
}

func (s *service) GetByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	var products []*models.Product
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		products, err = s.repo.GetByIDs(ctx, tx, ids)
		return err
	})
	return products, err
}

func (s *service) Update(ctx context.Context, product *models.Product) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.repo.GetByID(ctx, tx, product.ID); errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		} else if err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, product)
	})
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *service) List(ctx context.Context, limit, offset uint64, activeOnly bool) ([]*models.Product, error) {
	var products []*models.Product
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		products, err = s.repo.List(ctx, tx, limit, offset, activeOnly)
		return err
	})
	return products, err
}

package packaging

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
)

var ErrPackagingTypeNotFound = errors.New("packaging type not found")

type Service interface {
	Create(ctx context.Context, packagingType *models.PackagingType) error
	Update(ctx context.Context, packagingType *models.PackagingType) error
	List(ctx context.Context) ([]*models.PackagingType, error)
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

func (s *service) Create(ctx context.Context, packagingType *models.PackagingType) error {
	if packagingType.ID == "" {
		packagingType.ID = uuid.NewString()
	}
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.Create(ctx, tx, packagingType)
	})
}

func (s *service) Update(ctx context.Context, packagingType *models.PackagingType) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.repo.GetByID(ctx, tx, packagingType.ID); errors.Is(err, pgx.ErrNoRows) {
			return ErrPackagingTypeNotFound
		} else if err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, packagingType)
	})
}

func (s *service) List(ctx context.Context) ([]*models.PackagingType, error) {
	var packagingTypes []*models.PackagingType
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		packagingTypes, err = s.repo.List(ctx, tx)
		return err
	})
	return packagingTypes, err
}

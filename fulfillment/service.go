package fulfillment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrScanNotFound  = errors.New("scan not found")
)

// OrderStore is the slice of the order store the scan workflow needs.
type OrderStore interface {
	GetWithItems(ctx context.Context, tx pgx.Tx, id string) (*models.Order, error)
	SetStatus(ctx context.Context, tx pgx.Tx, id string, status enum.OrderStatus) error
	SetPackaging(ctx context.Context, tx pgx.Tx, id, packagingTypeID string) error
}

// PackagingLookup resolves a scanned code against the packaging catalog.
type PackagingLookup interface {
	GetActiveBySKU(ctx context.Context, tx pgx.Tx, sku string) (*models.PackagingType, error)
}

type Service interface {
	ProcessScan(ctx context.Context, req *models.ScanRequest) (*models.ScanResult, error)
	DeleteScan(ctx context.Context, id string) error
	GetProgress(ctx context.Context, orderID string) (*models.FulfillmentProgress, error)
}

type service struct {
	repo               Repository
	orders             OrderStore
	packaging          PackagingLookup
	transactionManager *driver.TransactionManager
	logger             *zap.Logger
}

func NewService(repo Repository, orders OrderStore, packaging PackagingLookup, tm *driver.TransactionManager, logger *zap.Logger) Service {
	return &service{
		repo:               repo,
		orders:             orders,
		packaging:          packaging,
		transactionManager: tm,
		logger:             logger,
	}
}

// ProcessScan runs the whole read-aggregate-then-credit step inside one
// transaction so two concurrent scans cannot both credit the last remaining
// unit of an item.
func (s *service) ProcessScan(ctx context.Context, req *models.ScanRequest) (*models.ScanResult, error) {
	var result *models.ScanResult
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.orders.GetWithItems(ctx, tx, req.OrderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		f, err := s.repo.GetByOrderID(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if f == nil {
			f = &models.Fulfillment{
				ID:      uuid.NewString(),
				OrderID: order.ID,
				Status:  enum.FulfillmentStatusInProgress,
			}
			if err = s.repo.Create(ctx, tx, f); err != nil {
				return err
			}
			if err = s.orders.SetStatus(ctx, tx, order.ID, enum.OrderStatusProcessing); err != nil {
				return err
			}
		}

		scans, err := s.repo.ListScans(ctx, tx, f.ID)
		if err != nil {
			return err
		}

		outcome := EvaluateScan(order.Items, SumScans(scans), req.Barcode, req.Quantity)
		normalized := NormalizeBarcode(req.Barcode)

		if outcome.Item == nil {
			// Not an order item; maybe the operator scanned a package SKU.
			packagingType, err := s.packaging.GetActiveBySKU(ctx, tx, normalized)
			if err != nil {
				return err
			}
			if packagingType != nil {
				if err = s.repo.SetPackaging(ctx, tx, f.ID, packagingType.ID); err != nil {
					return err
				}
				if err = s.orders.SetPackaging(ctx, tx, order.ID, packagingType.ID); err != nil {
					return err
				}
				result = &models.ScanResult{
					Matched:       true,
					IsPackaging:   true,
					PackagingType: packagingType,
					Message:       "Packaging selected: " + packagingType.Name,
				}
				return nil
			}

			if err = s.recordScan(ctx, tx, f.ID, "", normalized, 0, false, outcome.Message); err != nil {
				return err
			}
			result = &models.ScanResult{Matched: false, Message: outcome.Message}
			return nil
		}

		if !outcome.Matched {
			// Item found but already fully scanned.
			if err = s.recordScan(ctx, tx, f.ID, "", normalized, 0, false, outcome.Message); err != nil {
				return err
			}
			result = &models.ScanResult{
				Matched: false,
				Message: outcome.Message,
				Item:    scannedItem(outcome),
			}
			return nil
		}

		if err = s.recordScan(ctx, tx, f.ID, outcome.Item.ID, normalized, outcome.Credit, true, ""); err != nil {
			return err
		}

		if outcome.OrderComplete {
			if err = s.repo.SetStatus(ctx, tx, f.ID, enum.FulfillmentStatusComplete); err != nil {
				return err
			}
		}

		result = &models.ScanResult{
			Matched:       true,
			Item:          scannedItem(outcome),
			OrderComplete: outcome.OrderComplete,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *service) recordScan(ctx context.Context, tx pgx.Tx, fulfillmentID, orderItemID, barcode string, quantity int64, matched bool, errorMessage string) error {
	return s.repo.CreateScan(ctx, tx, &models.FulfillmentScan{
		ID:            uuid.NewString(),
		FulfillmentID: fulfillmentID,
		OrderItemID:   orderItemID,
		Barcode:       barcode,
		Quantity:      quantity,
		Matched:       matched,
		ErrorMessage:  errorMessage,
	})
}

func scannedItem(outcome ScanOutcome) *models.ScannedItem {
	return &models.ScannedItem{
		OrderItemID:     outcome.Item.ID,
		ProductName:     outcome.Item.Name,
		OrderedQuantity: outcome.Item.Quantity,
		ScannedQuantity: outcome.ScannedTotal,
		IsComplete:      outcome.ItemComplete,
	}
}

// DeleteScan is the manual undo: it removes one scan row and, when that scan
// was holding the fulfillment at complete, demotes it back to in progress so
// the status never outlives the totals it was derived from.
func (s *service) DeleteScan(ctx context.Context, id string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		fulfillmentID, err := s.repo.DeleteScan(ctx, tx, id)
		if err != nil {
			return err
		}
		if fulfillmentID == "" {
			return ErrScanNotFound
		}

		f, err := s.repo.GetByID(ctx, tx, fulfillmentID)
		if err != nil {
			return err
		}
		if f == nil || f.Status != enum.FulfillmentStatusComplete {
			return nil
		}

		order, err := s.orders.GetWithItems(ctx, tx, f.OrderID)
		if err != nil {
			return err
		}
		scans, err := s.repo.ListScans(ctx, tx, f.ID)
		if err != nil {
			return err
		}

		totals := SumScans(scans)
		for _, item := range order.Items {
			if totals[item.ID] < item.Quantity {
				return s.repo.SetStatus(ctx, tx, f.ID, enum.FulfillmentStatusInProgress)
			}
		}
		return nil
	})
}

func (s *service) GetProgress(ctx context.Context, orderID string) (*models.FulfillmentProgress, error) {
	var progress *models.FulfillmentProgress
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.orders.GetWithItems(ctx, tx, orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		progress = &models.FulfillmentProgress{
			OrderID: order.ID,
			Status:  enum.FulfillmentStatusInProgress,
		}

		totals := Progress{}
		f, err := s.repo.GetByOrderID(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if f != nil {
			progress.Status = f.Status
			progress.PackagingTypeID = f.PackagingTypeID
			scans, err := s.repo.ListScans(ctx, tx, f.ID)
			if err != nil {
				return err
			}
			totals = SumScans(scans)
		}

		progress.OrderComplete = len(order.Items) > 0
		for _, item := range order.Items {
			scanned := totals[item.ID]
			complete := scanned >= item.Quantity
			if !complete {
				progress.OrderComplete = false
			}
			progress.Items = append(progress.Items, &models.ScannedItem{
				OrderItemID:     item.ID,
				ProductName:     item.Name,
				OrderedQuantity: item.Quantity,
				ScannedQuantity: scanned,
				IsComplete:      complete,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return progress, nil
}

package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
)

type stubTx struct {
	pgx.Tx
}

func (stubTx) Commit(context.Context) error   { return nil }
func (stubTx) Rollback(context.Context) error { return nil }

type stubPool struct{}

func (stubPool) Begin(context.Context) (pgx.Tx, error) { return stubTx{}, nil }
func (stubPool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubPool) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (stubPool) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (stubPool) Close()                                                  {}

type stubFulfillmentRepo struct {
	fulfillment *models.Fulfillment
	scans       []*models.FulfillmentScan
	packagingID string
}

func (r *stubFulfillmentRepo) GetByID(_ context.Context, _ pgx.Tx, id string) (*models.Fulfillment, error) {
	if r.fulfillment != nil && r.fulfillment.ID == id {
		return r.fulfillment, nil
	}
	return nil, nil
}

func (r *stubFulfillmentRepo) GetByOrderID(_ context.Context, _ pgx.Tx, orderID string) (*models.Fulfillment, error) {
	if r.fulfillment != nil && r.fulfillment.OrderID == orderID {
		return r.fulfillment, nil
	}
	return nil, nil
}

func (r *stubFulfillmentRepo) Create(_ context.Context, _ pgx.Tx, f *models.Fulfillment) error {
	r.fulfillment = f
	return nil
}

func (r *stubFulfillmentRepo) SetPackaging(_ context.Context, _ pgx.Tx, _, packagingTypeID string) error {
	r.packagingID = packagingTypeID
	return nil
}

func (r *stubFulfillmentRepo) SetStatus(_ context.Context, _ pgx.Tx, _ string, status enum.FulfillmentStatus) error {
	r.fulfillment.Status = status
	return nil
}

func (r *stubFulfillmentRepo) CreateScan(_ context.Context, _ pgx.Tx, scan *models.FulfillmentScan) error {
	r.scans = append(r.scans, scan)
	return nil
}

func (r *stubFulfillmentRepo) ListScans(context.Context, pgx.Tx, string) ([]*models.FulfillmentScan, error) {
	return r.scans, nil
}

func (r *stubFulfillmentRepo) DeleteScan(_ context.Context, _ pgx.Tx, id string) (string, error) {
	for i, scan := range r.scans {
		if scan.ID == id {
			r.scans = append(r.scans[:i], r.scans[i+1:]...)
			return scan.FulfillmentID, nil
		}
	}
	return "", nil
}

type stubOrderStore struct {
	order       *models.Order
	statuses    []enum.OrderStatus
	packagingID string
}

func (s *stubOrderStore) GetWithItems(_ context.Context, _ pgx.Tx, id string) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, pgx.ErrNoRows
	}
	return s.order, nil
}

func (s *stubOrderStore) SetStatus(_ context.Context, _ pgx.Tx, _ string, status enum.OrderStatus) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *stubOrderStore) SetPackaging(_ context.Context, _ pgx.Tx, _, packagingTypeID string) error {
	s.packagingID = packagingTypeID
	return nil
}

type stubPackagingLookup struct {
	packagingType *models.PackagingType
}

func (p *stubPackagingLookup) GetActiveBySKU(_ context.Context, _ pgx.Tx, sku string) (*models.PackagingType, error) {
	if p.packagingType != nil && NormalizeBarcode(p.packagingType.SKU) == sku {
		return p.packagingType, nil
	}
	return nil, nil
}

func singleItemOrder() *models.Order {
	return &models.Order{
		ID:     "ord_1",
		Status: enum.OrderStatusPaid,
		Items: []*models.OrderItem{
			{ID: "oi_1", Name: "Harbor Masters", Barcode: "0123456789012", Quantity: 1},
		},
	}
}

func existingFulfillment(status enum.FulfillmentStatus) *models.Fulfillment {
	return &models.Fulfillment{ID: "ful_1", OrderID: "ord_1", Status: status}
}

func newTestService(repo Repository, orders OrderStore, packaging PackagingLookup) Service {
	tm := driver.NewTransactionManager(stubPool{}, zap.NewNop())
	return NewService(repo, orders, packaging, tm, zap.NewNop())
}

func TestProcessScan_UnmatchedBarcodeOnlyRecordsScan(t *testing.T) {
	repo := &stubFulfillmentRepo{fulfillment: existingFulfillment(enum.FulfillmentStatusInProgress)}
	orders := &stubOrderStore{order: singleItemOrder()}
	svc := newTestService(repo, orders, &stubPackagingLookup{})

	result, err := svc.ProcessScan(context.Background(), &models.ScanRequest{OrderID: "ord_1", Barcode: "ZZZ"})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}

	if result.Matched || result.IsPackaging {
		t.Errorf("Expected unmatched non-packaging result, got %+v", result)
	}
	if result.Message != `No item on this order matches barcode "ZZZ"` {
		t.Errorf("Unexpected message: %s", result.Message)
	}

	if len(repo.scans) != 1 {
		t.Fatalf("Expected exactly one scan row, got %d", len(repo.scans))
	}
	scan := repo.scans[0]
	if scan.Matched || scan.OrderItemID != "" || scan.Quantity != 0 || scan.ErrorMessage == "" {
		t.Errorf("Expected unmatched zero-quantity scan row with error text, got %+v", scan)
	}

	// Nothing else moves: no order status change, no packaging on either side,
	// fulfillment status untouched.
	if len(orders.statuses) != 0 {
		t.Errorf("Expected no order status changes, got %v", orders.statuses)
	}
	if repo.packagingID != "" || orders.packagingID != "" {
		t.Error("Expected no packaging assignment from an unmatched scan")
	}
	if repo.fulfillment.Status != enum.FulfillmentStatusInProgress {
		t.Errorf("Expected fulfillment status unchanged, got %s", repo.fulfillment.Status)
	}
}

func TestProcessScan_PackagingSKUSetsBothSidesWithoutScanRow(t *testing.T) {
	repo := &stubFulfillmentRepo{fulfillment: existingFulfillment(enum.FulfillmentStatusInProgress)}
	orders := &stubOrderStore{order: singleItemOrder()}
	packaging := &stubPackagingLookup{
		packagingType: &models.PackagingType{ID: "pt_1", Name: "Large Box", SKU: "BOX-L"},
	}
	svc := newTestService(repo, orders, packaging)

	result, err := svc.ProcessScan(context.Background(), &models.ScanRequest{OrderID: "ord_1", Barcode: "box-l"})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}

	if !result.Matched || !result.IsPackaging {
		t.Fatalf("Expected packaging match, got %+v", result)
	}
	if result.PackagingType == nil || result.PackagingType.ID != "pt_1" {
		t.Errorf("Expected packaging type pt_1, got %+v", result.PackagingType)
	}
	if result.Message != "Packaging selected: Large Box" {
		t.Errorf("Unexpected message: %s", result.Message)
	}

	if repo.packagingID != "pt_1" {
		t.Errorf("Expected packaging set on fulfillment, got %q", repo.packagingID)
	}
	if orders.packagingID != "pt_1" {
		t.Errorf("Expected packaging set on order, got %q", orders.packagingID)
	}
	if len(repo.scans) != 0 {
		t.Errorf("Expected no scan row for a packaging scan, got %d", len(repo.scans))
	}
}

func TestProcessScan_FirstScanCreatesFulfillmentAndStartsProcessing(t *testing.T) {
	repo := &stubFulfillmentRepo{}
	orders := &stubOrderStore{order: singleItemOrder()}
	svc := newTestService(repo, orders, &stubPackagingLookup{})

	result, err := svc.ProcessScan(context.Background(), &models.ScanRequest{OrderID: "ord_1", Barcode: "0123456789012"})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}

	if repo.fulfillment == nil || repo.fulfillment.OrderID != "ord_1" {
		t.Fatal("Expected fulfillment created lazily on first scan")
	}
	if len(orders.statuses) != 1 || orders.statuses[0] != enum.OrderStatusProcessing {
		t.Errorf("Expected order moved to processing, got %v", orders.statuses)
	}
	if !result.Matched || result.Item == nil || !result.Item.IsComplete {
		t.Errorf("Expected matched complete item, got %+v", result)
	}
	if !result.OrderComplete {
		t.Error("Expected single-item order complete after full scan")
	}
	if repo.fulfillment.Status != enum.FulfillmentStatusComplete {
		t.Errorf("Expected fulfillment complete, got %s", repo.fulfillment.Status)
	}
}

func TestProcessScan_OrderNotFound(t *testing.T) {
	svc := newTestService(&stubFulfillmentRepo{}, &stubOrderStore{}, &stubPackagingLookup{})

	_, err := svc.ProcessScan(context.Background(), &models.ScanRequest{OrderID: "missing", Barcode: "X"})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("Expected ErrOrderNotFound, got %v", err)
	}
}

func TestDeleteScan_UndoRevertsCompletedFulfillment(t *testing.T) {
	repo := &stubFulfillmentRepo{
		fulfillment: existingFulfillment(enum.FulfillmentStatusComplete),
		scans: []*models.FulfillmentScan{
			{ID: "scan_1", FulfillmentID: "ful_1", OrderItemID: "oi_1", Quantity: 1, Matched: true},
		},
	}
	orders := &stubOrderStore{order: singleItemOrder()}
	svc := newTestService(repo, orders, &stubPackagingLookup{})

	if err := svc.DeleteScan(context.Background(), "scan_1"); err != nil {
		t.Fatalf("DeleteScan returned error: %v", err)
	}

	if len(repo.scans) != 0 {
		t.Errorf("Expected scan removed, got %d rows", len(repo.scans))
	}
	if repo.fulfillment.Status != enum.FulfillmentStatusInProgress {
		t.Errorf("Expected fulfillment demoted to in progress, got %s", repo.fulfillment.Status)
	}
}

func TestDeleteScan_Missing(t *testing.T) {
	svc := newTestService(&stubFulfillmentRepo{}, &stubOrderStore{}, &stubPackagingLookup{})

	if err := svc.DeleteScan(context.Background(), "nope"); !errors.Is(err, ErrScanNotFound) {
		t.Fatalf("Expected ErrScanNotFound, got %v", err)
	}
}

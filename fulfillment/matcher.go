package fulfillment

import (
	"fmt"
	"strings"

	"github.com/boardhaven/commerce/models"
)

// NormalizeBarcode trims and uppercases a scanned code so comparisons are
// case-insensitive.
func NormalizeBarcode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Progress maps an order item ID to its total matched scan quantity.
type Progress map[string]int64

// SumScans folds the append-only scan log into per-item totals, counting
// matched scans only.
func SumScans(scans []*models.FulfillmentScan) Progress {
	progress := make(Progress, len(scans))
	for _, scan := range scans {
		if scan.Matched && scan.OrderItemID != "" {
			progress[scan.OrderItemID] += scan.Quantity
		}
	}
	return progress
}

// MatchItem returns the first order item whose barcode or SKU equals the
// normalized code. First match wins: duplicate barcodes across items on the
// same order have no defined tie-break, so the policy is simply item order.
func MatchItem(items []*models.OrderItem, normalized string) *models.OrderItem {
	for _, item := range items {
		if NormalizeBarcode(item.Barcode) == normalized && item.Barcode != "" {
			return item
		}
		if NormalizeBarcode(item.SKU) == normalized && item.SKU != "" {
			return item
		}
	}
	return nil
}

// ScanOutcome is the result of evaluating one scan against current progress.
// When Item is nil the barcode matched nothing and the caller may still try
// the packaging catalog.
type ScanOutcome struct {
	Item          *models.OrderItem
	Credit        int64
	ScannedTotal  int64
	ItemComplete  bool
	OrderComplete bool
	Matched       bool
	Message       string
}

// EvaluateScan applies one scan of quantity qty (defaulting to 1) to the
// order's items given the progress so far. Scans never over-credit: the
// credited quantity is capped at what the item still needs.
func EvaluateScan(items []*models.OrderItem, progress Progress, barcode string, qty int64) ScanOutcome {
	if qty <= 0 {
		qty = 1
	}
	normalized := NormalizeBarcode(barcode)

	item := MatchItem(items, normalized)
	if item == nil {
		return ScanOutcome{
			Message: fmt.Sprintf("No item on this order matches barcode %q", normalized),
		}
	}

	scanned := progress[item.ID]
	if scanned >= item.Quantity {
		return ScanOutcome{
			Item:         item,
			ScannedTotal: scanned,
			ItemComplete: true,
			Message:      fmt.Sprintf("Already scanned all %d of %s", item.Quantity, item.Name),
		}
	}

	credit := qty
	if remaining := item.Quantity - scanned; credit > remaining {
		credit = remaining
	}
	total := scanned + credit

	return ScanOutcome{
		Item:          item,
		Credit:        credit,
		ScannedTotal:  total,
		ItemComplete:  total >= item.Quantity,
		OrderComplete: orderComplete(items, progress, item.ID, total),
		Matched:       true,
	}
}

func orderComplete(items []*models.OrderItem, progress Progress, creditedID string, creditedTotal int64) bool {
	for _, item := range items {
		scanned := progress[item.ID]
		if item.ID == creditedID {
			scanned = creditedTotal
		}
		if scanned < item.Quantity {
			return false
		}
	}
	return true
}

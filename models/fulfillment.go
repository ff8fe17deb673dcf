package models

import (
	"time"

	"github.com/boardhaven/commerce/models/enum"
)

// Fulfillment tracks warehouse pick/pack progress for one order. It is created
// lazily on the first scan, which also moves the order to processing.
type Fulfillment struct {
	ID              string                 `json:"id"`
	OrderID         string                 `json:"order_id"`
	Status          enum.FulfillmentStatus `json:"status"`
	PackagingTypeID string                 `json:"packaging_type_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// FulfillmentScan is one barcode-read event, matched or unmatched. Rows are
// append-only; only an explicit admin undo removes one.
type FulfillmentScan struct {
	ID            string    `json:"id"`
	FulfillmentID string    `json:"fulfillment_id"`
	OrderItemID   string    `json:"order_item_id,omitempty"`
	Barcode       string    `json:"barcode"`
	Quantity      int64     `json:"quantity"`
	Matched       bool      `json:"matched"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ScanRequest struct {
	OrderID  string `json:"order_id"`
	Barcode  string `json:"barcode"`
	Quantity int64  `json:"quantity,omitempty"`
}

type ScannedItem struct {
	OrderItemID     string `json:"order_item_id"`
	ProductName     string `json:"product_name"`
	OrderedQuantity int64  `json:"ordered_quantity"`
	ScannedQuantity int64  `json:"scanned_quantity"`
	IsComplete      bool   `json:"is_complete"`
}

type ScanResult struct {
	Matched       bool           `json:"matched"`
	IsPackaging   bool           `json:"is_packaging,omitempty"`
	Message       string         `json:"message,omitempty"`
	Item          *ScannedItem   `json:"item,omitempty"`
	PackagingType *PackagingType `json:"packaging_type,omitempty"`
	OrderComplete bool           `json:"order_complete"`
}

type FulfillmentProgress struct {
	OrderID         string                 `json:"order_id"`
	Status          enum.FulfillmentStatus `json:"status"`
	PackagingTypeID string                 `json:"packaging_type_id,omitempty"`
	Items           []*ScannedItem         `json:"items"`
	OrderComplete   bool                   `json:"order_complete"`
}

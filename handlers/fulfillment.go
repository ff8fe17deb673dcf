package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/fulfillment"
	"github.com/boardhaven/commerce/models"
)

type FulfillmentHandler interface {
	Scan(c echo.Context) error
	DeleteScan(c echo.Context) error
	GetProgress(c echo.Context) error
}

type fulfillmentHandler struct {
	Fulfillment fulfillment.Service
	Logger      *zap.Logger
}

func NewFulfillmentHandler(fulfillmentService fulfillment.Service, logger *zap.Logger) FulfillmentHandler {
	return &fulfillmentHandler{
		Fulfillment: fulfillmentService,
		Logger:      logger,
	}
}

func (fh *fulfillmentHandler) Scan(c echo.Context) error {
	var req models.ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if req.OrderID == "" || req.Barcode == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "order_id and barcode are required"})
	}

	result, err := fh.Fulfillment.ProcessScan(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, fulfillment.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		fh.Logger.Error("Failed to process scan",
			zap.Error(err),
			zap.String("order_id", req.OrderID),
			zap.String("barcode", req.Barcode))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process scan"})
	}

	return c.JSON(http.StatusOK, result)
}

func (fh *fulfillmentHandler) DeleteScan(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id is required"})
	}

	if err := fh.Fulfillment.DeleteScan(c.Request().Context(), id); err != nil {
		if errors.Is(err, fulfillment.ErrScanNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Scan not found"})
		}
		fh.Logger.Error("Failed to delete scan", zap.Error(err), zap.String("id", id))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete scan"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (fh *fulfillmentHandler) GetProgress(c echo.Context) error {
	orderID := c.Param("orderID")

	progress, err := fh.Fulfillment.GetProgress(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, fulfillment.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		fh.Logger.Error("Failed to get fulfillment progress", zap.Error(err), zap.String("order_id", orderID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get fulfillment progress"})
	}

	return c.JSON(http.StatusOK, progress)
}

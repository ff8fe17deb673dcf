package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/models/enum"
	"github.com/boardhaven/commerce/order"
)

type OrderHandler interface {
	List(c echo.Context) error
	Get(c echo.Context) error
	UpdateStatus(c echo.Context) error
}

type orderHandler struct {
	Orders order.Service
	Logger *zap.Logger
}

func NewOrderHandler(orderService order.Service, logger *zap.Logger) OrderHandler {
	return &orderHandler{
		Orders: orderService,
		Logger: logger,
	}
}

func (oh *orderHandler) List(c echo.Context) error {
	limit, offset := paginationParams(c)

	orders, err := oh.Orders.List(c.Request().Context(), limit, offset)
	if err != nil {
		oh.Logger.Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list orders"})
	}

	return c.JSON(http.StatusOK, orders)
}

func (oh *orderHandler) Get(c echo.Context) error {
	id := c.Param("id")

	ord, err := oh.Orders.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		oh.Logger.Error("Failed to get order", zap.Error(err), zap.String("id", id))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get order"})
	}

	return c.JSON(http.StatusOK, ord)
}

func (oh *orderHandler) UpdateStatus(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		Status enum.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	ord, err := oh.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		case errors.Is(err, order.ErrInvalidTransition):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		oh.Logger.Error("Failed to update order status",
			zap.Error(err),
			zap.String("id", id),
			zap.String("status", string(req.Status)))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update order status"})
	}

	return c.JSON(http.StatusOK, ord)
}

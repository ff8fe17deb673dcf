package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	commerce "github.com/boardhaven/commerce"
	"github.com/boardhaven/commerce/middleware"
	"github.com/boardhaven/commerce/models"
)

type CheckoutHandler interface {
	CreateSession(c echo.Context) error
}

type checkoutHandler struct {
	Commerce commerce.Commerce
	Logger   *zap.Logger
}

func NewCheckoutHandler(svc commerce.Commerce, logger *zap.Logger) CheckoutHandler {
	return &checkoutHandler{
		Commerce: svc,
		Logger:   logger,
	}
}

func (ch *checkoutHandler) CreateSession(c echo.Context) error {
	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cart is empty"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email is required"})
	}

	req.UserID = c.Request().Header.Get("X-User-ID")
	req.ClientIP = middleware.ClientKey(c.Request())

	session, err := ch.Commerce.CreateCheckoutSession(c.Request().Context(), &req)
	if err != nil {
		var checkoutErr *commerce.CheckoutError
		if errors.As(err, &checkoutErr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": checkoutErr.Message})
		}
		ch.Logger.Error("Failed to create checkout session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create checkout session"})
	}

	return c.JSON(http.StatusOK, session)
}

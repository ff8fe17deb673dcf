package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	commerce "github.com/boardhaven/commerce"
)

type WebhookHandler interface {
	HandleStripeWebhook(c echo.Context) error
	RecentEvents(c echo.Context) error
}

type webhookHandler struct {
	Commerce commerce.Commerce
	Logger   *zap.Logger
}

func NewWebhookHandler(svc commerce.Commerce, logger *zap.Logger) WebhookHandler {
	return &webhookHandler{
		Commerce: svc,
		Logger:   logger,
	}
}

func (wh *webhookHandler) HandleStripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		wh.Logger.Error("Failed to read webhook payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read request body"})
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := wh.Commerce.HandleStripeWebhook(c.Request().Context(), payload, signature); err != nil {
		wh.Logger.Warn("Rejected stripe webhook", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid webhook"})
	}

	return c.NoContent(http.StatusOK)
}

func (wh *webhookHandler) RecentEvents(c echo.Context) error {
	return c.JSON(http.StatusOK, wh.Commerce.RecentWebhookEvents())
}

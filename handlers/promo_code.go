package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/middleware"
	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
	"github.com/boardhaven/commerce/promo"
)

type PromoCodeHandler interface {
	Validate(c echo.Context) error
	Create(c echo.Context) error
	Get(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
	List(c echo.Context) error
}

type promoCodeHandler struct {
	Promo  promo.Service
	Logger *zap.Logger
}

func NewPromoCodeHandler(promoService promo.Service, logger *zap.Logger) PromoCodeHandler {
	return &promoCodeHandler{
		Promo:  promoService,
		Logger: logger,
	}
}

func (ph *promoCodeHandler) Validate(c echo.Context) error {
	var req models.ValidatePromoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Promo code is required"})
	}

	// Identity comes from the auth proxy and the connection, never the body.
	req.UserID = c.Request().Header.Get("X-User-ID")
	req.ClientIP = middleware.ClientKey(c.Request())

	resp, err := ph.Promo.Validate(c.Request().Context(), &req)
	if err != nil {
		ph.Logger.Error("Failed to validate promo code", zap.Error(err), zap.String("code", req.Code))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to validate promo code"})
	}

	if !resp.Valid {
		return c.JSON(http.StatusBadRequest, resp)
	}

	return c.JSON(http.StatusOK, resp)
}

func (ph *promoCodeHandler) Create(c echo.Context) error {
	var req models.PromoCode
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if err := validatePromoCodeRequest(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := ph.Promo.Create(c.Request().Context(), &req); err != nil {
		ph.Logger.Error("Failed to create promo code", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create promo code"})
	}

	return c.JSON(http.StatusCreated, req)
}

func (ph *promoCodeHandler) Get(c echo.Context) error {
	id := c.Param("id")

	code, err := ph.Promo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, promo.ErrPromoCodeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Promo code not found"})
		}
		ph.Logger.Error("Failed to get promo code", zap.Error(err), zap.String("id", id))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get promo code"})
	}

	return c.JSON(http.StatusOK, code)
}

func (ph *promoCodeHandler) Update(c echo.Context) error {
	var req models.PromoCode
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	req.ID = c.Param("id")

	if err := validatePromoCodeRequest(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := ph.Promo.Update(c.Request().Context(), &req); err != nil {
		if errors.Is(err, promo.ErrPromoCodeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Promo code not found"})
		}
		ph.Logger.Error("Failed to update promo code", zap.Error(err), zap.String("id", req.ID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update promo code"})
	}

	return c.JSON(http.StatusOK, req)
}

func (ph *promoCodeHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	if err := ph.Promo.Delete(c.Request().Context(), id); err != nil {
		ph.Logger.Error("Failed to delete promo code", zap.Error(err), zap.String("id", id))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete promo code"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (ph *promoCodeHandler) List(c echo.Context) error {
	limit, offset := paginationParams(c)

	codes, err := ph.Promo.List(c.Request().Context(), limit, offset)
	if err != nil {
		ph.Logger.Error("Failed to list promo codes", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list promo codes"})
	}

	return c.JSON(http.StatusOK, codes)
}

func validatePromoCodeRequest(req *models.PromoCode) error {
	if len(req.Code) < 2 {
		return errors.New("promo code must be at least 2 characters long")
	}
	switch req.DiscountType {
	case enum.DiscountTypePercentage:
		if req.PercentOff <= 0 || req.PercentOff > 100 {
			return errors.New("percent_off must be between 1 and 100")
		}
	case enum.DiscountTypeFixed:
		if req.AmountOffCents <= 0 {
			return errors.New("amount_off_cents must be positive")
		}
	default:
		return errors.New("discount_type must be percentage or fixed")
	}
	if !req.AppliesToGames && !req.AppliesToMerch {
		return errors.New("promo code must apply to games, merch, or both")
	}
	return nil
}

func paginationParams(c echo.Context) (uint64, uint64) {
	limit := uint64(50)
	offset := uint64(0)
	if v, err := strconv.ParseUint(c.QueryParam("limit"), 10, 64); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.ParseUint(c.QueryParam("offset"), 10, 64); err == nil {
		offset = v
	}
	return limit, offset
}

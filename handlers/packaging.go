package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/packaging"
)

type PackagingHandler interface {
	List(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
}

type packagingHandler struct {
	Packaging packaging.Service
	Logger    *zap.Logger
}

func NewPackagingHandler(packagingService packaging.Service, logger *zap.Logger) PackagingHandler {
	return &packagingHandler{
		Packaging: packagingService,
		Logger:    logger,
	}
}

func (ph *packagingHandler) List(c echo.Context) error {
	types, err := ph.Packaging.List(c.Request().Context())
	if err != nil {
		ph.Logger.Error("Failed to list packaging types", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list packaging types"})
	}

	return c.JSON(http.StatusOK, types)
}

func (ph *packagingHandler) Create(c echo.Context) error {
	var req models.PackagingType
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and sku are required"})
	}

	if err := ph.Packaging.Create(c.Request().Context(), &req); err != nil {
		ph.Logger.Error("Failed to create packaging type", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create packaging type"})
	}

	return c.JSON(http.StatusCreated, req)
}

func (ph *packagingHandler) Update(c echo.Context) error {
	var req models.PackagingType
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	req.ID = c.Param("id")

	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and sku are required"})
	}

	if err := ph.Packaging.Update(c.Request().Context(), &req); err != nil {
		if errors.Is(err, packaging.ErrPackagingTypeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Packaging type not found"})
		}
		ph.Logger.Error("Failed to update packaging type", zap.Error(err), zap.String("id", req.ID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update packaging type"})
	}

	return c.JSON(http.StatusOK, req)
}

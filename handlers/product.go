package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/catalog"
	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
)

type ProductHandler interface {
	List(c echo.Context) error
	Get(c echo.Context) error
	AdminList(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

type productHandler struct {
	Catalog catalog.Service
	Logger  *zap.Logger
}

func NewProductHandler(catalogService catalog.Service, logger *zap.Logger) ProductHandler {
	return &productHandler{
		Catalog: catalogService,
		Logger:  logger,
	}
}

// List is the public catalog and only returns active products.
func (ph *productHandler) List(c echo.Context) error {
	limit, offset := paginationParams(c)

	products, err := ph.Catalog.List(c.Request().Context(), limit, offset, true)
	if err != nil {
		ph.Logger.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list products"})
	}

	return c.JSON(http.StatusOK, products)
}

func (ph *productHandler) Get(c echo.Context) error {
	id := c.Param("id")

	product, err := ph.Catalog.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
		}
		ph.Logger.Error("Failed to get product", zap.Error(err), zap.String("id", id))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get product"})
	}

	return c.JSON(http.StatusOK, product)
}

func (ph *productHandler) AdminList(c echo.Context) error {
	limit, offset := paginationParams(c)

	products, err := ph.Catalog.List(c.Request().Context(), limit, offset, false)
	if err != nil {
		ph.Logger.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list products"})
	}

	return c.JSON(http.StatusOK, products)
}

func (ph *productHandler) Create(c echo.Context) error {
	var req models.Product
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if err := validateProductRequest(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := ph.Catalog.Create(c.Request().Context(), &req); err != nil {
		ph.Logger.Error("Failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create product"})
	}

	return c.JSON(http.StatusCreated, req)
}

func (ph *productHandler) Update(c echo.Context) error {
	var req models.Product
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	req.ID = c.Param("id")

	if err := validateProductRequest(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := ph.Catalog.Update(c.Request().Context(), &req); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
		}
		ph.Logger.Error("Failed to update product", zap.Error(err), zap.String("id", req.ID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update product"})
	}

	return c.JSON(http.StatusOK, req)
}

func (ph *productHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	if err := ph.Catalog.Delete(c.Request().Context(), id); err != nil {
		ph.Logger.Error("Failed to delete product", zap.Error(err), zap.String("id", id))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete product"})
	}

	return c.NoContent(http.StatusNoContent)
}

func validateProductRequest(req *models.Product) error {
	if len(req.Name) < 2 {
		return errors.New("product name must be at least 2 characters long")
	}
	if req.PriceCents <= 0 {
		return errors.New("price_cents must be positive")
	}
	if req.Type != enum.ProductTypeGame && req.Type != enum.ProductTypeMerch {
		return errors.New("type must be game or merch")
	}
	return nil
}

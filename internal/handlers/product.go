package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"catalogapi/internal/events"
	"catalogapi/internal/logging"
	authmw "catalogapi/internal/middleware/auth"
	"catalogapi/internal/models"
	"catalogapi/internal/search"
	"catalogapi/internal/transport"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicProductEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", events.TopicProductEvents, "error", err)
	}
}

// indexProduct mirrors the row into Elasticsearch. Indexing is
// best-effort: a failure is logged and the request still succeeds.
func (h *ProductHandler) indexProduct(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexProduct(ctx, h.ES, h.Index, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("product indexing failed", "product_id", p.ID, "error", err)
	}
}

func (h *ProductHandler) unindexProduct(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.DeleteProduct(ctx, h.ES, h.Index, id); err != nil {
		logging.FromContext(c.Request().Context()).Error("product unindexing failed", "product_id", id, "error", err)
	}
}

func productID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "product id must be an integer")
	}
	return uint(id), nil
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	items := make([]models.Product, 0)
	if err := h.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		logging.FromContext(ctx).Error("list products failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list products")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := productID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		logging.FromContext(ctx).Error("get product failed", "product_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not fetch product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := h.DB.WithContext(ctx).Create(&product).Error; err != nil {
		l.Error("create product failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create product")
	}

	h.indexProduct(c, &product)
	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})

	l.Info("product created", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies a partial update. A field present in the body
// is written even when it is zero, empty, or false; an absent field
// keeps the stored value.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := productID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("update product failed", "product_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update product")
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := h.DB.WithContext(ctx).Save(&product).Error; err != nil {
		l.Error("update product failed", "product_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update product")
	}

	h.indexProduct(c, &product)
	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := productID(c)
	if err != nil {
		return err
	}

	admin, err := authoriseAsAdmin(h.DB.WithContext(ctx), authmw.UserID(c))
	if err != nil {
		l.Error("delete product failed", "product_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete product")
	}
	if !admin {
		return echo.NewHTTPError(http.StatusForbidden, "not authorised to delete a product")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		l.Error("delete product failed", "product_id", id, "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete product")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	h.unindexProduct(c, id)
	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})

	l.Info("product deleted", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("product %d has been deleted", id)})
}

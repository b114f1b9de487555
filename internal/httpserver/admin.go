package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/mykafka"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/search"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
)

type AdminHTTP struct {
	Svc      *service.AdminService
	Search   *search.Service
	Producer *mykafka.Producer
}

func (h *AdminHTTP) publishProductEvent(c echo.Context, event string, id uint) {
	ctx := c.Request().Context()
	err := h.Producer.PublishEvent(ctx, "product_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":       event,
		"product_id": id,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", "product_events", "error", err)
	}
}

func (h *AdminHTTP) Summary(c echo.Context) error {
	summary, err := h.Svc.GetSummary(c.Request().Context())
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) ListProducts(c echo.Context) error {
	products, err := h.Svc.ListProducts(c.Request().Context())
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var in service.ProductCreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Payload invalido.")
	}

	product, err := h.Svc.CreateProduct(ctx, in)
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}

	if err := h.Search.IndexProduct(ctx, *product); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", product.ID, "error", err)
	}
	h.publishProductEvent(c, "product_created", product.ID)

	return c.JSON(http.StatusOK, product)
}

func productID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Produto nao encontrado.")
	}
	return uint(id), nil
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := productID(c)
	if err != nil {
		return err
	}

	var in service.ProductUpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Payload invalido.")
	}

	product, err := h.Svc.UpdateProduct(ctx, id, in)
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}

	if err := h.Search.IndexProduct(ctx, *product); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", product.ID, "error", err)
	}
	h.publishProductEvent(c, "product_updated", product.ID)

	return c.JSON(http.StatusOK, product)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := h.Svc.DeleteProduct(ctx, id)
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}

	if err := h.Search.RemoveProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_remove_failed", "product_id", id, "error", err)
	}
	h.publishProductEvent(c, "product_deleted", id)

	return c.JSON(http.StatusOK, echo.Map{"message": "Produto removido.", "product": product})
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	orders, err := h.Svc.ListOrders(c.Request().Context())
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHTTP) GetSiteConfig(c echo.Context) error {
	cfg, err := h.Svc.GetSiteConfig(c.Request().Context())
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *AdminHTTP) UpdateSiteConfig(c echo.Context) error {
	var in service.SiteConfigInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Payload invalido.")
	}

	cfg, err := h.Svc.UpdateSiteConfig(c.Request().Context(), in)
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, cfg)
}

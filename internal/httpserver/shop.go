package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	authmw "github.com/LypexzDev/Projeto-4-frontend-backend/internal/middleware/auth"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/mykafka"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/repo"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/search"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/util"
)

type ShopHTTP struct {
	Svc      *service.ShopService
	Search   *search.Service
	Producer *mykafka.Producer
}

func parseFloatParam(c echo.Context, name string) *float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ListProducts serves the plain catalog; with ?page it switches to the
// paginated, filterable variant.
func (h *ShopHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("page") == "" && c.QueryParam("search") == "" {
		products, err := h.Svc.ListProducts(ctx)
		if err != nil {
			return mapError(err, "Sessao invalida ou expirada.")
		}
		return c.JSON(http.StatusOK, products)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	filter := repo.ProductFilter{
		Search:   c.QueryParam("search"),
		MinPreco: parseFloatParam(c, "min_preco"),
		MaxPreco: parseFloatParam(c, "max_preco"),
	}

	result, err := h.Svc.ListProductsPage(ctx, page, size, filter)
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, result)
}

// SearchProducts is the fuzzy search endpoint backed by Elasticsearch
// when available.
func (h *ShopHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Parametro q obrigatorio.")
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, products, err := h.Search.Search(ctx, q, page, size)
	if err != nil {
		logging.FromContext(ctx).Error("search_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro interno do servidor.")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}

func (h *ShopHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	profile, err := h.Svc.GetUserProfile(ctx, authmw.CurrentAccount(c))
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ShopHTTP) Recharge(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Valor float64 `json:"valor"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Payload invalido.")
	}

	saldo, err := h.Svc.RechargeBalance(ctx, authmw.CurrentAccount(c), req.Valor)
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, echo.Map{"saldo": saldo})
}

func (h *ShopHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ProdutosIDs []uint `json:"produtos_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Payload invalido.")
	}

	order, err := h.Svc.Checkout(ctx, authmw.CurrentAccount(c), req.ProdutosIDs)
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}

	if err := h.Producer.PublishEvent(ctx, "order_events", strconv.FormatUint(uint64(order.ID), 10), map[string]any{
		"type":       "order_created",
		"order_id":   order.ID,
		"usuario_id": order.UsuarioID,
		"total":      order.Total,
	}); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", "order_events", "error", err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *ShopHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	account := authmw.CurrentAccount(c)

	if c.QueryParam("page") != "" {
		page := util.ParseIntDefault(c.QueryParam("page"), 1)
		size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
		result, err := h.Svc.ListUserOrdersPage(ctx, account, page, size)
		if err != nil {
			return mapError(err, "Sessao invalida ou expirada.")
		}
		return c.JSON(http.StatusOK, result)
	}

	orders, err := h.Svc.ListUserOrders(ctx, account)
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, orders)
}

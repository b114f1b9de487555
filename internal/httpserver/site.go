package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
)

// SiteHTTP exposes the public storefront configuration.
type SiteHTTP struct {
	Svc *service.AdminService
}

func (h *SiteHTTP) GetSiteConfig(c echo.Context) error {
	cfg, err := h.Svc.GetSiteConfig(c.Request().Context())
	if err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, cfg)
}

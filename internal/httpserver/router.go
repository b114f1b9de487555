package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/config"
	authmw "github.com/LypexzDev/Projeto-4-frontend-backend/internal/middleware/auth"
	loggingmw "github.com/LypexzDev/Projeto-4-frontend-backend/internal/middleware/logging"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/middleware/ratelimit"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
)

type Deps struct {
	Config *config.Config
	Logger *slog.Logger

	AuthSvc *service.AuthService

	AuthHandler  *AuthHTTP
	ShopHandler  *ShopHTTP
	AdminHandler *AdminHTTP
	SiteHandler  *SiteHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	e.Use(loggingmw.RequestLogger(d.Logger))
	if d.Config.RateLimitEnabled {
		limiter := ratelimit.New(d.Config.RateLimitRequests, d.Config.RateLimitWindowSeconds)
		e.Use(limiter.Middleware())
	}

	authMw := authmw.NewMiddleware(d.AuthSvc)
	e.Use(authMw.AuthContext)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.GET("/site-config", d.SiteHandler.GetSiteConfig)

	auth := e.Group("/auth")
	auth.POST("/register-user", d.AuthHandler.RegisterUser)
	auth.POST("/login-user", d.AuthHandler.LoginUser)
	auth.POST("/login-admin", d.AuthHandler.LoginAdmin)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.GET("/me", d.AuthHandler.Me, authMw.RequireAuth)
	auth.POST("/logout", d.AuthHandler.Logout, authMw.RequireAuth)

	shop := e.Group("/shop")
	shop.GET("/produtos", d.ShopHandler.ListProducts)
	shop.GET("/produtos/busca", d.ShopHandler.SearchProducts)

	shopUser := shop.Group("", authMw.RequireAuth, authmw.RequireUser)
	shopUser.GET("/me", d.ShopHandler.Me)
	shopUser.POST("/recarga", d.ShopHandler.Recharge)
	shopUser.POST("/pedidos", d.ShopHandler.Checkout)
	shopUser.GET("/pedidos", d.ShopHandler.ListOrders)

	admin := e.Group("/admin", authMw.RequireAuth, authmw.RequireAdmin)
	admin.GET("/resumo", d.AdminHandler.Summary)
	admin.GET("/usuarios", d.AdminHandler.ListUsers)
	admin.GET("/produtos", d.AdminHandler.ListProducts)
	admin.POST("/produtos", d.AdminHandler.CreateProduct)
	admin.PATCH("/produtos/:id", d.AdminHandler.UpdateProduct)
	admin.DELETE("/produtos/:id", d.AdminHandler.DeleteProduct)
	admin.GET("/pedidos", d.AdminHandler.ListOrders)
	admin.GET("/site-config", d.AdminHandler.GetSiteConfig)
	admin.PATCH("/site-config", d.AdminHandler.UpdateSiteConfig)
}

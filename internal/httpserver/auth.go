package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	authmw "github.com/LypexzDev/Projeto-4-frontend-backend/internal/middleware/auth"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/mykafka"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	Producer     *mykafka.Producer
	CookieName   string
	CookieTTL    time.Duration
	SecureCookie bool
}

// refreshCookie scopes the refresh token to the /auth routes only; the
// access token never rides a cookie.
func (h *AuthHTTP) refreshCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     h.CookieName,
		Value:    value,
		Path:     "/auth",
		MaxAge:   int(h.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHTTP) clearRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/auth",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHTTP) publish(c echo.Context, topic, key string, event map[string]any) {
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "error", err)
	}
}

func loginResponse(res *service.LoginResult) echo.Map {
	return echo.Map{
		"token":         res.AccessToken, // legacy frontend alias
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
		"token_type":    "bearer",
		"account":       res.Account,
	}
}

func (h *AuthHTTP) RegisterUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Nome         string  `json:"nome"`
		Email        string  `json:"email"`
		Password     string  `json:"password"`
		SaldoInicial float64 `json:"saldo_inicial"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Payload invalido.")
	}

	account, err := h.Svc.Register(ctx, req.Nome, req.Email, req.Password, req.SaldoInicial)
	if err != nil {
		return mapError(err, "Credenciais invalidas.")
	}

	h.publish(c, "user_events", fmt.Sprint(account.ID), map[string]any{
		"type":       "user_registrated",
		"account_id": account.ID,
		"email":      account.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Conta criada com sucesso.",
		"account": account,
	})
}

func (h *AuthHTTP) login(c echo.Context, role string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login", "role", role)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Payload invalido.")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password, role)
	if err != nil {
		return mapError(err, "Credenciais invalidas.")
	}

	c.SetCookie(h.refreshCookie(res.RefreshToken))

	h.publish(c, "user_events", fmt.Sprint(res.Account.ID), map[string]any{
		"type":       "user_login",
		"account_id": res.Account.ID,
		"role":       res.Account.Role,
	})

	return c.JSON(http.StatusOK, loginResponse(res))
}

func (h *AuthHTTP) LoginUser(c echo.Context) error {
	return h.login(c, "user")
}

func (h *AuthHTTP) LoginAdmin(c echo.Context) error {
	return h.login(c, "admin")
}

func (h *AuthHTTP) Me(c echo.Context) error {
	account := authmw.CurrentAccount(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Sessao invalida ou expirada.")
	}
	return c.JSON(http.StatusOK, echo.Map{"account": service.PublicAccount(account)})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	account := authmw.CurrentAccount(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Sessao invalida ou expirada.")
	}

	if err := h.Svc.Logout(ctx, account.ID); err != nil {
		return mapError(err, "Sessao invalida ou expirada.")
	}

	c.SetCookie(h.clearRefreshCookie())
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Refresh accepts the token from the /auth cookie, falling back to the
// request body for non-browser clients.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var refreshToken string
	if cookie, err := c.Cookie(h.CookieName); err == nil && cookie.Value != "" {
		refreshToken = cookie.Value
	} else {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.Bind(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token ausente.")
	}

	res, err := h.Svc.Refresh(ctx, refreshToken)
	if err != nil {
		return mapError(err, "Refresh token invalido ou expirado.")
	}

	c.SetCookie(h.refreshCookie(res.RefreshToken))
	return c.JSON(http.StatusOK, loginResponse(res))
}

package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/tokens"
)

const (
	CtxClaims  = "auth_claims"
	CtxAccount = "auth_account"
)

type Middleware struct {
	Svc *service.AuthService
}

func NewMiddleware(svc *service.AuthService) *Middleware {
	return &Middleware{Svc: svc}
}

// bearerToken pulls the token out of the Authorization header. The empty
// string means the header is absent or not bearer-shaped.
func bearerToken(c echo.Context) string {
	authorization := c.Request().Header.Get(echo.HeaderAuthorization)
	if authorization == "" {
		return ""
	}
	prefix, token, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(prefix, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthContext pre-decodes the bearer token once per request so later
// gates skip the signature check. It never rejects: the authoritative
// decision belongs to RequireAuth.
func (m *Middleware) AuthContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := bearerToken(c); token != "" {
			if claims, err := m.Svc.Codec.ParseAccess(token); err == nil {
				c.Set(CtxClaims, claims)
			}
		}
		return next(c)
	}
}

// RequireAuth resolves the bearer token to a live account row. The
// request-scoped claims are only a decode shortcut; the account lookup
// always hits storage, so tokens of deleted accounts die here.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		authorization := c.Request().Header.Get(echo.HeaderAuthorization)
		if authorization == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token ausente.")
		}
		token := bearerToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Formato de token invalido.")
		}

		claims, _ := c.Get(CtxClaims).(*tokens.AccessClaims)
		if claims == nil {
			var err error
			claims, err = m.Svc.Codec.ParseAccess(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Sessao invalida ou expirada.")
			}
		}

		account, err := m.Svc.ResolveSubject(ctx, claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Sessao invalida ou expirada.")
		}

		c.Set(CtxAccount, account)
		return next(c)
	}
}

// RequireAdmin gates admin-only routes. Must run after RequireAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		account := CurrentAccount(c)
		if account == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Sessao invalida ou expirada.")
		}
		if account.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Acesso restrito a administradores.")
		}
		return next(c)
	}
}

// RequireUser gates shop routes: role "user" with a linked profile.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		account := CurrentAccount(c)
		if account == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Sessao invalida ou expirada.")
		}
		if account.Role != models.RoleUser {
			return echo.NewHTTPError(http.StatusForbidden, "Acesso restrito a usuarios.")
		}
		if account.ProfileID == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Conta sem perfil vinculado.")
		}
		return next(c)
	}
}

func CurrentAccount(c echo.Context) *models.Account {
	account, _ := c.Get(CtxAccount).(*models.Account)
	return account
}

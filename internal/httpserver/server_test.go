package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/bootstrap"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/config"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/repo"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/search"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/tokens"
)

type testServer struct {
	e   *echo.Echo
	cfg *config.Config
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	cfg := &config.Config{
		Env:               "test",
		JWTSecret:         []byte("test-jwt-secret"),
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		RefreshCookieName: "lc_refresh_token",
		AdminEmail:        "admin@lojacontrol.local",
		AdminPassword:     "admin123",
		SkipLegacyImport:  true,
		RateLimitEnabled:  false,
		ESIndex:           "products",
		LogLevel:          "error",
	}

	logger := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(t.Context(), logger)
	require.NoError(t, bootstrap.Initialize(ctx, db, cfg))

	gormRepo := repo.GormRepo{DB: db}
	codec := &tokens.Codec{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	authSvc := &service.AuthService{Repo: gormRepo, Codec: codec}
	searchSvc := &search.Service{Index: cfg.ESIndex, Repo: gormRepo}

	e := echo.New()
	Register(e, &Deps{
		Config:  cfg,
		Logger:  logger,
		AuthSvc: authSvc,
		AuthHandler: &AuthHTTP{
			Svc:        authSvc,
			CookieName: cfg.RefreshCookieName,
			CookieTTL:  cfg.RefreshTokenTTL,
		},
		ShopHandler:  &ShopHTTP{Svc: &service.ShopService{Repo: gormRepo}, Search: searchSvc},
		AdminHandler: &AdminHTTP{Svc: &service.AdminService{Repo: gormRepo}, Search: searchSvc},
		SiteHandler:  &SiteHTTP{Svc: &service.AdminService{Repo: gormRepo}},
	})

	return &testServer{e: e, cfg: cfg, db: db}
}

type testRequest struct {
	method  string
	path    string
	body    any
	bearer  string
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, r testRequest) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(r.method, r.path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if r.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.bearer)
	}
	for _, cookie := range r.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func refreshCookieFrom(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func (s *testServer) registerUser(t *testing.T, nome, email, password string, saldo float64) {
	t.Helper()

	rec := s.do(t, testRequest{method: http.MethodPost, path: "/auth/register-user", body: map[string]any{
		"nome": nome, "email": email, "password": password, "saldo_inicial": saldo,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (s *testServer) loginUser(t *testing.T, email, password string) (string, *httptest.ResponseRecorder) {
	t.Helper()

	rec := s.do(t, testRequest{method: http.MethodPost, path: "/auth/login-user", body: map[string]any{
		"email": email, "password": password,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token, rec
}

func TestAuthFlow_RegisterLoginMeRefreshLogout(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	s.registerUser(t, "Ana", "a@x.com", "secret1", 0)

	access, loginRec := s.loginUser(t, "a@x.com", "secret1")
	loginBody := decodeBody(t, loginRec)
	assert.Equal(t, "bearer", loginBody["token_type"])
	assert.Equal(t, loginBody["access_token"], loginBody["token"])
	assert.NotEmpty(t, loginBody["refresh_token"])

	cookie := refreshCookieFrom(t, loginRec, s.cfg.RefreshCookieName)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/auth", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Secure)

	me := s.do(t, testRequest{method: http.MethodGet, path: "/auth/me", bearer: access})
	require.Equal(t, http.StatusOK, me.Code)
	meBody := decodeBody(t, me)
	account, ok := meBody["account"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user", account["role"])
	assert.Equal(t, "a@x.com", account["email"])

	refreshed := s.do(t, testRequest{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{cookie}})
	require.Equal(t, http.StatusOK, refreshed.Code, refreshed.Body.String())
	refreshedBody := decodeBody(t, refreshed)
	assert.NotEmpty(t, refreshedBody["access_token"])
	assert.NotEqual(t, access, refreshedBody["access_token"])

	logout := s.do(t, testRequest{method: http.MethodPost, path: "/auth/logout", bearer: access})
	require.Equal(t, http.StatusOK, logout.Code)
	assert.Equal(t, true, decodeBody(t, logout)["ok"])

	newCookie := refreshCookieFrom(t, refreshed, s.cfg.RefreshCookieName)
	replay := s.do(t, testRequest{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{newCookie}})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestAuthFlow_RefreshFromBodyAndReplayRejected(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.registerUser(t, "Ana", "a@x.com", "secret1", 0)
	_, loginRec := s.loginUser(t, "a@x.com", "secret1")
	refreshToken, _ := decodeBody(t, loginRec)["refresh_token"].(string)
	require.NotEmpty(t, refreshToken)

	first := s.do(t, testRequest{method: http.MethodPost, path: "/auth/refresh", body: map[string]any{
		"refresh_token": refreshToken,
	}})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := s.do(t, testRequest{method: http.MethodPost, path: "/auth/refresh", body: map[string]any{
		"refresh_token": refreshToken,
	}})
	assert.Equal(t, http.StatusUnauthorized, second.Code)
	assert.Equal(t, "Refresh token invalido ou expirado.", decodeBody(t, second)["detail"])

	missing := s.do(t, testRequest{method: http.MethodPost, path: "/auth/refresh"})
	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, "Refresh token ausente.", decodeBody(t, missing)["detail"])
}

func TestAuthFlow_DuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.registerUser(t, "Ana", "a@x.com", "secret1", 0)

	rec := s.do(t, testRequest{method: http.MethodPost, path: "/auth/register-user", body: map[string]any{
		"nome": "Outra Ana", "email": "A@X.com", "password": "secret2",
	}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email ja cadastrado", decodeBody(t, rec)["detail"])
}

func TestAuthFlow_LoginFailuresAreGeneric(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.registerUser(t, "Ana", "a@x.com", "secret1", 0)

	wrongPass := s.do(t, testRequest{method: http.MethodPost, path: "/auth/login-user", body: map[string]any{
		"email": "a@x.com", "password": "wrong",
	}})
	unknown := s.do(t, testRequest{method: http.MethodPost, path: "/auth/login-user", body: map[string]any{
		"email": "nobody@x.com", "password": "secret1",
	}})
	wrongRole := s.do(t, testRequest{method: http.MethodPost, path: "/auth/login-admin", body: map[string]any{
		"email": "a@x.com", "password": "secret1",
	}})

	for _, rec := range []*httptest.ResponseRecorder{wrongPass, unknown, wrongRole} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Credenciais invalidas.", decodeBody(t, rec)["detail"])
	}
}

func TestAdminBootstrapLogin_WorksOnFreshStore(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := s.do(t, testRequest{method: http.MethodPost, path: "/auth/login-admin", body: map[string]any{
		"email": s.cfg.AdminEmail, "password": s.cfg.AdminPassword,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	account, ok := body["account"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin", account["role"])
}

func adminToken(t *testing.T, s *testServer) string {
	t.Helper()

	rec := s.do(t, testRequest{method: http.MethodPost, path: "/auth/login-admin", body: map[string]any{
		"email": s.cfg.AdminEmail, "password": s.cfg.AdminPassword,
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decodeBody(t, rec)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestShopFlow_RechargeAndCheckout(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	admin := adminToken(t, s)

	product := s.do(t, testRequest{method: http.MethodPost, path: "/admin/produtos", bearer: admin, body: map[string]any{
		"nome": "Caneca", "descricao": "300ml", "preco": 19.9,
	}})
	require.Equal(t, http.StatusOK, product.Code, product.Body.String())
	productID := decodeBody(t, product)["id"]

	s.registerUser(t, "Ana", "a@x.com", "secret1", 10)
	access, _ := s.loginUser(t, "a@x.com", "secret1")

	recharge := s.do(t, testRequest{method: http.MethodPost, path: "/shop/recarga", bearer: access, body: map[string]any{
		"valor": 50,
	}})
	require.Equal(t, http.StatusOK, recharge.Code, recharge.Body.String())
	assert.InDelta(t, 60.0, decodeBody(t, recharge)["saldo"].(float64), 0.001)

	checkout := s.do(t, testRequest{method: http.MethodPost, path: "/shop/pedidos", bearer: access, body: map[string]any{
		"produtos_ids": []any{productID},
	}})
	require.Equal(t, http.StatusOK, checkout.Code, checkout.Body.String())
	order := decodeBody(t, checkout)
	assert.InDelta(t, 19.9, order["total"].(float64), 0.001)

	me := s.do(t, testRequest{method: http.MethodGet, path: "/shop/me", bearer: access})
	require.Equal(t, http.StatusOK, me.Code)
	assert.InDelta(t, 40.1, decodeBody(t, me)["saldo"].(float64), 0.001)

	broke := s.do(t, testRequest{method: http.MethodPost, path: "/shop/pedidos", bearer: access, body: map[string]any{
		"produtos_ids": []any{productID, productID, productID},
	}})
	assert.Equal(t, http.StatusBadRequest, broke.Code)

	orders := s.do(t, testRequest{method: http.MethodGet, path: "/shop/pedidos", bearer: access})
	require.Equal(t, http.StatusOK, orders.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(orders.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestShopRoutes_RequireUserRole(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	admin := adminToken(t, s)

	rec := s.do(t, testRequest{method: http.MethodGet, path: "/shop/me", bearer: admin})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Acesso restrito a usuarios.", decodeBody(t, rec)["detail"])

	missing := s.do(t, testRequest{method: http.MethodGet, path: "/shop/me"})
	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, "Token ausente.", decodeBody(t, missing)["detail"])

	req := httptest.NewRequest(http.MethodGet, "/shop/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic abc")
	rec2 := httptest.NewRecorder()
	s.e.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
	assert.Equal(t, "Formato de token invalido.", decodeBody(t, rec2)["detail"])
}

func TestAdminRoutes_ForbiddenForUsers(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.registerUser(t, "Ana", "a@x.com", "secret1", 0)
	access, _ := s.loginUser(t, "a@x.com", "secret1")

	rec := s.do(t, testRequest{method: http.MethodGet, path: "/admin/resumo", bearer: access})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Acesso restrito a administradores.", decodeBody(t, rec)["detail"])
}

func TestAdminFlow_ProductLifecycleAndSummary(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	admin := adminToken(t, s)

	created := s.do(t, testRequest{method: http.MethodPost, path: "/admin/produtos", bearer: admin, body: map[string]any{
		"nome": "Caneca", "preco": 10,
	}})
	require.Equal(t, http.StatusOK, created.Code)
	productID := decodeBody(t, created)["id"].(float64)

	patched := s.do(t, testRequest{method: http.MethodPatch, path: fmt.Sprintf("/admin/produtos/%.0f", productID), bearer: admin, body: map[string]any{
		"preco": 12.5,
	}})
	require.Equal(t, http.StatusOK, patched.Code, patched.Body.String())
	assert.InDelta(t, 12.5, decodeBody(t, patched)["preco"].(float64), 0.001)

	invalid := s.do(t, testRequest{method: http.MethodPost, path: "/admin/produtos", bearer: admin, body: map[string]any{
		"nome": "x", "preco": 10,
	}})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)

	summary := s.do(t, testRequest{method: http.MethodGet, path: "/admin/resumo", bearer: admin})
	require.Equal(t, http.StatusOK, summary.Code)
	assert.Equal(t, float64(1), decodeBody(t, summary)["produtos"].(float64))

	deleted := s.do(t, testRequest{method: http.MethodDelete, path: fmt.Sprintf("/admin/produtos/%.0f", productID), bearer: admin})
	require.Equal(t, http.StatusOK, deleted.Code, deleted.Body.String())

	missing := s.do(t, testRequest{method: http.MethodDelete, path: "/admin/produtos/999", bearer: admin})
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestAdminFlow_DeleteSoldProductConflicts(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	admin := adminToken(t, s)

	created := s.do(t, testRequest{method: http.MethodPost, path: "/admin/produtos", bearer: admin, body: map[string]any{
		"nome": "Caneca", "preco": 10,
	}})
	require.Equal(t, http.StatusOK, created.Code)
	productID := decodeBody(t, created)["id"]

	s.registerUser(t, "Ana", "a@x.com", "secret1", 100)
	access, _ := s.loginUser(t, "a@x.com", "secret1")
	checkout := s.do(t, testRequest{method: http.MethodPost, path: "/shop/pedidos", bearer: access, body: map[string]any{
		"produtos_ids": []any{productID},
	}})
	require.Equal(t, http.StatusOK, checkout.Code)

	deleted := s.do(t, testRequest{method: http.MethodDelete, path: fmt.Sprintf("/admin/produtos/%.0f", productID.(float64)), bearer: admin})
	assert.Equal(t, http.StatusConflict, deleted.Code)
	assert.Equal(t, "nao e possivel remover produto ja vendido", decodeBody(t, deleted)["detail"])
}

func TestSiteConfig_PublicReadAdminWrite(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	public := s.do(t, testRequest{method: http.MethodGet, path: "/site-config"})
	require.Equal(t, http.StatusOK, public.Code)
	assert.Equal(t, "LojaControl", decodeBody(t, public)["site_name"])

	admin := adminToken(t, s)
	patch := s.do(t, testRequest{method: http.MethodPatch, path: "/admin/site-config", bearer: admin, body: map[string]any{
		"site_name":       "Minha Loja",
		"tagline":         "Tudo em um lugar",
		"hero_title":      "Bem-vindo",
		"hero_subtitle":   "Compre sem sair de casa.",
		"accent_color":    "#FF0000",
		"highlight_color": "#00FF00",
	}})
	require.Equal(t, http.StatusOK, patch.Code, patch.Body.String())

	again := s.do(t, testRequest{method: http.MethodGet, path: "/site-config"})
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "Minha Loja", decodeBody(t, again)["site_name"])

	badColor := s.do(t, testRequest{method: http.MethodPatch, path: "/admin/site-config", bearer: admin, body: map[string]any{
		"site_name":       "Minha Loja",
		"tagline":         "Tudo em um lugar",
		"hero_title":      "Bem-vindo",
		"hero_subtitle":   "Compre sem sair de casa.",
		"accent_color":    "red",
		"highlight_color": "#00FF00",
	}})
	assert.Equal(t, http.StatusBadRequest, badColor.Code)
}

func TestCatalog_PublicListingAndSearchFallback(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	admin := adminToken(t, s)

	for _, p := range []map[string]any{
		{"nome": "Caneca Azul", "preco": 15},
		{"nome": "Caneca Verde", "preco": 25},
		{"nome": "Camiseta", "preco": 40},
	} {
		rec := s.do(t, testRequest{method: http.MethodPost, path: "/admin/produtos", bearer: admin, body: p})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	list := s.do(t, testRequest{method: http.MethodGet, path: "/shop/produtos"})
	require.Equal(t, http.StatusOK, list.Code)
	var products []map[string]any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &products))
	assert.Len(t, products, 3)

	paged := s.do(t, testRequest{method: http.MethodGet, path: "/shop/produtos?page=1&size=2&search=caneca"})
	require.Equal(t, http.StatusOK, paged.Code)
	pagedBody := decodeBody(t, paged)
	assert.Equal(t, float64(2), pagedBody["total"].(float64))

	searched := s.do(t, testRequest{method: http.MethodGet, path: "/shop/produtos/busca?q=caneca"})
	require.Equal(t, http.StatusOK, searched.Code)
	searchBody := decodeBody(t, searched)
	assert.Equal(t, float64(2), searchBody["total"].(float64))

	noQuery := s.do(t, testRequest{method: http.MethodGet, path: "/shop/produtos/busca"})
	assert.Equal(t, http.StatusBadRequest, noQuery.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	live := s.do(t, testRequest{method: http.MethodGet, path: "/health/live"})
	assert.Equal(t, http.StatusOK, live.Code)
	ready := s.do(t, testRequest{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, http.StatusOK, ready.Code)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/bootstrap"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/config"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/es"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/httpserver"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/mykafka"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/repo"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/search"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/tokens"
	"github.com/LypexzDev/Projeto-4-frontend-backend/pkg/db"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	bootCtx := logging.IntoContext(context.Background(), logger)
	if err := bootstrap.Initialize(bootCtx, gdb, cfg); err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	prod := mykafka.NewProducer(cfg.KafkaBrokers)
	if prod == nil {
		logger.Info("kafka disabled")
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}
	if esClient == nil {
		logger.Info("elasticsearch disabled, product search falls back to sql")
	}

	gormRepo := repo.GormRepo{DB: gdb}
	codec := &tokens.Codec{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}

	authSvc := &service.AuthService{Repo: gormRepo, Codec: codec}
	shopSvc := &service.ShopService{Repo: gormRepo}
	adminSvc := &service.AdminService{Repo: gormRepo}
	searchSvc := &search.Service{ES: esClient, Index: cfg.ESIndex, Repo: gormRepo}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		Config:  cfg,
		Logger:  logger,
		AuthSvc: authSvc,
		AuthHandler: &httpserver.AuthHTTP{
			Svc:          authSvc,
			Producer:     prod,
			CookieName:   cfg.RefreshCookieName,
			CookieTTL:    cfg.RefreshTokenTTL,
			SecureCookie: cfg.IsProduction(),
		},
		ShopHandler:  &httpserver.ShopHTTP{Svc: shopSvc, Search: searchSvc, Producer: prod},
		AdminHandler: &httpserver.AdminHTTP{Svc: adminSvc, Search: searchSvc, Producer: prod},
		SiteHandler:  &httpserver.SiteHTTP{Svc: adminSvc},
	})

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()
	logger.Info("server started", "port", cfg.Port, "env", cfg.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
